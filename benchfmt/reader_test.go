// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html>
<body>
<table>
<tr>
<th>Change in Value:</th>
<td>-3.4208%</td>
<td> -1.2010% </td>
<td>+0.9876%</td>
</tr>
</table>
</body>
</html>
`

func TestReader(t *testing.T) {
	type testCase struct {
		name, input string
		want        Interval
		warnings    []string
	}
	for _, test := range []testCase{
		{
			"basic",
			page,
			Interval{"-3.4208%", "-1.2010%", "+0.9876%"},
			nil,
		},
		{
			"no marker",
			"<html><body>no change data</body></html>\n",
			NeutralInterval,
			nil,
		},
		{
			"empty",
			"",
			NeutralInterval,
			nil,
		},
		{
			"missing delimiters",
			`Change in Value:
<td>1.5%</td>
no tags at all
<td>2.5%
`,
			Interval{"1.5%", "0", "0"},
			[]string{
				"test:3: missing '>' before bound",
				"test:4: missing '<' after bound",
			},
		},
		{
			"truncated",
			`<th>Change in Value:</th>
<td>-2%</td>
`,
			Interval{"-2%", "0", "0"},
			[]string{
				"test:2: missing bound line",
				"test:2: missing bound line",
			},
		},
		{
			"first marker wins",
			`Change in Value:
<td>1%</td>
<td>2%</td>
<td>3%</td>
Change in Value:
<td>4%</td>
<td>5%</td>
<td>6%</td>
`,
			Interval{"1%", "2%", "3%"},
			nil,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(test.input), "test")
			r.Scan()
			require.NoError(t, r.Err())
			assert.Equal(t, test.want, r.Interval())

			var warnings []string
			for _, w := range r.Warnings() {
				warnings = append(warnings, w.Error())
			}
			assert.Equal(t, test.warnings, warnings)
		})
	}
}

func TestReaderReset(t *testing.T) {
	r := NewReader(strings.NewReader(page), "a")
	require.True(t, r.Scan())
	assert.Equal(t, "-1.2010%", r.Interval().Middle)

	r.Reset(strings.NewReader("nothing here\n"), "b")
	assert.False(t, r.Scan())
	assert.Equal(t, NeutralInterval, r.Interval())
	assert.Empty(t, r.Warnings())
}

func TestReadIntervalDeterministic(t *testing.T) {
	first, err := ReadInterval(strings.NewReader(page), "x")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := ReadInterval(strings.NewReader(page), "x")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestParseInterval(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "fib__small")
	require.NoError(t, os.Mkdir(report, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(report, CanonicalPage), []byte(page), 0o644))

	// A report directory resolves to its detail page.
	got, err := ParseInterval(report)
	require.NoError(t, err)
	assert.Equal(t, Interval{"-3.4208%", "-1.2010%", "+0.9876%"}, got)

	// So does the page itself.
	got, err = ParseInterval(filepath.Join(report, CanonicalPage))
	require.NoError(t, err)
	assert.Equal(t, "-3.4208%", got.Lower)

	// A directory without a detail page is fatal.
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	_, err = ParseInterval(empty)
	assert.True(t, os.IsNotExist(err), "got %v", err)

	_, err = ParseInterval(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	for _, test := range []struct {
		raw, display string
		parts        []string
	}{
		{"fib", "fib", []string{"fib"}},
		{"parser__parse_expr", "parser::parse_expr", []string{"parser", "parse_expr"}},
		{"vec__push __ alloc__grow", "vec::push << alloc::grow", []string{"vec", "push << alloc", "grow"}},
	} {
		n := Name(test.raw)
		assert.Equal(t, test.display, n.Display(), test.raw)
		assert.Equal(t, test.parts, n.Parts(), test.raw)
	}
}

func TestFragmentLink(t *testing.T) {
	f := Fragment{Name: "fib", Path: "12/criterion/reports/fib"}
	assert.Equal(t, "12/criterion/reports/fib/index.html", f.Link())

	f = Fragment{Name: "vec__push __ grow", Path: "dev/criterion/reports/vec__push __ grow"}
	assert.Equal(t, "dev/criterion/reports/vec__push%20__%20grow/index.html", f.Link())

	f = Fragment{Name: "a(b)", Path: "1/criterion/reports/a(b)"}
	assert.Equal(t, "1/criterion/reports/a%28b%29/index.html", f.Link())
}

func BenchmarkReader(b *testing.B) {
	// Pad the page with plot markup so the marker is found late.
	input := strings.Repeat("<path d=\"M0 0 L1 1\"/>\n", 2000) + page
	r := new(Reader)
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		r.Reset(strings.NewReader(input), "bench")
		if !r.Scan() {
			b.Fatal("marker not found")
		}
	}
}
