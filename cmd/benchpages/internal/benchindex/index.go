// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchindex renders benchmark snapshots as a markdown index.
package benchindex

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/zchee/benchpages/benchfmt"
	"github.com/zchee/benchpages/benchhist"
	"github.com/zchee/benchpages/benchmath"
	"github.com/zchee/benchpages/benchproc"
	"github.com/zchee/benchpages/benchunit"
)

// Options configures rendering.
type Options struct {
	// Thresholds classifies intervals. If nil,
	// benchmath.DefaultThresholds is used.
	Thresholds *benchmath.Thresholds

	// Summary adds the geometric mean change of each snapshot
	// below its first heading.
	Summary bool
}

func (o *Options) thresholds() *benchmath.Thresholds {
	if o.Thresholds == nil {
		return &benchmath.DefaultThresholds
	}
	return o.Thresholds
}

// Report pages come from an external tool, so text taken from them is
// backslash-escaped wherever markdown or inline HTML would act on it.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"<", `\<`,
	">", `\>`,
	"[", `\[`,
	"]", `\]`,
	"&", `\&`,
	"`", "\\`",
)

// RenderLine renders f as a markdown list item: the color-coded interval
// followed by a link to its detail page.
func RenderLine(f benchfmt.Fragment, t *benchmath.Thresholds) (string, error) {
	sig, err := t.Classify(f.Interval)
	if err != nil {
		return "", errors.Wrapf(err, "classifying %s", f.Name)
	}
	iv := f.Interval
	return fmt.Sprintf(`- <span style="color:%s"> [%s, <b>%s</b>, %s] </span>  [%s](%s)`,
		sig.Color(),
		mdEscaper.Replace(iv.Lower), mdEscaper.Replace(iv.Middle), mdEscaper.Replace(iv.Upper),
		mdEscaper.Replace(f.Name.Display()), f.Link()), nil
}

func renderLines(frags []benchfmt.Fragment, t *benchmath.Thresholds) (string, error) {
	lines := make([]string, len(frags))
	for i, f := range frags {
		line, err := RenderLine(f, t)
		if err != nil {
			return "", err
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), nil
}

// RenderSnapshot renders snap as two sections: its fragments sorted by
// change, most improved first, and sorted by name.
func RenderSnapshot(snap benchhist.Snapshot, opts Options) (string, error) {
	t := opts.thresholds()

	byChange := append([]benchfmt.Fragment(nil), snap.Fragments...)
	if err := benchproc.SortByChange(byChange); err != nil {
		return "", errors.Wrapf(err, "snapshot %s", snap.Label)
	}
	byName := append([]benchfmt.Fragment(nil), snap.Fragments...)
	benchproc.SortByName(byName)

	changed, err := renderLines(byChange, t)
	if err != nil {
		return "", errors.Wrapf(err, "snapshot %s", snap.Label)
	}
	named, err := renderLines(byName, t)
	if err != nil {
		return "", errors.Wrapf(err, "snapshot %s", snap.Label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s - Sorted By Performance Change\n", snap.Label)
	if opts.Summary {
		b.WriteString(summary(byChange))
	}
	fmt.Fprintf(&b, "%s\n## %s - Sorted By Name\n%s\n", changed, snap.Label, named)
	return b.String(), nil
}

// summary returns the geomean line for frags, whose middle values are
// known to parse.
func summary(frags []benchfmt.Fragment) string {
	changes := make([]float64, 0, len(frags))
	for _, f := range frags {
		v, _ := benchunit.ParsePercent(f.Interval.Middle)
		changes = append(changes, v)
	}
	gm, ok := benchmath.GeoMeanChange(changes)
	if !ok {
		return "geomean: ?\n\n"
	}
	return "geomean: " + benchunit.FormatPercent(gm) + "\n\n"
}

// RenderDocument renders every snapshot in history, most recent first.
// history is ordered oldest first, as returned by benchhist, so the
// baseline that ends it is rendered at the top.
func RenderDocument(history []benchhist.Snapshot, opts Options) (string, error) {
	sections := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		s, err := RenderSnapshot(history[i], opts)
		if err != nil {
			return "", err
		}
		sections = append(sections, s)
	}
	return "# Benchmarks\n" + strings.Join(sections, "\n") + "\n", nil
}

// WriteCSV writes one row per fragment of history with its interval and
// significance.
func WriteCSV(w io.Writer, history []benchhist.Snapshot, t *benchmath.Thresholds) error {
	o := csv.NewWriter(w)
	o.Write([]string{"snapshot", "name", "lower", "middle", "upper", "significance"})
	for _, snap := range history {
		for _, f := range snap.Fragments {
			sig, err := t.Classify(f.Interval)
			if err != nil {
				return errors.Wrapf(err, "snapshot %s: classifying %s", snap.Label, f.Name)
			}
			o.Write([]string{snap.Label, f.Name.Display(), f.Interval.Lower, f.Interval.Middle, f.Interval.Upper, sig.String()})
		}
	}
	o.Flush()
	return o.Error()
}

// pagePolicy admits exactly the markup an index renders to.
var pagePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "p", "ul", "li", "b", "span", "a")
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[a-z0-9-]+$`)).OnElements("h1", "h2")
	p.AllowStyles("color").MatchingEnum("black", "green", "red").OnElements("span")
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https")
	return p
}()

const (
	pageHeader = "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Benchmarks</title>\n</head>\n<body>\n"
	pageFooter = "</body>\n</html>\n"
)

// ToHTML converts a rendered markdown index into a standalone HTML page.
// The converted body is sanitized, so markup smuggled in through report
// text cannot reach the page.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	// The parser may rewrite its input.
	doc := p.Parse(append([]byte(nil), md...))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := pagePolicy.SanitizeBytes(markdown.Render(doc, renderer))

	var b bytes.Buffer
	b.WriteString(pageHeader)
	b.Write(body)
	b.WriteString(pageFooter)
	return b.Bytes()
}
