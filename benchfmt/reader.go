// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// A Reader reads the change interval from a criterion report page.
//
// Its API is modeled on bufio.Scanner. The zero value of the Reader is
// a valid Reader, but the user must call Reset before using it.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	lineNum  int
	err      error // current I/O error

	interval Interval
	warnings []error
}

// A SyntaxError describes a malformed bound line in a report page. It is
// recorded as a warning only; the bound falls back to "0".
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

// changeMarker marks the line preceding the three interval bounds.
var changeMarker = []byte("Change in Value:")

// maxLine bounds a single page line. Report pages inline SVG plots, so
// lines can be far longer than bufio's default token size.
const maxLine = 16 << 20

// NewReader constructs a reader for the report page in r.
// fileName is used in warnings; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.lineNum = 0
	r.err = nil
	r.interval = NeutralInterval
	r.warnings = r.warnings[:0]
}

// Scan advances the reader past the next change marker and its three
// bound lines, and reports whether a marker was found. The caller should
// use the Interval method to get the result.
// If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.s.Scan() {
		r.lineNum++
		if !bytes.Contains(r.s.Bytes(), changeMarker) {
			continue
		}
		var bounds [3]string
		for i := range bounds {
			if !r.s.Scan() {
				r.warn("missing bound line")
				bounds[i] = "0"
				continue
			}
			r.lineNum++
			bounds[i] = r.extract(r.s.Bytes())
		}
		r.interval = Interval{bounds[0], bounds[1], bounds[2]}
		return true
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.lineNum, err)
	}
	return false
}

// extract returns the text strictly between the first '>' in line and
// the following '<', trimmed of surrounding space.
func (r *Reader) extract(line []byte) string {
	start := bytes.IndexByte(line, '>')
	if start < 0 {
		r.warn("missing '>' before bound")
		return "0"
	}
	end := bytes.IndexByte(line[start+1:], '<')
	if end < 0 {
		r.warn("missing '<' after bound")
		return "0"
	}
	return strings.TrimSpace(string(line[start+1 : start+1+end]))
}

func (r *Reader) warn(msg string) {
	r.warnings = append(r.warnings, &SyntaxError{r.fileName, r.lineNum, msg})
}

// Interval returns the interval found by the last successful call to
// Scan, or NeutralInterval if there was none.
func (r *Reader) Interval() Interval {
	return r.interval
}

// Warnings returns the degraded bounds encountered so far. Warnings are
// non-fatal.
func (r *Reader) Warnings() []error {
	return r.warnings
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadInterval reads the first change interval from a report page. A page
// without a change marker yields NeutralInterval. Only I/O errors are
// returned.
func ReadInterval(ior io.Reader, fileName string) (Interval, error) {
	r := NewReader(ior, fileName)
	if r.Scan() {
		return r.Interval(), nil
	}
	if err := r.Err(); err != nil {
		return Interval{}, err
	}
	return NeutralInterval, nil
}

// PagePath resolves p to a report page. If p is a directory, the page is
// its canonical detail page.
func PagePath(p string) (string, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return filepath.Join(p, CanonicalPage), nil
	}
	return p, nil
}

// ParseInterval reads the change interval of the report at p, which may
// be a report directory or a page. A missing or unreadable page is an
// error.
func ParseInterval(p string) (Interval, error) {
	page, err := PagePath(p)
	if err != nil {
		return Interval{}, err
	}
	f, err := os.Open(page)
	if err != nil {
		return Interval{}, err
	}
	defer f.Close()
	return ReadInterval(f, page)
}
