// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
)

// A Writer writes minimal report pages in the layout Reader accepts. It
// is meant for tools that synthesize reports, such as test fixtures.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter returns a writer that writes report pages to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes a page for the benchmark name with change interval iv.
// If iv is the zero Interval, the page has no change section, as for a
// benchmark without a baseline.
func (w *Writer) Write(name Name, iv Interval) error {
	title := html.EscapeString(name.Display())
	fmt.Fprintf(&w.buf, "<!DOCTYPE html>\n<html>\n<head>\n<title>%s - Criterion.rs</title>\n</head>\n<body>\n<h2>%s</h2>\n", title, title)
	if iv != (Interval{}) {
		w.buf.WriteString("<table>\n<tr>\n")
		fmt.Fprintf(&w.buf, "<th>%s</th>\n", changeMarker)
		fmt.Fprintf(&w.buf, "<td class=\"ci-bound\">%s</td>\n", html.EscapeString(iv.Lower))
		fmt.Fprintf(&w.buf, "<td>%s</td>\n", html.EscapeString(iv.Middle))
		fmt.Fprintf(&w.buf, "<td class=\"ci-bound\">%s</td>\n", html.EscapeString(iv.Upper))
		w.buf.WriteString("</tr>\n</table>\n")
	}
	w.buf.WriteString("</body>\n</html>\n")

	// Write to the buffer can't fail, so only the flush is checked.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// WritePage writes the page of f to root/f.Path/page, creating
// directories as needed.
func WritePage(root, page string, f Fragment) error {
	dir := filepath.Join(root, filepath.FromSlash(f.Path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(dir, page))
	if err != nil {
		return err
	}
	if err := NewWriter(out).Write(f.Name, f.Interval); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
