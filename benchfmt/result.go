// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchfmt reads the per-benchmark report pages written by
// cargo criterion.
//
// Each benchmark has a report directory containing a detail page
// (index.html). Somewhere in that page is a line with the marker text
// "Change in Value:" followed by three lines, each holding one bound of
// the confidence interval for the relative change against the previous
// run, wrapped in a single HTML tag pair:
//
//	<th>Change in Value:</th>
//	<td>-3.4208%</td>
//	<td>-1.2010%</td>
//	<td>+0.9876%</td>
//
// The reader extracts these bounds verbatim as display strings. It never
// interprets them numerically; see packages benchunit and benchmath for
// that.
//
// Report pages are produced by an external tool and are treated as
// semi-structured input. A page without the marker, or with a bound line
// that lacks its delimiters, degrades to a neutral value instead of
// failing, so a single malformed benchmark cannot abort a whole index.
package benchfmt

import (
	"net/url"
	"path"
	"strings"
)

// An Interval is the (lower, middle, upper) confidence interval of a
// benchmark's percent change, as display strings such as "-3.42%".
type Interval struct {
	Lower, Middle, Upper string
}

// NeutralInterval is the interval reported for pages that carry no
// change information.
var NeutralInterval = Interval{"0", "0", "0"}

// A Fragment identifies one benchmark result in a snapshot.
type Fragment struct {
	// Name is the benchmark name, taken from its report
	// directory.
	Name Name

	// Path is the slash-separated path of the report directory,
	// relative to the root of the rendered document.
	Path string

	// Interval is the change interval parsed from the report
	// page.
	Interval Interval
}

// Link returns the document-relative URL of f's canonical detail page.
// Each segment of f.Path is escaped, so names with spaces or brackets
// still form a single link.
func (f Fragment) Link() string {
	var segs []string
	for _, seg := range strings.Split(path.Join(f.Path, CanonicalPage), "/") {
		segs = append(segs, url.PathEscape(seg))
	}
	return strings.Join(segs, "/")
}

// CanonicalPage is the file name every detail page is stored under.
const CanonicalPage = "index.html"

// A Name is a benchmark name as it appears on disk.
//
// cargo criterion cannot use "::" or "<<" in directory names, so
// benchmark groups are written with "__" standing in for the path
// separator and " __ " for a nesting arrow.
type Name string

// String returns the raw name.
func (n Name) String() string {
	return string(n)
}

// Display returns the human-readable form of n: its path segments
// joined by "::".
func (n Name) Display() string {
	return strings.Join(n.Parts(), "::")
}

// Parts splits n into its path segments. The padded separator " __ " is
// rewritten to " << " first, so that its inner "__" is not taken for a
// path separator.
func (n Name) Parts() []string {
	return strings.Split(strings.ReplaceAll(string(n), " __ ", " << "), "__")
}
