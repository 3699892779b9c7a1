// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchhist maintains the rolling history of benchmark snapshots
// stored under a benchmark root directory.
//
// The root holds one directory per snapshot. Numbered directories (pull
// request numbers) form the rolling history and are pruned to a
// retention window, oldest first. The baseline directory, "dev", holds
// the reference results and is never pruned:
//
//	bench/
//	    index.md
//	    dev/criterion/reports/<benchmark>/index.html
//	    41/criterion/reports/<benchmark>/index.html
//	    42/criterion/reports/<benchmark>/index.html
//
// Pruning deletes directories from disk. The caller must have exclusive
// access to the root for the duration of a publish cycle.
package benchhist

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zchee/benchpages/benchfmt"
)

const (
	// Baseline is the name of the snapshot directory that holds
	// the reference results.
	Baseline = "dev"

	// LegacyPage is the name criterion gives a report's detail
	// page.
	LegacyPage = "history.html"

	// criterionDir is where a snapshot keeps the criterion output.
	criterionDir = "criterion"
	reportsDir   = "reports"
)

var labelRe = regexp.MustCompile(`^[1-9][0-9]*$`)

// IsSnapshotLabel reports whether name is a numbered snapshot label,
// which is subject to pruning.
func IsSnapshotLabel(name string) bool {
	return labelRe.MatchString(name)
}

// A Snapshot is the set of benchmark results of one run.
type Snapshot struct {
	// Label names the snapshot, e.g. a pull request number or
	// Baseline.
	Label string

	// Dir is the snapshot directory.
	Dir string

	// Fragments are the snapshot's benchmarks, in directory
	// order.
	Fragments []benchfmt.Fragment
}

// A History manages the snapshots under Root.
type History struct {
	// Root is the benchmark root directory.
	Root string

	// Retention is the number of numbered snapshots to keep.
	// If Retention <= 0, nothing is pruned.
	Retention int

	// Log receives progress messages. If nil, nothing is logged.
	Log logrus.FieldLogger
}

func (h *History) log() logrus.FieldLogger {
	if h.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		h.Log = l
	}
	return h.Log
}

// SelectSnapshots prunes the numbered snapshots under root to the newest
// retention of them and returns the remaining snapshot directories,
// oldest first, followed by the baseline directory if it exists.
func SelectSnapshots(root string, retention int) ([]string, error) {
	h := &History{Root: root, Retention: retention}
	return h.Select()
}

// Select is like SelectSnapshots, using h's configuration.
func (h *History) Select() ([]string, error) {
	entries, err := os.ReadDir(h.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "listing snapshots in %s", h.Root)
	}

	type numbered struct {
		n   uint64
		dir string
	}
	var snaps []numbered
	for _, e := range entries {
		if !e.IsDir() || !labelRe.MatchString(e.Name()) {
			continue
		}
		n, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil {
			// Too many digits to be a pull request.
			continue
		}
		snaps = append(snaps, numbered{n, filepath.Join(h.Root, e.Name())})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].n < snaps[j].n })

	if h.Retention > 0 && len(snaps) > h.Retention {
		stale := snaps[:len(snaps)-h.Retention]
		for _, s := range stale {
			h.log().WithField("snapshot", s.dir).Info("pruning snapshot")
			if err := os.RemoveAll(s.dir); err != nil {
				return nil, errors.Wrapf(err, "pruning snapshot %s", s.dir)
			}
		}
		snaps = snaps[len(stale):]
	}

	dirs := make([]string, 0, len(snaps)+1)
	for _, s := range snaps {
		dirs = append(dirs, s.dir)
	}
	base := filepath.Join(h.Root, Baseline)
	if fi, err := os.Stat(base); err == nil && fi.IsDir() {
		dirs = append(dirs, base)
	}
	return dirs, nil
}

// NormalizeFilenames renames every legacy detail page found under dirs
// to the canonical page name, so that index links resolve. Running it
// again is a no-op.
func NormalizeFilenames(dirs []string) error {
	h := new(History)
	return h.Normalize(dirs)
}

// Normalize is like NormalizeFilenames, logging to h.Log.
func (h *History) Normalize(dirs []string) error {
	for _, dir := range dirs {
		var pages []string
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && d.Name() == LegacyPage {
				pages = append(pages, path)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "scanning %s", dir)
		}
		for _, page := range pages {
			canonical := filepath.Join(filepath.Dir(page), benchfmt.CanonicalPage)
			if err := os.Rename(page, canonical); err != nil {
				return errors.Wrapf(err, "renaming %s", page)
			}
		}
		if len(pages) > 0 {
			h.log().WithFields(logrus.Fields{"snapshot": dir, "pages": len(pages)}).Debug("normalized report pages")
		}
	}
	return nil
}

// LoadSnapshot reads the benchmark fragments of the snapshot in dir.
// Fragment paths are made relative to root, the directory the index is
// written to.
func LoadSnapshot(root, dir string) (Snapshot, error) {
	h := &History{Root: root}
	return h.Load(dir)
}

// Load is like LoadSnapshot, relative to h.Root.
func (h *History) Load(dir string) (Snapshot, error) {
	snap := Snapshot{Label: filepath.Base(dir), Dir: dir}
	reports := filepath.Join(dir, criterionDir, reportsDir)
	entries, err := os.ReadDir(reports)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "listing reports of snapshot %s", snap.Label)
	}

	var r benchfmt.Reader
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		report := filepath.Join(reports, e.Name())
		iv, err := h.readInterval(&r, report)
		if err != nil {
			return Snapshot{}, err
		}
		rel, err := filepath.Rel(h.Root, report)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, "locating %s", report)
		}
		snap.Fragments = append(snap.Fragments, benchfmt.Fragment{
			Name:     benchfmt.Name(e.Name()),
			Path:     filepath.ToSlash(rel),
			Interval: iv,
		})
	}
	return snap, nil
}

func (h *History) readInterval(r *benchfmt.Reader, report string) (benchfmt.Interval, error) {
	page, err := benchfmt.PagePath(report)
	if err != nil {
		return benchfmt.Interval{}, errors.Wrapf(err, "reading report %s", report)
	}
	f, err := os.Open(page)
	if err != nil {
		return benchfmt.Interval{}, errors.Wrapf(err, "reading report %s", report)
	}
	defer f.Close()

	r.Reset(f, page)
	if !r.Scan() {
		if err := r.Err(); err != nil {
			return benchfmt.Interval{}, errors.Wrapf(err, "reading report %s", report)
		}
		h.log().WithField("page", page).Debug("no change interval, reporting neutral")
	}
	for _, w := range r.Warnings() {
		h.log().Warn(w)
	}
	return r.Interval(), nil
}
