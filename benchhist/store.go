// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchhist

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store copies the criterion output tree src into the snapshot named
// storage, merging with and overwriting whatever is already there.
func (h *History) Store(storage, src string) error {
	dst := filepath.Join(h.Root, storage, criterionDir)
	h.log().WithFields(logrus.Fields{"src": src, "dst": dst}).Info("storing benchmark results")
	if err := copyTree(dst, src); err != nil {
		return errors.Wrapf(err, "storing results in snapshot %s", storage)
	}
	return nil
}

// RestoreBaseline copies the baseline's criterion output into dst, so
// that the next benchmark run compares against it. It reports whether
// a baseline existed.
func (h *History) RestoreBaseline(dst string) (bool, error) {
	src := filepath.Join(h.Root, Baseline, criterionDir)
	fi, err := os.Stat(src)
	if os.IsNotExist(err) || (err == nil && !fi.IsDir()) {
		h.log().Info("no baseline to restore")
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "restoring baseline")
	}
	h.log().WithFields(logrus.Fields{"src": src, "dst": dst}).Info("restoring baseline")
	if err := copyTree(dst, src); err != nil {
		return false, errors.Wrap(err, "restoring baseline")
	}
	return true, nil
}

// copyTree recursively copies the directory src into dst, creating
// directories as needed and overwriting existing files.
func copyTree(dst, src string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			// criterion writes no links or devices.
			return nil
		}
		return copyFile(target, path)
	})
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
