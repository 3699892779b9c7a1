// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchproc orders the fragments of a benchmark snapshot.
//
// An index shows each snapshot twice: once by name, so a reader can find
// a benchmark, and once by change, so the largest improvements and
// regressions stand out at either end. Both orders are stable, so the
// rendered index is deterministic for a given snapshot.
package benchproc
