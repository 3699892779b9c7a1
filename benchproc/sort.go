// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"math"
	"sort"
	"strings"

	"github.com/zchee/benchpages/benchfmt"
	"github.com/zchee/benchpages/benchunit"
)

// SortByName sorts frags lexicographically by raw benchmark name. The
// sort is stable, so equal names keep their relative order.
func SortByName(frags []benchfmt.Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		return strings.Compare(frags[i].Name.String(), frags[j].Name.String()) < 0
	})
}

// SortByChange sorts frags by the numeric middle value of their
// intervals, most improved (most negative) first. Ties keep their input
// order. If any middle value is not a number, SortByChange returns the
// error and leaves frags unmodified.
func SortByChange(frags []benchfmt.Fragment) error {
	keys := make([]float64, len(frags))
	for i, f := range frags {
		v, err := benchunit.ParsePercent(f.Interval.Middle)
		if err != nil {
			return err
		}
		keys[i] = v
	}
	sort.Stable(&byKey{frags, keys})
	return nil
}

type byKey struct {
	frags []benchfmt.Fragment
	keys  []float64
}

func (b *byKey) Len() int { return len(b.frags) }

func (b *byKey) Less(i, j int) bool { return compareNum(b.keys[i], b.keys[j]) < 0 }

func (b *byKey) Swap(i, j int) {
	b.frags[i], b.frags[j] = b.frags[j], b.frags[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// compareNum orders numbers ascending, and puts NaNs after other values.
func compareNum(a, b float64) int {
	if a < b || (!math.IsNaN(a) && math.IsNaN(b)) {
		return -1
	}
	if a > b || (math.IsNaN(a) && !math.IsNaN(b)) {
		return 1
	}
	// The values are equal or unordered.
	return 0
}
