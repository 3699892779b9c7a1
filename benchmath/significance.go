// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath decides whether a benchmark's change interval is a
// significant regression, a significant improvement, or noise.
//
// The confidence interval itself is computed upstream by the benchmark
// tool. This package only interprets it: an interval is significant when
// its middle value moves by at least a noise threshold and both bounds
// lie on the same side of zero. Lower values are better, so a
// confidently negative interval is an improvement.
package benchmath

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/zchee/benchpages/benchfmt"
	"github.com/zchee/benchpages/benchunit"
)

// Significance classifies a change interval. Its integer value is the
// sort key used when ranking changes: improvements first.
type Significance int

const (
	Improvement Significance = -1
	Neutral     Significance = 0
	Regression  Significance = 1
)

func (s Significance) String() string {
	switch s {
	case Improvement:
		return "improvement"
	case Regression:
		return "regression"
	}
	return "neutral"
}

// Color returns the color used to render s.
func (s Significance) Color() string {
	switch s {
	case Improvement:
		return "green"
	case Regression:
		return "red"
	}
	return "black"
}

// Thresholds configures classification.
type Thresholds struct {
	// Noise is the smallest absolute change of the middle value,
	// in percentage points, that can be significant.
	Noise float64
}

// DefaultThresholds contains reasonable default thresholds.
var DefaultThresholds = Thresholds{
	Noise: 1.0,
}

// Classify classifies iv. A bound that is not a number is an error:
// degraded pages already report "0", so anything else is corrupt input.
func (t *Thresholds) Classify(iv benchfmt.Interval) (Significance, error) {
	lower, err := benchunit.ParsePercent(iv.Lower)
	if err != nil {
		return Neutral, err
	}
	middle, err := benchunit.ParsePercent(iv.Middle)
	if err != nil {
		return Neutral, err
	}
	upper, err := benchunit.ParsePercent(iv.Upper)
	if err != nil {
		return Neutral, err
	}
	return t.classify(lower, middle, upper), nil
}

func (t *Thresholds) classify(lower, middle, upper float64) Significance {
	if abs(middle) < t.Noise {
		return Neutral
	}
	if lower < 0 && upper < 0 {
		return Improvement
	}
	if lower > 0 && upper > 0 {
		return Regression
	}
	// The interval touches or straddles zero.
	return Neutral
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Classify classifies the interval (lower, middle, upper) using
// DefaultThresholds.
func Classify(lower, middle, upper string) (Significance, error) {
	return DefaultThresholds.Classify(benchfmt.Interval{Lower: lower, Middle: middle, Upper: upper})
}

// GeoMeanChange summarizes a set of percent changes as the percent
// change of their geometric mean ratio. Changes of -100% or below have
// no ratio and are skipped. ok is false if nothing remains.
func GeoMeanChange(changes []float64) (change float64, ok bool) {
	ratios := make([]float64, 0, len(changes))
	for _, c := range changes {
		if r := 1 + c/100; r > 0 {
			ratios = append(ratios, r)
		}
	}
	if len(ratios) == 0 {
		return 0, false
	}
	return (stats.GeoMean(ratios) - 1) * 100, true
}
