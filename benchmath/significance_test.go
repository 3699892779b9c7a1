// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zchee/benchpages/benchfmt"
	"github.com/zchee/benchpages/benchunit"
)

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		lower, middle, upper string
		want                 Significance
	}{
		{"-5%", "-3%", "-1%", Improvement},
		{"1%", "3%", "5%", Regression},
		// Middle below the noise threshold.
		{"-0.5%", "0.3%", "0.9%", Neutral},
		{"1.5%", "0.99%", "2%", Neutral},
		{"-2%", "-0.999%", "-0.1%", Neutral},
		// Mixed signs.
		{"-1%", "2%", "4%", Neutral},
		{"-4%", "-2%", "1%", Neutral},
		// A bound at zero is not confidently on either side.
		{"0%", "2%", "4%", Neutral},
		{"-4%", "-2%", "0%", Neutral},
		// Exactly at the threshold counts.
		{"0.5%", "1%", "1.5%", Regression},
		{"-1.5%", "-1%", "-0.5%", Improvement},
		{"0", "0", "0", Neutral},
		{" +2.1 % ", "+3.0%", "+4.2%", Regression},
	} {
		got, err := Classify(test.lower, test.middle, test.upper)
		require.NoError(t, err)
		assert.Equal(t, test.want, got, "%s %s %s", test.lower, test.middle, test.upper)
	}
}

func TestClassifyError(t *testing.T) {
	for _, iv := range []benchfmt.Interval{
		{Lower: "x", Middle: "1%", Upper: "2%"},
		{Lower: "1%", Middle: "", Upper: "2%"},
		{Lower: "1%", Middle: "2%", Upper: "n/a"},
	} {
		_, err := DefaultThresholds.Classify(iv)
		var ne *benchunit.NumError
		assert.True(t, errors.As(err, &ne), "%v: got %v", iv, err)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	iv := benchfmt.Interval{Lower: "-5%", Middle: "-3%", Upper: "-1%"}
	first, err := DefaultThresholds.Classify(iv)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := DefaultThresholds.Classify(iv)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestThresholds(t *testing.T) {
	strict := Thresholds{Noise: 5}
	got, err := strict.Classify(benchfmt.Interval{Lower: "1%", Middle: "3%", Upper: "5%"})
	require.NoError(t, err)
	assert.Equal(t, Neutral, got)

	loose := Thresholds{Noise: 0}
	got, err = loose.Classify(benchfmt.Interval{Lower: "0.1%", Middle: "0.2%", Upper: "0.3%"})
	require.NoError(t, err)
	assert.Equal(t, Regression, got)
}

func TestSignificance(t *testing.T) {
	assert.Equal(t, "black", Neutral.Color())
	assert.Equal(t, "green", Improvement.Color())
	assert.Equal(t, "red", Regression.Color())

	assert.Equal(t, "neutral", Neutral.String())
	assert.Equal(t, "improvement", Improvement.String())
	assert.Equal(t, "regression", Regression.String())

	assert.Equal(t, -1, int(Improvement))
	assert.Equal(t, 0, int(Neutral))
	assert.Equal(t, 1, int(Regression))
}

func TestGeoMeanChange(t *testing.T) {
	_, ok := GeoMeanChange(nil)
	assert.False(t, ok)

	_, ok = GeoMeanChange([]float64{-100, -150})
	assert.False(t, ok)

	got, ok := GeoMeanChange([]float64{0, 0})
	require.True(t, ok)
	assert.InDelta(t, 0, got, 1e-9)

	// sqrt(2 * 0.5) = 1, so doubling and halving cancel.
	got, ok = GeoMeanChange([]float64{100, -50})
	require.True(t, ok)
	assert.InDelta(t, 0, got, 1e-9)

	got, ok = GeoMeanChange([]float64{10, 10, 10})
	require.True(t, ok)
	assert.InDelta(t, 10, got, 1e-9)

	got, ok = GeoMeanChange([]float64{21, -200})
	require.True(t, ok)
	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, 21, got, 1e-9)
}
