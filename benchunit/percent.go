// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit converts between the percent strings found in
// benchmark reports and numeric values.
package benchunit

import (
	"fmt"
	"strconv"
	"strings"
)

// A NumError records a failed conversion of a percent string.
type NumError struct {
	Value string
	Err   error
}

func (e *NumError) Error() string {
	return fmt.Sprintf("parsing percent %q: %v", e.Value, e.Err)
}

func (e *NumError) Unwrap() error {
	return e.Err
}

// Tidy strips surrounding space and a trailing percent sign from x,
// leaving the bare number, e.g. " -3.42% " becomes "-3.42".
func Tidy(x string) string {
	x = strings.TrimSpace(x)
	x = strings.TrimSuffix(x, "%")
	return strings.TrimSpace(x)
}

// ParsePercent parses a percent string such as "-3.42%" or "+0.5 %"
// into its value in percentage points. A bare number without a percent
// sign is accepted, so the neutral value "0" parses as 0.
func ParsePercent(x string) (float64, error) {
	v, err := strconv.ParseFloat(Tidy(x), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, &NumError{x, err}
	}
	return v, nil
}

// FormatPercent formats v percentage points with an explicit sign and
// two decimals, e.g. "+1.25%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
