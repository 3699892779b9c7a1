// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchpub

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultAlphabet is the set of characters branch suffixes are
	// drawn from.
	DefaultAlphabet = "0123456789"

	// DefaultLength is the default suffix length.
	DefaultLength = 10

	// TempPrefix prefixes the throwaway branch a benchmark run is
	// done on.
	TempPrefix = "_branch_"
)

// A NameGenerator produces random branch name suffixes.
//
// A suffix is Length characters sampled without replacement from
// Alphabet, so there are P(k, n) = k!/(k-n)! distinct suffixes for an
// alphabet of k characters. With the defaults that is 10! = 3,628,800.
// Given m branches already carrying suffixes from the same generator
// configuration, a new suffix collides with probability at most
// m/Space(). Names are not guaranteed unique.
//
// A NameGenerator not made by NewNameGenerator is seeded from the
// current time on first use.
//
// A NameGenerator is not safe for concurrent use.
type NameGenerator struct {
	Alphabet string
	Length   int

	rng *rand.Rand
}

// NewNameGenerator returns a generator with the default alphabet and
// length whose output is determined by seed.
func NewNameGenerator(seed int64) *NameGenerator {
	return &NameGenerator{
		Alphabet: DefaultAlphabet,
		Length:   DefaultLength,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Suffix returns a new random suffix.
func (g *NameGenerator) Suffix() (string, error) {
	chars := []rune(g.Alphabet)
	if g.Length < 0 || g.Length > len(chars) {
		return "", fmt.Errorf("suffix length %d out of range for an alphabet of %d characters", g.Length, len(chars))
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// Partial Fisher-Yates: the first Length positions are a
	// uniform sample without replacement.
	for i := 0; i < g.Length; i++ {
		j := i + g.rng.Intn(len(chars)-i)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars[:g.Length]), nil
}

// Name returns prefix followed by a new random suffix.
func (g *NameGenerator) Name(prefix string) (string, error) {
	suffix, err := g.Suffix()
	if err != nil {
		return "", err
	}
	return prefix + suffix, nil
}

// Space returns the number of distinct suffixes g can produce, or +Inf
// if that overflows a float64.
func (g *NameGenerator) Space() float64 {
	k := len([]rune(g.Alphabet))
	if g.Length < 0 || g.Length > k {
		return 0
	}
	space := 1.0
	for i := 0; i < g.Length; i++ {
		space *= float64(k - i)
		if math.IsInf(space, 1) {
			break
		}
	}
	return space
}
