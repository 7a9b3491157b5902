// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package dice provides the randomness source used by the simulation and a
// parser for dice notation such as "2d6+3".
package dice

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness provider for every probabilistic decision.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n must be > 0.
	Intn(n int) int
}

// lockedSource guards a PCG generator with a mutex.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a seeded Source. The same seed yields the same sequence.
func NewSource(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Roller draws ranged values from a Source.
type Roller struct {
	src Source
}

// NewRoller wraps src. A nil src falls back to a time-independent seed of 1.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = NewSource(1)
	}
	return &Roller{src: src}
}

// Range returns a value in [lo, hi]. When hi < lo, lo is returned.
func (r *Roller) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.src.Intn(hi-lo+1)
}

// Percent returns a value in [1, 100].
func (r *Roller) Percent() int {
	return r.Range(1, 100)
}

// Chance reports whether a percent roll lands at or under pct.
func (r *Roller) Chance(pct int) bool {
	return r.Percent() <= pct
}

// Float returns a value in [0, 1).
func (r *Roller) Float() float64 {
	return float64(r.src.Intn(1_000_000)) / 1_000_000
}
