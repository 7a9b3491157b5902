// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package dice

import "sync"

// Scripted is a deterministic Source that replays a fixed sequence of raw
// values. Each value is reduced modulo n. When the sequence runs out it
// repeats the last value; an empty sequence always yields 0.
type Scripted struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewScripted creates a Scripted source.
func NewScripted(values ...int) *Scripted {
	return &Scripted{values: values}
}

// Push appends values to the sequence.
func (s *Scripted) Push(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}

// Intn implements Source.
func (s *Scripted) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	i := s.next
	if i >= len(s.values) {
		i = len(s.values) - 1
	} else {
		s.next++
	}
	v := s.values[i] % n
	if v < 0 {
		v += n
	}
	return v
}

// Fixed is a Source that always returns v modulo n.
type Fixed int

// Intn implements Source.
func (f Fixed) Intn(n int) int {
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v
}
