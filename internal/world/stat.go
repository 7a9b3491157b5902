// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import "sort"

// Stat is a numeric attribute with a current value, a maximum, the value it
// was created with, and named additive modifiers applied to the maximum.
type Stat struct {
	cur     int
	max     int
	initial int
	mods    map[string]int
}

// NewStat creates a stat whose current, maximum and initial values are v.
func NewStat(v int) Stat {
	return Stat{cur: v, max: v, initial: v}
}

// Cur returns the current value.
func (s *Stat) Cur() int { return s.cur }

// Max returns the maximum including modifiers.
func (s *Stat) Max() int { return s.max }

// Initial returns the value the stat was created with.
func (s *Stat) Initial() int { return s.initial }

// SetCur sets the current value, capped at the maximum. Values below zero
// are allowed; hit points go negative when a creature is overkilled.
func (s *Stat) SetCur(v int) {
	s.cur = min(v, s.max)
}

// SetMax sets the unmodified maximum and re-caps the current value.
func (s *Stat) SetMax(v int) {
	s.max = v + s.modTotal()
	s.cur = min(s.cur, s.max)
}

// Decrease subtracts n from the current value and returns how much of it
// was actually absorbed, which is never more than what was left.
func (s *Stat) Decrease(n int) int {
	if n <= 0 {
		return 0
	}
	applied := min(max(s.cur, 0), n)
	s.cur -= n
	return applied
}

// Increase adds up to n without exceeding the maximum and returns the
// amount actually added.
func (s *Stat) Increase(n int) int {
	if n <= 0 || s.cur >= s.max {
		return 0
	}
	added := min(n, s.max-s.cur)
	s.cur += added
	return added
}

// Restore sets the current value to the maximum.
func (s *Stat) Restore() { s.cur = s.max }

// AddModifier adds or replaces a named modifier. The difference is applied
// to both the maximum and the current value.
func (s *Stat) AddModifier(name string, amount int) {
	if s.mods == nil {
		s.mods = make(map[string]int)
	}
	delta := amount - s.mods[name]
	s.mods[name] = amount
	s.max += delta
	s.cur += delta
	s.cur = min(s.cur, s.max)
}

// RemoveModifier drops a named modifier. The current value is capped at
// the new maximum but not otherwise reduced.
func (s *Stat) RemoveModifier(name string) bool {
	amount, ok := s.mods[name]
	if !ok {
		return false
	}
	delete(s.mods, name)
	s.max -= amount
	s.cur = min(s.cur, s.max)
	return true
}

// Modifier returns a named modifier.
func (s *Stat) Modifier(name string) (int, bool) {
	v, ok := s.mods[name]
	return v, ok
}

// Modifiers returns modifier names in sorted order.
func (s *Stat) Modifiers() []string {
	names := make([]string, 0, len(s.mods))
	for n := range s.mods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Stat) modTotal() int {
	total := 0
	for _, v := range s.mods {
		total += v
	}
	return total
}

// statBonus maps a stat value, in tens, to its bonus.
var statBonus = [...]int{
	-4, -4, -4, // 0-2
	-3, -3, // 3-4
	-2, -2, // 5-6
	-1,                 // 7
	0, 0, 0, 0, 0, 0, // 8-13
	1, 1, 1, // 14-16
	2, 2, 2, // 17-19
	3, 3, 3, // 20-22
	4, 4, 4, 4, // 23-26
	5, 5, 5, 5, // 27-30
	6, 6, 6, 6, 6, // 31-35
	7, 7, 7, 7, // 36-39
}

// Bonus returns the bonus granted by a stat value.
func Bonus(v int) int {
	i := max(v, 0) / 10
	if i >= len(statBonus) {
		i = len(statBonus) - 1
	}
	return statBonus[i]
}
