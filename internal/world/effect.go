// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// Permanent is the duration of an effect that never wears off on its own.
const Permanent int64 = -1

// Effect is one active status effect on a creature, room or exit.
type Effect struct {
	Name string
	// Bases are the broader effects this one also counts as, copied from
	// the catalog when the effect is created.
	Bases []string
	// Duration is seconds remaining, or Permanent.
	Duration  int64
	Strength  int
	Extra     int
	LastMod   time.Time
	LastPulse time.Time
	// Applier locks the effect against overwrite and removal while set.
	Applier ulid.ULID
	// Owner is credited with any damage the effect deals.
	Owner ulid.ULID

	seq  uint64
	pass uint64
}

// IsPermanent reports whether the effect never expires.
func (e *Effect) IsPermanent() bool { return e.Duration == Permanent }

// HasApplier reports whether something holds the effect in place.
func (e *Effect) HasApplier() bool { return !e.Applier.IsZero() }

// Matches reports whether the effect is name or has name as a base.
func (e *Effect) Matches(name string) bool {
	return e.Name == name || slices.Contains(e.Bases, name)
}

// Host is anything that can carry effects.
type Host interface {
	HostID() ulid.ULID
	HostName() string
	EffectList() *EffectList
}

// EffectList is an ordered set of effects. Effects are identified by
// pointer; at most one effect per name is expected but not enforced here.
type EffectList struct {
	items []*Effect
	seq   uint64
	pass  uint64
}

// Len returns the number of effects.
func (l *EffectList) Len() int { return len(l.items) }

// All returns a copy of the effects in insertion order.
func (l *EffectList) All() []*Effect { return slices.Clone(l.items) }

// Get returns the effect named exactly name.
func (l *EffectList) Get(name string) *Effect {
	for _, e := range l.items {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Find returns the strongest effect that is name or has it as a base.
func (l *EffectList) Find(name string) *Effect {
	var best *Effect
	for _, e := range l.items {
		if e.Matches(name) && (best == nil || e.Strength > best.Strength) {
			best = e
		}
	}
	return best
}

// IsEffected reports whether any effect is name or has it as a base.
func (l *EffectList) IsEffected(name string) bool {
	return l.Find(name) != nil
}

// Insert appends e. An effect moved or copied from another list starts
// unvisited here.
func (l *EffectList) Insert(e *Effect) {
	l.seq++
	e.seq = l.seq
	e.pass = 0
	l.items = append(l.items, e)
}

// Remove deletes e and reports whether it was present.
func (l *EffectList) Remove(e *Effect) bool {
	i := slices.Index(l.items, e)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// Contains reports whether e is still in the list.
func (l *EffectList) Contains(e *Effect) bool {
	return slices.Contains(l.items, e)
}

// Clear removes every effect.
func (l *EffectList) Clear() { l.items = nil }

// Pass is one walk over an EffectList that tolerates the list changing
// underneath it. Every effect present when the pass begins is visited at
// most once; effects inserted during the pass are not visited.
type Pass struct {
	list  *EffectList
	id    uint64
	limit uint64
}

// Begin starts a new pass.
func (l *EffectList) Begin() *Pass {
	l.pass++
	return &Pass{list: l, id: l.pass, limit: l.seq}
}

// Next returns the next unvisited effect, or nil when the pass is done.
func (p *Pass) Next() *Effect {
	for _, e := range p.list.items {
		if e.pass != p.id && e.seq <= p.limit {
			e.pass = p.id
			return e
		}
	}
	return nil
}
