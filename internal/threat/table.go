// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package threat tracks which creatures each monster is hostile toward and
// how much each of them has contributed to the fight.
package threat

import (
	"cmp"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entry is one attacker on a monster's ledger.
type Entry struct {
	ID ulid.ULID
	// Threat decides targeting. Healing and taunts raise it without dealing
	// damage.
	Threat int64
	// Contribution is damage credited for experience. It is read once, when
	// the entry is removed.
	Contribution int64
	LastMod      time.Time

	seq uint64
}

// Table is a single monster's ledger. The zero value is not usable; call
// NewTable.
type Table struct {
	owner   ulid.ULID
	entries map[ulid.ULID]*Entry
	total   int64
	seq     uint64
}

// NewTable creates an empty ledger owned by owner.
func NewTable(owner ulid.ULID) *Table {
	return &Table{owner: owner, entries: make(map[ulid.ULID]*Entry)}
}

// Owner returns the monster the ledger belongs to.
func (t *Table) Owner() ulid.ULID { return t.owner }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Total returns the sum of threat across every entry.
func (t *Table) Total() int64 { return t.total }

// Has reports whether id is on the ledger.
func (t *Table) Has(id ulid.ULID) bool {
	_, ok := t.entries[id]
	return ok
}

// Get returns a copy of id's entry.
func (t *Table) Get(id ulid.ULID) (Entry, bool) {
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Adjust adds threat and contribution to id's entry, creating it when
// absent, and returns the resulting threat. Adjusting the owner itself is
// refused and reports ok=false.
func (t *Table) Adjust(id ulid.ULID, threat, contribution int64, now time.Time) (int64, bool) {
	if id == t.owner || id.IsZero() {
		return 0, false
	}
	e, ok := t.entries[id]
	if !ok {
		t.seq++
		e = &Entry{ID: id, seq: t.seq}
		t.entries[id] = e
	}
	e.Threat += threat
	e.Contribution += contribution
	e.LastMod = now
	t.total += threat
	return e.Threat, true
}

// Remove deletes id's entry and returns its contribution. A second call for
// the same id returns 0.
func (t *Table) Remove(id ulid.ULID) int64 {
	e, ok := t.entries[id]
	if !ok {
		return 0
	}
	delete(t.entries, id)
	t.total -= e.Threat
	return e.Contribution
}

// Clear empties the ledger.
func (t *Table) Clear() {
	clear(t.entries)
	t.total = 0
}

// Snapshot returns the entries ordered by threat, highest first. Equal
// threat keeps the order in which attackers first appeared.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Threat, a.Threat); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// IDs returns every attacker on the ledger in snapshot order.
func (t *Table) IDs() []ulid.ULID {
	snap := t.Snapshot()
	out := make([]ulid.ULID, len(snap))
	for i, e := range snap {
		out[i] = e.ID
	}
	return out
}
