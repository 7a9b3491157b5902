// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package threat

import (
	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// Petrified creatures are never added to a ledger.
const petrification = "petrification"

// Ledgers holds the ledger of every monster that has one. Ledgers are kept
// beside the world rather than inside creatures and are never persisted.
type Ledgers struct {
	ctx    *game.Context
	tables map[ulid.ULID]*Table
}

// New creates an empty set of ledgers.
func New(ctx *game.Context) *Ledgers {
	return &Ledgers{ctx: ctx, tables: make(map[ulid.ULID]*Table)}
}

// Table returns m's ledger, creating it on first use.
func (l *Ledgers) Table(m *world.Creature) *Table {
	t, ok := l.tables[m.ID]
	if !ok {
		t = NewTable(m.ID)
		l.tables[m.ID] = t
	}
	return t
}

// Lookup returns the ledger for a monster handle without creating one.
func (l *Ledgers) Lookup(id ulid.ULID) (*Table, bool) {
	t, ok := l.tables[id]
	return t, ok
}

// AddEnemy puts target on m's ledger with no threat. It refuses a target
// that is already there, a helpless player, and a pet's own master. When
// the target is a pet its master is registered as well. announce prints
// the monster's aggro line and the attack notice.
func (l *Ledgers) AddEnemy(m, target *world.Creature, announce bool) bool {
	if m == nil || target == nil || m.ID == target.ID || l.IsEnemy(m, target) {
		return false
	}
	if target.IsPlayer() {
		if target.IsEffected(petrification) || target.Has(world.FlagUnconscious) {
			return false
		}
		if m.IsPet() && m.Master == target.ID {
			return false
		}
	}

	if announce {
		if m.AggroString != "" {
			l.ctx.Msg.Room(m.Room, nil, "%s says, \"%s.\"", message.Capitalize(m.Display()), m.AggroString)
		}
		l.ctx.Msg.Print(target, "%s attacks you.", message.Capitalize(m.Display()))
		l.ctx.Msg.Room(m.Room, []ulid.ULID{target.ID}, "%s attacks %s.", message.Capitalize(m.Display()), target.Display())
	}

	// The pet keeps its own entry beside its master's; its contribution is
	// paid to the master when experience is distributed.
	if target.IsPet() {
		if master, ok := l.ctx.World.Master(target); ok {
			l.AddEnemy(m, master, false)
		}
	}

	l.AdjustThreat(m, target, 0, 1)
	return true
}

// AdjustThreat credits target on m's ledger: threat rises by
// amount×factor and contribution by amount. A factor of 0 records
// contribution alone. The resulting threat is returned.
func (l *Ledgers) AdjustThreat(m, target *world.Creature, amount int64, factor float64) int64 {
	if m == nil || target == nil {
		return 0
	}
	threat, ok := l.Table(m).Adjust(target.ID, int64(float64(amount)*factor), amount, l.ctx.Now())
	if !ok {
		l.ctx.Log.Warn("refused self threat",
			"monster", m.ID.String(),
			"name", m.Name)
		return 0
	}
	target.AddThreatened(m.ID)
	m.AddTargetedBy(target.ID)
	l.CheckTarget(target, m)
	return threat
}

// AdjustContribution records damage credit without changing threat.
func (l *Ledgers) AdjustContribution(m, target *world.Creature, amount int64) int64 {
	return l.AdjustThreat(m, target, amount, 0)
}

// IsEnemy reports whether target is on m's ledger.
func (l *Ledgers) IsEnemy(m, target *world.Creature) bool {
	if m == nil || target == nil {
		return false
	}
	t, ok := l.tables[m.ID]
	return ok && t.Has(target.ID)
}

// HasEnemy reports whether m's ledger has any entry.
func (l *Ledgers) HasEnemy(m *world.Creature) bool {
	t, ok := l.tables[m.ID]
	return ok && t.Len() > 0
}

// ThreatOf returns target's threat on m's ledger.
func (l *Ledgers) ThreatOf(m, target *world.Creature) int64 {
	t, ok := l.tables[m.ID]
	if !ok {
		return 0
	}
	e, _ := t.Get(target.ID)
	return e.Threat
}

// TotalThreat returns the threat summed over m's ledger.
func (l *Ledgers) TotalThreat(m *world.Creature) int64 {
	t, ok := l.tables[m.ID]
	if !ok {
		return 0
	}
	return t.Total()
}

// GetTarget returns the live creature with the most threat on m's ledger.
// With sameRoom it must also share m's room and be visible to m. Handles
// that no longer resolve are pruned as they are met.
func (l *Ledgers) GetTarget(m *world.Creature, sameRoom bool) *world.Creature {
	t, ok := l.tables[m.ID]
	if !ok || t.Len() == 0 {
		return nil
	}
	for _, id := range t.IDs() {
		c, ok := l.ctx.World.Creature(id)
		if !ok {
			t.Remove(id)
			continue
		}
		if sameRoom && (!l.ctx.World.SameRoom(m, c) || !m.CanSee(c)) {
			continue
		}
		return c
	}
	return nil
}

// ClearEnemy removes target from m's ledger and returns its contribution.
func (l *Ledgers) ClearEnemy(m, target *world.Creature) int64 {
	if m == nil || target == nil {
		return 0
	}
	return l.RemoveThreat(m, target.ID)
}

// RemoveThreat removes a handle from m's ledger and returns its
// contribution. The handle need not resolve.
func (l *Ledgers) RemoveThreat(m *world.Creature, id ulid.ULID) int64 {
	t, ok := l.tables[m.ID]
	if !ok || !t.Has(id) {
		return 0
	}
	contribution := t.Remove(id)
	if c, ok := l.ctx.World.Creature(id); ok {
		c.RemoveThreatened(m.ID)
	}
	m.RemoveTargetedBy(id)
	return contribution
}

// Clear empties m's ledger.
func (l *Ledgers) Clear(m *world.Creature) {
	t, ok := l.tables[m.ID]
	if !ok {
		return
	}
	for _, id := range t.IDs() {
		l.RemoveThreat(m, id)
	}
}

// Drop discards a monster's ledger entirely, as when it leaves the world.
func (l *Ledgers) Drop(id ulid.ULID) {
	t, ok := l.tables[id]
	if !ok {
		return
	}
	for _, target := range t.IDs() {
		if c, ok := l.ctx.World.Creature(target); ok {
			c.RemoveThreatened(id)
		}
	}
	delete(l.tables, id)
}

// ClearEverywhere takes c off every ledger it is on and returns how many
// ledgers it was removed from.
func (l *Ledgers) ClearEverywhere(c *world.Creature) int {
	n := 0
	for _, id := range append([]ulid.ULID(nil), c.Threatened...) {
		if m, ok := l.ctx.World.Creature(id); ok {
			if t, ok := l.tables[id]; ok && t.Has(c.ID) {
				l.RemoveThreat(m, c.ID)
				n++
			}
			continue
		}
		if t, ok := l.tables[id]; ok && t.Has(c.ID) {
			t.Remove(c.ID)
			n++
		}
	}
	c.Threatened = nil
	return n
}

// ClearInRoom takes c off the ledger of every monster in its room.
func (l *Ledgers) ClearInRoom(c *world.Creature) int {
	n := 0
	for _, m := range l.ctx.World.Occupants(c.Room) {
		if m.IsMonster() && l.IsEnemy(m, c) {
			l.ClearEnemy(m, c)
			n++
		}
	}
	return n
}

// DoHeal heals patient by amount and returns the amount healed. Healing a
// player or pet that monsters are fighting angers those monsters at the
// healer, with threat of healed×factor. A negative factor means 1.
func (l *Ledgers) DoHeal(healer, patient *world.Creature, amount int, factor float64) int {
	if factor < 0 {
		factor = 1
	}
	healed := patient.HP.Increase(amount)
	if !patient.IsPlayer() && !patient.IsPet() {
		return healed
	}
	for _, m := range l.ctx.World.Occupants(healer.Room) {
		if !m.IsMonster() || !l.IsEnemy(m, patient) {
			continue
		}
		if !l.IsEnemy(m, healer) {
			l.AddEnemy(m, healer, false)
			l.ctx.Msg.Print(healer, "%s gets angry at you!", message.Capitalize(m.Display()))
		}
		l.AdjustThreat(m, healer, int64(healed), factor)
	}
	return healed
}

// InCombat reports whether any monster has c on its ledger.
func (l *Ledgers) InCombat(c *world.Creature) bool {
	for _, id := range c.Threatened {
		if t, ok := l.tables[id]; ok && t.Has(c.ID) {
			return true
		}
	}
	return false
}
