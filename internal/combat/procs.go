// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"log/slog"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// Proc is a monster's on-hit affliction.
type Proc uint8

// Procs.
const (
	ProcPoison Proc = iota + 1
	ProcPetrify
	ProcDisease
	ProcBlind
)

func (p Proc) String() string {
	switch p {
	case ProcPoison:
		return "poison"
	case ProcPetrify:
		return "petrify"
	case ProcDisease:
		return "disease"
	case ProcBlind:
		return "blind"
	default:
		return "unknown"
	}
}

// monsterProcs rolls the afflictions a landing blow can carry, in order.
// Blindness is rolled by the caller after reflection.
func (r *Resolver) monsterProcs(m, target *world.Creature) []Proc {
	var out []Proc
	if r.tryToPoison(m, target, false, 0) {
		out = append(out, ProcPoison)
	}
	if r.tryToStone(m, target, false, 0) {
		out = append(out, ProcPetrify)
	}
	if r.tryToDisease(m, target, false, 0) {
		out = append(out, ProcDisease)
	}
	return out
}

// SpecialAttack forces p on target, skipping the monster flag and the
// random trigger. Only the saving throw, adjusted by saveBonus, stops it.
func (r *Resolver) SpecialAttack(m, target *world.Creature, p Proc, saveBonus int) bool {
	if !r.present(m) || !r.present(target) {
		return false
	}
	switch p {
	case ProcPoison:
		return r.tryToPoison(m, target, true, saveBonus)
	case ProcPetrify:
		return r.tryToStone(m, target, true, saveBonus)
	case ProcDisease:
		return r.tryToDisease(m, target, true, saveBonus)
	case ProcBlind:
		return r.tryToBlind(m, target, true, saveBonus)
	}
	return false
}

// owner is who gets credit for an affliction a monster causes: the master
// behind a pet, otherwise the monster.
func (r *Resolver) owner(m *world.Creature) *world.Creature {
	if m.IsPet() {
		if master, ok := r.ctx.World.Master(m); ok {
			return master
		}
	}
	return m
}

func (r *Resolver) proc(p Proc, m, target *world.Creature) {
	procsTotal.WithLabelValues(p.String()).Inc()
	r.ctx.Log.Debug("combat proc",
		slog.String("proc", p.String()),
		slog.String("monster", m.ID.String()),
		slog.String("target", target.ID.String()))
}

func (r *Resolver) tryToPoison(m, target *world.Creature, forced bool, bonus int) bool {
	if !forced && !m.Has(world.FlagWillPoison) {
		return false
	}
	if target.IsPlayer() && target.IsEffected("stoneskin") {
		return false
	}
	if effect.IsPoisoned(target) {
		return false
	}
	if !forced && r.ctx.Dice.Range(1, 100) > 15 {
		return false
	}
	mName := message.Capitalize(m.Display())
	if target.IsStaff() {
		r.msg().Print(target, "%s tried to poison you!", mName)
		return false
	}
	if r.saves.Check(target, world.SavePoison, m, bonus) {
		if forced {
			r.msg().Print(target, "You avoided being poisoned!")
		}
		return false
	}

	conBonus := world.Bonus(target.Constitution.Cur())
	var duration int
	if m.PoisonDuration > 0 {
		duration = max(120, min(m.PoisonDuration-12*conBonus, 1200))
	} else {
		duration = r.ctx.Dice.Range(2, 3)*60 - 12*conBonus
	}
	strength := m.PoisonDamage
	if strength == 0 {
		strength = m.Level
	}
	owner := r.owner(m)
	if r.effects.Add(target, "poison", int64(duration), strength, effect.ByCreature(owner), false, owner.ID) == nil {
		return false
	}
	r.msg().Print(target, "%s poisons you!", mName)
	r.msg().Room(target.Room, ids(m, target), "%s poisons %s.", mName, target.Display())
	r.proc(ProcPoison, m, target)
	return true
}

func (r *Resolver) tryToStone(m, target *world.Creature, forced bool, bonus int) bool {
	if !forced && !m.Has(world.FlagCanStone) {
		return false
	}
	if !target.IsPlayer() || target.IsEffected("petrification") || target.Has(world.FlagUnconscious) {
		return false
	}
	if !forced && r.ctx.Dice.Range(1, 100) > 5 {
		return false
	}

	avoid := (target.IsEffected("resist-earth") || target.IsEffected("resist-magic")) && r.ctx.Dice.Range(1, 100) <= 50
	if target.Has(world.FlagSleeping) {
		target.Clear(world.FlagSleeping)
		r.msg().Print(target, "Terrible nightmares disturb your sleep!")
	}

	bns := 10*(target.Level-m.Level) + 3*world.Bonus(target.Constitution.Cur()) + bonus
	bns = max(0, min(bns, 75))

	mName := message.Capitalize(m.Display())
	if target.IsStaff() || avoid || r.saves.Check(target, world.SaveDeath, nil, bns) {
		r.msg().Print(target, "%s tried to petrify you!", mName)
		r.msg().Room(target.Room, ids(m, target), "%s tried to petrify %s!", mName, target.Display())
		return false
	}

	r.effects.Add(target, "petrification", effect.Computed, effect.Computed, effect.ByCreature(m), true, m.ID)
	r.msg().Print(target, "%s turned you to stone!", mName)
	r.msg().Room(target.Room, ids(m, target), "%s turned %s to stone!", mName, target.Display())
	r.ledgers.ClearEverywhere(target)
	r.ctx.World.LeaveGroup(target)
	r.proc(ProcPetrify, m, target)
	return true
}

func (r *Resolver) tryToDisease(m, target *world.Creature, forced bool, bonus int) bool {
	if !forced && !m.Has(world.FlagDiseases) {
		return false
	}
	if target.IsPlayer() && target.IsEffected("stoneskin") {
		return false
	}
	if !forced && r.ctx.Dice.Range(1, 100) > 15 {
		return false
	}
	mName := message.Capitalize(m.Display())
	if target.IsMonster() || target.IsStaff() {
		r.msg().Print(target, "%s tried to infect you!", mName)
		return false
	}
	if r.saves.Check(target, world.SavePoison, m, bonus) {
		if forced {
			r.msg().Print(target, "You narrowly avoid catching a disease!")
		}
		return false
	}

	owner := r.owner(m)
	if owner.ID != m.ID {
		r.msg().Print(owner, "%s infects %s.", mName, target.Display())
	}
	strength := max(1, target.HP.Max()/20)
	if r.effects.Add(target, "disease", world.Permanent, strength, effect.ByCreature(m), false, owner.ID) == nil {
		return false
	}
	r.msg().Print(target, "%s infects you.", mName)
	r.msg().Room(target.Room, ids(m, target, owner), "%s infects %s.", mName, target.Display())
	r.proc(ProcDisease, m, target)
	return true
}

func (r *Resolver) tryToBlind(m, target *world.Creature, forced bool, bonus int) bool {
	if !forced && !m.Has(world.FlagWillBlind) {
		return false
	}
	if target.IsEffected("blindness") {
		return false
	}
	if !forced && r.ctx.Dice.Range(1, 100) > 15 {
		return false
	}
	if r.saves.Check(target, world.SaveLuck, m, bonus) {
		if forced {
			r.msg().Print(target, "You narrowly avoided going blind!")
		}
		return false
	}

	mName := message.Capitalize(m.Display())
	if owner := r.owner(m); owner.ID != m.ID {
		r.msg().Print(owner, "%s blinds %s.", mName, target.Display())
	}
	duration := int64(180 - target.Constitution.Cur()/10)
	if r.effects.Add(target, "blindness", duration, 1, effect.ByCreature(m), true, m.ID) == nil {
		return false
	}
	r.msg().Print(target, "%s blinds your eyes.", mName)
	r.proc(ProcBlind, m, target)
	return true
}
