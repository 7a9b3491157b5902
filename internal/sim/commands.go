// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/combat"
	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/world"
)

// The methods below are the command layer's entry points. They must run on
// the simulation goroutine, either from within Do or from a test driving
// Tick by hand.

// Creature resolves a creature handle.
func (e *Engine) Creature(id ulid.ULID) (*world.Creature, error) {
	c, ok := e.ctx.World.Creature(id)
	if !ok {
		return nil, ErrNotFound("creature", id.String())
	}
	return c, nil
}

// Host resolves a handle to a creature, room or exit.
func (e *Engine) Host(id ulid.ULID) (world.Host, error) {
	if c, ok := e.ctx.World.Creature(id); ok {
		return c, nil
	}
	if r, ok := e.ctx.World.Room(id); ok {
		return r, nil
	}
	if x, ok := e.ctx.World.Exit(id); ok {
		return x, nil
	}
	return nil, ErrNotFound("host", id.String())
}

func (e *Engine) pair(a, b ulid.ULID) (*world.Creature, *world.Creature, error) {
	x, err := e.Creature(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := e.Creature(b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// ParseAttackType maps a command word to an attack type.
func ParseAttackType(s string) (combat.AttackType, error) {
	switch strings.ToLower(s) {
	case "", "attack", "kill", "normal":
		return combat.AttackNormal, nil
	case "kick":
		return combat.AttackKick, nil
	case "bash":
		return combat.AttackBash, nil
	case "ambush":
		return combat.AttackAmbush, nil
	default:
		return 0, ErrInvalidArgs("attack", "attack|kick|bash|ambush <target>")
	}
}

// Attack makes one melee attack.
func (e *Engine) Attack(attacker, target ulid.ULID, kind combat.AttackType) (combat.Exchange, error) {
	a, t, err := e.pair(attacker, target)
	if err != nil {
		return combat.Exchange{}, err
	}
	x := e.combat.Attack(a, t, kind)
	if x.Aborted {
		return x, ErrAborted("attack")
	}
	return x, nil
}

// Cast hits target with an offensive spell.
func (e *Engine) Cast(caster, target ulid.ULID, sp combat.Spell) (combat.Exchange, error) {
	if sp.Amount < 0 {
		return combat.Exchange{}, ErrInvalidArgs("cast", "cast <spell> <target>")
	}
	c, t, err := e.pair(caster, target)
	if err != nil {
		return combat.Exchange{}, err
	}
	x := e.combat.SpellAttack(c, t, sp)
	if x.Aborted {
		return x, ErrAborted("cast")
	}
	return x, nil
}

// Save makes c roll a saving throw. opponent may be the zero handle.
func (e *Engine) Save(id ulid.ULID, category string, opponent ulid.ULID, bonus int) (save.Result, error) {
	c, err := e.Creature(id)
	if err != nil {
		return save.Result{}, err
	}
	cat, ok := world.ParseSaveCategory(category)
	if !ok {
		return save.Result{}, ErrInvalidArgs("save", "save poison|death|breath|mental|spell|luck")
	}
	var opp *world.Creature
	if !opponent.IsZero() {
		if opp, err = e.Creature(opponent); err != nil {
			return save.Result{}, err
		}
	}
	return e.saves.Roll(c, cat, opp, bonus), nil
}

// AddEffect puts a catalog effect on a host. applier may be the zero handle.
func (e *Engine) AddEffect(host ulid.ULID, name string, duration int64, strength int, applier ulid.ULID) (*world.Effect, error) {
	h, err := e.Host(host)
	if err != nil {
		return nil, err
	}
	if _, ok := e.effects.Catalog().Lookup(name); !ok {
		return nil, ErrEffectUnknown(name)
	}
	var by effect.Applier
	if !applier.IsZero() {
		c, err := e.Creature(applier)
		if err != nil {
			return nil, err
		}
		by = effect.ByCreature(c)
	}
	fx := e.effects.Add(h, name, duration, strength, by, true, world.NoID)
	if fx == nil {
		return nil, ErrNotApplied("add", name, h)
	}
	return fx, nil
}

// RemoveEffect takes a named effect off a host. Staff may remove permanent
// effects.
func (e *Engine) RemoveEffect(host ulid.ULID, name string, allowPermanent bool) error {
	h, err := e.Host(host)
	if err != nil {
		return err
	}
	if _, ok := e.effects.Catalog().Lookup(name); !ok {
		return ErrEffectUnknown(name)
	}
	if !e.effects.Remove(h, name, true, allowPermanent, world.NoID) {
		return ErrNotApplied("remove", name, h)
	}
	return nil
}

// Dispel removes every effect on a host whose name matches pattern.
func (e *Engine) Dispel(host ulid.ULID, pattern string, allowPermanent bool) ([]string, error) {
	h, err := e.Host(host)
	if err != nil {
		return nil, err
	}
	return e.effects.Dispel(h, pattern, allowPermanent)
}

// AddEnemy puts target on monster m's threat ledger.
func (e *Engine) AddEnemy(monster, target ulid.ULID) (bool, error) {
	m, t, err := e.pair(monster, target)
	if err != nil {
		return false, err
	}
	if !m.IsMonster() {
		return false, ErrInvalidArgs("enemy", "enemy <monster> <target>")
	}
	return e.ledgers.AddEnemy(m, t, true), nil
}

// Target points c at target. The zero handle clears c's target.
func (e *Engine) Target(id, target ulid.ULID) error {
	c, err := e.Creature(id)
	if err != nil {
		return err
	}
	if target.IsZero() {
		e.ledgers.ClearTarget(c, true)
		return nil
	}
	t, err := e.Creature(target)
	if err != nil {
		return err
	}
	e.ledgers.AddTarget(c, t)
	return nil
}

// DistributeExperience pays out a monster's ledger without killing it.
// Staff use it to settle credit by hand.
func (e *Engine) DistributeExperience(victim, killer ulid.ULID) ([]death.Award, error) {
	v, err := e.Creature(victim)
	if err != nil {
		return nil, err
	}
	var k *world.Creature
	if !killer.IsZero() {
		if k, err = e.Creature(killer); err != nil {
			return nil, err
		}
	}
	return e.deaths.DistributeExperience(v, k), nil
}
