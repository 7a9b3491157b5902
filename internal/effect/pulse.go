// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/world"
)

// Tick charges e for the whole seconds elapsed since it was last modified
// and reports whether it has run out. Permanent effects never run out.
// Fractions of a second carry over to the next tick.
func (r *Registry) Tick(e *world.Effect, now time.Time) bool {
	elapsed := int64(now.Sub(e.LastMod) / time.Second)
	if elapsed <= 0 {
		return !e.IsPermanent() && e.Duration == 0
	}
	e.LastMod = e.LastMod.Add(time.Duration(elapsed) * time.Second)
	if e.IsPermanent() {
		return false
	}
	e.Duration -= min(elapsed, max(e.Duration, 0))
	if o, ok := r.ctx.World.Object(e.Applier); ok {
		o.EffectDuration = e.Duration
	}
	return e.Duration == 0
}

func pulseDue(def *Definition, e *world.Effect, now time.Time) bool {
	return def.Pulsed && now.Sub(e.LastPulse) >= time.Duration(def.PulseDelay)*time.Second
}

// harm is the last damaging hook of a pass.
type harm struct {
	cause game.Cause
	owner ulid.ULID
	hit   bool
}

// pulseHost ticks every effect on host once and pulses those that are
// due. Effects inserted by a hook during the pass wait for the next one,
// and effects a hook removes are skipped.
func (r *Registry) pulseHost(host world.Host, now time.Time) harm {
	var h harm
	list := host.EffectList()
	pass := list.Begin()
	for e := pass.Next(); e != nil; e = pass.Next() {
		def, ok := r.catalog.Lookup(e.Name)
		if !ok {
			r.ctx.Log.Warn("dropping effect missing from catalog", "effect", e.Name, "host", host.HostName())
			list.Remove(e)
			continue
		}
		if r.Tick(e, now) {
			r.remove(host, e, true, reasonExpired, true)
			continue
		}
		if !pulseDue(def, e, now) {
			continue
		}
		e.LastPulse = now
		call := r.call(host, e, def, r.applierOf(e))
		keep := r.strategy(def).Pulse(call)
		if call.harmed {
			h = harm{cause: call.cause, owner: e.Owner, hit: true}
		}
		if !keep {
			r.remove(host, e, false, reasonPulse, true)
		}
	}
	return h
}

// PulseCreature ages and pulses every effect on c, then checks its hit
// points once. It reports whether c died.
func (r *Registry) PulseCreature(c *world.Creature, now time.Time) bool {
	if c.IsDead() {
		return false
	}
	h := r.pulseHost(c, now)
	if c.IsDead() || c.HP.Cur() >= 1 {
		return false
	}
	cause := game.CauseEffect
	if h.hit {
		cause = h.cause
	}
	killer, _ := r.ctx.World.Creature(h.owner)
	if r.ctx.Reaper == nil {
		return false
	}
	return r.ctx.Reaper.CheckDie(c, killer, cause)
}

// PulseCreatures pulses every creature in the world and returns how many
// died.
func (r *Registry) PulseCreatures(now time.Time) int {
	deaths := 0
	for _, c := range r.ctx.World.Creatures() {
		if !r.ctx.World.Exists(c.ID) {
			continue
		}
		if r.PulseCreature(c, now) {
			deaths++
		}
	}
	return deaths
}

// PulseRoom ages and pulses the effects on room and its exits.
func (r *Registry) PulseRoom(room *world.Room, now time.Time) {
	r.pulseHost(room, now)
	for _, x := range slices.Clone(room.Exits) {
		r.pulseHost(x, now)
	}
}

// PulseRooms pulses every indexed room and drops rooms that no longer have
// effects.
func (r *Registry) PulseRooms(now time.Time) {
	for _, id := range slices.Clone(r.rooms) {
		room, ok := r.ctx.World.Room(id)
		if ok {
			r.PulseRoom(room, now)
		}
		if !ok || !hasPlaceEffects(room) {
			r.rooms = slices.DeleteFunc(r.rooms, func(x ulid.ULID) bool { return x == id })
		}
	}
}

func hasPlaceEffects(room *world.Room) bool {
	if room.Effects.Len() > 0 {
		return true
	}
	for _, x := range room.Exits {
		if x.Effects.Len() > 0 {
			return true
		}
	}
	return false
}

type wallKind struct {
	effect string
	hit    string
	death  string
	cause  game.Cause
}

var walls = []wallKind{
	{"wall-of-fire", "The wall of fire burns you for %d damage.", "You are burned to death!", game.CauseFire},
	{"wall-of-thorns", "The wall of thorns stabs you for %d damage.", "You are stabbed to death!", game.CauseThorns},
}

// ExitDamage hurts target for passing through the walls standing on an
// exit. It reports whether target died. A wall never hurts the creature
// that raised it or that creature's pets, and a wall that is down does
// nothing.
func (r *Registry) ExitDamage(exit *world.Exit, target *world.Creature) bool {
	for _, w := range walls {
		e := exit.Effects.Get(w.effect)
		if e == nil || e.Extra > 0 {
			continue
		}
		owner, _ := r.ctx.World.Creature(e.Owner)
		if owner != nil && (owner.ID == target.ID || target.Master == owner.ID) {
			continue
		}
		dmg := max(1, r.ctx.Dice.Range(e.Strength/2, e.Strength*3/2))
		if owner != nil && owner.IsPlayer() && target.IsMonster() && r.ledgers != nil {
			r.ledgers.AddEnemy(target, owner, false)
			r.ledgers.AdjustThreat(target, owner, int64(dmg), 1.0)
		}
		r.ctx.Msg.Print(target, w.hit, dmg)
		target.HP.Decrease(dmg)
		target.Statistics.DamageTaken += int64(dmg)
		if target.HP.Cur() < 1 {
			r.ctx.Msg.Print(target, w.death)
			if r.ctx.Reaper != nil {
				r.ctx.Reaper.CheckDie(target, owner, w.cause)
			}
			return true
		}
	}
	return false
}
