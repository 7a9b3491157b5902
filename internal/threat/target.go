// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package threat

import (
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// CheckTarget makes a player without a target start targeting toTarget,
// unless the player has turned automatic targeting off.
func (l *Ledgers) CheckTarget(c, toTarget *world.Creature) {
	if c.IsPlayer() && !c.Has(world.FlagNoAutoTarget) && c.Target.IsZero() {
		l.AddTarget(c, toTarget)
	}
}

// AddTarget points c at toTarget, replacing any previous target.
func (l *Ledgers) AddTarget(c, toTarget *world.Creature) *world.Creature {
	if toTarget == nil {
		return nil
	}
	if c.Target == toTarget.ID {
		return toTarget
	}
	l.ClearTarget(c, true)

	l.ctx.Msg.Print(toTarget, "%s is now targeting you!", message.Capitalize(c.Display()))
	toTarget.AddTargetedBy(c.ID)
	c.Target = toTarget.ID
	l.ctx.Msg.Print(c, "You are now targeting %s.", toTarget.Display())
	return toTarget
}

// ClearTarget drops c's target. With clearList the old target also forgets
// that c was targeting it.
func (l *Ledgers) ClearTarget(c *world.Creature, clearList bool) {
	if c.Target.IsZero() {
		return
	}
	old, ok := l.ctx.World.Creature(c.Target)
	c.Target = world.NoID
	if !ok {
		return
	}
	l.ctx.Msg.Print(c, "You are no longer targeting %s!", old.Display())
	if clearList {
		l.ctx.Msg.Print(old, "%s is no longer targeting you!", message.Capitalize(c.Display()))
		old.RemoveTargetedBy(c.ID)
	}
}

// Assist makes c target whatever ally is targeting.
func (l *Ledgers) Assist(c, ally *world.Creature) bool {
	if ally == nil || !l.ctx.World.SameRoom(c, ally) {
		l.ctx.Msg.Print(c, "You don't see that person here.")
		return false
	}
	l.ctx.Msg.Print(c, "You assist %s!", ally.Display())
	l.ctx.Msg.Print(ally, "%s just assisted you!", message.Capitalize(c.Display()))
	l.ClearTarget(c, true)
	target, ok := l.ctx.World.Creature(ally.Target)
	if !ok {
		return true
	}
	l.AddTarget(c, target)
	return true
}

// ForgetTargeting clears every targeting link to and from c, as when c
// leaves the world.
func (l *Ledgers) ForgetTargeting(c *world.Creature) {
	l.ClearTarget(c, true)
	for _, id := range append(c.TargetedBy[:0:0], c.TargetedBy...) {
		if other, ok := l.ctx.World.Creature(id); ok && other.Target == c.ID {
			other.Target = world.NoID
		}
	}
	c.TargetedBy = nil
}

// HasAttackableTarget reports whether c's target is someone else, in the
// same room and visible.
func (l *Ledgers) HasAttackableTarget(c *world.Creature) bool {
	target, ok := l.ctx.World.Creature(c.Target)
	return ok && target.ID != c.ID && l.ctx.World.SameRoom(c, target) && c.CanSee(target)
}
