// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// builtins are the strategies a catalog entry can name.
func builtins() map[string]Strategy {
	return map[string]Strategy{
		"":               Base{},
		"beneficial":     beneficial{},
		"gravity":        gravity{},
		"resist":         resist{},
		"stat-mod":       statMod{},
		"stat-raise":     statChange{amount: 30},
		"stat-lower":     statChange{amount: -30},
		"disable":        disable{},
		"regeneration":   regeneration{},
		"poison":         affliction{cause: game.CausePoison},
		"disease":        affliction{cause: game.CauseDisease},
		"death-sickness": deathSickness{},
		"wall":           wall{},
	}
}

// spellBonus is the extra duration a caster's intelligence buys.
func spellBonus(caster *world.Creature) int64 {
	return int64(max(60, min(3000, (caster.Intelligence.Cur()-140)*18)))
}

func casterOf(c *Call) *world.Creature {
	return c.Applier.Creature
}

type beneficial struct{ Base }

func (beneficial) Compute(c *Call) bool {
	duration := int64(1200)
	if caster := casterOf(c); caster != nil {
		duration += spellBonus(caster)
		if caster.Class == "cleric" || caster.Class == "paladin" {
			duration += 60 * int64(caster.Level)
		}
	}
	c.Effect.Duration = duration
	return true
}

type gravity struct{ Base }

func (gravity) Compute(c *Call) bool {
	duration := int64(800)
	if caster := casterOf(c); caster != nil {
		duration = 2400 + spellBonus(caster)
	}
	c.Effect.Duration = duration
	return true
}

type resist struct{ Base }

func (resist) Compute(c *Call) bool {
	c.reg.RemoveOpposite(c.Host, c.Def)
	duration := int64(1200)
	if caster := casterOf(c); caster != nil {
		duration = max(300, 1200+int64(caster.Intelligence.Cur()-140)*18)
	}
	c.Effect.Duration = duration
	return true
}

// statMod adds the effect's strength to a stat while the effect lasts.
type statMod struct{ Base }

func (statMod) Apply(c *Call) bool {
	cr := c.Creature()
	if cr == nil {
		return true
	}
	if s := cr.StatByName(c.Def.Stat); s != nil {
		s.AddModifier(c.Def.Name, c.Effect.Strength)
	}
	return true
}

func (statMod) UnApply(c *Call) bool {
	cr := c.Creature()
	if cr == nil {
		return true
	}
	if s := cr.StatByName(c.Def.Stat); s != nil {
		s.RemoveModifier(c.Def.Name)
	}
	return true
}

// statChange is a stat modifier that cancels its opposite instead of
// landing when the opposite is present.
type statChange struct {
	statMod
	amount int
}

func (s statChange) Compute(c *Call) bool {
	if c.reg.RemoveOpposite(c.Host, c.Def) {
		return false
	}
	duration := int64(60)
	if casterOf(c) != nil {
		duration = 180
	}
	c.Effect.Strength = s.amount
	c.Effect.Duration = duration
	return true
}

type disable struct{ Base }

func (disable) Compute(c *Call) bool {
	duration := c.Def.Duration
	cr := c.Creature()
	switch {
	case duration == world.Permanent:
	case c.Def.HasBase("hold-person") && casterOf(c) == nil:
		duration = int64(c.Ctx.Dice.Range(int(duration)*3/4, int(duration)))
	case c.Def.HasBase("blindness") && cr != nil:
		duration -= int64(cr.Constitution.Cur() / 10)
	}
	c.Effect.Duration = duration
	return true
}

// regeneration closes the host's wounds every pulse.
type regeneration struct{ Base }

func (regeneration) Compute(c *Call) bool {
	level := 0
	if cr := c.Creature(); cr != nil {
		level = cr.Level
	}
	c.Effect.Duration = 1800 + int64(level)*30
	return true
}

func (regeneration) Pulse(c *Call) bool {
	if cr := c.Creature(); cr != nil {
		cr.HP.Increase(max(1, c.Effect.Strength))
	}
	return true
}

// affliction is poison or disease: damage every pulse, softened by high
// constitution.
type affliction struct {
	Base
	cause game.Cause
}

func (a affliction) Pulse(c *Call) bool {
	cr := c.Creature()
	if cr == nil {
		return true
	}
	wake(c, cr, "Terrible nightmares disturb your sleep!")
	if a.cause == game.CausePoison {
		c.Ctx.Msg.Print(cr, "Poison courses through your veins.")
		c.Ctx.Msg.ActRoom(cr, "Poison courses through *LOW-ACTOR*'s veins.", message.Parties{Actor: cr})
	} else {
		c.Ctx.Msg.Print(cr, "You feel nauseous.\nFever grips your mind.")
		c.Ctx.Msg.ActRoom(cr, "Fever grips *LOW-ACTOR*.", message.Parties{Actor: cr})
	}

	dmg := c.Effect.Strength + c.Ctx.Dice.Range(1, 3)
	if con := cr.Constitution.Cur(); con > 120 {
		dmg = int(float64(dmg) * (1 - float64(con-120)/(680-120)))
	}
	dmg = max(1, dmg)
	cr.HP.Decrease(dmg)
	cr.Statistics.DamageTaken += int64(dmg)
	c.Harm(a.cause)

	if a.cause == game.CausePoison && cr.IsMonster() {
		if poisoner, ok := c.Ctx.World.Creature(c.Effect.Owner); ok && poisoner.IsPlayer() && c.reg.ledgers != nil {
			c.reg.ledgers.AdjustContribution(cr, poisoner, int64(dmg/2))
		}
	}

	if cr.HP.Cur() < 1 {
		if a.cause == game.CausePoison {
			c.Ctx.Msg.ActRoom(cr, "*ACTOR* drops dead from poison.", message.Parties{Actor: cr})
		} else {
			c.Ctx.Msg.ActRoom(cr, "*ACTOR* dies from disease.", message.Parties{Actor: cr})
		}
		return false
	}
	return true
}

type deathSickness struct{ Base }

func (deathSickness) Compute(c *Call) bool {
	level := 1
	if cr := c.Creature(); cr != nil {
		level = max(1, cr.Level)
	}
	c.Effect.Duration = int64(level) * 30
	c.Effect.Strength = 100
	return true
}

func (deathSickness) Pulse(c *Call) bool {
	cr := c.Creature()
	if cr == nil {
		return true
	}
	strength := c.Effect.Strength
	if !cr.IsEffected("petrification") && c.Ctx.Dice.Range(1, 100) < strength/2 {
		wake(c, cr, "A strong urge to vomit wakes you!")
		c.Ctx.Msg.Print(cr, "Your death-sickness causes you to vomit. EWWW.")
		cr.Clear(world.FlagHidden)
		c.Ctx.Msg.ActRoom(cr, "*ACTOR* vomits all over the ground.", message.Parties{Actor: cr})
	}

	next := 0
	if strength != 0 && c.Effect.Duration > 0 {
		next = strength - int(float64(strength)/float64(c.Effect.Duration)*20)
	}
	switch {
	case strength > 75 && next <= 75:
		c.Ctx.Msg.Print(cr, "You feel a little better.")
		c.Ctx.Msg.ActRoom(cr, "*ACTOR* looks a little better.", message.Parties{Actor: cr})
	case strength > 50 && next <= 50:
		c.Ctx.Msg.Print(cr, "You feel better.")
		c.Ctx.Msg.ActRoom(cr, "*ACTOR* looks better.", message.Parties{Actor: cr})
	case strength > 25 && next <= 25:
		c.Ctx.Msg.Print(cr, "You are nearly recovered.")
		c.Ctx.Msg.ActRoom(cr, "*ACTOR* looks nearly recovered.", message.Parties{Actor: cr})
	}
	c.Effect.Strength = min(max(next, 0), 100)
	return true
}

// wall counts down Extra while a permanent wall is temporarily down and
// raises it again when the count reaches zero.
type wall struct{ Base }

func (wall) Pulse(c *Call) bool {
	if c.Effect.Extra <= 0 {
		return true
	}
	c.Effect.Extra--
	if c.Effect.Extra == 0 {
		c.reg.echo(c.Host, c.Def.Messages.RoomAdd, nil)
	}
	return true
}

func wake(c *Call, cr *world.Creature, text string) {
	if !cr.Has(world.FlagSleeping) {
		return
	}
	cr.Clear(world.FlagSleeping)
	c.Ctx.Msg.Print(cr, "%s", text)
}
