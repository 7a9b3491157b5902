// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package save resolves saving throws: a creature's chance to resist poison,
// death magic, breath weapons, mental attacks, spells and bad luck.
package save

import (
	"fmt"
	"time"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/world"
)

// Chances are expressed out of this many.
const scale = 10000

// Bounds on the final chance: a save can always fail and always succeed.
const (
	minChance = 1
	maxChance = 9900
)

// Critical roll thresholds.
const (
	critSuccess = 2000
	critFailure = 8500
)

// NoRaise passed as a bonus prevents the save from improving.
const NoRaise = -1

// raise is how much a save's stored chance improves on a successful raise.
const raise = 2

// armorWeights scales each worn piece's adjustment for breath saves.
var armorWeights = map[world.WearLoc]int{
	world.WearBody:  50,
	world.WearArms:  20,
	world.WearLegs:  25,
	world.WearNeck:  5,
	world.WearBelt:  5,
	world.WearHands: 5,
	world.WearHead:  15,
	world.WearFeet:  10,
	world.WearFace:  5,
}

// Result describes one saving throw in full.
type Result struct {
	Category world.SaveCategory
	// Base is the stored chance scaled to 10000.
	Base     int
	Chance   int
	Ring     int
	Held     int
	Natural  bool
	Opposed  bool
	Roll     int
	Critical bool
	UpChance int
	UpRoll   int
	// NoGain is why the save could not improve, if it could not.
	NoGain string
	Raised bool
	Saved  bool
	// Cooldown is the time left on the gain timer when the throw was made.
	Cooldown time.Duration
}

// Engine resolves saving throws against the simulation context.
type Engine struct {
	ctx *game.Context
}

// New creates an Engine.
func New(ctx *game.Context) *Engine {
	return &Engine{ctx: ctx}
}

// Check rolls a saving throw and reports whether c saved.
//
// opp is the creature forcing the save, if any; bonus is a flat adjustment
// in whole percentage points. Passing NoRaise as bonus prevents the save
// from improving on a critical roll.
func (e *Engine) Check(c *world.Creature, cat world.SaveCategory, opp *world.Creature, bonus int) bool {
	return e.Roll(c, cat, opp, bonus).Saved
}

// Chance computes the modified chance out of 10000 without rolling.
func (e *Engine) Chance(c *world.Creature, cat world.SaveCategory, opp *world.Creature, bonus int) Result {
	r := Result{Category: cat, Natural: true}
	r.Opposed = opp != nil && opp.ID != c.ID

	if entry := c.Saves.Entry(cat); entry != nil {
		r.Base = 100 * entry.Chance
	}
	chance := r.Base

	// Only the best positive ring counts.
	for loc := world.WearFinger1; loc <= world.WearFinger8; loc++ {
		if ring, ok := e.ctx.World.Equipped(c, loc); ok && ring.Adjustment > r.Ring {
			r.Ring = ring.Adjustment
		}
	}
	chance += r.Ring * 500

	if held, ok := e.ctx.World.Equipped(c, world.WearHeld); ok &&
		held.Has(world.ObjLucky) && held.Kind != world.ObjectWeapon && held.Adjustment > 0 {
		r.Held = held.Adjustment
		chance += r.Held * 500
	}

	switch cat {
	case world.SavePoison:
		chance += c.Constitution.Cur()
		if c.HP.Cur() <= c.HP.Max()/3 {
			chance /= 2
		}
		if c.IsPlayer() && c.IsEffected("berserk") {
			chance += 1500
		}
	case world.SaveDeath:
		// Death traps and death magic pass their difficulty in bonus.
	case world.SaveBreath:
		for loc, weight := range armorWeights {
			if piece, ok := e.ctx.World.Equipped(c, loc); ok {
				chance += weight * piece.Adjustment
			}
		}
		if shield, ok := e.ctx.World.Equipped(c, world.WearShield); ok {
			if shield.Has(world.ObjSmallShield) {
				chance += 10 * shield.Adjustment
			} else {
				chance += 40 * shield.Adjustment
			}
		}
		chance += 2 * c.Dexterity.Cur()
	case world.SaveMental:
		wisdom := (c.Intelligence.Cur() + c.Piety.Cur()) / 2
		if r.Opposed {
			chance -= 5*((opp.Intelligence.Cur()+opp.Piety.Cur())/2) - wisdom
		} else {
			chance += wisdom
		}
	case world.SaveSpell:
		if r.Opposed {
			chance -= 2 * (opp.Intelligence.Cur() - c.Intelligence.Cur())
		} else {
			chance += 2 * c.Intelligence.Cur()
		}
		if c.IsPlayer() && c.IsEffected("resist-magic") {
			r.Natural = false
			chance += 2500
		}
	case world.SaveLuck:
		r.Base = 100 * c.Saves.Luck()
		chance += r.Base
	}

	if bonus != 0 {
		chance += 100 * bonus
	}
	r.Chance = max(minChance, min(maxChance, chance))
	return r
}

// Roll makes a saving throw and returns every detail of it. A critical roll
// may permanently raise the stored chance; players and staff with the save
// debug flag see a trace of the computation.
func (e *Engine) Roll(c *world.Creature, cat world.SaveCategory, opp *world.Creature, bonus int) Result {
	r := e.Chance(c, cat, opp, bonus)
	now := e.ctx.Now()
	r.Cooldown = c.CooldownRemaining(world.CooldownSaves, now)

	r.Roll = e.ctx.Dice.Range(1, scale)
	entry := c.Saves.Entry(cat)
	gained := 0
	if entry != nil {
		gained = entry.Gained
	}

	if (r.Roll >= critFailure || r.Roll <= critSuccess) && gained < world.MaxSaveGains {
		r.Critical = true
		r.UpChance, r.NoGain = e.upChance(c, cat, opp, bonus, r.Cooldown)
		r.UpRoll = e.ctx.Dice.Percent()
		if r.UpRoll <= r.UpChance && entry != nil {
			r.Raised = e.raise(c, cat, entry, opp, r, now)
		}
	}

	r.Saved = r.Roll <= r.Chance && r.Natural
	if c.IsPlayer() {
		c.Statistics.SavesAttempted++
		if r.Saved {
			c.Statistics.SavesMade++
		}
	}
	recordSave(cat, r.Saved, r.Raised)

	if showTrace(c) {
		e.trace(c, r)
	}
	return r
}

func (e *Engine) upChance(c *world.Creature, cat world.SaveCategory, opp *world.Creature, bonus int, cooldown time.Duration) (int, string) {
	entry := c.Saves.Entry(cat)
	switch {
	case bonus == NoRaise:
		return 0, "circumstance"
	case cat == world.SaveLuck || entry == nil:
		return 0, "luck never raises"
	case c.Level < e.ctx.Settings.SaveGainMinLevel:
		return 0, "level too low"
	case opp != nil && opp.IsPlayer() && cat == world.SaveSpell:
		return 0, "player spell"
	case entry.Chance >= 99:
		return 0, "maximum"
	case cooldown > 0:
		return 0, "timer"
	}
	return max(20, 99-entry.Chance), ""
}

// raise improves the stored chance. Spell saves opposed by a player never
// improve and unnatural spell saves never do either.
func (e *Engine) raise(c *world.Creature, cat world.SaveCategory, entry *world.SaveEntry, opp *world.Creature, r Result, now time.Time) bool {
	if c.IsPlayer() {
		interval := e.ctx.Settings.SaveGainCooldown
		if c.IsStaff() {
			interval = 0
		}
		c.StartCooldown(world.CooldownSaves, now, interval)
	}

	var msg string
	switch cat {
	case world.SavePoison:
		if r.Opposed && opp.IsPlayer() {
			return false
		}
		msg = "Your resistance against poison and disease has increased."
	case world.SaveDeath:
		msg = "Your chances of avoiding deadly traps and death magic have increased."
	case world.SaveBreath:
		msg = "Your ability to avoid breath weapons and explosions has increased."
	case world.SaveMental:
		msg = "You are better able to avoid mental attacks."
	case world.SaveSpell:
		if !r.Natural || (r.Opposed && !opp.IsMonster()) {
			return false
		}
		if r.Opposed {
			msg = "Your ability to avoid or withstand spells and magical attacks has increased."
		} else {
			msg = "Your resistance against spells and magical attacks has increased."
		}
	default:
		return false
	}

	if !showTrace(c) {
		if r.Roll >= critFailure {
			e.ctx.Msg.Print(c, "Critical save failure!!")
		} else {
			e.ctx.Msg.Print(c, "Critical save success!!")
		}
	}
	e.ctx.Msg.Print(c, msg)
	e.ctx.Log.Info("save raised",
		"creature", c.Name,
		"level", c.Level,
		"save", cat.Abbrev(),
		"up_chance", r.UpChance,
		"up_roll", r.UpRoll,
		"previous", entry.Chance,
		"gains", entry.Gained+1)

	entry.Chance += raise
	entry.Gained++
	if entry.Gained == world.MaxSaveGains {
		e.ctx.Msg.Print(c, "You must level up in order to raise this save further.")
	}
	return true
}

func showTrace(c *world.Creature) bool {
	return c.IsStaff() || (c.IsPlayer() && c.Has(world.FlagSaveDebug))
}

func (e *Engine) trace(c *world.Creature, r Result) {
	p := e.ctx.Msg.Pager(c)
	if r.Ring > 0 {
		p.Add("Highest worn ring: +%d", r.Ring)
	}
	if r.Held > 0 {
		p.Add("Lucky held item: +%d", r.Held)
	}
	if r.Cooldown > 0 {
		p.Add("Save gain chance delay: %s.", pluralSeconds(int(r.Cooldown.Seconds())))
	}
	p.Add("Save[%s] chance unmodified: %d", r.Category.Abbrev(), r.Base)
	p.Add("Save[%s] chance modified: %d", r.Category.Abbrev(), r.Chance)
	verdict := "[FAIL]"
	if r.Saved {
		verdict = "[SUCCESS]"
	}
	if !r.Natural {
		verdict += " (resist-magic)"
	}
	p.Add("Save[%s] roll (1d10000): %d %s", r.Category.Abbrev(), r.Roll, verdict)
	if r.Critical {
		if r.Roll >= critFailure {
			p.Add("Critical save failure!! (%d >= %d)", r.Roll, critFailure)
		} else {
			p.Add("Critical save success!! (%d <= %d)", r.Roll, critSuccess)
		}
		p.Add("Save upchance: %d, upchance roll (1d100): %d", r.UpChance, r.UpRoll)
		if r.NoGain != "" {
			p.Add("No gain: %s", r.NoGain)
		}
	}
	if entry := c.Saves.Entry(r.Category); entry != nil {
		if r.Raised {
			p.Add("Save[%s] gained so far: %d", r.Category.Abbrev(), entry.Gained)
		}
		if entry.Gained >= world.MaxSaveGains && !r.Raised {
			p.Add("No gains for save[%s] remaining this level.", r.Category.Abbrev())
		}
	}
	p.Flush()
}

func pluralSeconds(n int) string {
	if n == 1 {
		return "1 more second"
	}
	return fmt.Sprintf("%d more seconds", n)
}

// LevelChanged resets every save's gain counter.
func LevelChanged(c *world.Creature) {
	c.Saves.ResetGained()
}

// DeathPenalty gives each stored save a one in four chance of losing a
// point. Chances never drop below 1.
func (e *Engine) DeathPenalty(c *world.Creature) {
	for i := range c.Saves {
		if e.ctx.Dice.Percent() <= 25 {
			c.Saves[i].Chance = max(1, c.Saves[i].Chance-1)
			c.Saves[i].Gained = max(0, c.Saves[i].Gained-1)
		}
	}
}
