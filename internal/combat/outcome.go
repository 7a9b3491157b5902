// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"github.com/holomush/grimhold/internal/world"
)

// Outcome is the result of one attack roll.
type Outcome uint8

// Attack outcomes. None means no roll was made.
const (
	None Outcome = iota
	Hit
	Critical
	Block
	Glancing
	Miss
	Dodge
	Parry
	Fumble
)

var outcomeNames = [...]string{"none", "hit", "critical", "block", "glancing", "miss", "dodge", "parry", "fumble"}

func (o Outcome) String() string {
	if int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Lands reports whether the outcome deals damage.
func (o Outcome) Lands() bool {
	return o == Hit || o == Critical || o == Block || o == Glancing
}

// Flags remove outcomes from an attack roll.
type Flags uint16

// Roll flags.
const (
	NoDodge Flags = 1 << iota
	NoParry
	NoGlancing
	NoBlock
	NoCritical
	NoFumble
	// DoubleMiss doubles the chance to miss.
	DoubleMiss
)

// AttackType is the manner of a melee attack.
type AttackType uint8

// Attack types.
const (
	AttackNormal AttackType = iota
	AttackKick
	AttackBash
	AttackAmbush
)

func (t AttackType) String() string {
	switch t {
	case AttackKick:
		return "kick"
	case AttackBash:
		return "bash"
	case AttackAmbush:
		return "ambush"
	default:
		return "normal"
	}
}

// rollScale is the width of the attack roll; chances are percentages of it.
const rollScale = 10000

// Chances are the percentages behind one attack roll. Whatever they leave
// over is a hit.
type Chances struct {
	Miss     float64
	Dodge    float64
	Parry    float64
	Glancing float64
	Block    float64
	Critical float64
	Fumble   float64
}

// Cutoffs are the cumulative thresholds on [0, 10000] at which each
// outcome ends.
type Cutoffs struct {
	Miss     int
	Dodge    int
	Parry    int
	Glancing int
	Block    int
	Critical int
	Fumble   int
}

// Cutoffs stacks the chances in roll order.
func (ch Chances) Cutoffs() Cutoffs {
	var c Cutoffs
	c.Miss = int(ch.Miss * 100)
	c.Dodge = int(float64(c.Miss) + ch.Dodge*100)
	c.Parry = int(float64(c.Dodge) + ch.Parry*100)
	c.Glancing = int(float64(c.Parry) + ch.Glancing*100)
	c.Block = int(float64(c.Glancing) + ch.Block*100)
	c.Critical = int(float64(c.Block) + ch.Critical*100)
	c.Fumble = int(float64(c.Critical) + ch.Fumble*100)
	return c
}

// Outcome maps a roll on [0, 10000] to its outcome.
func (c Cutoffs) Outcome(roll int) Outcome {
	switch {
	case roll < c.Miss:
		return Miss
	case roll < c.Dodge:
		return Dodge
	case roll < c.Parry:
		return Parry
	case roll < c.Glancing:
		return Glancing
	case roll < c.Block:
		return Block
	case roll < c.Critical:
		return Critical
	case roll < c.Fumble:
		return Fumble
	}
	return Hit
}

// alwaysCritical leaves no room for anything but a critical.
var alwaysCritical = Cutoffs{Miss: -1, Dodge: -1, Parry: -1, Glancing: -1, Block: -1, Critical: rollScale, Fumble: rollScale}

// alwaysMiss is what an always-critical weapon gets against a victim it
// cannot critically hit.
var alwaysMiss = Cutoffs{Miss: rollScale + 1}

// ResolveAttack rolls attacker's attack on victim with weapon, which may be
// nil for natural attacks.
func (r *Resolver) ResolveAttack(attacker, victim *world.Creature, weapon *world.Object, flags Flags) Outcome {
	return r.resolve(attacker, victim, weapon, flags, weaponSkill(attacker))
}

func (r *Resolver) resolve(attacker, victim *world.Creature, weapon *world.Object, flags Flags, skill int) Outcome {
	cut := r.Chances(attacker, victim, weapon, flags, skill).Cutoffs()
	if weapon != nil && weapon.Has(world.ObjAlwaysCritical) && flags&NoCritical == 0 {
		cut = alwaysCritical
		if victim.Has(world.FlagNoAutoCrit) || victim.Has(world.FlagImmuneCriticals) {
			cut = alwaysMiss
		}
	}
	return cut.Outcome(r.ctx.Dice.Range(0, rollScale))
}

// Chances computes every outcome's chance for one attack. skill is the
// attacking skill; the difference to the victim's defense shifts each
// chance.
func (r *Resolver) Chances(attacker, victim *world.Creature, weapon *world.Object, flags Flags, skill int) Chances {
	diff := defenseSkill(victim) - skill

	var ch Chances
	ch.Miss = missChance(victim, diff)
	if flags&DoubleMiss != 0 {
		ch.Miss *= 2
	}
	if flags&NoDodge == 0 {
		ch.Dodge = r.dodgeChance(victim, attacker, diff)
	}
	if flags&NoParry == 0 {
		ch.Parry = r.parryChance(victim, attacker, diff)
	}
	if flags&NoGlancing == 0 {
		ch.Glancing = glancingChance(victim, attacker, diff)
	}
	if flags&NoBlock == 0 {
		ch.Block = r.blockChance(victim, diff)
	}
	if flags&NoCritical == 0 && !victim.Has(world.FlagImmuneCriticals) {
		ch.Critical = criticalChance(attacker, diff)
	}
	if flags&NoFumble == 0 {
		ch.Fumble = fumbleChance(attacker, weapon)
	}
	return ch
}

func weaponSkill(c *world.Creature) int {
	skill := c.WeaponSkill
	if c.IsPlayer() && c.IsEffected("bless") {
		skill += 10
	}
	return skill
}

func defenseSkill(c *world.Creature) int { return c.DefenseSkill }

// adjustChance converts a defense-minus-skill difference into percentage
// points for c. Monsters get more out of a large defensive edge.
func adjustChance(c *world.Creature, diff int) int {
	adj := 0.04
	if diff > 0 {
		adj = 0.1
		if c.IsMonster() && diff > 10 {
			adj = 0.4
		}
	}
	return int(float64(diff) * adj)
}

func missChance(victim *world.Creature, diff int) float64 {
	chance := 5.0
	if diff > 10 {
		chance = 7.0
	}
	chance += float64(adjustChance(victim, diff))
	if victim.IsPlayer() {
		switch victim.Class {
		case "fighter", "berserker":
			chance *= 0.7
		case "monk", "paladin", "deathknight", "werewolf":
			chance *= 0.8
		case "bard":
			chance *= 0.9
		}
	}
	return max(0, chance)
}

func (r *Resolver) canDodge(victim, attacker *world.Creature) bool {
	if attacker.IsStaff() {
		return false
	}
	if attacker.IsMonster() && attacker.Has(world.FlagUnkillable) && !victim.IsStaff() {
		return false
	}
	if victim.IsPlayer() {
		if victim.Has(world.FlagUnconscious) || victim.Has(world.FlagHidden) {
			return false
		}
		if !victim.CanSee(attacker) {
			return false
		}
	}
	return true
}

func (r *Resolver) dodgeChance(victim, attacker *world.Creature, diff int) float64 {
	if !r.canDodge(victim, attacker) {
		return 0
	}
	chance := 5.0
	if victim.IsPlayer() {
		dex := float64(victim.Dexterity.Cur())
		switch victim.Class {
		case "ranger", "assassin":
			chance = dex * .06
		case "thief":
			chance = dex * .075
		case "rogue":
			chance = dex * .08
		case "fighter", "berserker":
			chance = 1 + dex*.045
		case "bard", "paladin", "deathknight", "werewolf", "monk", "cleric":
			chance = 2 + dex*.05
		case "mage", "lich":
			chance = 1 + dex*.06
		default:
			chance = 0
		}
	}
	chance += float64(adjustChance(victim, diff))
	return max(0, chance)
}

// Weapon types that cannot riposte.
var bluntWeapons = map[string]bool{
	"":          true,
	"bare-hand": true,
	"club":      true,
	"mace":      true,
	"hammer":    true,
	"staff":     true,
	"polearm":   true,
	"whip":      true,
}

func (r *Resolver) canParry(victim, attacker *world.Creature) bool {
	if attacker.IsStaff() {
		return false
	}
	if victim.IsMonster() {
		return true
	}
	weapon, ok := r.ctx.World.Equipped(victim, world.WearWield)
	if !ok || weapon.Broken || bluntWeapons[weapon.WeaponType] {
		return false
	}
	return victim.CooldownRemaining(cooldownRiposte, r.ctx.Now()) == 0
}

func (r *Resolver) parryChance(victim, attacker *world.Creature, diff int) float64 {
	if victim.IsPlayer() && (!r.canDodge(victim, attacker) || !r.canParry(victim, attacker)) {
		return 0
	}
	chance := float64(victim.Dexterity.Cur()-80) * .03
	chance += float64(adjustChance(victim, diff))

	// Being mobbed leaves fewer openings.
	enemies := 0
	for _, m := range r.ctx.World.Occupants(victim.Room) {
		if m.IsMonster() && !m.IsPet() && r.ledgers.IsEnemy(m, victim) {
			if enemies > 1 {
				chance -= .02
			}
			enemies++
		}
	}
	return max(0, chance)
}

// glancingChance only applies to players and pets hitting monsters at or
// above their level.
func glancingChance(victim, attacker *world.Creature, diff int) float64 {
	if victim.IsPlayer() || victim.IsPet() || (attacker.IsMonster() && !attacker.IsPet()) {
		return 0
	}
	if victim.Level < attacker.Level {
		return 0
	}
	return max(0, 10+float64(diff)*0.5)
}

func (r *Resolver) blockChance(victim *world.Creature, diff int) float64 {
	if victim.IsPlayer() {
		if _, ok := r.ctx.World.Equipped(victim, world.WearShield); !ok {
			return 0
		}
	}
	chance := 5.0 + float64(adjustChance(victim, diff))
	if victim.IsMonster() {
		chance = min(5.0, chance)
	}
	return max(0, chance)
}

func criticalChance(attacker *world.Creature, diff int) float64 {
	return max(0, 5.0-float64(adjustChance(attacker, diff)))
}

// fumbleChance falls from 2% towards zero as weapon skill reaches 300.
func fumbleChance(attacker *world.Creature, weapon *world.Object) float64 {
	if weapon == nil || weapon.Has(world.ObjCursed) || attacker.IsStaff() {
		return 0
	}
	return max(0, 2.0-float64(attacker.WeaponSkill)/151.0)
}
