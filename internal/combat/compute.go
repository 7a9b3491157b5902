// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"strings"

	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// attackPower is a creature's raw melee strength by class.
func attackPower(c *world.Creature) int {
	str := c.Strength.Cur()
	dex := c.Dexterity.Cur()
	pie := c.Piety.Cur()
	lvl := c.Level
	switch c.Class {
	case "fighter", "berserker":
		return str*2 + lvl*8
	case "paladin", "deathknight":
		return str + pie + lvl*4
	case "bard", "werewolf":
		return str*2 + lvl*4
	case "ranger", "thief", "assassin", "rogue", "monk":
		return str + dex + lvl*4
	case "cleric", "druid":
		return str + lvl*2
	default:
		return str
	}
}

func baseDamage(c *world.Creature) int { return attackPower(c) / 15 }

func computeBlock(n int) int { return n / 2 }

// computeDamage works out what a landing blow deals before armor wear and
// reflection. shattered reports that a critical destroyed the weapon.
func (r *Resolver) computeDamage(attacker, target *world.Creature, weapon *world.Object, kind AttackType, out Outcome) (d Damage, shattered bool) {
	if attacker.IsPlayer() {
		return r.playerDamage(attacker, target, weapon, kind, out)
	}
	return r.monsterDamage(attacker, target, weapon, out), false
}

func (r *Resolver) playerDamage(attacker, target *world.Creature, weapon *world.Object, kind AttackType, out Outcome) (Damage, bool) {
	dice := r.ctx.Dice
	var d, bonus Damage
	mult := 1.0
	base := baseDamage(attacker)

	if kind == AttackKick {
		bonus.Value = base / 2
		d.Value = dice.Range(2, 6) + world.Bonus(attacker.Strength.Cur())
		weapon = nil
	} else {
		bonus.Value = base
		if weapon == nil {
			if attacker.Class == "monk" {
				lvl := attacker.Level
				d.Value = dice.Range(1, 2) + lvl/3 + dice.Range(1+lvl/4, (1+lvl)/2)
				if s := attacker.Strength.Cur(); s < 90 {
					d.Value = max(1, d.Value-(90-s)/10)
				}
			} else {
				d.Value = attacker.Damage.Roll(dice)
				bonus.Value = bonus.Value * 3 / 4
			}
		}
	}

	switch kind {
	case AttackAmbush:
		mult = 1.5
	case AttackBash:
		mult = 0.5
		if attacker.Class == "berserker" {
			mult = 0.75
		}
	}

	if weapon != nil {
		d.Add(weapon.Damage.Roll(dice) + weapon.Adjustment)
	}
	d.Value = max(1, d.Value)

	if weapon != nil && attacker.IsEffected("berserk") && (attacker.Class == "berserker" || attacker.IsStaff()) {
		bonus.Add(d.Value / 2)
	}
	if weapon != nil && attacker.Class == "monk" {
		r.msg().Print(attacker, "How can you attack well with your hands full?")
		mult /= 2
	}

	d.Value = int(float64(d.Value) * mult)
	if kind != AttackAmbush {
		bonus.Value = int(float64(bonus.Value) * mult)
	}

	shattered := false
	atk, _ := verbs(kind)
	switch out {
	case Critical:
		r.msg().Print(attacker, "CRITICAL %s!", strings.ToUpper(atk))
		r.msg().Room(attacker.Room, ids(attacker), "%s made a critical %s.", message.Capitalize(attacker.Display()), atk)
		m := dice.Range(3, 5)
		d.Value *= m
		d.Drain *= m
		bonus.Value *= m
		if weapon != nil && !attacker.IsStaff() &&
			(weapon.Has(world.ObjAlwaysCritical) ||
				(!weapon.Has(world.ObjNoBreak) && dice.Range(1, 200) <= 7-weapon.Adjustment*2)) {
			shattered = true
		}
	case Glancing:
		r.msg().Print(attacker, "You only managed to score a glancing blow!")
		r.msg().Room(attacker.Room, ids(attacker), "%s scored a glancing blow!", message.Capitalize(attacker.Display()))
		d.Value /= 2
		d.Drain /= 2
		bonus.Value /= 2
	case Block:
		d.Value = computeBlock(d.Value)
		bonus.Value = computeBlock(bonus.Value)
	}

	r.modifyDamage(target, attacker, &d, false)
	r.modifyDamage(target, attacker, &bonus, true)
	d.SetBonus(bonus)
	if !shattered {
		d.Value = max(1, d.Value)
	}
	return d, shattered
}

func (r *Resolver) monsterDamage(attacker, target *world.Creature, weapon *world.Object, out Outcome) Damage {
	dice := r.ctx.Dice
	var d, bonus Damage
	bonus.Value = baseDamage(attacker)
	if weapon != nil {
		d.Add(weapon.Damage.Roll(dice) + weapon.Adjustment)
	} else {
		d.Add(attacker.Damage.Roll(dice))
	}
	d.Add(world.Bonus(attacker.Strength.Cur()))

	switch out {
	case Critical:
		r.msg().Room(attacker.Room, nil, "%s made a critical hit.", message.Capitalize(attacker.Display()))
		m := dice.Range(2, 5)
		d.Value *= m
		bonus.Value *= m
	case Glancing, Block:
		d.Value /= 2
		bonus.Value /= 2
	}

	r.modifyDamage(target, attacker, &d, false)
	r.modifyDamage(target, attacker, &bonus, true)
	d.SetBonus(bonus)
	d.Value = max(1, d.Value)
	return d
}

// modifyDamage applies victim's defenses to a blow from enemy, which may be
// nil for environmental damage. bonus marks the bonus half of a blow, which
// is reduced like the rest but does not wake the victim or wear down its
// protective spells a second time.
func (r *Resolver) modifyDamage(victim, enemy *world.Creature, d *Damage, bonus bool) {
	if enemy != nil && !bonus && victim.Has(world.FlagSleeping) {
		r.msg().Print(enemy, "You catch %s off guard!", victim.Display())
		r.msg().Print(victim, "%s catches you off guard!", message.Capitalize(enemy.Display()))
		r.msg().Room(victim.Room, ids(enemy, victim), "%s catches %s off guard!",
			message.Capitalize(enemy.Display()), victim.Display())
		victim.Clear(world.FlagSleeping)
		d.Value *= 2
	}

	switch d.Kind {
	case Magical, NegativeEnergy:
		r.modifyMagic(victim, enemy, d, bonus)
	case Physical:
		r.modifyPhysical(victim, enemy, d, bonus)
	}

	if d.Kind != Mental && !bonus {
		r.wearMagicalArmor(victim, d.Value)
	}
	if d.Kind == Physical {
		if e := victim.Effects.Get("stoneskin"); e != nil {
			if !bonus {
				e.Strength--
				if e.Strength <= 0 {
					r.effects.RemoveEffect(victim, e, true)
				}
			}
			d.Value /= 2
		}
	}
	d.Value = max(0, d.Value)

	if d.Kind == NegativeEnergy && enemy != nil && !bonus {
		d.Drain = min(d.Value/2, max(0, victim.HP.Cur()))
	}
}

func (r *Resolver) modifyMagic(victim, enemy *world.Creature, d *Damage, bonus bool) {
	if enemy != nil && enemy.ID != victim.ID {
		if e := victim.Effects.Get("reflect-magic"); e != nil && e.Strength >= r.ctx.Dice.Range(1, 100) {
			d.Value /= 2
			d.Reflected = d.Value
		}
		if r.saves.Check(victim, world.SaveSpell, enemy, 0) {
			d.Value /= 2
			if !bonus {
				r.msg().Print(victim, "You avoided full damage!")
				r.msg().Print(enemy, "%s avoided full damage.", message.Capitalize(victim.Display()))
			}
		}
	}
	if d.Realm != NoRealm && victim.IsEffected("resist-"+d.Realm.String()) {
		d.Value /= 2
	}
	d.Value = resistMagic(victim, d.Value)
}

// resistMagic takes 50 to 100 percent off magical damage for a creature
// under resist-magic, scaling with piety and intelligence.
func resistMagic(c *world.Creature, dmg int) int {
	if !c.IsEffected("resist-magic") {
		return dmg
	}
	dmg = max(1, dmg)
	resist := float64((c.Piety.Cur()/10 + c.Intelligence.Cur()/10) * 2)
	resist = max(50, min(resist, 100))
	dmg -= int(resist / 100 * float64(dmg))
	return max(0, dmg)
}

func (r *Resolver) modifyPhysical(victim, enemy *world.Creature, d *Damage, bonus bool) {
	if enemy == nil {
		return
	}
	if !bonus && enemy.ID != victim.ID {
		if e := victim.Effects.Get("fire-shield"); e != nil {
			back := Damage{Value: e.Strength, Kind: Magical, Realm: Fire}
			r.modifyDamage(enemy, victim, &back, false)
			d.Shield = FireShield
			d.PhysicalReflected = back.Value
			d.DoubleReflected = back.Reflected
		}
	}
	if victim.IsEffected("berserk") {
		div := 7
		if victim.Class == "berserker" {
			div = 5
		}
		d.Value = max(1, d.Value-d.Value/div)
	}
	if enemy.IsMonster() && enemy.IsEffected("berserk") {
		d.Value = d.Value * 3 / 2
	}
	d.Value -= int(float64(d.Value) * damageReduction(enemy, victim))
}

// damageReduction is the share of a physical blow victim's armor absorbs,
// never more than three quarters.
func damageReduction(attacker, victim *world.Creature) float64 {
	armor := float64(max(0, victim.ArmorClass))
	if armor == 0 {
		return 0
	}
	lvl := float64(max(1, attacker.Level))
	if attacker.IsPlayer() && attacker.Level <= 1 {
		lvl = 2
	}
	return min(0.75, armor/(armor+43.24+18.38*lvl))
}

// wearMagicalArmor drains the armor spell by the damage taken.
func (r *Resolver) wearMagicalArmor(victim *world.Creature, dmg int) {
	e := victim.Effects.Get("armor")
	if e == nil {
		return
	}
	left := e.Strength - dmg
	if left > 0 {
		e.Strength = left
		return
	}
	r.effects.RemoveEffect(victim, e, false)
	r.msg().Print(victim, "Your magical armor has been dispelled.")
	r.msg().Room(victim.Room, ids(victim), "%s's magical armor has been dispelled.", message.Capitalize(victim.Display()))
}

// reflect hurts attacker with whatever target's shields sent back and
// reports whether that left attacker at or below 0 HP. Death is settled by
// the caller.
func (r *Resolver) reflect(d Damage, attacker, target *world.Creature) bool {
	dmg := d.Returned()
	if dmg <= 0 {
		return false
	}
	shield := "fire"
	if d.Reflected != 0 {
		shield = "magic"
	}
	r.msg().Print(target, "Your shield of %s reflects %d damage.", shield, dmg)
	r.msg().Print(attacker, "%s's shield of %s flares up and hits you for %d damage.",
		message.Capitalize(target.Display()), shield, dmg)
	r.msg().Room(target.Room, ids(attacker, target), "%s's shield of %s flares up and hits %s.",
		message.Capitalize(target.Display()), shield, attacker.Display())

	if d.DoubleReflected != 0 {
		r.reflect(Damage{Reflected: d.DoubleReflected}, target, attacker)
	}
	if target.IsPlayer() && attacker.IsMonster() {
		r.ledgers.AdjustThreat(attacker, target, int64(dmg), 1)
	}
	reflectedTotal.Add(float64(dmg))
	attacker.HP.Decrease(dmg)
	return attacker.HP.Cur() <= 0
}
