// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// DamageArmor wears down a random piece of c's armor after a hit and
// returns it, or nil when nothing was touched. One hit in ten misses the
// armor entirely, rings never wear, and defense skill can turn the
// scratch aside.
func (r *Resolver) DamageArmor(c *world.Creature) *world.Object {
	if r.ctx.Dice.Range(1, 10) == 1 {
		return nil
	}
	var worn []world.WearLoc
	for loc := world.WearBody; loc < world.WearSlots; loc++ {
		if loc == world.WearWield || loc == world.WearHeld {
			continue
		}
		if !c.Equipment[loc].IsZero() {
			worn = append(worn, loc)
		}
	}
	if len(worn) == 0 {
		return nil
	}
	loc := worn[r.ctx.Dice.Range(0, len(worn)-1)]
	armor, ok := r.ctx.World.Equipped(c, loc)
	if !ok || loc.IsFinger() || armor.Kind != world.ObjectArmor {
		return nil
	}
	if r.ctx.Dice.Range(1, 100) > c.DefenseSkill/4 {
		r.msg().Print(c, "Your %s just got a little more scratched.", armor.Name)
		armor.DecShots()
	}
	r.checkArmor(c, armor)
	return armor
}

// checkArmor takes armor off c once it has no shots left.
func (r *Resolver) checkArmor(c *world.Creature, armor *world.Object) {
	if armor.Shots >= 1 || armor.Has(world.ObjNoBreak) {
		return
	}
	armor.Broken = true
	r.msg().Print(c, "Your %s fell apart.", armor.Name)
	r.msg().Room(c.Room, ids(c), "%s's %s fell apart.", message.Capitalize(c.Display()), armor.Name)
	r.toInventory(c, armor)
	brokenTotal.WithLabelValues("armor").Inc()
}

// breakWeapon takes a worn-out weapon out of c's hand.
func (r *Resolver) breakWeapon(c *world.Creature, weapon *world.Object) {
	r.msg().Print(c, "Your %s is broken.", weapon.Name)
	r.msg().Room(c.Room, ids(c), "%s broke %s %s.", message.Capitalize(c.Display()), c.HisHer(), weapon.Name)
	r.toInventory(c, weapon)
	brokenTotal.WithLabelValues("weapon").Inc()
}

// shatter destroys a weapon that broke on a critical hit.
func (r *Resolver) shatter(c *world.Creature, weapon *world.Object) {
	r.msg().Print(c, "Your %s shatters.", weapon.Name)
	r.msg().Room(c.Room, ids(c), "%s %s shattered.", message.Capitalize(c.HisHer()), weapon.Name)
	weapon.Broken = true
	if loc, ok := r.ctx.World.SlotOf(c, weapon); ok {
		r.effects.UnequipEffect(c, weapon)
		r.ctx.World.Unequip(c, loc)
	}
	r.ctx.World.RemoveObject(weapon.ID)
	brokenTotal.WithLabelValues("shattered").Inc()
}
