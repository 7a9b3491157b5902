// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import (
	"fmt"
	"strings"

	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// dropCorpse leaves a monster's belongings behind: its weapon, inventory
// and coins go into a corpse, or straight onto the floor in rooms that
// keep no corpses. The player behind the killer sees what it carried.
func (d *Distributor) dropCorpse(victim, killer *world.Creature) *world.Object {
	room, ok := d.ctx.World.Room(victim.Room)
	if !ok {
		return nil
	}

	var items []*world.Object
	if w := d.ctx.World.Unequip(victim, world.WearWield); w != nil {
		d.effects.UnequipEffect(victim, w)
		items = append(items, w)
	}
	for _, id := range victim.Inventory {
		if o, ok := d.ctx.World.Object(id); ok {
			items = append(items, o)
		}
	}
	victim.Inventory = nil
	if victim.Coins > 0 {
		coins := world.NewObject(fmt.Sprintf("%d gold coins", victim.Coins), world.ObjectMoney)
		coins.Value = victim.Coins
		victim.Coins = 0
		items = append(items, d.ctx.World.AddObject(coins))
	}
	if len(items) == 0 {
		return nil
	}

	var corpse *world.Object
	if room.Has(world.RoomNoCorpse) {
		for _, o := range items {
			d.ctx.World.PutInRoom(o, room)
		}
	} else {
		corpse = world.NewObject("the corpse of "+victim.Display(), world.ObjectContainer)
		corpse.Flags |= world.ObjCorpse
		for _, o := range items {
			corpse.Contents = append(corpse.Contents, o.ID)
		}
		d.ctx.World.PutInRoom(d.ctx.World.AddObject(corpse), room)
	}

	if player, ok := d.ctx.World.PlayerBehind(killer); ok {
		d.msg().Print(player, "%s was carrying: %s.", message.Capitalize(victim.Display()), names(items))
	}
	return corpse
}

func names(items []*world.Object) string {
	out := make([]string, len(items))
	for i, o := range items {
		out[i] = o.Name
	}
	return strings.Join(out, ", ")
}

// dropEquipment makes a dead player drop the weapons in hand. With dropAll,
// as when killed by another player past level 3, each other worn item has
// a one in five chance of dropping as well. Cursed items stay put.
func (d *Distributor) dropEquipment(c *world.Creature, dropAll bool, killer *world.Creature) []*world.Object {
	room, ok := d.ctx.World.Room(c.Room)
	if !ok {
		return nil
	}
	var dropped []*world.Object
	drop := func(loc world.WearLoc) {
		o, ok := d.ctx.World.Equipped(c, loc)
		if !ok || o.Has(world.ObjCursed) {
			return
		}
		d.effects.UnequipEffect(c, o)
		d.ctx.World.Unequip(c, loc)
		d.ctx.World.PutInRoom(o, room)
		dropped = append(dropped, o)
	}

	drop(world.WearWield)
	drop(world.WearHeld)
	if dropAll && c.Level > 3 {
		for loc := world.WearBody; loc < world.WearSlots; loc++ {
			if loc == world.WearWield || loc == world.WearHeld || c.Equipment[loc].IsZero() {
				continue
			}
			if d.ctx.Dice.Range(1, 5) > 1 {
				continue
			}
			drop(loc)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	if killer != nil {
		d.msg().Print(killer, "%s dropped: %s.", c.Name, names(dropped))
	}
	if dropAll {
		d.msg().Print(c, "You dropped your inventory where you died!")
	}
	return dropped
}
