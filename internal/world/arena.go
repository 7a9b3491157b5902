// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"slices"

	"github.com/oklog/ulid/v2"
)

// Arena owns every live entity and resolves handles to them.
//
// The arena is not safe for concurrent use; the simulation serializes all
// access onto its tick goroutine.
type Arena struct {
	creatures map[ulid.ULID]*Creature
	order     []ulid.ULID
	rooms     map[ulid.ULID]*Room
	roomOrder []ulid.ULID
	exits     map[ulid.ULID]*Exit
	objects   map[ulid.ULID]*Object
	groups    map[ulid.ULID]*Group

	// Jail is where police take the players they capture.
	Jail ulid.ULID
	// Limbo is where dead players wake up.
	Limbo ulid.ULID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		creatures: make(map[ulid.ULID]*Creature),
		rooms:     make(map[ulid.ULID]*Room),
		exits:     make(map[ulid.ULID]*Exit),
		objects:   make(map[ulid.ULID]*Object),
		groups:    make(map[ulid.ULID]*Group),
	}
}

// AddRoom registers a room. Registering the same handle twice panics.
func (a *Arena) AddRoom(r *Room) *Room {
	if _, ok := a.rooms[r.ID]; ok {
		lifecycleViolation("register room", r.ID)
	}
	a.rooms[r.ID] = r
	a.roomOrder = append(a.roomOrder, r.ID)
	return r
}

// Room resolves a room handle.
func (a *Arena) Room(id ulid.ULID) (*Room, bool) {
	r, ok := a.rooms[id]
	return r, ok
}

// Rooms returns every room in registration order.
func (a *Arena) Rooms() []*Room {
	out := make([]*Room, 0, len(a.roomOrder))
	for _, id := range a.roomOrder {
		out = append(out, a.rooms[id])
	}
	return out
}

// Link creates an exit from one room to another.
func (a *Arena) Link(from *Room, name string, to *Room) *Exit {
	e := &Exit{ID: NewID(), Name: name, Room: from.ID, To: to.ID}
	a.exits[e.ID] = e
	from.Exits = append(from.Exits, e)
	return e
}

// Exit resolves an exit handle.
func (a *Arena) Exit(id ulid.ULID) (*Exit, bool) {
	e, ok := a.exits[id]
	return e, ok
}

// AddCreature registers c and places it in room. Registering the same
// handle twice panics.
func (a *Arena) AddCreature(c *Creature, room *Room) *Creature {
	if _, ok := a.creatures[c.ID]; ok {
		lifecycleViolation("register creature", c.ID)
	}
	a.creatures[c.ID] = c
	a.order = append(a.order, c.ID)
	if room != nil {
		c.Room = room.ID
		room.addOccupant(c.ID)
	}
	return c
}

// Creature resolves a creature handle.
func (a *Arena) Creature(id ulid.ULID) (*Creature, bool) {
	if id.IsZero() {
		return nil, false
	}
	c, ok := a.creatures[id]
	return c, ok
}

// Exists reports whether the handle resolves to a live creature.
func (a *Arena) Exists(id ulid.ULID) bool {
	_, ok := a.Creature(id)
	return ok
}

// Creatures returns every creature in registration order.
func (a *Arena) Creatures() []*Creature {
	out := make([]*Creature, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.creatures[id])
	}
	return out
}

// RemoveCreature takes c out of the world. Removing a creature that is not
// registered panics: it means teardown ran twice.
func (a *Arena) RemoveCreature(id ulid.ULID) *Creature {
	c, ok := a.creatures[id]
	if !ok {
		lifecycleViolation("remove creature", id)
	}
	if r, ok := a.rooms[c.Room]; ok {
		r.removeOccupant(id)
	}
	delete(a.creatures, id)
	a.order = slices.DeleteFunc(a.order, func(x ulid.ULID) bool { return x == id })
	c.DeathState = Finalized
	return c
}

// Move relocates c to room.
func (a *Arena) Move(c *Creature, room *Room) {
	if old, ok := a.rooms[c.Room]; ok {
		old.removeOccupant(c.ID)
	}
	c.Room = room.ID
	room.addOccupant(c.ID)
}

// Occupants resolves the creatures in a room, skipping stale handles.
func (a *Arena) Occupants(roomID ulid.ULID) []*Creature {
	r, ok := a.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Creature, 0, len(r.Occupants))
	for _, id := range r.Occupants {
		if c, ok := a.creatures[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SameRoom reports whether both creatures are in the same room.
func (a *Arena) SameRoom(x, y *Creature) bool {
	return x != nil && y != nil && !x.Room.IsZero() && x.Room == y.Room
}

// AddObject registers an object.
func (a *Arena) AddObject(o *Object) *Object {
	if _, ok := a.objects[o.ID]; ok {
		lifecycleViolation("register object", o.ID)
	}
	a.objects[o.ID] = o
	return o
}

// Object resolves an object handle.
func (a *Arena) Object(id ulid.ULID) (*Object, bool) {
	if id.IsZero() {
		return nil, false
	}
	o, ok := a.objects[id]
	return o, ok
}

// RemoveObject forgets an object.
func (a *Arena) RemoveObject(id ulid.ULID) {
	delete(a.objects, id)
}

// PutInRoom drops an object on the floor.
func (a *Arena) PutInRoom(o *Object, room *Room) {
	if _, ok := a.objects[o.ID]; !ok {
		a.objects[o.ID] = o
	}
	room.Objects = append(room.Objects, o.ID)
}

// Equip places o in c's slot. Anything already there goes to inventory.
func (a *Arena) Equip(c *Creature, o *Object, loc WearLoc) {
	if _, ok := a.objects[o.ID]; !ok {
		a.objects[o.ID] = o
	}
	if prev := c.Equipment[loc]; !prev.IsZero() {
		c.Inventory = append(c.Inventory, prev)
	}
	c.Equipment[loc] = o.ID
}

// Equipped returns the object in c's slot.
func (a *Arena) Equipped(c *Creature, loc WearLoc) (*Object, bool) {
	return a.Object(c.Equipment[loc])
}

// Unequip empties c's slot and returns what was there.
func (a *Arena) Unequip(c *Creature, loc WearLoc) *Object {
	o, ok := a.Equipped(c, loc)
	c.Equipment[loc] = ulid.ULID{}
	if !ok {
		return nil
	}
	return o
}

// SlotOf returns the slot in which c wears o.
func (a *Arena) SlotOf(c *Creature, o *Object) (WearLoc, bool) {
	for loc, id := range c.Equipment {
		if id == o.ID {
			return WearLoc(loc), true
		}
	}
	return WearNone, false
}

// Master resolves a pet's master.
func (a *Arena) Master(c *Creature) (*Creature, bool) {
	if c == nil || !c.IsPet() {
		return nil, false
	}
	return a.Creature(c.Master)
}

// PlayerBehind returns the player responsible for c: c itself if it is a
// player, its master if it is a player's pet.
func (a *Arena) PlayerBehind(c *Creature) (*Creature, bool) {
	if c == nil {
		return nil, false
	}
	if c.IsPlayer() {
		return c, true
	}
	if m, ok := a.Master(c); ok && m.IsPlayer() {
		return m, true
	}
	return nil, false
}

// AddPet binds pet to master.
func (a *Arena) AddPet(master, pet *Creature) {
	pet.Master = master.ID
	if !slices.Contains(master.Pets, pet.ID) {
		master.Pets = append(master.Pets, pet.ID)
	}
}

// ReleasePet unbinds pet from its master.
func (a *Arena) ReleasePet(pet *Creature) {
	if m, ok := a.Creature(pet.Master); ok {
		m.Pets = slices.DeleteFunc(m.Pets, func(x ulid.ULID) bool { return x == pet.ID })
	}
	pet.Master = ulid.ULID{}
}

// AddGroup registers a group and sets every member's group handle.
func (a *Arena) AddGroup(g *Group) *Group {
	if g.ID.IsZero() {
		g.ID = NewID()
	}
	a.groups[g.ID] = g
	for _, id := range g.Members {
		if c, ok := a.creatures[id]; ok {
			c.Group = g.ID
		}
	}
	return g
}

// Group resolves a group handle.
func (a *Arena) Group(id ulid.ULID) (*Group, bool) {
	if id.IsZero() {
		return nil, false
	}
	g, ok := a.groups[id]
	return g, ok
}

// LeaveGroup removes c from its group, disbanding the group when it empties.
func (a *Arena) LeaveGroup(c *Creature) {
	g, ok := a.Group(c.Group)
	c.Group = ulid.ULID{}
	if !ok {
		return
	}
	g.Members = slices.DeleteFunc(g.Members, func(x ulid.ULID) bool { return x == c.ID })
	if len(g.Members) == 0 {
		delete(a.groups, g.ID)
		return
	}
	if g.Leader == c.ID {
		g.Leader = g.Members[0]
	}
}
