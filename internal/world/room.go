// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"slices"

	"github.com/oklog/ulid/v2"
)

// RoomFlag is a room property bit.
type RoomFlag uint8

// Room flags.
const (
	RoomNoCorpse RoomFlag = 1 << iota
	RoomSafe
	RoomJail
)

// Room is a location holding creatures, objects and exits.
type Room struct {
	ID        ulid.ULID
	Name      string
	Flags     RoomFlag
	Occupants []ulid.ULID
	Objects   []ulid.ULID
	Exits     []*Exit
	Effects   EffectList
}

// NewRoom creates a room.
func NewRoom(name string) *Room {
	return &Room{ID: NewID(), Name: name}
}

// HostID implements Host.
func (r *Room) HostID() ulid.ULID { return r.ID }

// HostName implements Host.
func (r *Room) HostName() string { return r.Name }

// EffectList implements Host.
func (r *Room) EffectList() *EffectList { return &r.Effects }

// Has reports whether every bit in f is set.
func (r *Room) Has(f RoomFlag) bool { return r.Flags&f == f }

// Exit returns the exit with the given name.
func (r *Room) Exit(name string) *Exit {
	for _, e := range r.Exits {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (r *Room) addOccupant(id ulid.ULID) {
	if !slices.Contains(r.Occupants, id) {
		r.Occupants = append(r.Occupants, id)
	}
}

func (r *Room) removeOccupant(id ulid.ULID) {
	r.Occupants = slices.DeleteFunc(r.Occupants, func(x ulid.ULID) bool { return x == id })
}

// Exit links a room to another. Exits carry their own effects, such as a
// wall of fire.
type Exit struct {
	ID      ulid.ULID
	Name    string
	Room    ulid.ULID
	To      ulid.ULID
	Effects EffectList
}

// HostID implements Host.
func (e *Exit) HostID() ulid.ULID { return e.ID }

// HostName implements Host.
func (e *Exit) HostName() string { return e.Name }

// EffectList implements Host.
func (e *Exit) EffectList() *EffectList { return &e.Effects }

// Group is a party of players and their pets sharing experience.
type Group struct {
	ID              ulid.ULID
	Leader          ulid.ULID
	Members         []ulid.ULID
	SplitExperience bool
}

// Has reports whether id is a member.
func (g *Group) Has(id ulid.ULID) bool { return slices.Contains(g.Members, id) }
