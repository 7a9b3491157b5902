// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/dice"
)

// WearLoc is an equipment slot.
type WearLoc int

// Equipment slots.
const (
	WearNone WearLoc = iota
	WearBody
	WearArms
	WearLegs
	WearNeck
	WearBelt
	WearHands
	WearHead
	WearFeet
	WearFinger1
	WearFinger2
	WearFinger3
	WearFinger4
	WearFinger5
	WearFinger6
	WearFinger7
	WearFinger8
	WearHeld
	WearShield
	WearFace
	WearWield

	WearSlots
)

var wearNames = [...]string{
	"none", "body", "arms", "legs", "neck", "belt", "hands", "head", "feet",
	"finger", "finger", "finger", "finger", "finger", "finger", "finger", "finger",
	"held", "shield", "face", "wield",
}

func (w WearLoc) String() string {
	if w < 0 || w >= WearSlots {
		return "unknown"
	}
	return wearNames[w]
}

// IsFinger reports whether w is a ring slot.
func (w WearLoc) IsFinger() bool { return w >= WearFinger1 && w <= WearFinger8 }

// ObjectKind classifies objects.
type ObjectKind uint8

// Object kinds.
const (
	ObjectMisc ObjectKind = iota
	ObjectWeapon
	ObjectArmor
	ObjectRing
	ObjectContainer
	ObjectMoney
)

// ObjectFlag is an object property bit.
type ObjectFlag uint16

// Object flags.
const (
	ObjLucky ObjectFlag = 1 << iota
	ObjCursed
	ObjAlwaysCritical
	ObjSmallShield
	ObjNoBreak
	ObjCorpse
)

// Object is an item in a room, an inventory or an equipment slot.
type Object struct {
	ID         ulid.ULID
	Name       string
	Kind       ObjectKind
	Wear       WearLoc
	Flags      ObjectFlag
	Damage     dice.Expr
	Adjustment int
	Armor      int
	Shots      int
	MaxShots   int
	Value      int64
	WeaponType string

	// Effect is granted to the wearer while the object is equipped; the
	// object becomes the effect's applier.
	Effect         string
	EffectDuration int64
	EffectStrength int

	Contents []ulid.ULID
	// Broken is set when shots run out.
	Broken bool
}

// NewObject creates an object of the given kind.
func NewObject(name string, kind ObjectKind) *Object {
	return &Object{ID: NewID(), Name: name, Kind: kind}
}

// Has reports whether every bit in f is set.
func (o *Object) Has(f ObjectFlag) bool { return o.Flags&f == f }

// DecShots wears the object down by one and reports whether it fell apart.
func (o *Object) DecShots() bool {
	if o.Has(ObjNoBreak) {
		return false
	}
	o.Shots--
	if o.Shots < 1 {
		o.Broken = true
		return true
	}
	return false
}
