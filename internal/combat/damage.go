// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

// Kind is what a blow is made of.
type Kind uint8

// Damage kinds.
const (
	Physical Kind = iota
	Magical
	Mental
	NegativeEnergy
)

func (k Kind) String() string {
	switch k {
	case Physical:
		return "physical"
	case Magical:
		return "magical"
	case Mental:
		return "mental"
	case NegativeEnergy:
		return "negative-energy"
	default:
		return "unknown"
	}
}

// Realm is the element of magical damage.
type Realm uint8

// Realms.
const (
	NoRealm Realm = iota
	Earth
	Wind
	Fire
	Water
	Electric
	Cold
)

var realmNames = [...]string{"none", "earth", "air", "fire", "water", "electric", "cold"}

func (r Realm) String() string {
	if int(r) >= len(realmNames) {
		return "unknown"
	}
	return realmNames[r]
}

// Shield names what reflected physical damage.
type Shield uint8

// Physical reflection shields.
const (
	NoShield Shield = iota
	FireShield
)

// Damage is one blow in flight. Modifiers change Value in place and record
// what the defender's shields sent back to the attacker.
type Damage struct {
	Value int
	Bonus int
	Drain int
	Kind  Kind
	Realm Realm

	// Reflected is magic bounced back by reflect-magic.
	Reflected int
	// PhysicalReflected is what a damage shield such as fire-shield dealt
	// back to the attacker.
	PhysicalReflected      int
	PhysicalBonusReflected int
	Shield                 Shield
	// DoubleReflected is the part of PhysicalReflected that the attacker's
	// own reflect-magic sent back again.
	DoubleReflected int
}

// Add increases the value by n.
func (d *Damage) Add(n int) { d.Value += n }

// SetBonus records b as the bonus part of d.
func (d *Damage) SetBonus(b Damage) {
	d.Bonus = b.Value
	d.PhysicalBonusReflected = b.PhysicalReflected
}

// IncludeBonus folds 1/fraction of the bonus into the value. A multi-hit
// weapon spreads its bonus across its hits.
func (d *Damage) IncludeBonus(fraction int) {
	if fraction < 1 {
		fraction = 1
	}
	d.Value += d.Bonus / fraction
	d.PhysicalReflected += d.PhysicalBonusReflected / fraction
}

// Returned is what the defender's shields hurt the attacker for.
func (d *Damage) Returned() int {
	if d.Reflected != 0 {
		return d.Reflected
	}
	return d.PhysicalReflected
}
