// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/dice"
)

// Kind distinguishes players from monsters. Pets are monsters with a master.
type Kind uint8

// Creature kinds.
const (
	KindPlayer Kind = iota + 1
	KindMonster
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// Flag is a creature state bit.
type Flag uint32

// Creature flags. The first group applies to anyone, the rest to monsters.
const (
	FlagUnconscious Flag = 1 << iota
	FlagSleeping
	FlagHidden
	FlagStaff
	FlagSaveDebug
	FlagNoAutoTarget
	FlagJailed

	FlagPermanent
	FlagPolice
	FlagGreedy
	FlagWillPoison
	FlagDiseases
	FlagCanStone
	FlagWillBlind
	FlagNoExpLoss
	FlagUnkillable
	// FlagNoAutoCrit turns always-critical weapons into misses.
	FlagNoAutoCrit
	// FlagImmuneCriticals is set on constructs, oozes and other bodies
	// without vital spots.
	FlagImmuneCriticals
)

// Gender selects pronouns.
type Gender uint8

// Genders.
const (
	GenderNeuter Gender = iota
	GenderMale
	GenderFemale
)

// Cooldown names.
const (
	CooldownAttack      = "attack"
	CooldownSaves       = "saves"
	CooldownUnconscious = "unconscious"
)

// Cooldown is the last time an action happened and how long it blocks for.
type Cooldown struct {
	Last     time.Time
	Interval time.Duration
}

// Statistics are lifetime counters kept on players.
type Statistics struct {
	Kills            int
	Deaths           int
	SavesAttempted   int
	SavesMade        int
	ExperienceGained int64
	ExperienceLost   int64
	DamageDealt      int64
	DamageTaken      int64
}

// DeathState tracks a creature through teardown.
type DeathState uint8

// Death states.
const (
	Alive DeathState = iota
	// Dying means death handlers have run and teardown may still be pending.
	Dying
	// Finalized means the creature has been removed from the world.
	Finalized
)

// Creature is a player or monster.
type Creature struct {
	ID     ulid.ULID
	Name   string
	Kind   Kind
	Gender Gender
	Level  int
	Class  string

	HP           Stat
	MP           Stat
	Strength     Stat
	Dexterity    Stat
	Constitution Stat
	Intelligence Stat
	Piety        Stat

	Saves   SaveTable
	Effects EffectList
	Flags   Flag

	Room       ulid.ULID
	Equipment  [WearSlots]ulid.ULID
	Inventory  []ulid.ULID
	Coins      int64
	Experience int64

	// WeaponSkill and DefenseSkill are trained values, roughly level*10 at
	// their cap.
	WeaponSkill  int
	DefenseSkill int
	ArmorClass   int

	// Monster-only attributes.
	Damage         dice.Expr
	Adjustment     int
	BaseExperience int64
	AggroString    string
	PoisonDuration int
	PoisonDamage   int

	Master ulid.ULID
	Pets   []ulid.ULID
	Group  ulid.ULID

	// Target is who this creature has targeted; TargetedBy lists everyone
	// targeting it, kept only so targets can be cleaned up on teardown.
	Target     ulid.ULID
	TargetedBy []ulid.ULID

	// Threatened lists the monsters whose ledgers mention this creature.
	Threatened []ulid.ULID

	Cooldowns  map[string]Cooldown
	Statistics Statistics

	DeathState DeathState
	// NeedsFinalize is set when death handlers ran but removal from the
	// world was deferred to the caller.
	NeedsFinalize bool
}

// NewPlayer creates a player with every stat at base and HP/MP at hp/mp.
func NewPlayer(name string, level, hp int) *Creature {
	return newCreature(KindPlayer, name, level, hp)
}

// NewMonster creates a monster.
func NewMonster(name string, level, hp int) *Creature {
	return newCreature(KindMonster, name, level, hp)
}

func newCreature(kind Kind, name string, level, hp int) *Creature {
	c := &Creature{
		ID:           NewID(),
		Name:         name,
		Kind:         kind,
		Level:        level,
		HP:           NewStat(hp),
		MP:           NewStat(0),
		Strength:     NewStat(100),
		Dexterity:    NewStat(100),
		Constitution: NewStat(100),
		Intelligence: NewStat(100),
		Piety:        NewStat(100),
		Cooldowns:    make(map[string]Cooldown),
	}
	for i := range c.Saves {
		c.Saves[i].Chance = 10
	}
	return c
}

// HostID implements Host.
func (c *Creature) HostID() ulid.ULID { return c.ID }

// HostName implements Host.
func (c *Creature) HostName() string { return c.Name }

// EffectList implements Host.
func (c *Creature) EffectList() *EffectList { return &c.Effects }

// StatByName returns the named stat, or nil for an unknown name.
func (c *Creature) StatByName(name string) *Stat {
	switch name {
	case "hp":
		return &c.HP
	case "mp":
		return &c.MP
	case "strength":
		return &c.Strength
	case "dexterity":
		return &c.Dexterity
	case "constitution":
		return &c.Constitution
	case "intelligence":
		return &c.Intelligence
	case "piety":
		return &c.Piety
	}
	return nil
}

// IsPlayer reports whether c is a player.
func (c *Creature) IsPlayer() bool { return c.Kind == KindPlayer }

// IsMonster reports whether c is a monster, including pets.
func (c *Creature) IsMonster() bool { return c.Kind == KindMonster }

// IsPet reports whether c is a monster with a master.
func (c *Creature) IsPet() bool { return c.IsMonster() && !c.Master.IsZero() }

// IsStaff reports whether c carries the staff flag.
func (c *Creature) IsStaff() bool { return c.IsPlayer() && c.Has(FlagStaff) }

// Has reports whether every bit in f is set.
func (c *Creature) Has(f Flag) bool { return c.Flags&f == f }

// Set sets f.
func (c *Creature) Set(f Flag) { c.Flags |= f }

// Clear clears f.
func (c *Creature) Clear(f Flag) { c.Flags &^= f }

// IsEffected reports whether c has the named effect or one based on it.
func (c *Creature) IsEffected(name string) bool { return c.Effects.IsEffected(name) }

// IsDead reports whether c has begun or finished dying.
func (c *Creature) IsDead() bool { return c.DeathState != Alive }

// CanSee reports whether c can see other. Blind creatures see no one and
// hidden creatures are only seen by staff.
func (c *Creature) CanSee(other *Creature) bool {
	if other == nil {
		return false
	}
	if c.ID == other.ID {
		return true
	}
	if c.IsStaff() {
		return true
	}
	if c.IsEffected("blindness") {
		return false
	}
	if other.Has(FlagHidden) || other.IsEffected("invisibility") && !c.IsEffected("detect-invisible") {
		return false
	}
	return true
}

// CooldownRemaining returns how long until the named action is ready.
func (c *Creature) CooldownRemaining(name string, now time.Time) time.Duration {
	cd, ok := c.Cooldowns[name]
	if !ok {
		return 0
	}
	return max(cd.Last.Add(cd.Interval).Sub(now), 0)
}

// StartCooldown records that the named action happened at now.
func (c *Creature) StartCooldown(name string, now time.Time, interval time.Duration) {
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]Cooldown)
	}
	c.Cooldowns[name] = Cooldown{Last: now, Interval: interval}
}

// AddTargetedBy records that id is targeting c.
func (c *Creature) AddTargetedBy(id ulid.ULID) {
	if !slices.Contains(c.TargetedBy, id) {
		c.TargetedBy = append(c.TargetedBy, id)
	}
}

// RemoveTargetedBy forgets that id is targeting c.
func (c *Creature) RemoveTargetedBy(id ulid.ULID) {
	c.TargetedBy = slices.DeleteFunc(c.TargetedBy, func(x ulid.ULID) bool { return x == id })
}

// AddThreatened records that monster id holds a ledger entry for c.
func (c *Creature) AddThreatened(id ulid.ULID) {
	if !slices.Contains(c.Threatened, id) {
		c.Threatened = append(c.Threatened, id)
	}
}

// RemoveThreatened forgets that monster id holds a ledger entry for c.
func (c *Creature) RemoveThreatened(id ulid.ULID) {
	c.Threatened = slices.DeleteFunc(c.Threatened, func(x ulid.ULID) bool { return x == id })
}

// HeShe returns the subject pronoun.
func (c *Creature) HeShe() string {
	switch c.Gender {
	case GenderMale:
		return "he"
	case GenderFemale:
		return "she"
	}
	return "it"
}

// HimHer returns the object pronoun.
func (c *Creature) HimHer() string {
	switch c.Gender {
	case GenderMale:
		return "him"
	case GenderFemale:
		return "her"
	}
	return "it"
}

// HisHer returns the possessive pronoun.
func (c *Creature) HisHer() string {
	switch c.Gender {
	case GenderMale:
		return "his"
	case GenderFemale:
		return "her"
	}
	return "its"
}

// Display returns how c is named in running text: players by name, monsters
// with an article unless the name is already capitalized.
func (c *Creature) Display() string {
	if c.IsPlayer() || c.Name == "" {
		return c.Name
	}
	first := c.Name[:1]
	if strings.ToUpper(first) == first {
		return c.Name
	}
	if strings.ContainsRune("aeiou", rune(c.Name[0])) {
		return "an " + c.Name
	}
	return "a " + c.Name
}
