// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package game holds the context object threaded through every simulation
// component: the world, time, randomness, output and tunables.
package game

import (
	"log/slog"
	"time"

	"github.com/holomush/grimhold/internal/dice"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// Settings are the tunables components read at call time.
type Settings struct {
	// SaveGainCooldown is how long after a save improves before it can
	// improve again.
	SaveGainCooldown time.Duration
	// SaveGainMinLevel is the lowest level at which saves can improve.
	SaveGainMinLevel int
	// AttackInterval is the default delay between melee attacks.
	AttackInterval time.Duration
	// GroupBonus is the extra experience per additional group member.
	GroupBonus float64
	// BonusExperience is a server-wide experience multiplier added on top of
	// awards; 0 disables it.
	BonusExperience float64
	// Holidays are the days that earn bonus experience from kills.
	Holidays []Holiday
	// UnknownEffectDuration replaces a computed duration below -1.
	UnknownEffectDuration int64
}

// DefaultSettings returns the standard tunables.
func DefaultSettings() Settings {
	return Settings{
		SaveGainCooldown:      60 * time.Second,
		SaveGainMinLevel:      10,
		AttackInterval:        3 * time.Second,
		GroupBonus:            0.25,
		Holidays:              DefaultHolidays(),
		UnknownEffectDuration: 60,
	}
}

// Holiday is a day of the year with a greeting.
type Holiday struct {
	Month    time.Month
	Day      int
	Greeting string
}

// DefaultHolidays returns the standard holiday calendar.
func DefaultHolidays() []Holiday {
	return []Holiday{
		{Month: time.October, Day: 31, Greeting: "Happy Halloween!"},
		{Month: time.December, Day: 24, Greeting: "Merry Christmas!"},
		{Month: time.December, Day: 25, Greeting: "Merry Christmas!"},
		{Month: time.December, Day: 31, Greeting: "Happy New Year!"},
		{Month: time.January, Day: 1, Greeting: "Happy New Year!"},
	}
}

// HolidayOn returns the greeting for t's day, or "" on an ordinary day.
func (s Settings) HolidayOn(t time.Time) string {
	for _, h := range s.Holidays {
		if t.Month() == h.Month && t.Day() == h.Day {
			return h.Greeting
		}
	}
	return ""
}

// Context carries the collaborators of a simulation call.
type Context struct {
	World    *world.Arena
	Clock    Clock
	Dice     *dice.Roller
	Msg      *message.Messenger
	Log      *slog.Logger
	Settings Settings
	// Reaper handles deaths noticed outside combat, such as from poison.
	Reaper Reaper
}

// New builds a Context with defaults for anything left nil.
func New(arena *world.Arena, clock Clock, src dice.Source, sink message.Sink, logger *slog.Logger) *Context {
	if arena == nil {
		arena = world.NewArena()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		World:    arena,
		Clock:    clock,
		Dice:     dice.NewRoller(src),
		Msg:      message.NewMessenger(arena, sink, clock.Now),
		Log:      logger,
		Settings: DefaultSettings(),
	}
}

// Now returns the current time.
func (c *Context) Now() time.Time { return c.Clock.Now() }

// Cause is why a creature died.
type Cause uint8

// Death causes.
const (
	CauseCombat Cause = iota
	CausePoison
	CauseDisease
	CauseEffect
	CauseFire
	CauseThorns
	CauseUnknown
)

func (c Cause) String() string {
	switch c {
	case CauseCombat:
		return "combat"
	case CausePoison:
		return "poison"
	case CauseDisease:
		return "disease"
	case CauseEffect:
		return "effect"
	case CauseFire:
		return "fire"
	case CauseThorns:
		return "thorns"
	default:
		return "unknown"
	}
}

// Reaper checks whether a creature has died and, if so, runs its death
// handling to completion. killer may be nil for environmental deaths.
type Reaper interface {
	CheckDie(victim, killer *world.Creature, cause Cause) bool
}
