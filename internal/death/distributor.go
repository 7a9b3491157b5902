// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package death settles creature deaths: it picks the handler for the pair
// of killer and victim, pays out experience from the victim's threat
// ledger, drops corpses and equipment, and tears the victim down exactly
// once.
package death

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/logging"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/threat"
	"github.com/holomush/grimhold/internal/world"
)

// KillerKind classifies who (or what) caused a death.
type KillerKind uint8

// Killer kinds.
const (
	KillerEnvironment KillerKind = iota
	KillerPlayer
	KillerMonster
	KillerPlayerPet
	KillerMonsterPet
)

func (k KillerKind) String() string {
	switch k {
	case KillerPlayer:
		return "player"
	case KillerMonster:
		return "monster"
	case KillerPlayerPet:
		return "player_pet"
	case KillerMonsterPet:
		return "monster_pet"
	default:
		return "environment"
	}
}

// Record is the audit entry written for every death.
type Record struct {
	Victim     ulid.ULID
	VictimName string
	VictimKind world.Kind
	Level      int
	Killer     ulid.ULID
	KillerName string
	KillerKind KillerKind
	Cause      game.Cause
	Room       ulid.ULID
	// ExperienceLost is what a player victim lost; ExperienceAwarded is the
	// total paid out for a monster victim.
	ExperienceLost    int64
	ExperienceAwarded int64
	At                time.Time
}

// Journal receives death records. Implementations must not block.
type Journal interface {
	Record(r Record)
}

// pending is what Finalize needs to know about a death it has yet to
// settle.
type pending struct {
	killedByPlayer bool
	staff          bool
}

// Distributor implements game.Reaper and the combat resolver's reaper.
type Distributor struct {
	ctx     *game.Context
	saves   *save.Engine
	effects *effect.Registry
	ledgers *threat.Ledgers
	audit   *slog.Logger
	journal Journal
	hooks   map[string][]Hook
	pending map[ulid.ULID]pending
}

var _ game.Reaper = (*Distributor)(nil)

// Option configures a Distributor.
type Option func(*Distributor)

// WithJournal sends every death record to j.
func WithJournal(j Journal) Option {
	return func(d *Distributor) { d.journal = j }
}

// New creates a Distributor and installs it as ctx's reaper.
func New(ctx *game.Context, saves *save.Engine, effects *effect.Registry, ledgers *threat.Ledgers, opts ...Option) *Distributor {
	d := &Distributor{
		ctx:     ctx,
		saves:   saves,
		effects: effects,
		ledgers: ledgers,
		audit:   logging.Audit(ctx.Log),
		hooks:   make(map[string][]Hook),
		pending: make(map[ulid.ULID]pending),
	}
	for _, opt := range opts {
		opt(d)
	}
	ctx.Reaper = d
	return d
}

func (d *Distributor) msg() *message.Messenger { return d.ctx.Msg }

func ids(cs ...*world.Creature) []ulid.ULID {
	out := make([]ulid.ULID, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c.ID)
		}
	}
	return out
}

// Classify says what kind of killer k is. A nil killer, or a victim killing
// itself, is the environment.
func (d *Distributor) Classify(victim, k *world.Creature) KillerKind {
	switch {
	case k == nil || (victim != nil && k.ID == victim.ID):
		return KillerEnvironment
	case k.IsPlayer():
		return KillerPlayer
	case k.IsPet():
		if m, ok := d.ctx.World.Master(k); ok && m.IsPlayer() {
			return KillerPlayerPet
		}
		return KillerMonsterPet
	default:
		return KillerMonster
	}
}

// CheckDie kills victim if it is out of hit points and finalizes it at
// once. It reports whether victim died.
func (d *Distributor) CheckDie(victim, killer *world.Creature, cause game.Cause) bool {
	if !d.Kill(victim, killer, cause) {
		return false
	}
	d.Finalize(victim)
	return true
}

// Kill runs death handling for a victim below 1 HP and marks it as needing
// finalization. It is a no-op for a creature that is alive and well or
// already dead, and reports whether it ran.
func (d *Distributor) Kill(victim, killer *world.Creature, cause game.Cause) bool {
	if victim == nil || victim.IsDead() || victim.HP.Cur() >= 1 {
		return false
	}
	victim.DeathState = world.Dying
	victim.NeedsFinalize = true

	kind := d.Classify(victim, killer)
	if kind == KillerEnvironment {
		killer = nil
	}
	rec := Record{
		Victim:     victim.ID,
		VictimName: victim.Name,
		VictimKind: victim.Kind,
		Level:      victim.Level,
		KillerKind: kind,
		Cause:      cause,
		Room:       victim.Room,
		At:         d.ctx.Now(),
	}
	if killer != nil {
		rec.Killer = killer.ID
		rec.KillerName = killer.Name
		if killer.IsPlayer() {
			killer.Statistics.Kills++
		}
	}
	d.runHooks(victim, killer, cause)

	if victim.IsPlayer() {
		d.playerDeath(victim, killer, kind, cause, &rec)
	} else {
		d.monsterDeath(victim, killer, kind, &rec)
	}
	d.ledgers.ClearEverywhere(victim)
	d.ledgers.ForgetTargeting(victim)
	d.record(rec)
	return true
}

// Finalize completes a death Kill started. Monsters leave the world; players
// wake up in limbo. Only the first call after a Kill does anything.
func (d *Distributor) Finalize(victim *world.Creature) bool {
	if victim == nil || !victim.NeedsFinalize {
		return false
	}
	victim.NeedsFinalize = false
	p := d.pending[victim.ID]
	delete(d.pending, victim.ID)

	if victim.IsPlayer() {
		d.revive(victim, p)
		return true
	}

	d.ledgers.Drop(victim.ID)
	for _, c := range d.ctx.World.Creatures() {
		d.effects.ClearOwner(c, victim.ID)
	}
	for _, id := range append([]ulid.ULID(nil), victim.Pets...) {
		if pet, ok := d.ctx.World.Creature(id); ok {
			d.ctx.World.ReleasePet(pet)
		}
	}
	d.ctx.World.RemoveCreature(victim.ID)
	finalizedTotal.Inc()
	return true
}

func (d *Distributor) record(r Record) {
	deathsTotal.WithLabelValues(r.VictimKind.String(), r.KillerKind.String()).Inc()
	d.audit.Info("creature died",
		slog.String("victim", r.Victim.String()),
		slog.String("victim_name", r.VictimName),
		slog.String("victim_kind", r.VictimKind.String()),
		slog.Int("level", r.Level),
		slog.String("killer", r.Killer.String()),
		slog.String("killer_name", r.KillerName),
		slog.String("killer_kind", r.KillerKind.String()),
		slog.String("cause", r.Cause.String()),
		slog.String("room", r.Room.String()),
		slog.Int64("experience_lost", r.ExperienceLost),
		slog.Int64("experience_awarded", r.ExperienceAwarded))
	if d.journal != nil {
		d.journal.Record(r)
	}
}
