// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package sim runs the simulation: one goroutine owns the world and
// advances it on a fixed tick, and every command is serialized onto that
// goroutine.
package sim

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/grimhold/internal/combat"
	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/threat"
	"github.com/holomush/grimhold/internal/world"
)

var tracer = otel.Tracer("grimhold/sim")

// DefaultInterval is the standard tick length.
const DefaultInterval = time.Second

// Options configures an Engine.
type Options struct {
	// Interval is the tick length; zero means DefaultInterval.
	Interval time.Duration
	// Catalog defines the status effects; nil means the built-in catalog.
	Catalog *effect.Catalog
	// Scripts compiles effect and death hook scripts; nil means a default
	// factory.
	Scripts *script.StateFactory
	// Strategies binds extra effect strategies by name.
	Strategies map[string]effect.Strategy
	// Journal receives a record of every death.
	Journal death.Journal
}

// Engine wires the simulation components together and owns the tick loop.
type Engine struct {
	ctx      *game.Context
	interval time.Duration
	scripts  *script.StateFactory

	saves   *save.Engine
	ledgers *threat.Ledgers
	effects *effect.Registry
	deaths  *death.Distributor
	combat  *combat.Resolver

	cmds    chan func()
	running atomic.Bool
	ticks   atomic.Uint64
}

// New builds an engine around ctx.
func New(ctx *game.Context, opts Options) (*Engine, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Scripts == nil {
		opts.Scripts = script.NewStateFactory()
	}
	ledgers := threat.New(ctx)
	eopts := []effect.Option{effect.WithScriptFactory(opts.Scripts)}
	for name, s := range opts.Strategies {
		eopts = append(eopts, effect.WithStrategy(name, s))
	}
	effects, err := effect.NewRegistry(ctx, opts.Catalog, ledgers, eopts...)
	if err != nil {
		return nil, oops.With("operation", "build effect registry").Wrap(err)
	}
	saves := save.New(ctx)
	var dopts []death.Option
	if opts.Journal != nil {
		dopts = append(dopts, death.WithJournal(opts.Journal))
	}
	deaths := death.New(ctx, saves, effects, ledgers, dopts...)

	return &Engine{
		ctx:      ctx,
		interval: opts.Interval,
		scripts:  opts.Scripts,
		saves:    saves,
		ledgers:  ledgers,
		effects:  effects,
		deaths:   deaths,
		combat:   combat.New(ctx, saves, effects, ledgers, deaths),
		cmds:     make(chan func()),
	}, nil
}

// Context returns the simulation context.
func (e *Engine) Context() *game.Context { return e.ctx }

// Effects returns the status effect registry.
func (e *Engine) Effects() *effect.Registry { return e.effects }

// Ledgers returns the threat ledgers.
func (e *Engine) Ledgers() *threat.Ledgers { return e.ledgers }

// Saves returns the saving throw engine.
func (e *Engine) Saves() *save.Engine { return e.saves }

// Deaths returns the death distributor.
func (e *Engine) Deaths() *death.Distributor { return e.deaths }

// Combat returns the combat resolver.
func (e *Engine) Combat() *combat.Resolver { return e.combat }

// Running reports whether Run is looping.
func (e *Engine) Running() bool { return e.running.Load() }

// Ticks returns how many ticks have run.
func (e *Engine) Ticks() uint64 { return e.ticks.Load() }

// Run ticks the simulation until ctx is cancelled and serves commands
// between ticks.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return oops.Code("ENGINE_RUNNING").Errorf("engine already running")
	}
	defer e.running.Store(false)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.ctx.Log.Info("simulation started", slog.Duration("interval", e.interval))
	for {
		select {
		case <-ctx.Done():
			e.ctx.Log.Info("simulation stopped", slog.Uint64("ticks", e.ticks.Load()))
			return nil
		case fn := <-e.cmds:
			fn()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Do runs fn on the simulation goroutine and waits for it to finish. It
// fails if ctx ends first or the engine is not running.
func (e *Engine) Do(ctx context.Context, fn func(*Engine)) error {
	if !e.running.Load() {
		return oops.Code("ENGINE_STOPPED").Errorf("engine is not running")
	}
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn(e)
	}
	select {
	case e.cmds <- wrapped:
	case <-ctx.Done():
		return oops.Code("ENGINE_TIMEOUT").Wrap(ctx.Err())
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.Code("ENGINE_TIMEOUT").Wrap(ctx.Err())
	}
}

// TickResult summarizes one tick.
type TickResult struct {
	EffectDeaths int
	Rounds       int
	Recovered    int
}

// Tick advances the world once: effects age and pulse, monsters with
// enemies swing, and knocked-out players come to. Tests call it directly.
func (e *Engine) Tick(ctx context.Context) TickResult {
	_, span := tracer.Start(ctx, "sim.tick", trace.WithAttributes(
		attribute.Int64("tick", int64(e.ticks.Load()+1)),
	))
	defer span.End()
	start := time.Now()

	now := e.ctx.Now()
	var res TickResult
	res.EffectDeaths = e.effects.PulseCreatures(now)
	e.effects.PulseRooms(now)

	for _, c := range e.ctx.World.Creatures() {
		if !e.ctx.World.Exists(c.ID) || c.IsDead() {
			continue
		}
		if c.IsMonster() && e.ledgers.HasEnemy(c) && e.combat.AttackWait(c) == 0 {
			if x := e.combat.MonsterRound(c); !x.Aborted {
				res.Rounds++
			}
		}
		if c.Has(world.FlagUnconscious) && e.combat.Recover(c) {
			res.Recovered++
		}
	}

	e.ticks.Add(1)
	ticksTotal.Inc()
	tickDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("effect_deaths", res.EffectDeaths),
		attribute.Int("rounds", res.Rounds),
	)
	return res
}

// Snapshot counts what is in the world.
type Snapshot struct {
	Players  int
	Monsters int
	// Fighting is how many monsters have at least one enemy.
	Fighting int
	// Effects counts effects on creatures and rooms.
	Effects int
	Ticks   uint64
}

// Snapshot reads the world on the simulation goroutine, or directly when
// the engine is not running.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	read := func(e *Engine) {
		for _, c := range e.ctx.World.Creatures() {
			if c.IsMonster() {
				s.Monsters++
				if e.ledgers.HasEnemy(c) {
					s.Fighting++
				}
			} else {
				s.Players++
			}
			s.Effects += c.Effects.Len()
		}
		for _, r := range e.ctx.World.Rooms() {
			s.Effects += r.EffectList().Len()
		}
		s.Ticks = e.ticks.Load()
	}
	if !e.running.Load() {
		read(e)
		return s, nil
	}
	if err := e.Do(ctx, read); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
