// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/combat"
	"github.com/holomush/grimhold/internal/config"
	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/dice"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/observability"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/sim"
	"github.com/holomush/grimhold/internal/store"
	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

// shutdownTimeout bounds the graceful stop of the metrics server.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation",
		Long: `Run the combat and status-effect simulation. With a database URL,
deaths are journaled to PostgreSQL; with a metrics address, Prometheus
metrics and health probes are served over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
}

// runServe runs the simulation until ctx ends.
func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	broadcaster := message.NewBroadcaster(256, logger)
	gctx := game.New(world.NewArena(), game.SystemClock{}, dice.NewSource(uint64(time.Now().UnixNano())), broadcaster, logger)
	gctx.Settings = cfg.Settings()

	opts := sim.Options{
		Interval: cfg.TickInterval,
		Catalog:  catalog,
		Scripts:  script.NewStateFactory().WithTimeout(cfg.ScriptTimeout),
	}

	var checks []observability.Check
	var journal *store.DeathJournal
	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL, logger, store.ConnectOptions{})
		if err != nil {
			return err
		}
		defer pool.Close()
		journal = store.NewDeathJournal(store.NewPostgresDeathLogRepository(pool), logger, store.DefaultJournalBuffer)
		opts.Journal = journal
		checks = append(checks, observability.Check{Name: "database", Probe: func(ctx context.Context) error {
			return oops.Wrap(pool.Ping(ctx))
		}})
	}

	engine, err := sim.New(gctx, opts)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if journal != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			//nolint:errcheck // Run only returns when runCtx ends
			journal.Run(runCtx)
		}()
	}

	var metricsErr <-chan error
	if cfg.MetricsAddr != "" {
		srv := newObservabilityServer(cfg.MetricsAddr, logger, engine, checks)
		metricsErr, err = srv.Start()
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if err := srv.Stop(stopCtx); err != nil {
				errutil.LogError(logger, "stop observability server", err)
			}
		}()
	}

	engineErr := make(chan error, 1)
	go func() { engineErr <- engine.Run(runCtx) }()

	select {
	case err = <-engineErr:
	case err = <-metricsErr:
		if err != nil {
			err = oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
		cancel()
		<-engineErr
	}
	cancel()
	wg.Wait()
	return err
}

// newObservabilityServer builds the metrics server with every package's
// metrics and world counts read from engine. The engine check is always
// first.
func newObservabilityServer(addr string, logger *slog.Logger, engine *sim.Engine, checks []observability.Check) *observability.Server {
	engineCheck := observability.Check{Name: "engine", Probe: func(context.Context) error {
		if !engine.Running() {
			return oops.Code("ENGINE_STOPPED").Errorf("simulation is not ticking")
		}
		return nil
	}}
	return observability.NewServer(observability.Config{
		Addr:   addr,
		Logger: logger,
		Checks: append([]observability.Check{engineCheck}, checks...),
		Stats: func(ctx context.Context) (observability.WorldStats, error) {
			s, err := engine.Snapshot(ctx)
			if err != nil {
				return observability.WorldStats{}, err
			}
			return observability.WorldStats{
				Players:  s.Players,
				Monsters: s.Monsters,
				Fighting: s.Fighting,
				Effects:  s.Effects,
			}, nil
		},
		Registrars: []observability.Registrar{
			combat.RegisterMetrics,
			effect.RegisterMetrics,
			save.RegisterMetrics,
			death.RegisterMetrics,
			sim.RegisterMetrics,
			store.RegisterMetrics,
		},
	})
}
