// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/store"
	"github.com/holomush/grimhold/internal/world"
)

// startPostgres starts an empty PostgreSQL container and returns its DSN.
func startPostgres(ctx context.Context) (string, func(), error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("grimhold_test"),
		postgres.WithUsername("grimhold"),
		postgres.WithPassword("grimhold"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", nil, err
	}
	terminate := func() { _ = container.Terminate(context.Background()) }

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, err
	}
	return connStr, terminate, nil
}

// setupPostgres starts a PostgreSQL container and migrates it.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	connStr, terminate, err := startPostgres(ctx)
	if err != nil {
		return nil, nil, err
	}
	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil {
		terminate()
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool, err := store.Connect(ctx, connStr, logger, store.ConnectOptions{Attempts: 3, Backoff: 200 * time.Millisecond})
	if err != nil {
		terminate()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		terminate()
	}
	return pool, cleanup, nil
}

var _ = Describe("PostgreSQL repositories", Ordered, func() {
	var (
		pool    *pgxpool.Pool
		cleanup func()
		ctx     context.Context
	)

	BeforeAll(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("saving throw tables", func() {
		It("round-trips a table and overwrites on store", func() {
			repo := store.NewPostgresSaveRepository(pool)
			id := world.NewID()

			_, found, err := repo.LoadSaves(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())

			var table world.SaveTable
			table[world.SaveDeath] = world.SaveEntry{Chance: 30, Gained: 1}
			Expect(repo.StoreSaves(ctx, id, table)).To(Succeed())

			table[world.SaveDeath].Chance = 31
			Expect(repo.StoreSaves(ctx, id, table)).To(Succeed())

			got, found, err := repo.LoadSaves(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(got).To(Equal(table))
		})

		It("rejects an out-of-range chance", func() {
			var table world.SaveTable
			table[world.SaveSpell] = world.SaveEntry{Chance: 250}
			err := store.NewPostgresSaveRepository(pool).StoreSaves(ctx, world.NewID(), table)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("host effects", func() {
		It("replaces the stored list in order", func() {
			repo := store.NewPostgresEffectRepository(pool)
			id := world.NewID()

			Expect(repo.StoreEffects(ctx, id, []store.StoredEffect{
				{Name: "poison", Duration: 30, Strength: 2},
			})).To(Succeed())
			want := []store.StoredEffect{
				{Name: "armor", Duration: 120, Strength: 8},
				{Name: "fly", Duration: world.Permanent, Strength: 1, Extra: 3},
			}
			Expect(repo.StoreEffects(ctx, id, want)).To(Succeed())

			got, err := repo.LoadEffects(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})
	})

	Describe("death log", func() {
		It("lists newest deaths first", func() {
			repo := store.NewPostgresDeathLogRepository(pool)
			victim := world.NewID()
			base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

			for i := range 3 {
				Expect(repo.Append(ctx, death.Record{
					Victim:     victim,
					VictimName: "Aldo",
					VictimKind: world.KindPlayer,
					Level:      9,
					KillerKind: death.KillerEnvironment,
					Cause:      game.CausePoison,
					Room:       world.NewID(),
					At:         base.Add(time.Duration(i) * time.Minute),
				})).To(Succeed())
			}
			Expect(repo.Append(ctx, death.Record{
				Victim: world.NewID(), VictimName: "a rat", VictimKind: world.KindMonster,
				Level: 1, At: base,
			})).To(Succeed())

			got, err := repo.Recent(ctx, victim, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].At).To(BeTemporally("==", base.Add(2*time.Minute)))
			Expect(got[0].Killer.IsZero()).To(BeTrue())
			Expect(got[0].Cause).To(Equal(game.CausePoison))

			all, err := repo.Recent(ctx, world.NoID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(4))
		})

		It("flushes journaled records on shutdown", func() {
			repo := store.NewPostgresDeathLogRepository(pool)
			journal := store.NewDeathJournal(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), 4)
			victim := world.NewID()

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- journal.Run(runCtx) }()

			journal.Record(death.Record{Victim: victim, VictimName: "a goblin", VictimKind: world.KindMonster, Level: 3, At: time.Now()})
			Eventually(func() int {
				got, _ := repo.Recent(ctx, victim, 5)
				return len(got)
			}).WithTimeout(5 * time.Second).Should(Equal(1))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
