// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/grimhold/internal/store"
)

var _ = Describe("Schema migrations", Ordered, func() {
	var (
		ctx       context.Context
		connStr   string
		terminate func()
		migrator  *store.Migrator
	)

	// tables lists which domain tables exist right now.
	tables := func() []string {
		conn, err := pgx.Connect(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close(ctx)

		rows, err := conn.Query(ctx, `SELECT table_name FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name IN ('creature_saves', 'host_effects', 'death_log')
			ORDER BY table_name`)
		Expect(err).NotTo(HaveOccurred())
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		Expect(err).NotTo(HaveOccurred())
		return names
	}

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		connStr, terminate, err = startPostgres(ctx)
		Expect(err).NotTo(HaveOccurred())
		migrator, err = store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if migrator != nil {
			_ = migrator.Close()
		}
		if terminate != nil {
			terminate()
		}
	})

	It("starts empty with every migration pending", func() {
		status, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Version).To(BeZero())
		Expect(status.Applied).To(BeEmpty())
		Expect(status.Pending).To(Equal([]uint{1, 2, 3}))
		Expect(tables()).To(BeEmpty())
	})

	It("creates the saves, effects and death log tables on Up", func() {
		Expect(migrator.Up()).To(Succeed())

		status, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Name).To(Equal("000003_death_log"))
		Expect(status.Dirty).To(BeFalse())
		Expect(status.Pending).To(BeEmpty())
		Expect(tables()).To(Equal([]string{"creature_saves", "death_log", "host_effects"}))
	})

	It("steps the death log out and back in", func() {
		Expect(migrator.Steps(-1)).To(Succeed())
		Expect(tables()).To(Equal([]string{"creature_saves", "host_effects"}))

		Expect(migrator.Steps(1)).To(Succeed())
		Expect(tables()).To(ContainElement("death_log"))
	})

	It("drops everything on Down", func() {
		Expect(migrator.Down()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())
		Expect(tables()).To(BeEmpty())
	})

	It("forces a version without running migrations", func() {
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Force(2)).To(Succeed())

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(2)))
		Expect(dirty).To(BeFalse())
		Expect(tables()).To(HaveLen(3))
	})
})
