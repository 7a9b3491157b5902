// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/config"
	"github.com/holomush/grimhold/internal/store"
)

// migrator is the part of store.Migrator the migrate commands use.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (store.Status, error)
	Close() error
}

var _ migrator = (*store.Migrator)(nil)

// newMigrator opens a migrator; tests replace it.
var newMigrator = func(url string) (migrator, error) {
	return store.NewMigrator(url)
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, roll back and inspect the PostgreSQL schema that stores saving
throw tables, persisted effects and the death log.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printStatus(cmd, m)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printStatus(cmd, m)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply (N > 0) or roll back (N < 0) N migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
			n, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return oops.Code("INVALID_STEPS").Errorf("steps must be non-zero")
			}
			if err := m.Steps(n); err != nil {
				return err
			}
			return printStatus(cmd, m)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Set the recorded schema version and clear the dirty flag. Use this
after repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			if err := m.Force(v); err != nil {
				return err
			}
			return printStatus(cmd, m)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			return printStatus(cmd, m)
		}),
	})

	return cmd
}

// withMigrator opens a migrator from the loaded config around fn.
func withMigrator(fn func(*cobra.Command, migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		url, err := getDatabaseURL(cfg)
		if err != nil {
			return err
		}
		m, err := newMigrator(url)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := m.Close(); cerr != nil {
				cmd.PrintErrln("warning: closing migrator:", cerr)
			}
		}()
		return fn(cmd, m, args)
	}
}

// getDatabaseURL returns the configured database URL or an error when none
// is set.
func getDatabaseURL(cfg config.Config) (string, error) {
	if cfg.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").
			Errorf("a database URL is required (--database-url or %sDATABASE_URL)", config.EnvPrefix)
	}
	return cfg.DatabaseURL, nil
}

// parseForceVersion parses a migration version argument.
func parseForceVersion(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &v); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrapf(err, "version must be an integer")
	}
	return v, nil
}

func printStatus(cmd *cobra.Command, m migrator) error {
	s, err := m.Status()
	if err != nil {
		return err
	}
	name := s.Name
	if name == "" {
		name = "none"
	}
	cmd.Printf("Schema version: %d (%s)\n", s.Version, name)
	if s.Dirty {
		cmd.Println("Schema is DIRTY: repair it and run 'grimhold migrate force VERSION'")
	}
	cmd.Printf("Applied: %d, pending: %d\n", len(s.Applied), len(s.Pending))
	for _, v := range s.Pending {
		cmd.Printf("  pending %06d\n", v)
	}
	return nil
}
