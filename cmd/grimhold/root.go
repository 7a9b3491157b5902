// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/config"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/logging"
)

// NewRootCmd creates the root command for the Grimhold CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grimhold",
		Short: "Grimhold - MUD combat and status-effect core",
		Long: `Grimhold runs the combat, saving throw, status effect and death
simulation of a MUD, and ships tools for its catalog and database.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewEffectsCmd())
	cmd.AddCommand(NewDuelCmd())
	cmd.AddCommand(NewDeathsCmd())

	return cmd
}

// loadConfig reads configuration for cmd from --config, flags and the
// environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err //nolint:wrapcheck // flag is registered on the root
	}
	return config.Load(path, cmd.Flags(), nil)
}

// newLogger builds the process logger for cfg, writing to w.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	// Validate has already accepted the level.
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return logging.Setup(logging.Options{
		Service: "grimhold",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Writer:  w,
	})
}

// loadCatalog returns the configured catalog, or the built-in one.
func loadCatalog(cfg config.Config) (*effect.Catalog, error) {
	if cfg.Catalog == "" {
		return effect.Default()
	}
	return effect.LoadFile(cfg.Catalog)
}
