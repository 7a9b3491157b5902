// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
)

// NewEffectsCmd creates the effects subcommand.
func NewEffectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effects",
		Short: "Inspect and validate effect catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [PATTERN]",
		Short: "List catalog effects, optionally filtered by a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := configuredCatalog(cmd)
			if err != nil {
				return err
			}
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			return listEffects(cmd.OutOrStdout(), catalog, pattern)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show one effect definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := configuredCatalog(cmd)
			if err != nil {
				return err
			}
			return showEffect(cmd.OutOrStdout(), catalog, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE...",
		Short: "Check catalog files against the schema and the built-in strategies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := validateCatalog(path); err != nil {
					failed++
					cmd.PrintErrf("%s: %v\n", path, err)
					continue
				}
				cmd.Printf("%s: ok\n", path)
			}
			if failed > 0 {
				return oops.Code("CATALOG_INVALID").Errorf("%d of %d catalogs failed validation", failed, len(args))
			}
			return nil
		},
	})

	var out string
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or write the catalog JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := effect.GenerateSchema()
			if err != nil {
				return oops.Code("SCHEMA_FAILED").Wrap(err)
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err //nolint:wrapcheck // terminal write
			}
			return writeSchema(out, data)
		},
	}
	schemaCmd.Flags().StringVarP(&out, "out", "o", "", "write the schema to this file")
	cmd.AddCommand(schemaCmd)

	return cmd
}

func configuredCatalog(cmd *cobra.Command) (*effect.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return loadCatalog(cfg)
}

func listEffects(w io.Writer, catalog *effect.Catalog, pattern string) error {
	names, err := catalog.Match(pattern)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSTRATEGY\tPULSED")
	for _, name := range names {
		d, _ := catalog.Lookup(name)
		strategy := d.Strategy
		if strategy == "" {
			strategy = "-"
		}
		pulsed := "-"
		if d.Pulsed {
			pulsed = fmt.Sprintf("every %ds", d.PulseDelay)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Polarity, strategy, pulsed)
	}
	if err := tw.Flush(); err != nil {
		return oops.Wrap(err)
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "No effects match %q.\n", pattern)
	}
	return nil
}

func showEffect(w io.Writer, catalog *effect.Catalog, name string) error {
	d, ok := catalog.Lookup(strings.ToLower(name))
	if !ok {
		return oops.Code("EFFECT_UNKNOWN").With("effect", name).Errorf("no effect named %q", name)
	}
	fmt.Fprintf(w, "%s (%s)\n", d.Display, d.Name)
	fmt.Fprintf(w, "  type:     %s\n", d.Polarity)
	if d.Strategy != "" {
		fmt.Fprintf(w, "  strategy: %s\n", d.Strategy)
	}
	if d.Stat != "" {
		fmt.Fprintf(w, "  stat:     %s\n", d.Stat)
	}
	if len(d.Bases) > 0 {
		fmt.Fprintf(w, "  counts as: %s\n", strings.Join(d.Bases, ", "))
	}
	if d.Opposite != "" {
		fmt.Fprintf(w, "  opposite: %s\n", d.Opposite)
	}
	if d.Pulsed {
		fmt.Fprintf(w, "  pulses every %ds\n", d.PulseDelay)
	}
	if d.Spell {
		fmt.Fprintln(w, "  spell effect")
	}
	if !d.Scripts.IsZero() {
		fmt.Fprintln(w, "  has Lua hooks")
	}
	return nil
}

// validateCatalog parses path and binds it to a registry, which rejects
// unknown strategies and hook scripts that fail to compile.
func validateCatalog(path string) error {
	catalog, err := effect.LoadFile(path)
	if err != nil {
		return err
	}
	ctx := game.New(nil, nil, nil, &message.Recorder{}, slog.New(slog.DiscardHandler))
	_, err = effect.NewRegistry(ctx, catalog, nil)
	return err
}

func writeSchema(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", path).Wrap(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
