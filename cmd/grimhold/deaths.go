// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/store"
	"github.com/holomush/grimhold/internal/world"
)

// NewDeathsCmd creates the deaths subcommand.
func NewDeathsCmd() *cobra.Command {
	var (
		victim string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "deaths",
		Short: "List recent deaths from the death log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			url, err := getDatabaseURL(cfg)
			if err != nil {
				return err
			}
			id := world.NoID
			if victim != "" {
				if id, err = world.ParseID(victim); err != nil {
					return err
				}
			}
			if limit <= 0 {
				return oops.Code("INVALID_LIMIT").With("limit", limit).Errorf("--limit must be positive")
			}

			logger := slog.New(slog.DiscardHandler)
			pool, err := store.Connect(cmd.Context(), url, logger, store.ConnectOptions{Attempts: 1})
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := store.NewPostgresDeathLogRepository(pool)
			return listDeaths(cmd, repo, id, limit)
		},
	}
	cmd.Flags().StringVar(&victim, "victim", "", "only deaths of this creature ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "how many deaths to show")
	return cmd
}

func listDeaths(cmd *cobra.Command, repo store.DeathLogRepository, victim ulid.ULID, limit int) error {
	records, err := repo.Recent(cmd.Context(), victim, limit)
	if err != nil {
		return err
	}
	return printDeaths(cmd.OutOrStdout(), records)
}

func printDeaths(w io.Writer, records []death.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No deaths recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tVICTIM\tLEVEL\tKILLER\tCAUSE\tXP")
	for _, r := range records {
		killer := r.KillerName
		if killer == "" {
			killer = "-"
		}
		xp := fmt.Sprintf("+%d", r.ExperienceAwarded)
		if r.VictimKind == world.KindPlayer {
			xp = fmt.Sprintf("-%d", r.ExperienceLost)
		}
		fmt.Fprintf(tw, "%s\t%s (%s)\t%d\t%s (%s)\t%s\t%s\n",
			r.At.UTC().Format(time.DateTime), r.VictimName, r.VictimKind, r.Level,
			killer, r.KillerKind, r.Cause, xp)
	}
	if err := tw.Flush(); err != nil {
		return oops.Wrap(err)
	}
	return nil
}
