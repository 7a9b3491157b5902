// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/pkg/errutil"
)

func lopsidedDuel() duelOptions {
	opts := defaultDuelOptions()
	opts.PlayerLevel = 20
	opts.PlayerHP = 500
	opts.MonsterName = "a rat"
	opts.MonsterLevel = 1
	opts.MonsterHP = 4
	opts.MonsterDamage = "1d2"
	opts.Experience = 10
	return opts
}

func TestRunDuel(t *testing.T) {
	catalog, err := effect.Default()
	require.NoError(t, err)
	settings := game.DefaultSettings()

	t.Run("strong player wins", func(t *testing.T) {
		res, err := runDuel(context.Background(), io.Discard, catalog, settings, lopsidedDuel())
		require.NoError(t, err)

		assert.Equal(t, "Aldo", res.Winner)
		assert.Zero(t, res.PlayerDeaths)
		assert.LessOrEqual(t, res.Rounds, 100)
	})

	t.Run("same seed same fight", func(t *testing.T) {
		opts := defaultDuelOptions()
		opts.Seed = 42
		opts.Verbose = true

		var first, second bytes.Buffer
		a, err := runDuel(context.Background(), &first, catalog, settings, opts)
		require.NoError(t, err)
		b, err := runDuel(context.Background(), &second, catalog, settings, opts)
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Equal(t, first.String(), second.String())
		assert.Contains(t, first.String(), "-- round 1 --")
	})

	t.Run("round cap", func(t *testing.T) {
		opts := defaultDuelOptions()
		opts.Rounds = 1
		opts.MonsterHP = 10000
		opts.PlayerHP = 10000

		res, err := runDuel(context.Background(), io.Discard, catalog, settings, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Rounds)
		assert.Empty(t, res.Winner)
		assert.Positive(t, res.MonsterHP)
	})

	t.Run("effects go on first", func(t *testing.T) {
		opts := lopsidedDuel()
		opts.Effects = []string{"barkskin"}
		_, err := runDuel(context.Background(), io.Discard, catalog, settings, opts)
		require.NoError(t, err)
	})
}

func TestRunDuel_Errors(t *testing.T) {
	catalog, err := effect.Default()
	require.NoError(t, err)
	settings := game.DefaultSettings()

	tests := []struct {
		name     string
		mutate   func(*duelOptions)
		wantCode string
	}{
		{name: "bad attack", mutate: func(o *duelOptions) { o.Attack = "tickle" }, wantCode: "INVALID_ARGS"},
		{name: "bad dice", mutate: func(o *duelOptions) { o.MonsterDamage = "lots" }, wantCode: "DICE_INVALID"},
		{name: "unknown effect", mutate: func(o *duelOptions) { o.Effects = []string{"gills"} }, wantCode: "EFFECT_UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultDuelOptions()
			tt.mutate(&opts)
			_, err := runDuel(context.Background(), io.Discard, catalog, settings, opts)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestDuelCommand(t *testing.T) {
	out, _, err := execute(t, "duel", "--player-level", "20", "--player-hp", "500",
		"--monster", "a rat", "--monster-level", "1", "--monster-hp", "4", "--monster-damage", "1d2")
	require.NoError(t, err)
	assert.Contains(t, out, "Aldo wins after")
}

func TestPrintDuelResult(t *testing.T) {
	var buf bytes.Buffer
	printDuelResult(&buf, duelResult{Rounds: 7, Winner: "a cave troll", Experience: -120})
	assert.Equal(t, "A cave troll wins after 7 rounds.\nExperience change: -120\n", buf.String())
}
