// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldCollector_ReportsStats(t *testing.T) {
	c := NewWorldCollector(func(ctx context.Context) (WorldStats, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "scrapes are bounded")
		return WorldStats{Players: 1, Monsters: 3, Fighting: 2, Effects: 4}, nil
	}, quiet)

	want := `
# HELP grimhold_world_creatures Creatures in the world by kind
# TYPE grimhold_world_creatures gauge
grimhold_world_creatures{kind="monster"} 3
grimhold_world_creatures{kind="player"} 1
# HELP grimhold_world_monsters_fighting Monsters with at least one enemy
# TYPE grimhold_world_monsters_fighting gauge
grimhold_world_monsters_fighting 2
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(want),
		"grimhold_world_creatures", "grimhold_world_monsters_fighting"))
}

func TestWorldCollector_FailedScrape(t *testing.T) {
	c := NewWorldCollector(func(context.Context) (WorldStats, error) {
		return WorldStats{}, errors.New("engine stopped")
	}, quiet)

	reg := prometheus.NewRegistry()
	c.Register(reg)

	assert.Equal(t, 1, testutil.CollectAndCount(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "grimhold_world_scrape_success", families[0].GetName())
	assert.Zero(t, families[0].GetMetric()[0].GetGauge().GetValue())
}
