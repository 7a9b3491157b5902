// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorldStats is a point-in-time count of the world.
type WorldStats struct {
	Players  int
	Monsters int
	Fighting int
	Effects  int
}

// StatsFunc reads WorldStats. It must honour ctx.
type StatsFunc func(ctx context.Context) (WorldStats, error)

// scrapeTimeout bounds how long a scrape waits for the world.
const scrapeTimeout = time.Second

// WorldCollector reports WorldStats as gauges on each scrape.
type WorldCollector struct {
	stats  StatsFunc
	logger *slog.Logger

	creatures *prometheus.Desc
	fighting  *prometheus.Desc
	effects   *prometheus.Desc
	up        *prometheus.Desc
}

var _ prometheus.Collector = (*WorldCollector)(nil)

// NewWorldCollector creates a collector reading from stats.
func NewWorldCollector(stats StatsFunc, logger *slog.Logger) *WorldCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorldCollector{
		stats:  stats,
		logger: logger,
		creatures: prometheus.NewDesc("grimhold_world_creatures",
			"Creatures in the world by kind", []string{"kind"}, nil),
		fighting: prometheus.NewDesc("grimhold_world_monsters_fighting",
			"Monsters with at least one enemy", nil, nil),
		effects: prometheus.NewDesc("grimhold_world_active_effects",
			"Status effects on creatures and rooms", nil, nil),
		up: prometheus.NewDesc("grimhold_world_scrape_success",
			"Whether the last world scrape succeeded", nil, nil),
	}
}

// Register adds the collector to reg.
func (c *WorldCollector) Register(reg prometheus.Registerer) {
	reg.MustRegister(c)
}

// Describe implements prometheus.Collector.
func (c *WorldCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.creatures
	ch <- c.fighting
	ch <- c.effects
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *WorldCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	s, err := c.stats(ctx)
	if err != nil {
		c.logger.Warn("world scrape failed", "error", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.creatures, prometheus.GaugeValue, float64(s.Players), "player")
	ch <- prometheus.MustNewConstMetric(c.creatures, prometheus.GaugeValue, float64(s.Monsters), "monster")
	ch <- prometheus.MustNewConstMetric(c.fighting, prometheus.GaugeValue, float64(s.Fighting))
	ch <- prometheus.MustNewConstMetric(c.effects, prometheus.GaugeValue, float64(s.Effects))
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
}
