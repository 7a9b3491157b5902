// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import "github.com/prometheus/client_golang/prometheus"

var ticksTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_sim_ticks_total",
		Help: "Total number of simulation ticks run",
	},
)

var tickDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "grimhold_sim_tick_duration_seconds",
		Help:    "Time spent running one simulation tick",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
	},
)

// RegisterMetrics registers simulation metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ticksTotal, tickDuration)
}
