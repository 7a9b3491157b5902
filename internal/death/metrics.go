// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import "github.com/prometheus/client_golang/prometheus"

var deathsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_deaths_total",
		Help: "Total number of deaths by victim kind and killer kind",
	},
	[]string{"victim", "killer"},
)

var finalizedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_deaths_finalized_total",
		Help: "Total number of monsters removed from the world after death",
	},
)

var revivedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_deaths_revived_total",
		Help: "Total number of players brought back after death",
	},
)

var experienceAwarded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_experience_awarded_total",
		Help: "Total experience paid out for kills by distribution phase",
	},
	[]string{"phase"},
)

var experienceLost = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_experience_lost_total",
		Help: "Total experience players lost to death",
	},
)

// RegisterMetrics registers death metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(deathsTotal, finalizedTotal, revivedTotal, experienceAwarded, experienceLost)
}
