// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package save

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/grimhold/internal/world"
)

// Throws counts saving throws by category and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Throws = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_saving_throws_total",
		Help: "Total number of saving throws by category and result",
	},
	[]string{"category", "result"},
)

// Raises counts permanent save improvements.
var Raises = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_save_raises_total",
		Help: "Total number of saving throw improvements by category",
	},
	[]string{"category"},
)

// RegisterMetrics registers save package metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Throws)
	reg.MustRegister(Raises)
}

func recordSave(cat world.SaveCategory, saved, raised bool) {
	result := "failed"
	if saved {
		result = "saved"
	}
	Throws.WithLabelValues(cat.String(), result).Inc()
	if raised {
		Raises.WithLabelValues(cat.String()).Inc()
	}
}
