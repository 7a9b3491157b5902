// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import "github.com/prometheus/client_golang/prometheus"

var journalWrites = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_store_death_journal_records_total",
		Help: "Total number of death records handled by the journal, by result",
	},
	[]string{"result"},
)

// RegisterMetrics registers store metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(journalWrites)
}
