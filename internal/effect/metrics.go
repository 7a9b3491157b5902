// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import "github.com/prometheus/client_golang/prometheus"

// effectsAdded counts effects placed on a host, by effect name.
var effectsAdded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_effects_added_total",
		Help: "Total number of status effects added by effect name",
	},
	[]string{"effect"},
)

// effectsRemoved counts effects taken off a host, by reason.
var effectsRemoved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_effects_removed_total",
		Help: "Total number of status effects removed by reason",
	},
	[]string{"reason"},
)

// effectsRejected counts adds that did not land.
var effectsRejected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_effects_rejected_total",
		Help: "Total number of status effect adds that did not land by reason",
	},
	[]string{"reason"},
)

// RegisterMetrics registers effect package metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(effectsAdded)
	reg.MustRegister(effectsRemoved)
	reg.MustRegister(effectsRejected)
}
