// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import "github.com/prometheus/client_golang/prometheus"

var attacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_combat_attacks_total",
		Help: "Total number of attack rolls by outcome",
	},
	[]string{"outcome"},
)

var damageDealt = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_combat_damage_dealt_total",
		Help: "Total hit points lost to combat damage",
	},
)

var reflectedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "grimhold_combat_damage_reflected_total",
		Help: "Total damage sent back by reflection and damage shields",
	},
)

var procsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_combat_procs_total",
		Help: "Total number of afflictions landed by monster attacks",
	},
	[]string{"proc"},
)

var capturesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_combat_captures_total",
		Help: "Total number of players knocked out instead of killed, by what followed",
	},
	[]string{"kind"},
)

var brokenTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_combat_equipment_broken_total",
		Help: "Total number of items broken in combat",
	},
	[]string{"kind"},
)

var skillGains = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "grimhold_combat_skill_gains_total",
		Help: "Total number of combat skill improvements",
	},
	[]string{"skill"},
)

// RegisterMetrics registers combat metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(attacksTotal, damageDealt, reflectedTotal, procsTotal, capturesTotal, brokenTotal, skillGains)
}
