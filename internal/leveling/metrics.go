// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package leveling

import (
	"github.com/prometheus/client_golang/prometheus"
)

// XPGained accumulates XP added through GainXP.
var XPGained = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "holokit_xp_gained_total",
		Help: "Total XP gained by leveled entities",
	},
)

// LevelUps counts GainXP calls that leveled an entity up.
var LevelUps = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "holokit_level_ups_total",
		Help: "Total number of level-ups",
	},
)

// RegisterMetrics registers leveling metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(XPGained)
	reg.MustRegister(LevelUps)
}

func recordXPGained(amount int) {
	XPGained.Add(float64(amount))
}

func recordLevelUp() {
	LevelUps.Inc()
}
