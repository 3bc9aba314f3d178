// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package achievement

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Triggers counts partial progress steps by achievement.
var Triggers = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holokit_achievement_triggers_total",
		Help: "Total number of achievement progress triggers",
	},
	[]string{"achievement"},
)

// Achieved counts AchievementAchieved publications by achievement.
var Achieved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holokit_achievements_achieved_total",
		Help: "Total number of achievement completions published",
	},
	[]string{"achievement"},
)

// DispatchFailures counts manager dispatches that returned an error.
var DispatchFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holokit_achievement_dispatch_failures_total",
		Help: "Total number of achievement notifications the handler failed to process",
	},
	[]string{"notification"},
)

// RegisterMetrics registers achievement metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Triggers)
	reg.MustRegister(Achieved)
	reg.MustRegister(DispatchFailures)
}

func recordTrigger(id string) {
	Triggers.WithLabelValues(id).Inc()
}

func recordAchieved(id string) {
	Achieved.WithLabelValues(id).Inc()
}

func recordDispatchFailure(notification string) {
	DispatchFailures.WithLabelValues(notification).Inc()
}
