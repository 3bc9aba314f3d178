// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package bus

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// MessagesPublished counts Publish calls by message type.
// Use RegisterMetrics to register this with a Prometheus registry.
var MessagesPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holokit_bus_published_total",
		Help: "Total number of messages published on the bus",
	},
	[]string{"type"},
)

// HandlerPanics counts recovered subscriber panics by message type.
var HandlerPanics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holokit_bus_handler_panics_total",
		Help: "Total number of bus handler panics recovered",
	},
	[]string{"type"},
)

// RegisterMetrics registers bus metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(MessagesPublished)
	reg.MustRegister(HandlerPanics)
}

func recordPublish(key reflect.Type) {
	MessagesPublished.WithLabelValues(key.String()).Inc()
}

func recordHandlerPanic(key reflect.Type) {
	HandlerPanics.WithLabelValues(key.String()).Inc()
}
