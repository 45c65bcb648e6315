// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import "github.com/prometheus/client_golang/prometheus"

// EventsTotal counts inbound events applied by the engine.
var EventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visitant_events_total",
		Help: "Total number of inbound protocol events by kind",
	},
	[]string{"event"},
)

// TerminationsTotal counts session endings by reason.
var TerminationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visitant_session_terminations_total",
		Help: "Total number of session terminations by reason",
	},
	[]string{"reason"},
)

// RegisterMetrics registers session metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsTotal, TerminationsTotal)
}
