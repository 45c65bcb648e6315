// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status values for command metrics.
const (
	StatusQueued   = "queued"
	StatusUnknown  = "unknown"
	StatusInvalid  = "invalid"
	StatusApplied  = "applied"
	StatusDeferred = "not_implemented"
)

// CommandsTotal counts operator lines by keyword and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visitant_commands_total",
		Help: "Total number of operator commands by keyword and status",
	},
	[]string{"command", "status"},
)

// RegisterMetrics registers command package metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandsTotal)
}

// RecordCommand increments the command counter.
func RecordCommand(command, status string) {
	CommandsTotal.WithLabelValues(command, status).Inc()
}
