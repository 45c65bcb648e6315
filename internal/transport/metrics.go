// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package transport

import "github.com/prometheus/client_golang/prometheus"

// Datagram results.
const (
	ResultDecoded      = "decoded"
	ResultDecodeFailed = "decode_failed"
	ResultReadError    = "read_error"
)

// Action send statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// DatagramsTotal counts inbound datagrams by result.
var DatagramsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visitant_datagrams_total",
		Help: "Total number of inbound datagrams by result",
	},
	[]string{"result"},
)

// ActionsTotal counts outbound actions by kind and status.
var ActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visitant_actions_total",
		Help: "Total number of outbound actions by kind and status",
	},
	[]string{"action", "status"},
)

// RegisterMetrics registers transport metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(DatagramsTotal, ActionsTotal)
}
