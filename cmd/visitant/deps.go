// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"net"

	"github.com/holomush/visitant/internal/observability"
	"github.com/holomush/visitant/internal/trace"
)

// RunDeps contains injectable dependencies for the run command.
// All fields with nil values will use their default implementations.
type RunDeps struct {
	// Stdin supplies operator commands.
	// Default: os.Stdin
	Stdin io.Reader

	// Stdout receives trace lines.
	// Default: os.Stdout
	Stdout io.Writer

	// Stderr receives diagnostic logs.
	// Default: os.Stderr
	Stderr io.Writer

	// Listen binds the local UDP socket.
	// Default: transport.Listen
	Listen func(addr string) (net.PacketConn, error)

	// Environ reads trace settings from the environment.
	// Default: trace.ParseEnv
	Environ func() (trace.Env, error)

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, register ...observability.RegisterFunc) ObservabilityServer

	// DisableSignals skips the SIGINT/SIGTERM handler.
	DisableSignals bool
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Run(ctx context.Context) error
	Addr() string
}
