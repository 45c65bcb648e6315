// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"syscall"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/visitant/internal/command"
	"github.com/holomush/visitant/internal/config"
	"github.com/holomush/visitant/internal/logging"
	"github.com/holomush/visitant/internal/observability"
	"github.com/holomush/visitant/internal/protocol"
	"github.com/holomush/visitant/internal/session"
	"github.com/holomush/visitant/internal/trace"
	"github.com/holomush/visitant/internal/transport"
	"github.com/holomush/visitant/pkg/errutil"
)

const (
	serviceName = "visitant"
	// clientName prefixes the ready banner.
	clientName = "Visitant"
	queueSize  = 64
)

func runCommand(cmd *cobra.Command, deps *RunDeps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, err = runWithDeps(cmd.Context(), cfg, deps)
	return err
}

// runWithDeps runs one session with injectable dependencies.
// If deps is nil, default implementations are used.
func runWithDeps(ctx context.Context, cfg config.Config, deps *RunDeps) (session.Result, error) {
	if deps == nil {
		deps = &RunDeps{}
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Listen == nil {
		deps.Listen = func(addr string) (net.PacketConn, error) {
			return transport.Listen(addr)
		}
	}
	if deps.Environ == nil {
		deps.Environ = trace.ParseEnv
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, register ...observability.RegisterFunc) ObservabilityServer {
			return observability.NewServer(addr, ready, register...)
		}
	}

	if err := cfg.Validate(); err != nil {
		return session.Result{}, oops.Wrapf(err, "invalid configuration")
	}

	runID := ulid.Make()
	logger := logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		RunID:   runID.String(),
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Writer:  deps.Stderr,
	})

	env, err := deps.Environ()
	if err != nil {
		return session.Result{}, oops.Wrapf(err, "read trace environment")
	}
	tracer, err := trace.NewFromEnv(deps.Stdout, env)
	if err != nil {
		return session.Result{}, err
	}
	defer func() {
		if closeErr := tracer.Close(); closeErr != nil {
			logger.Warn("failed to close trace output", "error", closeErr)
		}
	}()

	codec, err := protocol.NewCodec()
	if err != nil {
		return session.Result{}, err
	}

	conn, err := deps.Listen(net.JoinHostPort("", strconv.Itoa(cfg.UIPort)))
	if err != nil {
		errutil.LogError(logger, "cannot bind local port", err)
		return session.Result{}, err
	}
	server, err := transport.ResolveServer(cfg.ServerHost, cfg.CorePort)
	if err != nil {
		_ = conn.Close()
		return session.Result{}, err
	}

	commands := make(chan command.Command, queueSize)
	events := make(chan protocol.Event, queueSize)

	mode := cfg.RunMode()
	engine := session.NewEngine(session.Config{
		FirstName:    cfg.FirstName,
		LastName:     cfg.LastName,
		Password:     cfg.Password,
		URI:          cfg.URI,
		Mode:         mode,
		Behavior:     mode.Policy(),
		AutoLogin:    cfg.ResolveAutoLogin(),
		Timeout:      cfg.TimeoutDuration(),
		PollInterval: cfg.PollInterval,
		Rez:          cfg.Rez,
	}, transport.NewSender(conn, server, codec), tracer, commands, events)

	receiver := transport.NewReceiver(conn, codec, events)
	reader := command.NewReader(deps.Stdin, commands, tracer)

	logger.Info("client starting",
		"mode", mode.String(),
		"local_addr", conn.LocalAddr().String(),
		"server_addr", server.String())
	tracer.Emit("System", "Ready", command.DefaultRegistry().Banner(clientName))

	var (
		g      run.Group
		result session.Result
	)
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			var runErr error
			result, runErr = engine.Run(ctx)
			return runErr
		}, func(error) {
			cancel()
		})
	}
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return receiver.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	{
		ctx, cancel := context.WithCancel(ctx)
		// End of input only queues an Exit; the engine decides when the
		// session is over.
		g.Add(func() error {
			if err := reader.Run(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		}, func(error) {
			cancel()
		})
	}
	if !deps.DisableSignals {
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}
	if cfg.MetricsAddr != "" {
		obs := deps.ObservabilityServerFactory(cfg.MetricsAddr, engine.LoggedIn,
			command.RegisterMetrics,
			transport.RegisterMetrics,
			session.RegisterMetrics,
		)
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return obs.Run(ctx)
		}, func(error) {
			cancel()
		})
	}

	err = g.Run()
	var sigErr run.SignalError
	switch {
	case errors.As(err, &sigErr):
		logger.Info("received shutdown signal", "signal", sigErr.Signal.String())
		err = nil
	case errors.Is(err, context.Canceled):
		err = nil
	}
	if err != nil {
		errutil.LogError(logger, "client stopped with error", err)
		return result, err
	}

	logger.Info("client stopped", "reason", string(result.Reason))
	return result, nil
}
