// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session runs the client's single event loop. It reconciles
// operator commands, inbound protocol events and timers into outbound
// actions and session transitions.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/holomush/visitant/internal/command"
	"github.com/holomush/visitant/internal/protocol"
	"github.com/holomush/visitant/internal/timing"
	"github.com/holomush/visitant/internal/trace"
	"github.com/holomush/visitant/pkg/errutil"
)

// DefaultPollInterval bounds how long one tick waits for an event.
const DefaultPollInterval = 50 * time.Millisecond

// Login request constants sent with every login.
const (
	LoginStart   = "home"
	LoginChannel = "visitant"
)

var tracer = otel.Tracer("visitant/session")

// Sender delivers actions to the server.
type Sender interface {
	Send(ctx context.Context, a protocol.Action) error
}

// Config holds the engine's fixed inputs.
type Config struct {
	FirstName string
	LastName  string
	Password  string
	URI       string

	Mode     timing.RunMode
	Behavior timing.ModePolicy
	// AutoLogin sends a login with the configured credentials at start.
	AutoLogin bool
	// Timeout ends the run after this long. Zero disables it.
	Timeout      time.Duration
	PollInterval time.Duration
	// Rez requests an object rez after login. Accepted but not acted on.
	Rez bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for policy decisions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine owns the session state and the timing policy.
type Engine struct {
	cfg      Config
	sender   Sender
	emitter  trace.Emitter
	commands <-chan command.Command
	events   <-chan protocol.Event
	now      func() time.Time
	logger   *slog.Logger

	state    State
	policy   *timing.Policy
	sleepFor float64

	loggedIn atomic.Bool
}

// NewEngine creates an engine fed by commands and events.
func NewEngine(cfg Config, sender Sender, emitter trace.Emitter,
	commands <-chan command.Command, events <-chan protocol.Event, opts ...Option,
) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	e := &Engine{
		cfg:      cfg,
		sender:   sender,
		emitter:  emitter,
		commands: commands,
		events:   events,
		now:      time.Now,
		logger:   slog.Default().With("component", "session"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoggedIn reports whether a login has succeeded. Safe for concurrent
// use; readiness probes call it from other goroutines.
func (e *Engine) LoggedIn() bool {
	return e.loggedIn.Load()
}

// Run drives the loop until the session terminates or ctx is
// cancelled, and returns why it ended with the final state.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	e.policy = timing.NewPolicy(e.cfg.Behavior, e.now(), e.cfg.Timeout)
	e.logger.Info("session started",
		"mode", e.cfg.Mode.String(),
		"timeout", e.cfg.Timeout,
		"auto_login", e.cfg.AutoLogin)

	if e.cfg.AutoLogin {
		e.login(ctx, command.Login{
			First:    e.cfg.FirstName,
			Last:     e.cfg.LastName,
			Password: e.cfg.Password,
		})
	}

	for {
		if ctx.Err() != nil {
			return e.finish(ReasonCancelled), nil
		}

		now := e.now()
		switch e.policy.Check(now) {
		case timing.Timeout:
			e.emitter.Emit("System", "Timeout", "Max run time reached.")
			if e.state.LoggedIn {
				e.send(ctx, protocol.LogoutRequest{})
			}
			return e.finish(ReasonTimeout), nil
		case timing.AutoLogout:
			e.emitter.Emit("Logout", "Initiate", "Timeout")
			e.send(ctx, protocol.LogoutRequest{})
			return e.finish(ReasonAutoLogout), nil
		}

		asleep, woke := e.policy.Asleep(now)
		if woke {
			e.emitter.Emit("System", "Sleep", "Slept "+formatSeconds(e.sleepFor)+"s")
		}
		if !asleep {
			if reason, done := e.drainCommands(ctx); done {
				return e.finish(reason), nil
			}
		}

		if reason, done := e.awaitEvent(ctx); done {
			return e.finish(reason), nil
		}
	}
}

func (e *Engine) finish(reason Reason) Result {
	TerminationsTotal.WithLabelValues(string(reason)).Inc()
	e.logger.Info("session ended",
		"reason", string(reason),
		"logged_in", e.state.LoggedIn,
		"elapsed", e.policy.Elapsed(e.now()))
	return Result{Reason: reason, State: e.state}
}

// drainCommands applies queued commands in arrival order without
// blocking. It stops after a Sleep so later commands wait for the wake.
func (e *Engine) drainCommands(ctx context.Context) (Reason, bool) {
	for {
		select {
		case cmd, ok := <-e.commands:
			if !ok {
				e.commands = nil
				cmd = command.Exit{EndOfInput: true}
			}
			if reason, done := e.apply(ctx, cmd); done {
				return reason, true
			}
			if _, isSleep := cmd.(command.Sleep); isSleep {
				return "", false
			}
		default:
			return "", false
		}
	}
}

// awaitEvent waits up to the poll interval for one inbound event.
func (e *Engine) awaitEvent(ctx context.Context) (Reason, bool) {
	timer := time.NewTimer(e.cfg.PollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ReasonCancelled, true
	case <-timer.C:
		return "", false
	case ev, ok := <-e.events:
		if !ok {
			e.logger.Debug("event queue closed")
			e.events = nil
			return "", false
		}
		return e.handleEvent(ctx, ev)
	}
}

func (e *Engine) apply(ctx context.Context, cmd command.Command) (reason Reason, done bool) {
	ctx, span := tracer.Start(ctx, "session.apply",
		oteltrace.WithAttributes(attribute.String("command.name", cmd.Name())))
	defer span.End()

	status := command.StatusApplied
	defer func() {
		command.RecordCommand(cmd.Name(), status)
		if done {
			span.SetAttributes(attribute.String("session.termination", string(reason)))
		}
	}()

	switch c := cmd.(type) {
	case command.Login:
		e.login(ctx, c)

	case command.Chat:
		if err := e.send(ctx, protocol.ChatFromViewer{Message: c.Text, Type: protocol.ChatNormal}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

	case command.Sleep:
		e.sleepFor = c.Seconds
		e.policy.Sleep(e.now(), c.Duration())
		e.emitter.Emit("System", "Sleep", "Sleeping "+formatSeconds(c.Seconds)+"s")

	case command.WhoAmI:
		if e.state.LoggedIn {
			e.emitter.Emit("Self", "Identity", e.state.Identity())
		} else {
			e.emitter.Emit("System", "Notice", "Not connected.")
		}

	case command.Who, command.Where, command.When,
		command.SubjectiveLook, command.SubjectiveGoto, command.Pos:
		status = command.StatusDeferred
		e.emitter.Emit("System", "NotImplemented", cmd.Name()+" not implemented")

	case command.SubjectiveBecause:
		e.state.Because = c.Text
		e.emitter.Emit("Cognition", "Because", "Updated")

	case command.SubjectiveWhy:
		e.emitter.Emit("Cognition", "Why", e.state.Because)

	case command.Logout:
		e.emitter.Emit("Logout", "REPL", "Director requested logout")
		if e.state.LoggedIn {
			e.send(ctx, protocol.LogoutRequest{})
		}
		return ReasonLogout, true

	case command.Exit:
		if c.EndOfInput {
			e.emitter.Emit("Exit", "EndOfInput", "Command input closed")
		} else {
			e.emitter.Emit("Exit", "REPL", "Director requested exit")
		}
		if e.state.LoggedIn {
			e.send(ctx, protocol.LogoutRequest{})
		}
		if c.EndOfInput {
			return ReasonEndOfInput, true
		}
		return ReasonExit, true

	default:
		status = command.StatusUnknown
		e.logger.Warn("unhandled command type", "command", fmt.Sprintf("%T", cmd))
	}
	return "", false
}

func (e *Engine) login(ctx context.Context, c command.Login) {
	uri := c.URI
	if uri == "" {
		uri = e.cfg.URI
	}
	e.emitter.Emit("Login", "Start",
		fmt.Sprintf("URI: %s, User: %s %s, Mode: %s", uri, c.First, c.Last, e.cfg.Mode))
	e.send(ctx, protocol.LoginRequest{
		First:        c.First,
		Last:         c.Last,
		Password:     e.cfg.Behavior.Password(c.Password),
		Start:        LoginStart,
		Channel:      LoginChannel,
		AgreeToTOS:   true,
		ReadCritical: true,
		URI:          uri,
	})
}

func (e *Engine) handleEvent(ctx context.Context, ev protocol.Event) (Reason, bool) {
	kind := ev.EventKind()
	EventsTotal.WithLabelValues(kind.String()).Inc()

	if _, presence := ev.(protocol.PresenceUpdate); !presence {
		e.state.LastWasPresenceUpdate = false
	}

	switch v := ev.(type) {
	case protocol.LoginResponse:
		e.state.LoggedIn = true
		e.state.FirstName = v.FirstName
		e.state.LastName = v.LastName
		e.state.AgentID = v.AgentID
		e.loggedIn.Store(true)
		e.policy.MarkLoggedIn(e.now())
		e.emitter.Emit("Login", "Success", "Agent: "+v.FirstName+" "+v.LastName)

		if e.cfg.Rez {
			e.logger.Debug("rez on login requested; nothing to rez")
		}
		e.send(ctx, protocol.AgentUpdate{})

		if e.cfg.Behavior.VanishOnLogin {
			e.emitter.Emit("Behavior", "Ghost", "Vanishing immediately...")
			return ReasonGhost, true
		}

	case protocol.Error:
		e.emitter.Emit("Login", "Fail", "Connection error: "+v.Detail)
		return ReasonServerError, true

	case protocol.DisableServer:
		e.emitter.Emit("Alert", "Heard", "Simulation Closing")
		return ReasonServerDisabled, true

	case protocol.ChatFromServer:
		e.emitter.Emit("Chat", "Heard", "From: "+v.FromName+", Msg: "+v.Message)

	case protocol.PresenceUpdate:
		if !e.state.LastWasPresenceUpdate {
			e.emitter.Emit("Territory", "Impression", "LandUpdate received")
			e.state.LastWasPresenceUpdate = true
		}

	default:
		e.logger.Debug("ignoring event", "event", kind.String())
	}
	return "", false
}

// send delivers a at most once. Failures are logged and the action is
// dropped.
func (e *Engine) send(ctx context.Context, a protocol.Action) error {
	err := e.sender.Send(ctx, a)
	if err != nil {
		errutil.LogWarn(e.logger, "dropping outbound action", err, "action", a.ActionKind().String())
	}
	return err
}

// formatSeconds renders whole seconds with one decimal ("2.0") and
// fractions at full precision ("0.25").
func formatSeconds(s float64) string {
	if s == float64(int64(s)) {
		return strconv.FormatFloat(s, 'f', 1, 64)
	}
	return strconv.FormatFloat(s, 'f', -1, 64)
}
