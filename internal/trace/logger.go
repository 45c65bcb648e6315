// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package trace writes encounter lines: one JSON object per line on
// stdout, read by test automation to judge what the client saw and did.
//
// A line looks like
//
//	{"at":"2026-01-02T03:04:05.678Z","ua":"bench","via":"Visitant","sys":"Login","sig":"Success","val":"Agent: Test User"}
//
// where "ua" appears only when TAG_UA is set.
package trace

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
)

// Via is the fixed client identifier written into every line.
const Via = "Visitant"

// timeLayout is ISO-8601 in UTC with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Emitter accepts encounter signals.
type Emitter interface {
	Emit(sys, sig, val string)
}

// Env is the environment that shapes trace output.
type Env struct {
	// UserAgent tags each line so parallel clients can be told apart.
	UserAgent string `env:"TAG_UA"`
	// EncounterLog, when set, receives a copy of every line.
	EncounterLog string `env:"VISITANT_ENCOUNTER_LOG"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, oops.Code("INVALID_ENV").Wrap(err)
	}
	return e, nil
}

// line fixes the field order of an encounter line.
type line struct {
	At  string `json:"at"`
	UA  string `json:"ua,omitempty"`
	Via string `json:"via"`
	Sys string `json:"sys"`
	Sig string `json:"sig"`
	Val string `json:"val"`
}

// Logger writes encounter lines. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	tee io.WriteCloser
	ua  string
	now func() time.Time
}

// Option customizes a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithUserAgent sets the "ua" tag.
func WithUserAgent(ua string) Option {
	return func(l *Logger) { l.ua = ua }
}

// WithTee copies every line to w. The Logger closes w on Close.
func WithTee(w io.WriteCloser) Option {
	return func(l *Logger) { l.tee = w }
}

// NewLogger creates a Logger writing to out.
func NewLogger(out io.Writer, opts ...Option) *Logger {
	l := &Logger{out: out, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFromEnv creates a Logger writing to out, tagged and teed as e
// says. A tee file that cannot be opened is an error.
func NewFromEnv(out io.Writer, e Env, opts ...Option) (*Logger, error) {
	all := []Option{WithUserAgent(e.UserAgent)}
	if e.EncounterLog != "" {
		f, err := os.OpenFile(e.EncounterLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, oops.Code("ENCOUNTER_LOG_OPEN_FAILED").With("path", e.EncounterLog).Wrap(err)
		}
		all = append(all, WithTee(f))
	}
	return NewLogger(out, append(all, opts...)...), nil
}

// Emit writes one line. Write failures are logged, never returned: a
// broken stdout must not take the session down with it.
func (l *Logger) Emit(sys, sig, val string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(line{
		At:  l.now().UTC().Format(timeLayout),
		UA:  l.ua,
		Via: Via,
		Sys: sys,
		Sig: sig,
		Val: val,
	}); err != nil {
		slog.Warn("trace line encode failed", "sys", sys, "sig", sig, "error", err)
		return
	}
	b := buf.Bytes()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(b); err != nil {
		slog.Warn("trace write failed", "sys", sys, "sig", sig, "error", err)
	}
	if l.tee != nil {
		if _, err := l.tee.Write(b); err != nil {
			slog.Debug("encounter log write failed", "error", err)
		}
	}
}

// Close releases the tee file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tee == nil {
		return nil
	}
	err := l.tee.Close()
	l.tee = nil
	if err != nil {
		return oops.Code("ENCOUNTER_LOG_CLOSE_FAILED").Wrap(err)
	}
	return nil
}
