// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package timing decides when a session must stop, log out, or pause
// command intake.
package timing

import (
	"strings"
	"time"

	"github.com/samber/oops"
)

// RunMode selects a scripted behavior profile.
type RunMode int

// Run modes.
const (
	Standard RunMode = iota
	Rejection
	Wallflower
	Ghost
	Chatter
	Interactive
)

// CodeUnknownMode is the error code for an unrecognized mode name.
const CodeUnknownMode = "UNKNOWN_MODE"

// RejectionPassword replaces the configured password in Rejection mode.
const RejectionPassword = "badpassword"

var modeNames = map[RunMode]string{
	Standard:    "standard",
	Rejection:   "rejection",
	Wallflower:  "wallflower",
	Ghost:       "ghost",
	Chatter:     "chatter",
	Interactive: "interactive",
}

func (m RunMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseRunMode resolves a mode name. Matching ignores case; "repl" is an
// alias for interactive.
func ParseRunMode(name string) (RunMode, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "repl" {
		return Interactive, nil
	}
	for mode, n := range modeNames {
		if n == lower {
			return mode, nil
		}
	}
	return Standard, oops.Code(CodeUnknownMode).
		With("mode", name).
		Errorf("unknown run mode %q", name)
}

// ModeNames lists the accepted mode names in declaration order.
func ModeNames() []string {
	return []string{"standard", "rejection", "wallflower", "ghost", "chatter", "interactive"}
}

// ModePolicy is the behavior a RunMode resolves to.
type ModePolicy struct {
	// AutoLogout is how long after login the session logs itself out.
	// Zero means never.
	AutoLogout time.Duration
	// VanishOnLogin ends the session as soon as login succeeds.
	VanishOnLogin bool
	// PasswordOverride, when set, replaces the configured password.
	PasswordOverride string
	// AutoLogin sends a login at startup without operator input.
	AutoLogin bool
}

// Policy returns the mode's behavior.
func (m RunMode) Policy() ModePolicy {
	switch m {
	case Standard, Chatter:
		return ModePolicy{AutoLogout: 30 * time.Second, AutoLogin: true}
	case Wallflower:
		return ModePolicy{AutoLogout: 90 * time.Second, AutoLogin: true}
	case Ghost:
		return ModePolicy{VanishOnLogin: true, AutoLogin: true}
	case Rejection:
		return ModePolicy{PasswordOverride: RejectionPassword, AutoLogin: true}
	case Interactive:
		return ModePolicy{}
	default:
		return ModePolicy{}
	}
}

// Password applies the mode's override, if any, to configured.
func (p ModePolicy) Password(configured string) string {
	if p.PasswordOverride != "" {
		return p.PasswordOverride
	}
	return configured
}
