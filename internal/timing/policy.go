// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package timing

import "time"

// Verdict is the outcome of a policy check.
type Verdict int

// Verdicts, in priority order.
const (
	Continue Verdict = iota
	Timeout
	AutoLogout
)

func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Timeout:
		return "timeout"
	case AutoLogout:
		return "auto_logout"
	default:
		return "unknown"
	}
}

// Policy tracks the session's timers. It is owned by a single goroutine
// and is not safe for concurrent use.
type Policy struct {
	mode     ModePolicy
	runStart time.Time
	timeout  time.Duration

	loggedIn bool
	loginAt  time.Time

	sleeping bool
	wakeAt   time.Time
}

// NewPolicy starts the run clock at start. A timeout of zero disables the
// global deadline.
func NewPolicy(mode ModePolicy, start time.Time, timeout time.Duration) *Policy {
	return &Policy{mode: mode, runStart: start, timeout: timeout}
}

// Check reports whether the session must end at now. The global timeout
// takes precedence over the auto-logout deadline.
func (p *Policy) Check(now time.Time) Verdict {
	if p.timeout > 0 && !now.Before(p.runStart.Add(p.timeout)) {
		return Timeout
	}
	if p.loggedIn && p.mode.AutoLogout > 0 && !now.Before(p.loginAt.Add(p.mode.AutoLogout)) {
		return AutoLogout
	}
	return Continue
}

// MarkLoggedIn starts the auto-logout clock.
func (p *Policy) MarkLoggedIn(now time.Time) {
	p.loggedIn = true
	p.loginAt = now
}

// Sleep arms the wake deadline d after now, replacing any earlier one.
func (p *Policy) Sleep(now time.Time, d time.Duration) {
	p.sleeping = true
	p.wakeAt = now.Add(d)
}

// Asleep reports whether command intake is paused at now. woke is true
// exactly once, on the first call after the deadline passes.
func (p *Policy) Asleep(now time.Time) (asleep, woke bool) {
	if !p.sleeping {
		return false, false
	}
	if now.Before(p.wakeAt) {
		return true, false
	}
	p.sleeping = false
	return false, true
}

// Elapsed returns the time since the run started.
func (p *Policy) Elapsed(now time.Time) time.Duration {
	return now.Sub(p.runStart)
}
