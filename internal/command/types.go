// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command turns operator input lines into typed commands.
package command

import "time"

// Command is one operator instruction. The set is closed: only the types
// in this file implement it.
type Command interface {
	// Name returns the keyword that produced the command.
	Name() string
	command()
}

// Login asks the server for a session. An empty URI means the
// configured login URI.
type Login struct {
	First    string
	Last     string
	Password string
	URI      string
}

// Chat speaks a line on the public channel.
type Chat struct {
	Text string
}

// Sleep pauses command intake while inbound events keep flowing.
type Sleep struct {
	Seconds float64
}

// Duration returns the sleep length.
func (s Sleep) Duration() time.Duration {
	return time.Duration(s.Seconds * float64(time.Second))
}

// WhoAmI reports the logged-in identity.
type WhoAmI struct{}

// Who lists nearby avatars.
type Who struct{}

// Where reports the current location.
type Where struct{}

// When reports the server time.
type When struct{}

// SubjectiveWhy reports the reason set by SubjectiveBecause.
type SubjectiveWhy struct{}

// SubjectiveBecause records a free-form annotation.
type SubjectiveBecause struct {
	Text string
}

// SubjectiveLook summarizes what is in view.
type SubjectiveLook struct{}

// SubjectiveGoto walks toward a destination.
type SubjectiveGoto struct {
	Dest string
}

// Pos teleports to an absolute position.
type Pos struct {
	Dest string
}

// Logout ends the session.
type Logout struct{}

// Exit ends the process. EndOfInput marks the implicit exit produced
// when the command source closes.
type Exit struct {
	EndOfInput bool
}

func (Login) Name() string             { return "LOGIN" }
func (Chat) Name() string              { return "CHAT" }
func (Sleep) Name() string             { return "SLEEP" }
func (WhoAmI) Name() string            { return "WHOAMI" }
func (Who) Name() string               { return "WHO" }
func (Where) Name() string             { return "WHERE" }
func (When) Name() string              { return "WHEN" }
func (SubjectiveWhy) Name() string     { return "SUBJECTIVE_WHY" }
func (SubjectiveBecause) Name() string { return "SUBJECTIVE_BECAUSE" }
func (SubjectiveLook) Name() string    { return "SUBJECTIVE_LOOK" }
func (SubjectiveGoto) Name() string    { return "SUBJECTIVE_GOTO" }
func (Pos) Name() string               { return "POS" }
func (Logout) Name() string            { return "LOGOUT" }
func (Exit) Name() string              { return "EXIT" }

func (Login) command()             {}
func (Chat) command()              {}
func (Sleep) command()             {}
func (WhoAmI) command()            {}
func (Who) command()               {}
func (Where) command()             {}
func (When) command()              {}
func (SubjectiveWhy) command()     {}
func (SubjectiveBecause) command() {}
func (SubjectiveLook) command()    {}
func (SubjectiveGoto) command()    {}
func (Pos) command()               {}
func (Logout) command()            {}
func (Exit) command()              {}
