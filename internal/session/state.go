// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

// Reason explains why a session ended.
type Reason string

// Termination reasons.
const (
	ReasonLogout         Reason = "logout"
	ReasonExit           Reason = "exit"
	ReasonEndOfInput     Reason = "end_of_input"
	ReasonServerError    Reason = "server_error"
	ReasonServerDisabled Reason = "server_disabled"
	ReasonTimeout        Reason = "timeout"
	ReasonAutoLogout     Reason = "auto_logout"
	ReasonGhost          Reason = "ghost"
	ReasonCancelled      Reason = "cancelled"
)

// State is what the client knows about its session. Only the engine
// loop writes it.
type State struct {
	LoggedIn  bool
	FirstName string
	LastName  string
	AgentID   string
	// Because is the reason recorded by SUBJECTIVE_BECAUSE.
	Because string
	// LastWasPresenceUpdate suppresses repeated presence traces.
	LastWasPresenceUpdate bool
}

// Identity renders the logged-in identity for WHOAMI.
func (s State) Identity() string {
	id := s.AgentID
	if id == "" {
		id = "unknown"
	}
	return "Name: " + s.FirstName + " " + s.LastName + ", UUID: " + id
}

// Result reports how a run ended.
type Result struct {
	Reason Reason
	State  State
}
