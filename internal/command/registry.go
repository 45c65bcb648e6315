// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"
	"sync"
)

// ArgParser builds a command from the argument string that followed the
// keyword. Internal whitespace in args is preserved.
type ArgParser func(args string) (Command, error)

// Entry describes one keyword.
type Entry struct {
	Name  string // keyword, upper case
	Usage string // usage pattern shown on bad arguments
	Help  string // one-line description
	Parse ArgParser
	// Hidden entries parse but are left out of the banner.
	Hidden bool
}

// Registry maps keywords to their parsers.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an entry, replacing any entry with the same keyword.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToUpper(e.Name)
	e.Name = name
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = e
}

// Get looks up a keyword case-insensitively.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToUpper(name)]
	return e, ok
}

// Names returns the visible keywords in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if !r.entries[name].Hidden {
			names = append(names, name)
		}
	}
	return names
}

// Banner is the greeting printed when the reader starts.
func (r *Registry) Banner(client string) string {
	return client + " REPL. Commands: " + strings.Join(r.Names(), ", ")
}

// DefaultRegistry returns a registry holding the full operator command set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Entry{Name: "LOGIN", Usage: "LOGIN First Last Pass [URI]", Help: "log in to the server", Parse: parseLogin})
	r.Register(Entry{Name: "CHAT", Usage: "CHAT text", Help: "say something on the public channel", Parse: parseChat})
	r.Register(Entry{Name: "SLEEP", Usage: "SLEEP float_seconds", Help: "pause command intake", Parse: parseSleep})
	r.Register(Entry{Name: "WHOAMI", Help: "show the logged-in identity", Parse: constant(WhoAmI{})})
	r.Register(Entry{Name: "WHO", Help: "list nearby avatars", Parse: constant(Who{})})
	r.Register(Entry{Name: "WHERE", Help: "show the current location", Parse: constant(Where{})})
	r.Register(Entry{Name: "WHEN", Help: "show the server time", Parse: constant(When{})})
	r.Register(Entry{Name: "SUBJECTIVE_WHY", Help: "show the recorded reason", Parse: constant(SubjectiveWhy{})})
	r.Register(Entry{Name: "SUBJECTIVE_BECAUSE", Usage: "SUBJECTIVE_BECAUSE text", Help: "record a reason", Parse: parseBecause})
	r.Register(Entry{Name: "SUBJECTIVE_LOOK", Help: "summarize what is in view", Parse: constant(SubjectiveLook{})})
	r.Register(Entry{Name: "SUBJECTIVE_GOTO", Usage: "SUBJECTIVE_GOTO x,y[,z]", Help: "walk toward a destination", Parse: parseGoto})
	r.Register(Entry{Name: "POS", Usage: "POS x,y,z", Help: "teleport to a position", Parse: parsePos})
	r.Register(Entry{Name: "LOGOUT", Help: "end the session", Parse: constant(Logout{})})
	r.Register(Entry{Name: "EXIT", Help: "end the process", Parse: constant(Exit{})})
	r.Register(Entry{Name: "WAIT", Usage: "WAIT milliseconds", Help: "legacy alias for SLEEP", Parse: parseWait, Hidden: true})
	return r
}

func constant(c Command) ArgParser {
	return func(string) (Command, error) { return c, nil }
}
