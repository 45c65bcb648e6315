// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trace

import "sync"

// Entry is one recorded signal.
type Entry struct {
	Sys string
	Sig string
	Val string
}

// Recorder is an Emitter that keeps entries in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Emit records the signal.
func (r *Recorder) Emit(sys, sig, val string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Sys: sys, Sig: sig, Val: val})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Filter returns the recorded entries matching sys and sig.
func (r *Recorder) Filter(sys, sig string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Sys == sys && e.Sig == sig {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match sys and sig.
func (r *Recorder) Count(sys, sig string) int {
	return len(r.Filter(sys, sig))
}
