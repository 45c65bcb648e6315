// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"math"
	"strconv"
	"strings"
)

var defaultRegistry = DefaultRegistry()

// Parse turns one line of operator input into a Command using the
// default registry.
func Parse(line string) (Command, error) {
	return defaultRegistry.Parse(line)
}

// Parse turns one line of operator input into a Command.
//
// The keyword is the first whitespace-delimited token, matched without
// regard to case. Everything after it is handed to the keyword's parser
// with internal whitespace intact. Blank lines yield ErrEmptyInput.
func (r *Registry) Parse(line string) (Command, error) {
	name, args := split(line)
	if name == "" {
		return nil, ErrEmptyInput
	}

	entry, ok := r.Get(name)
	if !ok {
		return nil, ErrUnknownCommand(strings.ToUpper(name))
	}
	return entry.Parse(args)
}

// split separates the keyword from its arguments. Leading whitespace is
// trimmed from the arguments; internal whitespace is kept.
func split(line string) (name, args string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", ""
	}
	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return trimmed, ""
	}
	return trimmed[:idx], strings.TrimLeft(trimmed[idx+1:], " \t")
}

func parseLogin(args string) (Command, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 || len(fields) > 4 {
		return nil, ErrInvalidArgs("LOGIN", "LOGIN First Last Pass [URI]")
	}
	login := Login{First: fields[0], Last: fields[1], Password: fields[2]}
	if len(fields) == 4 {
		login.URI = fields[3]
	}
	return login, nil
}

func parseChat(args string) (Command, error) {
	if args == "" {
		return nil, ErrInvalidArgs("CHAT", "CHAT text")
	}
	return Chat{Text: args}, nil
}

func parseSleep(args string) (Command, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, ErrInvalidArgs("SLEEP", "SLEEP float_seconds")
	}
	return Sleep{Seconds: seconds}, nil
}

func parseWait(args string) (Command, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || ms < 0 {
		return nil, ErrInvalidArgs("WAIT", "WAIT milliseconds")
	}
	return Sleep{Seconds: float64(ms) / 1000}, nil
}

// parseBecause keeps the text verbatim, dropping one pair of enclosing
// double quotes so `SUBJECTIVE_BECAUSE "x"` and `SUBJECTIVE_BECAUSE x`
// record the same reason.
func parseBecause(args string) (Command, error) {
	text := strings.TrimRight(args, " \t")
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	return SubjectiveBecause{Text: text}, nil
}

func parseGoto(args string) (Command, error) {
	return SubjectiveGoto{Dest: strings.TrimSpace(args)}, nil
}

func parsePos(args string) (Command, error) {
	return Pos{Dest: strings.TrimSpace(args)}, nil
}
