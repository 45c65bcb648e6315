// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/visitant/pkg/errutil"
)

// Error codes for rejected input lines.
const (
	CodeEmptyInput     = "EMPTY_INPUT"
	CodeUnknownCommand = "UNKNOWN_COMMAND"
	CodeInvalidArgs    = "INVALID_ARGS"
	CodeLineTooLong    = "LINE_TOO_LONG"
)

// ErrEmptyInput is returned for blank lines, which callers ignore.
var ErrEmptyInput = oops.Code(CodeEmptyInput).Errorf("no command provided")

// ErrUnknownCommand creates an error for an unrecognized keyword.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrInvalidArgs creates an error for arguments that do not fit usage.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrLineTooLong creates an error for an operator line longer than limit
// bytes. The line is discarded.
func ErrLineTooLong(limit int) error {
	return oops.Code(CodeLineTooLong).
		With("limit", limit).
		Errorf("input line exceeds %d bytes", limit)
}

// IsEmpty reports whether err is ErrEmptyInput. Matching is by code since
// oops errors compare equal to each other under errors.Is.
func IsEmpty(err error) bool {
	return errutil.Code(err) == CodeEmptyInput
}

// OperatorMessage renders the notice shown to the operator for a
// rejected line.
func OperatorMessage(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Error: " + err.Error()
	}

	ctx := oopsErr.Context()
	switch errutil.Code(err) {
	case CodeUnknownCommand:
		if cmd, ok := ctx["command"].(string); ok {
			return "Unknown command: " + cmd
		}
		return "Unknown command."
	case CodeInvalidArgs:
		if usage, ok := ctx["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodeLineTooLong:
		if limit, ok := ctx["limit"].(int); ok {
			return "Line too long, limit is " + strconv.Itoa(limit) + " bytes"
		}
		return "Line too long."
	case CodeEmptyInput:
		return ""
	default:
		return "Error: " + strings.TrimSpace(oopsErr.Error())
	}
}
