// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/visitant/internal/trace"
	"github.com/holomush/visitant/pkg/errutil"
)

// maxLineSize bounds a single operator line.
const maxLineSize = 64 * 1024

// Reader feeds operator lines into the command queue. It never touches
// session state; rejected lines are reported back as trace notices.
type Reader struct {
	in       io.Reader
	out      chan<- Command
	tracer   trace.Emitter
	registry *Registry
	logger   *slog.Logger
}

// NewReader creates a Reader that parses lines from in with the default
// registry and pushes the results onto out.
func NewReader(in io.Reader, out chan<- Command, tracer trace.Emitter) *Reader {
	return &Reader{
		in:       in,
		out:      out,
		tracer:   tracer,
		registry: defaultRegistry,
		logger:   slog.Default().With("component", "command_reader"),
	}
}

// Run reads until end of input or until ctx is cancelled, then closes
// out. End of input enqueues an implicit Exit first.
//
// Reads happen on a separate goroutine so that cancellation does not
// wait for a blocked read; that goroutine is abandoned if the input
// never returns.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.out)

	lines := make(chan inputLine)
	readErr := make(chan error, 1)

	go func() {
		readErr <- pumpLines(ctx, r.in, lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			if err != nil {
				r.logger.Warn("command input failed, treating as end of input", "error", err)
			}
			r.enqueue(ctx, Exit{EndOfInput: true})
			return nil

		case line := <-lines:
			if line.tooLong {
				r.reject(ErrLineTooLong(maxLineSize))
				continue
			}
			r.handle(ctx, line.text)
		}
	}
}

type inputLine struct {
	text    string
	tooLong bool
}

// pumpLines sends each line of in to lines until EOF, a read error or
// ctx ends. EOF returns nil.
func pumpLines(ctx context.Context, in io.Reader, lines chan<- inputLine) error {
	br := bufio.NewReaderSize(in, 4096)
	for {
		line, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if err == nil || line.text != "" || line.tooLong {
			select {
			case lines <- line:
			case <-ctx.Done():
				return nil
			}
		}
		if err != nil {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Bytes past
// maxLineSize are read and dropped so the following line starts clean.
func readLine(br *bufio.Reader) (inputLine, error) {
	var (
		buf  []byte
		line inputLine
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !line.tooLong {
			if len(buf)+len(bytes.TrimRight(chunk, "\r\n")) > maxLineSize {
				line.tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		buf = bytes.TrimSuffix(buf, []byte("\n"))
		buf = bytes.TrimSuffix(buf, []byte("\r"))
		line.text = string(buf)
		return line, err
	}
}

func (r *Reader) handle(ctx context.Context, line string) {
	cmd, err := r.registry.Parse(line)
	if IsEmpty(err) {
		return
	}
	r.tracer.Emit("STDIN", "COMMAND", line)
	if err != nil {
		r.reject(err)
		return
	}
	if r.enqueue(ctx, cmd) {
		RecordCommand(cmd.Name(), StatusQueued)
	}
}

// reject reports a line that produced no command. Unknown keywords share
// one metric label to keep cardinality bounded.
func (r *Reader) reject(err error) {
	label, status := "unrecognized", StatusUnknown
	if errutil.Code(err) == CodeInvalidArgs {
		status = StatusInvalid
		if oopsErr, ok := oops.AsOops(err); ok {
			if name, ok := oopsErr.Context()["command"].(string); ok {
				label = name
			}
		}
	}
	r.logger.Debug("rejected command line", "error", err, "status", status)
	RecordCommand(label, status)
	r.tracer.Emit("System", "Warning", OperatorMessage(err))
}

// enqueue blocks until the command is accepted or ctx ends.
func (r *Reader) enqueue(ctx context.Context, cmd Command) bool {
	select {
	case r.out <- cmd:
		return true
	case <-ctx.Done():
		return false
	}
}
