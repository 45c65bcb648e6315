// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net"

	"github.com/holomush/visitant/internal/protocol"
	"github.com/holomush/visitant/pkg/errutil"
)

// Receiver decodes inbound datagrams onto the event queue.
type Receiver struct {
	conn   net.PacketConn
	dec    protocol.EventDecoder
	out    chan<- protocol.Event
	logger *slog.Logger
}

// NewReceiver creates a receiver reading from conn.
func NewReceiver(conn net.PacketConn, dec protocol.EventDecoder, out chan<- protocol.Event) *Receiver {
	return &Receiver{
		conn:   conn,
		dec:    dec,
		out:    out,
		logger: slog.Default().With("component", "receiver"),
	}
}

// Addr returns the local address datagrams arrive on.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Run reads until ctx is cancelled, then closes the socket and the
// event queue. Undecodable datagrams are logged and skipped.
func (r *Receiver) Run(ctx context.Context) error {
	defer close(r.out)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		if err := r.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			r.logger.Debug("error closing socket", "error", err)
		}
	}()

	r.logger.Info("receiver started", "addr", r.conn.LocalAddr())

	buf := make([]byte, protocol.MaxDatagramSize)
	for {
		n, from, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			DatagramsTotal.WithLabelValues(ResultReadError).Inc()
			r.logger.Warn("datagram read failed", "error", err)
			continue
		}

		event, err := r.dec.DecodeEvent(buf[:n])
		if err != nil {
			DatagramsTotal.WithLabelValues(ResultDecodeFailed).Inc()
			errutil.LogWarn(r.logger, "dropping undecodable datagram", err,
				"from", from.String(),
				"raw", hex.EncodeToString(buf[:n]))
			continue
		}
		DatagramsTotal.WithLabelValues(ResultDecoded).Inc()

		select {
		case r.out <- event:
		case <-ctx.Done():
			return nil
		}
	}
}
