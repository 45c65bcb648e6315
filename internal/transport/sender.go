// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package transport

import (
	"context"
	"net"

	"github.com/samber/oops"

	"github.com/holomush/visitant/internal/protocol"
)

// Sender writes actions to the server. Delivery is at most once; failed
// sends are reported and never retried.
type Sender struct {
	conn   net.PacketConn
	server net.Addr
	enc    protocol.ActionEncoder
}

// NewSender creates a sender that writes through conn, normally the
// socket the Receiver reads, so replies come back to the same port.
func NewSender(conn net.PacketConn, server net.Addr, enc protocol.ActionEncoder) *Sender {
	return &Sender{conn: conn, server: server, enc: enc}
}

// Server returns the destination address.
func (s *Sender) Server() net.Addr {
	return s.server
}

// Send encodes a and writes it as one datagram.
func (s *Sender) Send(ctx context.Context, a protocol.Action) error {
	name := "nil"
	if a != nil {
		name = a.ActionKind().String()
	}

	if err := ctx.Err(); err != nil {
		ActionsTotal.WithLabelValues(name, StatusFailed).Inc()
		return oops.Code(CodeSendFailed).With("action", name).Wrap(err)
	}

	b, err := s.enc.EncodeAction(a)
	if err != nil {
		ActionsTotal.WithLabelValues(name, StatusFailed).Inc()
		return oops.With("action", name).Wrap(err)
	}

	if _, err := s.conn.WriteTo(b, s.server); err != nil {
		ActionsTotal.WithLabelValues(name, StatusFailed).Inc()
		return oops.Code(CodeSendFailed).
			With("action", name).
			With("server", s.server.String()).
			Wrap(err)
	}
	ActionsTotal.WithLabelValues(name, StatusSent).Inc()
	return nil
}
