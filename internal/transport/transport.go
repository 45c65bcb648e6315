// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package transport moves protocol messages over UDP.
package transport

import (
	"net"
	"strconv"

	"github.com/samber/oops"
)

// Error codes.
const (
	CodeBindFailed    = "BIND_FAILED"
	CodeResolveFailed = "RESOLVE_FAILED"
	CodeSendFailed    = "SEND_FAILED"
)

// Listen binds the local UDP socket used for both directions.
func Listen(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, oops.Code(CodeBindFailed).With("addr", addr).Wrap(err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, oops.Code(CodeBindFailed).With("addr", addr).Wrap(err)
	}
	return conn, nil
}

// ResolveServer resolves the server's datagram address.
func ResolveServer(host string, port int) (*net.UDPAddr, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, oops.Code(CodeResolveFailed).With("addr", addr).Wrap(err)
	}
	return udpAddr, nil
}
