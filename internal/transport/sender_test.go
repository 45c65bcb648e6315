// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/visitant/internal/protocol"
	"github.com/holomush/visitant/pkg/errutil"
)

func TestSender_Send(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	local, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer local.Close()

	codec := newCodec(t)
	sender := NewSender(local, server.LocalAddr(), codec)
	assert.Equal(t, server.LocalAddr(), sender.Server())

	sent := ActionsTotal.WithLabelValues("chat_from_viewer", StatusSent)
	before := testutil.ToFloat64(sent)

	action := protocol.ChatFromViewer{Message: "hello", Type: protocol.ChatNormal}
	require.NoError(t, sender.Send(context.Background(), action))

	buf := make([]byte, protocol.MaxDatagramSize)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, from, err := server.ReadFrom(buf)
	require.NoError(t, err)

	got, err := codec.DecodeAction(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, action, got)
	assert.Equal(t, local.LocalAddr().String(), from.String(), "replies must reach the receive socket")
	assert.InDelta(t, 1, testutil.ToFloat64(sent)-before, 0)
}

func TestSender_EncodeFailure(t *testing.T) {
	local, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer local.Close()

	sender := NewSender(local, local.LocalAddr(), newCodec(t))
	err = sender.Send(context.Background(), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, protocol.CodeEncodeFailed)
}

func TestSender_WriteFailure(t *testing.T) {
	local, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, local.Close())

	sender := NewSender(local, local.LocalAddr(), newCodec(t))
	err = sender.Send(context.Background(), protocol.LogoutRequest{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, CodeSendFailed)
	errutil.AssertErrorContext(t, err, "action", "logout_request")
}

func TestSender_CancelledContext(t *testing.T) {
	local, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer local.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewSender(local, local.LocalAddr(), newCodec(t)).Send(ctx, protocol.AgentUpdate{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, CodeSendFailed)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)
	DatagramsTotal.WithLabelValues(ResultDecoded).Add(0)
	ActionsTotal.WithLabelValues("agent_update", StatusSent).Add(0)

	count, err := testutil.GatherAndCount(reg, "visitant_datagrams_total", "visitant_actions_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}
