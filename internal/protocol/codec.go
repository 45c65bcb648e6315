// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package protocol

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/oops"
)

// Error codes returned by the codec.
const (
	CodeEncodeFailed = "ENCODE_FAILED"
	CodeDecodeFailed = "DECODE_FAILED"
	CodeUnknownKind  = "UNKNOWN_KIND"
)

// MaxDatagramSize is the largest datagram the codec will produce or accept.
const MaxDatagramSize = 65535

// ActionEncoder turns an outbound action into a datagram payload.
type ActionEncoder interface {
	EncodeAction(a Action) ([]byte, error)
}

// EventDecoder turns a datagram payload into an inbound event.
type EventDecoder interface {
	DecodeEvent(b []byte) (Event, error)
}

// envelope is the wire frame: a two-element CBOR array of kind and body.
type envelope struct {
	_    struct{} `cbor:",toarray"`
	Kind Kind
	Body cbor.RawMessage
}

// Codec encodes and decodes both message directions as CBOR envelopes.
// The client uses EncodeAction and DecodeEvent; the reverse pair serves
// server-side tooling and tests.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCodec creates a codec with deterministic encoding and bounded decoding.
func NewCodec() (*Codec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, oops.Code(CodeEncodeFailed).Wrap(err)
	}
	dec, err := cbor.DecOptions{
		MaxNestedLevels:  16,
		MaxArrayElements: 1024,
		MaxMapPairs:      64,
	}.DecMode()
	if err != nil {
		return nil, oops.Code(CodeDecodeFailed).Wrap(err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// EncodeAction encodes an outbound action.
func (c *Codec) EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, oops.Code(CodeEncodeFailed).Errorf("nil action")
	}
	return c.encode(a.ActionKind(), a)
}

// EncodeEvent encodes an inbound event.
func (c *Codec) EncodeEvent(e Event) ([]byte, error) {
	if e == nil {
		return nil, oops.Code(CodeEncodeFailed).Errorf("nil event")
	}
	return c.encode(e.EventKind(), e)
}

func (c *Codec) encode(kind Kind, body any) ([]byte, error) {
	raw, err := c.enc.Marshal(body)
	if err != nil {
		return nil, oops.Code(CodeEncodeFailed).With("kind", kind.String()).Wrap(err)
	}
	out, err := c.enc.Marshal(envelope{Kind: kind, Body: raw})
	if err != nil {
		return nil, oops.Code(CodeEncodeFailed).With("kind", kind.String()).Wrap(err)
	}
	if len(out) > MaxDatagramSize {
		return nil, oops.Code(CodeEncodeFailed).
			With("kind", kind.String()).
			With("size", len(out)).
			Errorf("encoded message exceeds datagram size")
	}
	return out, nil
}

func (c *Codec) open(b []byte) (envelope, error) {
	var env envelope
	if len(b) == 0 {
		return env, oops.Code(CodeDecodeFailed).Errorf("empty datagram")
	}
	if err := c.dec.Unmarshal(b, &env); err != nil {
		return env, oops.Code(CodeDecodeFailed).With("size", len(b)).Wrap(err)
	}
	if len(env.Body) == 0 {
		return env, oops.Code(CodeDecodeFailed).With("kind", env.Kind.String()).Errorf("missing body")
	}
	return env, nil
}

// DecodeEvent decodes an inbound event. Action kinds and unknown kinds
// are rejected with CodeUnknownKind.
func (c *Codec) DecodeEvent(b []byte) (Event, error) {
	env, err := c.open(b)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case KindLoginResponse:
		return decodeEvent[LoginResponse](c.dec, env)
	case KindError:
		return decodeEvent[Error](c.dec, env)
	case KindCoarseLocationUpdate:
		return decodeEvent[CoarseLocationUpdate](c.dec, env)
	case KindPresenceUpdate:
		return decodeEvent[PresenceUpdate](c.dec, env)
	case KindMeshUpdate:
		return decodeEvent[MeshUpdate](c.dec, env)
	case KindCameraPosition:
		return decodeEvent[CameraPosition](c.dec, env)
	case KindChatFromServer:
		return decodeEvent[ChatFromServer](c.dec, env)
	case KindDisableServer:
		return decodeEvent[DisableServer](c.dec, env)
	default:
		return nil, oops.Code(CodeUnknownKind).With("kind", uint8(env.Kind)).Errorf("unknown event kind %d", env.Kind)
	}
}

// DecodeAction decodes an outbound action.
func (c *Codec) DecodeAction(b []byte) (Action, error) {
	env, err := c.open(b)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case KindLoginRequest:
		return decodeAction[LoginRequest](c.dec, env)
	case KindChatFromViewer:
		return decodeAction[ChatFromViewer](c.dec, env)
	case KindAgentUpdate:
		return decodeAction[AgentUpdate](c.dec, env)
	case KindLogoutRequest:
		return decodeAction[LogoutRequest](c.dec, env)
	default:
		return nil, oops.Code(CodeUnknownKind).With("kind", uint8(env.Kind)).Errorf("unknown action kind %d", env.Kind)
	}
}

func decodeEvent[T Event](dec cbor.DecMode, env envelope) (Event, error) {
	var v T
	if err := dec.Unmarshal(env.Body, &v); err != nil {
		return nil, oops.Code(CodeDecodeFailed).With("kind", env.Kind.String()).Wrap(err)
	}
	return v, nil
}

func decodeAction[T Action](dec cbor.DecMode, env envelope) (Action, error) {
	var v T
	if err := dec.Unmarshal(env.Body, &v); err != nil {
		return nil, oops.Code(CodeDecodeFailed).With("kind", env.Kind.String()).Wrap(err)
	}
	return v, nil
}
