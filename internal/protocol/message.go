// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package protocol defines the messages exchanged with the session
// server and the codec that puts them on the wire.
//
// Two closed sets exist: Actions flow from the client to the server and
// Events flow back. Each concrete type reports its Kind, which is the
// discriminator written into the envelope.
package protocol

// Kind discriminates message types on the wire. Values are stable; new
// kinds are appended.
type Kind uint8

// Outbound action kinds.
const (
	KindLoginRequest Kind = iota + 1
	KindChatFromViewer
	KindAgentUpdate
	KindLogoutRequest
)

// Inbound event kinds.
const (
	KindLoginResponse Kind = iota + 32
	KindError
	KindCoarseLocationUpdate
	KindPresenceUpdate
	KindMeshUpdate
	KindCameraPosition
	KindChatFromServer
	KindDisableServer
)

func (k Kind) String() string {
	switch k {
	case KindLoginRequest:
		return "login_request"
	case KindChatFromViewer:
		return "chat_from_viewer"
	case KindAgentUpdate:
		return "agent_update"
	case KindLogoutRequest:
		return "logout_request"
	case KindLoginResponse:
		return "login_response"
	case KindError:
		return "error"
	case KindCoarseLocationUpdate:
		return "coarse_location_update"
	case KindPresenceUpdate:
		return "presence_update"
	case KindMeshUpdate:
		return "mesh_update"
	case KindCameraPosition:
		return "camera_position"
	case KindChatFromServer:
		return "chat_from_server"
	case KindDisableServer:
		return "disable_server"
	default:
		return "unknown"
	}
}

// Action is a message sent by the client.
type Action interface {
	ActionKind() Kind
}

// Event is a message received from the server.
type Event interface {
	EventKind() Kind
}

// ChatType selects how loudly a chat line is delivered.
type ChatType uint8

// Chat types.
const (
	ChatWhisper ChatType = iota
	ChatNormal
	ChatShout
)

// LoginRequest asks the server to open a session.
type LoginRequest struct {
	First        string `cbor:"1,keyasint"`
	Last         string `cbor:"2,keyasint"`
	Password     string `cbor:"3,keyasint"`
	Start        string `cbor:"4,keyasint"`
	Channel      string `cbor:"5,keyasint"`
	AgreeToTOS   bool   `cbor:"6,keyasint"`
	ReadCritical bool   `cbor:"7,keyasint"`
	URI          string `cbor:"8,keyasint"`
}

// ChatFromViewer is a chat line spoken by the client.
type ChatFromViewer struct {
	Message string   `cbor:"1,keyasint"`
	Channel int32    `cbor:"2,keyasint"`
	Type    ChatType `cbor:"3,keyasint"`
}

// AgentUpdate tells the server the agent is present and active.
type AgentUpdate struct {
	ControlFlags uint32 `cbor:"1,keyasint,omitempty"`
}

// LogoutRequest closes the session.
type LogoutRequest struct{}

func (LoginRequest) ActionKind() Kind   { return KindLoginRequest }
func (ChatFromViewer) ActionKind() Kind { return KindChatFromViewer }
func (AgentUpdate) ActionKind() Kind    { return KindAgentUpdate }
func (LogoutRequest) ActionKind() Kind  { return KindLogoutRequest }

// LoginResponse reports a successful login.
type LoginResponse struct {
	FirstName string `cbor:"1,keyasint"`
	LastName  string `cbor:"2,keyasint"`
	AgentID   string `cbor:"3,keyasint,omitempty"`
}

// Error reports a login or session failure.
type Error struct {
	Detail string `cbor:"1,keyasint"`
}

// CoarseLocationUpdate carries approximate positions of nearby agents.
type CoarseLocationUpdate struct{}

// PresenceUpdate is a presence or land update. Servers send these
// repeatedly, so the engine deduplicates them in its trace.
type PresenceUpdate struct {
	Region string `cbor:"1,keyasint,omitempty"`
}

// MeshUpdate announces mesh data.
type MeshUpdate struct{}

// CameraPosition moves the viewer camera.
type CameraPosition struct{}

// ChatFromServer is a chat line heard by the client.
type ChatFromServer struct {
	FromName string `cbor:"1,keyasint"`
	Message  string `cbor:"2,keyasint"`
}

// DisableServer announces that the server is shutting the session down.
type DisableServer struct{}

func (LoginResponse) EventKind() Kind        { return KindLoginResponse }
func (Error) EventKind() Kind                { return KindError }
func (CoarseLocationUpdate) EventKind() Kind { return KindCoarseLocationUpdate }
func (PresenceUpdate) EventKind() Kind       { return KindPresenceUpdate }
func (MeshUpdate) EventKind() Kind           { return KindMeshUpdate }
func (CameraPosition) EventKind() Kind       { return KindCameraPosition }
func (ChatFromServer) EventKind() Kind       { return KindChatFromServer }
func (DisableServer) EventKind() Kind        { return KindDisableServer }
