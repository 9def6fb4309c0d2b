// Package transport owns the websocket connection wrapper and the JSON
// wire vocabulary exchanged with participants.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// wireFrame is the single shape every inbound JSON frame is parsed into
// before being resolved to a concrete Inbound value. Keeping one decode
// step (rather than scattering `msg["type"].(string)` checks through the
// handlers) is what makes the per-type switch in ParseInbound exhaustive.
type wireFrame struct {
	Type      string                     `json:"type"`
	Role      string                     `json:"role,omitempty"`
	CustomID  string                     `json:"customId,omitempty"`
	Target    string                     `json:"target,omitempty"`
	Offer     *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer    *webrtc.SessionDescription `json:"answer,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	Payload   json.RawMessage            `json:"payload,omitempty"`
}

// Inbound is the sum type of every message a participant may send. Each
// concrete type below is the exhaustive membership; ParseInbound is the
// only place a raw `type` string is switched on.
type Inbound interface {
	inbound()
}

type RegisterMsg struct {
	Role     string
	CustomID string
}

type HeartbeatMsg struct{}

type OfferMsg struct {
	Target string
	Offer  *webrtc.SessionDescription
}

type AnswerMsg struct {
	Target string
	Answer *webrtc.SessionDescription
}

type CandidateMsg struct {
	Target    string
	Candidate *webrtc.ICECandidateInit
}

type CmdMsg struct {
	Payload json.RawMessage
}

type MetadataMsg struct {
	Payload json.RawMessage
}

type RoomMessageMsg struct {
	Payload json.RawMessage
}

func (RegisterMsg) inbound()    {}
func (HeartbeatMsg) inbound()   {}
func (OfferMsg) inbound()       {}
func (AnswerMsg) inbound()      {}
func (CandidateMsg) inbound()   {}
func (CmdMsg) inbound()         {}
func (MetadataMsg) inbound()    {}
func (RoomMessageMsg) inbound() {}

// ParseInbound decodes a single JSON frame into its typed Inbound value.
// A malformed frame or an unrecognized type yields an error; callers must
// drop the frame silently and keep the connection open, per protocol.
func ParseInbound(raw []byte) (Inbound, error) {
	var w wireFrame
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch w.Type {
	case "register":
		return RegisterMsg{Role: w.Role, CustomID: w.CustomID}, nil
	case "heartbeat":
		return HeartbeatMsg{}, nil
	case "offer":
		if w.Target == "" || w.Offer == nil {
			return nil, fmt.Errorf("offer missing target or offer body")
		}
		return OfferMsg{Target: w.Target, Offer: w.Offer}, nil
	case "answer":
		if w.Target == "" || w.Answer == nil {
			return nil, fmt.Errorf("answer missing target or answer body")
		}
		return AnswerMsg{Target: w.Target, Answer: w.Answer}, nil
	case "candidate":
		if w.Target == "" || w.Candidate == nil {
			return nil, fmt.Errorf("candidate missing target or candidate body")
		}
		return CandidateMsg{Target: w.Target, Candidate: w.Candidate}, nil
	case "cmd":
		return CmdMsg{Payload: w.Payload}, nil
	case "metadata":
		return MetadataMsg{Payload: w.Payload}, nil
	case "room-message":
		return RoomMessageMsg{Payload: w.Payload}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", w.Type)
	}
}

// RegisteredAsBroadcaster confirms a broadcaster registration.
type RegisteredAsBroadcaster struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RoomAssigned reports a listener's placement result. Parent is nil when
// the listener remains an orphan.
type RoomAssigned struct {
	Type   string  `json:"type"`
	Label  string  `json:"label"`
	Parent *string `json:"parent"`
}

// ListenerJoined notifies a parent that a new child has attached, the
// trigger for that parent to begin a peer-to-peer offer.
type ListenerJoined struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	ChildLabel string `json:"child_label"`
}

// Reassigned notifies a listener that it has a new parent, or none.
type Reassigned struct {
	Type      string  `json:"type"`
	NewParent *string `json:"new_parent"`
}

// ChildLeft notifies a parent that one of its children has disconnected.
type ChildLeft struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RelayedOffer, RelayedAnswer and RelayedCandidate carry a point-to-point
// handshake message to its addressed peer, rewritten with the sender id.
type RelayedOffer struct {
	Type  string                     `json:"type"`
	From  string                     `json:"from"`
	Offer *webrtc.SessionDescription `json:"offer"`
}

type RelayedAnswer struct {
	Type   string                     `json:"type"`
	From   string                     `json:"from"`
	Answer *webrtc.SessionDescription `json:"answer"`
}

type RelayedCandidate struct {
	Type      string                   `json:"type"`
	From      string                   `json:"from"`
	Candidate *webrtc.ICECandidateInit `json:"candidate"`
}

// CmdOut carries the broadcaster's control fan-out. The payload is placed
// directly under the "cmd" key.
type CmdOut struct {
	Type string          `json:"type"`
	Cmd  json.RawMessage `json:"cmd"`
}

// MetadataOut carries the broadcaster's metadata fan-out. The
// payload's own fields are merged into the outbound envelope rather than
// nested under a "payload" key.
type MetadataOut struct {
	Payload json.RawMessage
}

func (m MetadataOut) MarshalJSON() ([]byte, error) {
	merged := map[string]any{}
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &merged); err != nil {
			return nil, fmt.Errorf("metadata payload must be a JSON object: %w", err)
		}
	}
	merged["type"] = "metadata"
	return json.Marshal(merged)
}

// RoomMessageOut forwards a subtree message to a direct child.
type RoomMessageOut struct {
	Type    string          `json:"type"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorOut is the wire shape of an error frame. No code path in this
// module sends it; the routine silent-drop cases send nothing at all.
type ErrorOut struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
