// internal/models/event.go
package models

import (
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
)

// Event is the envelope broadcast to every subscriber of a room and written to
// a single client for errors.
type Event struct {
	Type   engine.EventType  `json:"type"`
	RoomID uuid.UUID         `json:"roomId"`
	Seq    uint64            `json:"seq,omitempty"`   // TurnSeq of the snapshot that produced the event.
	Actor  *uuid.UUID        `json:"actor,omitempty"` // User whose action caused the event; nil for timeouts.
	State  *engine.GameState `json:"state,omitempty"` // Redacted snapshot, set on gameState events.
	Error  string            `json:"error,omitempty"` // Reason, set on error events.
}

// NewStateEvent wraps a snapshot, redacting it for clients.
func NewStateEvent(g engine.GameState) Event {
	redacted := engine.Redact(g)
	return Event{
		Type:   engine.EventGameState,
		RoomID: g.RoomID,
		Seq:    g.TurnSeq,
		State:  &redacted,
	}
}

// NewErrorEvent builds an error event carrying reason.
func NewErrorEvent(roomID uuid.UUID, reason string) Event {
	return Event{Type: engine.EventError, RoomID: roomID, Error: reason}
}
