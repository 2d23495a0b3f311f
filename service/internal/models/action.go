// internal/models/action.go
package models

import (
	"fmt"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
)

// maxHandsPerSeat is the number of hands a seat can hold after a split.
const maxHandsPerSeat = 2

// BetPayload carries the wager of a Bet action.
type BetPayload struct {
	Amount    int64 `json:"amount"`
	SeatIndex int   `json:"seatIndex"`
}

// Action is the inbound action message a client sends over its table socket.
type Action struct {
	RoomID     uuid.UUID   `json:"roomId"`
	ActionType string      `json:"actionType"`      // One of Bet, Hit, Stand, DoubleDown, Split, Dealer, Reset, Sit, Leave, SitOut.
	SeatIndex  int         `json:"seatIndex"`       // Seat the action targets.
	HandIndex  int         `json:"handIndex"`       // Hand within the seat; 1 only after a split.
	Bet        *BetPayload `json:"bet,omitempty"`   // Required for Bet.
	BuyIn      int64       `json:"buyIn,omitempty"` // Required for Sit.
}

// ValidationError reports a malformed action message. It is raised before the
// message reaches the engine and never changes state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Type returns the parsed action type. It is only meaningful after Validate.
func (a Action) Type() engine.ActionType {
	t, _ := engine.ParseActionType(a.ActionType)
	return t
}

// Validate checks the shape of the message without looking at game state.
func (a Action) Validate() error {
	if a.RoomID == uuid.Nil {
		return invalid("roomId", "missing")
	}
	t, ok := engine.ParseActionType(a.ActionType)
	if !ok {
		return invalid("actionType", "unknown action %q", a.ActionType)
	}

	switch t {
	case engine.ActionDealer, engine.ActionReset:
		// Table-wide actions ignore the seat fields.
		return nil
	}

	if a.SeatIndex < 0 || a.SeatIndex >= engine.MaxSeats {
		return invalid("seatIndex", "%d out of range", a.SeatIndex)
	}
	if a.HandIndex < 0 || a.HandIndex >= maxHandsPerSeat {
		return invalid("handIndex", "%d out of range", a.HandIndex)
	}

	switch t {
	case engine.ActionBet:
		if a.Bet == nil {
			return invalid("bet", "missing")
		}
		if a.Bet.Amount <= 0 {
			return invalid("bet.amount", "must be positive")
		}
		if a.Bet.SeatIndex != a.SeatIndex {
			return invalid("bet.seatIndex", "%d does not match seatIndex %d", a.Bet.SeatIndex, a.SeatIndex)
		}
	case engine.ActionSit:
		if a.BuyIn <= 0 {
			return invalid("buyIn", "must be positive")
		}
		if a.BuyIn > engine.MaxStack {
			return invalid("buyIn", "above %d", engine.MaxStack)
		}
	}
	return nil
}

// ToEngine converts a validated message sent by actor into an engine action.
func (a Action) ToEngine(actor uuid.UUID) engine.Action {
	out := engine.Action{
		Type:      a.Type(),
		SeatIndex: a.SeatIndex,
		HandIndex: a.HandIndex,
	}
	switch out.Type {
	case engine.ActionBet:
		out.Amount = a.Bet.Amount
	case engine.ActionSit:
		out.Amount = a.BuyIn
		out.UserID = actor
	}
	return out
}
