// internal/rooms/rooms.go
package rooms

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
)

// ErrRoomNotFound is returned when a room has no membership record.
var ErrRoomNotFound = errors.New("rooms: room not found")

// Membership is the snapshot of who may act in a room, as maintained by the
// lobby that created it.
type Membership struct {
	RoomID  uuid.UUID
	HostID  uuid.UUID
	Members []uuid.UUID
}

// IsMember reports whether user belongs to the room. The host always does.
func (m Membership) IsMember(user uuid.UUID) bool {
	return user == m.HostID || slices.Contains(m.Members, user)
}

// IsHost reports whether user hosts the room.
func (m Membership) IsHost(user uuid.UUID) bool {
	return user == m.HostID
}

// Directory looks up room membership.
type Directory interface {
	Membership(ctx context.Context, roomID uuid.UUID) (Membership, error)
}

// SeatResult is one seat's share of a settled round.
type SeatResult struct {
	SeatIndex int         `json:"seatIndex"`
	UserID    uuid.UUID   `json:"userId"`
	Stack     int64       `json:"stack"`
	Hands     []HandEntry `json:"hands"`
}

// HandEntry is a settled hand.
type HandEntry struct {
	Cards  []engine.Card `json:"cards"`
	Total  int           `json:"total"`
	Payout int64         `json:"payout"`
	Won    bool          `json:"won"`
	Push   bool          `json:"push"`
}

// RoundResult is the record archived when a round is settled.
type RoundResult struct {
	RoomID    uuid.UUID     `json:"roomId"`
	TurnSeq   uint64        `json:"turnSeq"`
	TableName string        `json:"tableName"`
	Dealer    []engine.Card `json:"dealer"`
	Seats     []SeatResult  `json:"seats"`
}

// NewRoundResult summarizes a snapshot in RoundOver.
func NewRoundResult(g engine.GameState) RoundResult {
	res := RoundResult{
		RoomID:    g.RoomID,
		TurnSeq:   g.TurnSeq,
		TableName: g.TableConfigID,
		Dealer:    slices.Clone(g.DealerHand.Cards),
	}
	for i, s := range g.Seats {
		if s.Player == nil || len(s.Hands) == 0 {
			continue
		}
		sr := SeatResult{SeatIndex: i, UserID: s.Player.UserID, Stack: s.Player.Stack}
		for _, h := range s.Hands {
			sr.Hands = append(sr.Hands, HandEntry{
				Cards:  slices.Clone(h.Cards),
				Total:  engine.Total(h.Cards),
				Payout: h.Payout,
				Won:    h.IsWon != nil && *h.IsWon,
				Push:   h.IsPush != nil && *h.IsPush,
			})
		}
		res.Seats = append(res.Seats, sr)
	}
	return res
}

// Recorder archives settled rounds.
type Recorder interface {
	RecordRound(ctx context.Context, res RoundResult) error
}
