// Package engine implements the blackjack round state machine.
//
// The engine is a deterministic transformation over plain values: Apply takes
// a GameState and an Action and returns the next GameState and an Outcome. It
// performs no I/O and owns no timers; shuffling draws from the xorshift state
// carried inside the GameState, so replaying the same actions against the
// same snapshot always yields the same result.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is the round state.
type Phase uint8

const (
	PhaseWaitingForBets Phase = iota
	PhaseDealing
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseSettlement
	PhaseRoundOver
)

var phaseNames = map[Phase]string{
	PhaseWaitingForBets: "WaitingForBets",
	PhaseDealing:        "Dealing",
	PhasePlayerTurn:     "PlayerTurn",
	PhaseDealerTurn:     "DealerTurn",
	PhaseSettlement:     "Settlement",
	PhaseRoundOver:      "RoundOver",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	n, ok := phaseNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
	return []byte(n), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for k, v := range phaseNames {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Hand is one set of cards played against the dealer. A seat holds two
// hands after a split.
type Hand struct {
	Cards         []Card `json:"cards"`
	Bet           int64  `json:"bet"`
	IsDone        bool   `json:"isDone"`
	IsWon         *bool  `json:"isWon,omitempty"`
	IsPush        *bool  `json:"isPush,omitempty"`
	IsBlackjack   *bool  `json:"isBlackjack,omitempty"`
	IsCurrentHand bool   `json:"isCurrentHand"`
	Payout        int64  `json:"payout,omitempty"`
}

// Resolved reports whether the hand has been paid or lost.
func (h *Hand) Resolved() bool { return h.IsWon != nil || h.IsPush != nil }

func (h Hand) clone() Hand {
	out := h
	out.Cards = cloneCards(h.Cards)
	out.IsWon = cloneBool(h.IsWon)
	out.IsPush = cloneBool(h.IsPush)
	out.IsBlackjack = cloneBool(h.IsBlackjack)
	return out
}

// Player is the occupant of a seat. Stack is owned by the engine while a
// round is in flight.
type Player struct {
	UserID    uuid.UUID `json:"userId"`
	Stack     int64     `json:"stack"`
	SeatIndex int       `json:"seatRef"`
}

// Seat is one table position.
type Seat struct {
	Hands  []Hand  `json:"hands"`
	IsTurn bool    `json:"isTurn"`
	IsAfk  bool    `json:"isAfk"`
	Player *Player `json:"player,omitempty"`
}

// Occupied reports whether a player sits here.
func (s *Seat) Occupied() bool { return s.Player != nil }

// inRound reports whether the seat was dealt into the current round.
func (s *Seat) inRound() bool {
	return s.Player != nil && !s.IsAfk && len(s.Hands) > 0 && len(s.Hands[0].Cards) > 0
}

func (s Seat) clone() Seat {
	out := s
	if s.Hands != nil {
		out.Hands = make([]Hand, len(s.Hands))
		for i, h := range s.Hands {
			out.Hands[i] = h.clone()
		}
	}
	if s.Player != nil {
		p := *s.Player
		out.Player = &p
	}
	return out
}

// GameState is the complete snapshot of one room's table. It is the unit
// persisted in the state store.
type GameState struct {
	RoomID           uuid.UUID  `json:"roomId"`
	TableConfigID    string     `json:"tableConfigId"`
	Rules            TableRules `json:"rules"`
	Phase            Phase      `json:"phase"`
	DealerHand       Hand       `json:"dealerHand"`
	Seats            []Seat     `json:"seats"`
	RoundOver        bool       `json:"roundOver"`
	ReshufflePending bool       `json:"reshufflePending"`
	Shoe             Shoe       `json:"shoe"`

	// TurnSeq increases on every applied action. Turn timers carry it so a
	// timer that fires after the turn moved on can be recognised as stale.
	TurnSeq uint64 `json:"turnSeq"`
	// Version is maintained by the state store for compare-and-swap writes.
	Version uint64 `json:"version"`
	RNG     RNG    `json:"rng,omitempty"`
}

// NewGame creates the table for a room: shuffled shoe, empty seats, waiting
// for bets.
func NewGame(roomID uuid.UUID, tableConfigID string, rules TableRules, seed uint64) GameState {
	g := GameState{
		RoomID:        roomID,
		TableConfigID: tableConfigID,
		Rules:         rules,
		Phase:         PhaseWaitingForBets,
		Seats:         make([]Seat, rules.Seats),
		RNG:           NewRNG(seed),
	}
	g.Shoe = NewShoe(rules.DeckCount, &g.RNG)
	g.Shoe.Shuffle(&g.RNG)
	return g
}

// Clone returns a deep copy sharing no slices or pointers with g.
func (g GameState) Clone() GameState {
	out := g
	out.DealerHand = g.DealerHand.clone()
	out.Shoe = g.Shoe.clone()
	if g.Seats != nil {
		out.Seats = make([]Seat, len(g.Seats))
		for i, s := range g.Seats {
			out.Seats[i] = s.clone()
		}
	}
	return out
}

// CurrentTurn returns the seat and hand index whose turn it is. ok is false
// outside the PlayerTurn phase.
func (g *GameState) CurrentTurn() (seat, hand int, ok bool) {
	if g.Phase != PhasePlayerTurn {
		return 0, 0, false
	}
	for si := range g.Seats {
		if !g.Seats[si].IsTurn {
			continue
		}
		for hi := range g.Seats[si].Hands {
			if g.Seats[si].Hands[hi].IsCurrentHand {
				return si, hi, true
			}
		}
	}
	return 0, 0, false
}

// SeatOf returns the seat index held by userID, or -1.
func (g *GameState) SeatOf(userID uuid.UUID) int {
	for i := range g.Seats {
		if p := g.Seats[i].Player; p != nil && p.UserID == userID {
			return i
		}
	}
	return -1
}

// IdleSeats returns occupied, non-AFK seats that have not bet yet.
func (g *GameState) IdleSeats() []int {
	var out []int
	for i := range g.Seats {
		s := &g.Seats[i]
		if !s.Occupied() || s.IsAfk {
			continue
		}
		if len(s.Hands) == 0 || s.Hands[0].Bet == 0 {
			out = append(out, i)
		}
	}
	return out
}

// HasBets reports whether any seat has a bet on the table.
func (g *GameState) HasBets() bool {
	for i := range g.Seats {
		for _, h := range g.Seats[i].Hands {
			if h.Bet > 0 {
				return true
			}
		}
	}
	return false
}

// draw takes the front card of the shoe. A CUT card is consumed and flags a
// reshuffle for the next round boundary.
func (g *GameState) draw() (Card, error) {
	for len(g.Shoe.DrawPile) > 0 {
		c := g.Shoe.DrawPile[0]
		g.Shoe.DrawPile = g.Shoe.DrawPile[1:]
		if c.IsCut() {
			g.ReshufflePending = true
			continue
		}
		return c, nil
	}
	return Card{}, ErrShoeExhausted
}

// cardsOnTable lists every card held by the dealer or a seat.
func (g *GameState) cardsOnTable() []Card {
	out := cloneCards(g.DealerHand.Cards)
	for i := range g.Seats {
		for _, h := range g.Seats[i].Hands {
			out = append(out, h.Cards...)
		}
	}
	return out
}

func (g *GameState) seatIndexValid(i int) bool {
	return i >= 0 && i < len(g.Seats)
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func boolPtr(b bool) *bool { return &b }
