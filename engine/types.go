package engine

import "fmt"

// Suit of a card. SuitCut and SuitHidden are sentinels that never take part
// in hand math.
type Suit uint8

const (
	SuitHearts Suit = iota + 1
	SuitDiamonds
	SuitClubs
	SuitSpades
	SuitCut
	SuitHidden
)

// Rank of a card. Numeric ranks carry their pip value (RankTwo == 2).
type Rank uint8

const (
	RankAce Rank = iota + 1
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankCut
	RankHidden
)

var suitNames = map[Suit]string{
	SuitHearts:   "H",
	SuitDiamonds: "D",
	SuitClubs:    "C",
	SuitSpades:   "S",
	SuitCut:      "CUT",
	SuitHidden:   "HIDDEN",
}

var rankNames = map[Rank]string{
	RankAce:    "A",
	RankTwo:    "2",
	RankThree:  "3",
	RankFour:   "4",
	RankFive:   "5",
	RankSix:    "6",
	RankSeven:  "7",
	RankEight:  "8",
	RankNine:   "9",
	RankTen:    "10",
	RankJack:   "J",
	RankQueen:  "Q",
	RankKing:   "K",
	RankCut:    "CUT",
	RankHidden: "HIDDEN",
}

func (s Suit) String() string {
	if n, ok := suitNames[s]; ok {
		return n
	}
	return "?"
}

func (s Suit) MarshalText() ([]byte, error) {
	n, ok := suitNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown suit %d", uint8(s))
	}
	return []byte(n), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	for k, v := range suitNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", b)
}

func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return "?"
}

func (r Rank) MarshalText() ([]byte, error) {
	n, ok := rankNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown rank %d", uint8(r))
	}
	return []byte(n), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	for k, v := range rankNames {
		if v == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown rank %q", b)
}

// Card is a single playing card, or one of the CUT/HIDDEN sentinels.
type Card struct {
	Suit   Suit `json:"suit"`
	Rank   Rank `json:"value"`
	FaceUp bool `json:"faceUp"`
}

// NewCard constructs a face-down card.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// CutCard is the reshuffle marker placed once in every shoe.
var CutCard = Card{Suit: SuitCut, Rank: RankCut}

// HiddenCard replaces any card a client may not see.
var HiddenCard = Card{Suit: SuitHidden, Rank: RankHidden}

func (c Card) IsCut() bool    { return c.Rank == RankCut }
func (c Card) IsHidden() bool { return c.Rank == RankHidden }

// Points returns the card's blackjack value, counting an Ace as 11.
// Sentinels are worth 0.
func (c Card) Points() int {
	switch {
	case c.Rank == RankAce:
		return 11
	case c.Rank >= RankTwo && c.Rank <= RankTen:
		return int(c.Rank)
	case c.Rank >= RankJack && c.Rank <= RankKing:
		return 10
	}
	return 0
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// ActionType names a transition of the round state machine.
type ActionType uint8

const (
	ActionBet ActionType = iota + 1
	ActionHit
	ActionStand
	ActionDoubleDown
	ActionSplit
	ActionDealer
	ActionReset
	ActionSit
	ActionLeave
	ActionSitOut
)

var actionNames = map[ActionType]string{
	ActionBet:        "Bet",
	ActionHit:        "Hit",
	ActionStand:      "Stand",
	ActionDoubleDown: "DoubleDown",
	ActionSplit:      "Split",
	ActionDealer:     "Dealer",
	ActionReset:      "Reset",
	ActionSit:        "Sit",
	ActionLeave:      "Leave",
	ActionSitOut:     "SitOut",
}

func (a ActionType) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("ActionType(%d)", uint8(a))
}

func (a ActionType) MarshalText() ([]byte, error) {
	n, ok := actionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown action type %d", uint8(a))
	}
	return []byte(n), nil
}

func (a *ActionType) UnmarshalText(b []byte) error {
	t, ok := ParseActionType(string(b))
	if !ok {
		return fmt.Errorf("unknown action type %q", b)
	}
	*a = t
	return nil
}

// ParseActionType maps a wire name such as "DoubleDown" to its ActionType.
func ParseActionType(s string) (ActionType, bool) {
	for k, v := range actionNames {
		if v == s {
			return k, true
		}
	}
	return 0, false
}

// IsPlay reports whether the action is taken by the seat whose turn it is.
func (a ActionType) IsPlay() bool {
	switch a {
	case ActionHit, ActionStand, ActionDoubleDown, ActionSplit:
		return true
	}
	return false
}

// ActionSet is a bitmask of ActionTypes.
type ActionSet uint16

func (s ActionSet) Has(a ActionType) bool { return s&(1<<a) != 0 }

func (s *ActionSet) add(a ActionType) { *s |= 1 << a }

// List returns the members of the set in ActionType order.
func (s ActionSet) List() []ActionType {
	var out []ActionType
	for a := ActionBet; a <= ActionSitOut; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// EventType names an event broadcast to a room after a transition.
type EventType string

const (
	EventGameStarted    EventType = "gameStarted"
	EventGameState      EventType = "gameState"
	EventBetsPlaced     EventType = "betsPlaced"
	EventCardsDealt     EventType = "cardsDealt"
	EventGameReset      EventType = "gameReset"
	EventError          EventType = "error"
	EventShoeReshuffled EventType = "shoeReshuffled"
	EventRoundSettled   EventType = "roundSettled"
	EventSeatChanged    EventType = "seatChanged"
)
