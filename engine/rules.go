package engine

import "fmt"

// MaxSeats is the largest table the engine supports.
const MaxSeats = 6

// MaxStack is the most chips one seat can hold. Larger buy-ins are refused and
// winnings stop at it, so stack arithmetic stays inside int64.
const MaxStack int64 = 1_000_000_000_000_000

// TableRules holds the per-table settings that affect play.
type TableRules struct {
	DeckCount int   `json:"deckCount"`
	Seats     int   `json:"seats"`
	MinBet    int64 `json:"minBet"`
	MaxBet    int64 `json:"maxBet"`   // 0 = no limit
	MaxBuyIn  int64 `json:"maxBuyIn"` // 0 = MaxStack
	HitSoft17 bool  `json:"hitSoft17"`
}

// DefaultTableRules returns a six-deck, six-seat table where the dealer hits soft 17.
func DefaultTableRules() TableRules {
	return TableRules{
		DeckCount: 6,
		Seats:     MaxSeats,
		MinBet:    1,
		MaxBet:    0,
		HitSoft17: true,
	}
}

// Validate reports the first setting that would make the table unplayable.
func (r TableRules) Validate() error {
	if r.DeckCount < 1 || r.DeckCount > 8 {
		return fmt.Errorf("deck count must be between 1 and 8, got %d", r.DeckCount)
	}
	if r.Seats < 1 || r.Seats > MaxSeats {
		return fmt.Errorf("seats must be between 1 and %d, got %d", MaxSeats, r.Seats)
	}
	if r.MinBet < 1 {
		return fmt.Errorf("minimum bet must be positive, got %d", r.MinBet)
	}
	if r.MaxBet != 0 && r.MaxBet < r.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum %d", r.MaxBet, r.MinBet)
	}
	if r.MaxBuyIn < 0 || r.MaxBuyIn > MaxStack {
		return fmt.Errorf("maximum buy-in must be between 0 and %d, got %d", MaxStack, r.MaxBuyIn)
	}
	return nil
}

// BuyInLimit is the largest stack a player may sit down with.
func (r TableRules) BuyInLimit() int64 {
	if r.MaxBuyIn == 0 {
		return MaxStack
	}
	return r.MaxBuyIn
}
