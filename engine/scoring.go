package engine

// ComputeTotal returns the best blackjack total of cards and whether it is
// soft (an Ace still counted as 11). Aces start at 11 and are downgraded to 1
// one at a time while the total exceeds 21. HIDDEN and CUT cards count 0.
func ComputeTotal(cards []Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		if c.Rank == RankAce {
			aces++
		}
		total += c.Points()
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// Total is ComputeTotal without the softness flag.
func Total(cards []Card) int {
	t, _ := ComputeTotal(cards)
	return t
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && Total(cards) == 21
}

// IsBust reports a total over 21.
func IsBust(cards []Card) bool {
	return Total(cards) > 21
}

func hasAce(cards []Card) bool {
	for _, c := range cards {
		if c.Rank == RankAce {
			return true
		}
	}
	return false
}
