package engine

// EligibleActions returns the play actions open to the hand whose turn it is.
// The set is empty outside the PlayerTurn phase.
func (g *GameState) EligibleActions() ActionSet {
	si, hi, ok := g.CurrentTurn()
	if !ok {
		return 0
	}
	return g.eligibleFor(si, hi)
}

func (g *GameState) eligibleFor(si, hi int) ActionSet {
	var set ActionSet
	seat := &g.Seats[si]
	h := &seat.Hands[hi]
	stack := seat.Player.Stack
	total := Total(h.Cards)

	set.add(ActionStand)

	if total < 21 {
		set.add(ActionHit)
	}

	if len(seat.Hands) == 1 && len(h.Cards) == 2 &&
		h.Cards[0].Rank == h.Cards[1].Rank && stack >= h.Bet {
		set.add(ActionSplit)
	}

	if stack >= h.Bet && canDouble(h.Cards, total) {
		set.add(ActionDoubleDown)
	}

	return set
}

// canDouble: hard 9-11, or 16-18 with an Ace in the hand.
func canDouble(cards []Card, total int) bool {
	if hasAce(cards) {
		return total >= 16 && total <= 18
	}
	return total >= 9 && total <= 11
}

// checkDealReady reports whether every occupied, non-AFK seat has a positive
// bet and no cards, the dealer has no cards, and at least one seat is playing.
func (g *GameState) checkDealReady() bool {
	if g.Phase != PhaseWaitingForBets || len(g.DealerHand.Cards) > 0 {
		return false
	}
	active := 0
	for i := range g.Seats {
		s := &g.Seats[i]
		if !s.Occupied() || s.IsAfk {
			continue
		}
		if len(s.Hands) != 1 || s.Hands[0].Bet <= 0 || len(s.Hands[0].Cards) > 0 {
			return false
		}
		active++
	}
	return active > 0
}
