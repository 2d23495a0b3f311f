package engine

import "errors"

// deal runs the Dealing phase. A shoe that runs dry mid-deal is fatal for
// that attempt: the partial deal is taken back, the whole shoe reshuffled and
// the deal repeated once.
func (g *GameState) deal(out *Outcome) error {
	g.Phase = PhaseDealing
	err := g.dealOnce()
	if errors.Is(err, ErrShoeExhausted) {
		g.takeBackDeal()
		g.Shoe.Shuffle(&g.RNG)
		g.ReshufflePending = false
		out.Reshuffled = true
		out.emit(EventShoeReshuffled)
		err = g.dealOnce()
	}
	if err != nil {
		return err
	}
	out.emit(EventGameStarted)
	out.emit(EventCardsDealt)
	return g.resolveNaturals(out)
}

// dealOnce deals one face-up card to every betting seat in seat order, one
// face-up card to the dealer, a second face-up card to every seat and a
// face-down card to the dealer.
func (g *GameState) dealOnce() error {
	var seats []int
	for i := range g.Seats {
		s := &g.Seats[i]
		if s.Occupied() && !s.IsAfk && len(s.Hands) == 1 && s.Hands[0].Bet > 0 {
			seats = append(seats, i)
		}
	}

	for round := 0; round < 2; round++ {
		for _, si := range seats {
			c, err := g.draw()
			if err != nil {
				return err
			}
			c.FaceUp = true
			h := &g.Seats[si].Hands[0]
			h.Cards = append(h.Cards, c)
		}
		c, err := g.draw()
		if err != nil {
			return err
		}
		c.FaceUp = round == 0
		g.DealerHand.Cards = append(g.DealerHand.Cards, c)
	}
	return nil
}

func (g *GameState) takeBackDeal() {
	g.DealerHand.Cards = nil
	for i := range g.Seats {
		for j := range g.Seats[i].Hands {
			g.Seats[i].Hands[j].Cards = nil
		}
	}
}

// resolveNaturals settles blackjacks straight after the deal. A dealer
// blackjack ends the round: player blackjacks push, everything else loses.
// Otherwise player blackjacks are paid 3:2 at once, and if no hand is left
// to play the round ends without a player or dealer turn.
func (g *GameState) resolveNaturals(out *Outcome) error {
	for i := range g.Seats {
		s := &g.Seats[i]
		if !s.inRound() {
			continue
		}
		h := &s.Hands[0]
		h.IsBlackjack = boolPtr(IsBlackjack(h.Cards))
	}

	if IsBlackjack(g.DealerHand.Cards) {
		g.revealDealer()
		for i := range g.Seats {
			s := &g.Seats[i]
			if !s.inRound() {
				continue
			}
			h := &s.Hands[0]
			if *h.IsBlackjack {
				g.payPush(s, h)
			} else {
				g.payLoss(h)
			}
		}
		return g.finishRound(out)
	}

	pending := false
	for i := range g.Seats {
		s := &g.Seats[i]
		if !s.inRound() {
			continue
		}
		h := &s.Hands[0]
		if *h.IsBlackjack {
			g.payBlackjack(s, h)
			continue
		}
		pending = true
	}

	if !pending {
		g.revealDealer()
		return g.finishRound(out)
	}
	return g.advanceTurn(0, out)
}
