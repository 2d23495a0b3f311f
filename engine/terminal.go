package engine

// playDealer reveals the hole card and draws to 17, hitting a soft 17 when
// the table says so. The dealer does not draw if every player hand is
// already bust or paid.
func (g *GameState) playDealer(out *Outcome) error {
	g.Phase = PhaseDealerTurn
	g.revealDealer()

	if g.liveHands() {
		for dealerHits(g.DealerHand.Cards, g.Rules.HitSoft17) {
			c, err := g.drawInPlay(out)
			if err != nil {
				return err
			}
			c.FaceUp = true
			g.DealerHand.Cards = append(g.DealerHand.Cards, c)
			out.emit(EventCardsDealt)
		}
	}
	g.DealerHand.IsDone = true
	return g.finishRound(out)
}

func dealerHits(cards []Card, hitSoft17 bool) bool {
	total, soft := ComputeTotal(cards)
	if total <= 16 {
		return true
	}
	return total == 17 && soft && hitSoft17
}

func (g *GameState) revealDealer() {
	for i := range g.DealerHand.Cards {
		g.DealerHand.Cards[i].FaceUp = true
	}
}

// liveHands reports whether any unresolved, non-bust player hand remains.
func (g *GameState) liveHands() bool {
	for i := range g.Seats {
		s := &g.Seats[i]
		if !s.inRound() {
			continue
		}
		for j := range s.Hands {
			h := &s.Hands[j]
			if !h.Resolved() && !IsBust(h.Cards) {
				return true
			}
		}
	}
	return false
}

// finishRound runs Settlement and leaves the table in RoundOver. A pending
// reshuffle happens here, once per round.
func (g *GameState) finishRound(out *Outcome) error {
	g.Phase = PhaseSettlement
	dealerTotal := Total(g.DealerHand.Cards)
	dealerBust := dealerTotal > 21

	for i := range g.Seats {
		s := &g.Seats[i]
		s.IsTurn = false
		if !s.inRound() {
			continue
		}
		for j := range s.Hands {
			h := &s.Hands[j]
			h.IsCurrentHand = false
			h.IsDone = true
			if h.Resolved() {
				continue
			}
			g.settleHand(s, h, dealerTotal, dealerBust)
		}
	}

	if g.ReshufflePending {
		g.Shoe.Shuffle(&g.RNG)
		g.ReshufflePending = false
		out.Reshuffled = true
		out.emit(EventShoeReshuffled)
	}

	g.Phase = PhaseRoundOver
	g.RoundOver = true
	out.emit(EventRoundSettled)
	return nil
}

// settleHand compares one hand against the dealer. A blackjack flag is
// checked before the generic win and push rules.
func (g *GameState) settleHand(s *Seat, h *Hand, dealerTotal int, dealerBust bool) {
	total := Total(h.Cards)
	switch {
	case h.IsBlackjack != nil && *h.IsBlackjack:
		g.payBlackjack(s, h)
	case total > 21:
		g.payLoss(h)
	case dealerBust || total > dealerTotal:
		g.payWin(s, h)
	case total == dealerTotal:
		g.payPush(s, h)
	default:
		g.payLoss(h)
	}
}

// credit adds n chips to the stack, stopping at MaxStack.
func (p *Player) credit(n int64) {
	if n > MaxStack-p.Stack {
		p.Stack = MaxStack
		return
	}
	p.Stack += n
}

// payBlackjack returns the bet plus 3:2, rounded down to whole chips.
func (g *GameState) payBlackjack(s *Seat, h *Hand) {
	h.Payout = h.Bet + h.Bet*3/2
	s.Player.credit(h.Payout)
	h.IsWon = boolPtr(true)
	h.IsDone = true
	h.Bet = 0
}

func (g *GameState) payWin(s *Seat, h *Hand) {
	h.Payout = h.Bet * 2
	s.Player.credit(h.Payout)
	h.IsWon = boolPtr(true)
	h.Bet = 0
}

func (g *GameState) payPush(s *Seat, h *Hand) {
	h.Payout = h.Bet
	s.Player.credit(h.Payout)
	h.IsPush = boolPtr(true)
	h.IsDone = true
	h.Bet = 0
}

// payLoss forfeits the bet, which left the stack when it was placed.
func (g *GameState) payLoss(h *Hand) {
	h.Payout = 0
	h.IsWon = boolPtr(false)
	h.IsDone = true
	h.Bet = 0
}
