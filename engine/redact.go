package engine

// Redact returns the view of g that may leave the server: every card not
// face up (the dealer's hole card, the undrawn shoe, the shoe's base order)
// becomes HIDDEN and the shuffler state is dropped. Card counts are kept so
// clients can still show how deep the shoe is.
func Redact(g GameState) GameState {
	out := g.Clone()
	out.RNG = 0
	hideDown(out.DealerHand.Cards)
	for i := range out.Seats {
		for j := range out.Seats[i].Hands {
			hideDown(out.Seats[i].Hands[j].Cards)
		}
	}
	hideAll(out.Shoe.DrawPile)
	hideAll(out.Shoe.BaseOrder)
	return out
}

func hideDown(cards []Card) {
	for i := range cards {
		if !cards[i].FaceUp {
			cards[i] = HiddenCard
		}
	}
}

func hideAll(cards []Card) {
	for i := range cards {
		cards[i] = HiddenCard
	}
}
