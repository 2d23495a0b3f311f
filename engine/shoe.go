package engine

// RNG is an xorshift64 generator state. It lives inside GameState so that
// Apply is a pure function of its inputs.
type RNG uint64

// NewRNG seeds a generator. xorshift cannot start at 0.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		return 1
	}
	return RNG(seed)
}

func (r *RNG) next() uint64 {
	x := uint64(*r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = RNG(x)
	return x
}

// intn returns a number in [0, n).
func (r *RNG) intn(n int) int {
	return int(r.next() % uint64(n))
}

// Shoe is the multi-deck card source for a table. BaseOrder is the canonical
// unshuffled content (52*DeckCount cards plus one CUT); DrawPile is what is
// left to deal, front first.
type Shoe struct {
	BaseOrder []Card `json:"baseOrder"`
	DrawPile  []Card `json:"drawPile"`
	DeckCount int    `json:"deckCount"`
}

// NewShoe builds deckCount ordered decks with a CUT card inserted at a
// uniformly random position. The draw pile starts as a copy of that order;
// call Shuffle before dealing.
func NewShoe(deckCount int, rng *RNG) Shoe {
	cards := make([]Card, 0, 52*deckCount+1)
	for d := 0; d < deckCount; d++ {
		for suit := SuitHearts; suit <= SuitSpades; suit++ {
			for rank := RankAce; rank <= RankKing; rank++ {
				cards = append(cards, NewCard(suit, rank))
			}
		}
	}
	cards = insertAt(cards, rng.intn(len(cards)+1), CutCard)

	pile := make([]Card, len(cards))
	copy(pile, cards)
	return Shoe{BaseOrder: cards, DrawPile: pile, DeckCount: deckCount}
}

// Shuffle refills the draw pile with a Fisher-Yates permutation of every real
// card in BaseOrder and reinserts the CUT card at a new random position.
func (s *Shoe) Shuffle(rng *RNG) {
	s.DrawPile = shuffled(realCards(s.BaseOrder), rng)
}

// shuffleExcluding is Shuffle without the cards currently on the table.
func (s *Shoe) shuffleExcluding(inPlay []Card, rng *RNG) {
	remaining := realCards(s.BaseOrder)
	for _, c := range inPlay {
		for i := range remaining {
			if remaining[i].Suit == c.Suit && remaining[i].Rank == c.Rank {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	s.DrawPile = shuffled(remaining, rng)
}

// Remaining returns the number of cards left in the draw pile, CUT included.
func (s *Shoe) Remaining() int { return len(s.DrawPile) }

func (s Shoe) clone() Shoe {
	out := Shoe{DeckCount: s.DeckCount}
	out.BaseOrder = cloneCards(s.BaseOrder)
	out.DrawPile = cloneCards(s.DrawPile)
	return out
}

func realCards(cards []Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsCut() {
			continue
		}
		c.FaceUp = false
		out = append(out, c)
	}
	return out
}

func shuffled(cards []Card, rng *RNG) []Card {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return insertAt(cards, rng.intn(len(cards)+1), CutCard)
}

func insertAt(cards []Card, pos int, c Card) []Card {
	cards = append(cards, Card{})
	copy(cards[pos+1:], cards[pos:])
	cards[pos] = c
	return cards
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
