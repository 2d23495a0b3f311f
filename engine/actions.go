package engine

import (
	"errors"

	"github.com/google/uuid"
)

// Action is a validated request to transition the round. Amount is the bet
// for Bet and the buy-in for Sit; UserID is only read by Sit.
type Action struct {
	Type      ActionType `json:"actionType"`
	SeatIndex int        `json:"seatIndex"`
	HandIndex int        `json:"handIndex"`
	Amount    int64      `json:"amount,omitempty"`
	UserID    uuid.UUID  `json:"userId,omitempty"`
}

// Outcome describes the result of Apply.
type Outcome struct {
	ActionSuccess bool
	Err           error
	Events        []EventType
	RoundOver     bool
	Reshuffled    bool
	// Departed is the player who left the table on a Leave action, with the
	// stack they took with them.
	Departed *Player
}

func (o *Outcome) emit(e EventType) {
	for _, have := range o.Events {
		if have == e {
			return
		}
	}
	o.Events = append(o.Events, e)
}

// Apply computes the state that follows action. It never modifies g: on
// success it returns a new snapshot, on rejection it returns g unchanged
// together with Outcome.ActionSuccess=false and the reason in Outcome.Err.
func Apply(g GameState, action Action) (GameState, Outcome) {
	next := g.Clone()
	var out Outcome
	if err := next.apply(action, &out); err != nil {
		return g, Outcome{Err: err}
	}
	next.TurnSeq++
	out.ActionSuccess = true
	out.RoundOver = next.RoundOver
	return next, out
}

func (g *GameState) apply(a Action, out *Outcome) error {
	switch a.Type {
	case ActionBet:
		return g.bet(a, out)
	case ActionHit, ActionStand, ActionDoubleDown, ActionSplit:
		return g.play(a, out)
	case ActionDealer:
		if g.Phase != PhaseDealerTurn {
			return illegal(a, g.Phase, "dealer plays only after every hand is done")
		}
		return g.playDealer(out)
	case ActionReset:
		return g.reset(a, out)
	case ActionSit:
		return g.sit(a, out)
	case ActionLeave:
		return g.leave(a, out)
	case ActionSitOut:
		return g.sitOut(a, out)
	}
	return illegal(a, g.Phase, "unknown action")
}

// bet places or replaces a seat's wager. When the table becomes ready the
// deal happens in the same transition.
func (g *GameState) bet(a Action, out *Outcome) error {
	if g.Phase != PhaseWaitingForBets {
		return illegal(a, g.Phase, "bets are only taken before the deal")
	}
	if !g.seatIndexValid(a.SeatIndex) {
		return illegal(a, g.Phase, "no seat %d", a.SeatIndex)
	}
	seat := &g.Seats[a.SeatIndex]
	if !seat.Occupied() {
		return illegal(a, g.Phase, "seat %d is empty", a.SeatIndex)
	}
	if seat.IsAfk {
		return illegal(a, g.Phase, "seat %d sits out this round", a.SeatIndex)
	}
	if a.Amount <= 0 {
		return illegal(a, g.Phase, "bet must be positive")
	}
	if a.Amount < g.Rules.MinBet {
		return illegal(a, g.Phase, "bet %d below table minimum %d", a.Amount, g.Rules.MinBet)
	}
	if g.Rules.MaxBet > 0 && a.Amount > g.Rules.MaxBet {
		return illegal(a, g.Phase, "bet %d above table maximum %d", a.Amount, g.Rules.MaxBet)
	}

	var prior int64
	if len(seat.Hands) > 0 {
		prior = seat.Hands[0].Bet
	}
	if a.Amount > seat.Player.Stack+prior {
		return illegal(a, g.Phase, "bet %d exceeds stack %d", a.Amount, seat.Player.Stack+prior)
	}
	seat.Player.Stack += prior - a.Amount
	seat.Hands = []Hand{{Bet: a.Amount}}
	out.emit(EventBetsPlaced)

	if g.checkDealReady() {
		return g.deal(out)
	}
	return nil
}

// play handles the four actions of the seat whose turn it is.
func (g *GameState) play(a Action, out *Outcome) error {
	si, hi, ok := g.CurrentTurn()
	if !ok {
		return illegal(a, g.Phase, "no hand is in play")
	}
	if a.SeatIndex != si || a.HandIndex != hi {
		return illegal(a, g.Phase, "it is seat %d hand %d's turn", si, hi)
	}
	if !g.eligibleFor(si, hi).Has(a.Type) {
		return illegal(a, g.Phase, "not eligible for this hand")
	}

	seat := &g.Seats[si]
	h := &seat.Hands[hi]

	switch a.Type {
	case ActionStand:
		h.IsDone = true

	case ActionHit:
		c, err := g.drawInPlay(out)
		if err != nil {
			return err
		}
		c.FaceUp = true
		h.Cards = append(h.Cards, c)
		if IsBust(h.Cards) {
			h.IsDone = true
		}
		out.emit(EventCardsDealt)

	case ActionDoubleDown:
		c, err := g.drawInPlay(out)
		if err != nil {
			return err
		}
		c.FaceUp = true
		seat.Player.Stack -= h.Bet
		h.Bet *= 2
		h.Cards = append(h.Cards, c)
		h.IsDone = true
		out.emit(EventBetsPlaced)
		out.emit(EventCardsDealt)

	case ActionSplit:
		seat.Player.Stack -= h.Bet
		first := Hand{Cards: []Card{h.Cards[0]}, Bet: h.Bet, IsCurrentHand: true}
		second := Hand{Cards: []Card{h.Cards[1]}, Bet: h.Bet}
		seat.Hands = []Hand{first, second}
		out.emit(EventBetsPlaced)
		return nil
	}

	if g.Seats[si].Hands[hi].IsDone {
		return g.advanceTurn(si, out)
	}
	return nil
}

// drawInPlay draws during play. An empty shoe is refilled once with every
// card not on the table; the full shoe is restored at the round boundary.
func (g *GameState) drawInPlay(out *Outcome) (Card, error) {
	c, err := g.draw()
	if !errors.Is(err, ErrShoeExhausted) || out.Reshuffled {
		return c, err
	}
	g.Shoe.shuffleExcluding(g.cardsOnTable(), &g.RNG)
	g.ReshufflePending = true
	out.Reshuffled = true
	out.emit(EventShoeReshuffled)
	return g.draw()
}

// advanceTurn moves the turn to the next undone hand, starting with the
// remaining hands of seat from and wrapping around the table. When no hand
// is left the dealer plays.
func (g *GameState) advanceTurn(from int, out *Outcome) error {
	for i := range g.Seats {
		g.Seats[i].IsTurn = false
		for j := range g.Seats[i].Hands {
			g.Seats[i].Hands[j].IsCurrentHand = false
		}
	}

	n := len(g.Seats)
	for k := 0; k < n; k++ {
		si := (from + k) % n
		seat := &g.Seats[si]
		if !seat.inRound() {
			continue
		}
		for hi := range seat.Hands {
			if seat.Hands[hi].IsDone {
				continue
			}
			seat.IsTurn = true
			seat.Hands[hi].IsCurrentHand = true
			g.Phase = PhasePlayerTurn
			return nil
		}
	}

	g.Phase = PhaseDealerTurn
	return g.playDealer(out)
}

// reset clears the table for a new betting round. During betting it returns
// any bets already placed.
func (g *GameState) reset(a Action, out *Outcome) error {
	switch g.Phase {
	case PhaseRoundOver:
	case PhaseWaitingForBets:
		for i := range g.Seats {
			s := &g.Seats[i]
			if s.Player != nil && len(s.Hands) > 0 {
				s.Player.Stack += s.Hands[0].Bet
			}
		}
	default:
		return illegal(a, g.Phase, "a round is in progress")
	}

	g.DealerHand = Hand{}
	first := true
	for i := range g.Seats {
		s := &g.Seats[i]
		s.Hands = nil
		s.IsAfk = false
		s.IsTurn = false
		if s.Occupied() && first {
			s.IsTurn = true
			first = false
		}
	}
	g.RoundOver = false
	g.Phase = PhaseWaitingForBets
	out.emit(EventGameReset)
	return nil
}

func (g *GameState) sit(a Action, out *Outcome) error {
	if g.Phase != PhaseWaitingForBets && g.Phase != PhaseRoundOver {
		return illegal(a, g.Phase, "players join between rounds")
	}
	if !g.seatIndexValid(a.SeatIndex) {
		return illegal(a, g.Phase, "no seat %d", a.SeatIndex)
	}
	if g.Seats[a.SeatIndex].Occupied() {
		return illegal(a, g.Phase, "seat %d is taken", a.SeatIndex)
	}
	if a.UserID == uuid.Nil {
		return illegal(a, g.Phase, "missing user")
	}
	if g.SeatOf(a.UserID) >= 0 {
		return illegal(a, g.Phase, "user already seated")
	}
	if a.Amount <= 0 {
		return illegal(a, g.Phase, "buy-in must be positive")
	}
	if limit := g.Rules.BuyInLimit(); a.Amount > limit {
		return illegal(a, g.Phase, "buy-in %d is above the table limit %d", a.Amount, limit)
	}
	g.Seats[a.SeatIndex] = Seat{
		Player: &Player{UserID: a.UserID, Stack: a.Amount, SeatIndex: a.SeatIndex},
	}
	out.emit(EventSeatChanged)
	return nil
}

func (g *GameState) leave(a Action, out *Outcome) error {
	if g.Phase != PhaseWaitingForBets && g.Phase != PhaseRoundOver {
		return illegal(a, g.Phase, "players leave between rounds")
	}
	if !g.seatIndexValid(a.SeatIndex) || !g.Seats[a.SeatIndex].Occupied() {
		return illegal(a, g.Phase, "seat %d is empty", a.SeatIndex)
	}
	seat := &g.Seats[a.SeatIndex]
	p := *seat.Player
	if g.Phase == PhaseWaitingForBets && len(seat.Hands) > 0 {
		p.Stack += seat.Hands[0].Bet
	}
	g.Seats[a.SeatIndex] = Seat{}
	out.Departed = &p
	out.emit(EventSeatChanged)

	if g.checkDealReady() {
		return g.deal(out)
	}
	return nil
}

// sitOut benches a seat for the current round, returning any bet.
func (g *GameState) sitOut(a Action, out *Outcome) error {
	if g.Phase != PhaseWaitingForBets {
		return illegal(a, g.Phase, "seats sit out only before the deal")
	}
	if !g.seatIndexValid(a.SeatIndex) || !g.Seats[a.SeatIndex].Occupied() {
		return illegal(a, g.Phase, "seat %d is empty", a.SeatIndex)
	}
	seat := &g.Seats[a.SeatIndex]
	if seat.IsAfk {
		return illegal(a, g.Phase, "seat %d already sits out", a.SeatIndex)
	}
	if len(seat.Hands) > 0 {
		seat.Player.Stack += seat.Hands[0].Bet
	}
	seat.Hands = nil
	seat.IsAfk = true
	seat.IsTurn = false
	out.emit(EventSeatChanged)

	if g.checkDealReady() {
		return g.deal(out)
	}
	return nil
}
