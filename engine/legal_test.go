package engine

import "testing"

// dealtHand deals a single seat the two given cards against a dealer 7/10.
func dealtHand(t *testing.T, stack, wager int64, a, b Card) GameState {
	t.Helper()
	g := newTable(t, stack)
	rig(&g, a, card(RankSeven), b, card(RankTen))
	return mustApply(t, g, bet(0, wager))
}

func TestEligibleActions(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Card
		stack, bet int64
		want       []ActionType
	}{
		{"hard 11", card(RankSix), card(RankFive), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown}},
		{"hard 9", card(RankFour), card(RankFive), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown}},
		{"hard 12", card(RankTen), card(RankTwo), 100, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"hard 8", card(RankThree), card(RankFive), 100, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"soft 16", card(RankAce), card(RankFive), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown}},
		{"soft 18", card(RankSeven), card(RankAce), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown}},
		{"soft 19", card(RankAce), card(RankEight), 100, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"soft 13", card(RankAce), card(RankTwo), 100, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"pair of fives", card(RankFive), heart(RankFive), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown, ActionSplit}},
		{"pair of aces", card(RankAce), heart(RankAce), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionSplit}},
		{"pair of kings", card(RankKing), heart(RankKing), 100, 10,
			[]ActionType{ActionHit, ActionStand, ActionSplit}},
		{"king queen is no pair", card(RankKing), heart(RankQueen), 100, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"short stack", card(RankFive), heart(RankFive), 15, 10,
			[]ActionType{ActionHit, ActionStand}},
		{"exact stack", card(RankSix), heart(RankFive), 20, 10,
			[]ActionType{ActionHit, ActionStand, ActionDoubleDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := dealtHand(t, tt.stack, tt.bet, tt.a, tt.b)
			got := g.EligibleActions()
			var want ActionSet
			for _, a := range tt.want {
				want.add(a)
			}
			if got != want {
				t.Errorf("EligibleActions = %v, want %v", got.List(), tt.want)
			}
		})
	}
}

func TestEligibleActionsOutsidePlayerTurn(t *testing.T) {
	g := newTable(t, 100)
	if got := g.EligibleActions(); got != 0 {
		t.Errorf("EligibleActions during betting = %v, want none", got.List())
	}
}

func TestHitNotEligibleAt21(t *testing.T) {
	g := newTable(t, 100)
	rig(&g, card(RankFive), card(RankSeven), card(RankSix), card(RankTen), card(RankTen))
	g = mustApply(t, g, bet(0, 10))
	g = mustApply(t, g, Action{Type: ActionHit, SeatIndex: 0})

	// A hand on 21 stays open until it stands.
	if g.Seats[0].Hands[0].IsDone {
		t.Fatal("hand at 21 marked done")
	}
	got := g.EligibleActions()
	if got.Has(ActionHit) || !got.Has(ActionStand) {
		t.Errorf("EligibleActions at 21 = %v, want Stand only", got.List())
	}
	mustReject(t, g, Action{Type: ActionHit, SeatIndex: 0})
}

func TestCheckDealReady(t *testing.T) {
	g := newTable(t, 100, 100, 100)
	if g.checkDealReady() {
		t.Error("ready with no bets")
	}
	g = mustApply(t, g, bet(0, 10))
	g = mustApply(t, g, bet(2, 10))
	if g.checkDealReady() {
		t.Error("ready with seat 1 still to bet")
	}

	empty := NewGame(g.RoomID, "t", DefaultTableRules(), 1)
	if empty.checkDealReady() {
		t.Error("empty table reported ready")
	}
}
