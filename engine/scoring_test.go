package engine

import "testing"

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		total int
		soft  bool
	}{
		{"empty", nil, 0, false},
		{"hard 19", []Card{card(RankTen), card(RankNine)}, 19, false},
		{"face cards", []Card{card(RankJack), card(RankQueen)}, 20, false},
		{"ace king", []Card{card(RankAce), card(RankKing)}, 21, true},
		{"ace ace nine", []Card{card(RankAce), card(RankAce), card(RankNine)}, 21, true},
		{"soft 17", []Card{card(RankAce), card(RankSix)}, 17, true},
		{"ace downgraded", []Card{card(RankAce), card(RankSix), card(RankTen)}, 17, false},
		{"four aces", []Card{card(RankAce), card(RankAce), card(RankAce), card(RankAce)}, 14, true},
		{"bust", []Card{card(RankTen), card(RankNine), card(RankFive)}, 24, false},
		{"hidden counts zero", []Card{card(RankTen), HiddenCard}, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, soft := ComputeTotal(tt.cards)
			if total != tt.total || soft != tt.soft {
				t.Errorf("ComputeTotal = (%d, %v), want (%d, %v)", total, soft, tt.total, tt.soft)
			}
		})
	}
}

// TestComputeTotalOrderInvariant checks every rotation and reversal of a set
// of hands against the original total.
func TestComputeTotalOrderInvariant(t *testing.T) {
	hands := [][]Card{
		{card(RankAce), card(RankFive), card(RankAce), card(RankTen)},
		{card(RankNine), card(RankAce), card(RankAce)},
		{card(RankTwo), card(RankThree), card(RankAce), card(RankKing), card(RankFour)},
		{card(RankAce), card(RankAce), card(RankAce), card(RankEight), card(RankNine)},
	}
	for _, h := range hands {
		want, wantSoft := ComputeTotal(h)
		for r := 0; r < len(h); r++ {
			rot := append(cloneCards(h[r:]), h[:r]...)
			if got, soft := ComputeTotal(rot); got != want || soft != wantSoft {
				t.Errorf("rotation %d of %v = (%d, %v), want (%d, %v)", r, h, got, soft, want, wantSoft)
			}
			rev := make([]Card, len(rot))
			for i := range rot {
				rev[len(rot)-1-i] = rot[i]
			}
			if got, _ := ComputeTotal(rev); got != want {
				t.Errorf("reversal of %v = %d, want %d", rot, got, want)
			}
		}
	}
}

func TestAceWithTenIsBlackjack(t *testing.T) {
	for _, r := range []Rank{RankTen, RankJack, RankQueen, RankKing} {
		for _, h := range [][]Card{{card(RankAce), card(r)}, {card(r), heart(RankAce)}} {
			if !IsBlackjack(h) {
				t.Errorf("IsBlackjack(%v) = false", h)
			}
		}
	}
}

func TestIsBlackjackNeedsTwoCards(t *testing.T) {
	h := []Card{card(RankSeven), card(RankSeven), card(RankSeven)}
	if IsBlackjack(h) {
		t.Error("three-card 21 reported as blackjack")
	}
	if Total(h) != 21 {
		t.Errorf("Total = %d, want 21", Total(h))
	}
}

func TestIsBust(t *testing.T) {
	if IsBust([]Card{card(RankAce), card(RankKing), card(RankQueen)}) {
		t.Error("A,K,Q (21) reported bust")
	}
	if !IsBust([]Card{card(RankKing), card(RankQueen), card(RankTwo)}) {
		t.Error("K,Q,2 (22) not reported bust")
	}
}
