// internal/models/models_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionDecode(t *testing.T) {
	room := uuid.New()
	raw := `{"roomId":"` + room.String() + `","actionType":"Bet","seatIndex":1,"handIndex":0,"bet":{"amount":25,"seatIndex":1}}`

	var a Action
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	require.NoError(t, a.Validate())
	assert.Equal(t, engine.ActionBet, a.Type())

	ea := a.ToEngine(uuid.New())
	assert.Equal(t, engine.Action{Type: engine.ActionBet, SeatIndex: 1, Amount: 25}, ea)
}

func TestActionValidate(t *testing.T) {
	room := uuid.New()
	cases := []struct {
		name  string
		a     Action
		field string
	}{
		{"missing room", Action{ActionType: "Hit"}, "roomId"},
		{"unknown type", Action{RoomID: room, ActionType: "Surrender"}, "actionType"},
		{"seat too high", Action{RoomID: room, ActionType: "Hit", SeatIndex: engine.MaxSeats}, "seatIndex"},
		{"negative seat", Action{RoomID: room, ActionType: "Stand", SeatIndex: -1}, "seatIndex"},
		{"third hand", Action{RoomID: room, ActionType: "Stand", HandIndex: 2}, "handIndex"},
		{"bet without payload", Action{RoomID: room, ActionType: "Bet"}, "bet"},
		{"zero bet", Action{RoomID: room, ActionType: "Bet", Bet: &BetPayload{}}, "bet.amount"},
		{"bet seat mismatch", Action{RoomID: room, ActionType: "Bet", SeatIndex: 1, Bet: &BetPayload{Amount: 5}}, "bet.seatIndex"},
		{"sit without buy-in", Action{RoomID: room, ActionType: "Sit"}, "buyIn"},
		{"huge buy-in", Action{RoomID: room, ActionType: "Sit", BuyIn: engine.MaxStack + 1}, "buyIn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.a.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestTableActionsIgnoreSeat(t *testing.T) {
	for _, typ := range []string{"Reset", "Dealer"} {
		a := Action{RoomID: uuid.New(), ActionType: typ, SeatIndex: 99, HandIndex: -3}
		assert.NoError(t, a.Validate(), typ)
	}
}

func TestSitCarriesActor(t *testing.T) {
	actor := uuid.New()
	a := Action{RoomID: uuid.New(), ActionType: "Sit", SeatIndex: 3, BuyIn: 200}
	require.NoError(t, a.Validate())

	ea := a.ToEngine(actor)
	assert.Equal(t, engine.ActionSit, ea.Type)
	assert.Equal(t, actor, ea.UserID)
	assert.Equal(t, int64(200), ea.Amount)
	assert.Equal(t, 3, ea.SeatIndex)
}

func TestNewStateEventRedacts(t *testing.T) {
	g := engine.NewGame(uuid.New(), "classic", engine.DefaultTableRules(), 3)
	g.TurnSeq = 9

	ev := NewStateEvent(g)
	assert.Equal(t, engine.EventGameState, ev.Type)
	assert.Equal(t, g.RoomID, ev.RoomID)
	assert.Equal(t, uint64(9), ev.Seq)
	require.NotNil(t, ev.State)
	assert.Zero(t, ev.State.RNG)
	assert.True(t, ev.State.Shoe.DrawPile[0].IsHidden())
	assert.False(t, g.Shoe.DrawPile[0].IsHidden(), "the input snapshot is untouched")

	b, err := json.Marshal(NewErrorEvent(g.RoomID, "no"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","roomId":"`+g.RoomID.String()+`","error":"no"}`, string(b))
}
