// internal/rooms/rooms_test.go
package rooms

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembership(t *testing.T) {
	host, member, stranger := uuid.New(), uuid.New(), uuid.New()
	m := Membership{RoomID: uuid.New(), HostID: host, Members: []uuid.UUID{member}}

	assert.True(t, m.IsMember(host), "the host is always a member")
	assert.True(t, m.IsMember(member))
	assert.False(t, m.IsMember(stranger))
	assert.True(t, m.IsHost(host))
	assert.False(t, m.IsHost(member))
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()
	room := uuid.New()

	_, err := d.Membership(ctx, room)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	members := []uuid.UUID{uuid.New()}
	d.Put(Membership{RoomID: room, HostID: uuid.New(), Members: members})
	members[0] = uuid.Nil

	m, err := d.Membership(ctx, room)
	require.NoError(t, err)
	require.Len(t, m.Members, 1)
	assert.NotEqual(t, uuid.Nil, m.Members[0], "Put keeps its own copy")
}

// settledRound plays one seat through a round that ends on the deal.
func settledRound(t *testing.T, room, user uuid.UUID) engine.GameState {
	t.Helper()
	g := engine.NewGame(room, "classic", engine.DefaultTableRules(), 7)
	g, out := engine.Apply(g, engine.Action{Type: engine.ActionSit, SeatIndex: 0, UserID: user, Amount: 100})
	require.True(t, out.ActionSuccess, out.Err)
	g.Shoe.DrawPile = []engine.Card{
		engine.NewCard(engine.SuitSpades, engine.RankAce),
		engine.NewCard(engine.SuitHearts, engine.RankNine),
		engine.NewCard(engine.SuitSpades, engine.RankKing),
		engine.NewCard(engine.SuitHearts, engine.RankSeven),
	}
	g, out = engine.Apply(g, engine.Action{Type: engine.ActionBet, SeatIndex: 0, Amount: 10})
	require.True(t, out.ActionSuccess, out.Err)
	require.True(t, g.RoundOver)
	return g
}

func TestNewRoundResult(t *testing.T) {
	room, user := uuid.New(), uuid.New()
	g := settledRound(t, room, user)

	res := NewRoundResult(g)
	assert.Equal(t, room, res.RoomID)
	assert.Equal(t, g.TurnSeq, res.TurnSeq)
	assert.Equal(t, "classic", res.TableName)
	assert.Len(t, res.Dealer, 2)
	require.Len(t, res.Seats, 1)

	seat := res.Seats[0]
	assert.Equal(t, user, seat.UserID)
	assert.Equal(t, int64(115), seat.Stack)
	require.Len(t, seat.Hands, 1)
	assert.Equal(t, 21, seat.Hands[0].Total)
	assert.Equal(t, int64(25), seat.Hands[0].Payout)
	assert.True(t, seat.Hands[0].Won)
}

func TestMemoryRecordRound(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()
	room := uuid.New()

	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, d.RecordRound(ctx, RoundResult{RoomID: room, TurnSeq: seq}))
	}
	require.NoError(t, d.RecordRound(ctx, RoundResult{RoomID: room, TurnSeq: 3, TableName: "dup"}))

	got, err := d.Rounds(ctx, room, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].TurnSeq)
	assert.Empty(t, got[0].TableName, "a repeated round keeps the first record")
	assert.Equal(t, uint64(2), got[1].TurnSeq)
}

// TestPostgres runs against a real database when BLACKJACK_TEST_DATABASE_URL
// is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("BLACKJACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BLACKJACK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(ctx, db))

	room, host, member := uuid.New(), uuid.New(), uuid.New()
	_, err = db.Membership(ctx, room)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	require.NoError(t, db.PutRoom(ctx, Membership{RoomID: room, HostID: host, Members: []uuid.UUID{member}}))
	require.NoError(t, db.PutRoom(ctx, Membership{RoomID: room, HostID: host, Members: []uuid.UUID{member}}))
	m, err := db.Membership(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, host, m.HostID)
	assert.Equal(t, []uuid.UUID{member}, m.Members)

	res := NewRoundResult(settledRound(t, room, member))
	require.NoError(t, db.RecordRound(ctx, res))
	require.NoError(t, db.RecordRound(ctx, res))
	rounds, err := db.Rounds(ctx, room, 10)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, res.TurnSeq, rounds[0].TurnSeq)
	assert.Equal(t, int64(115), rounds[0].Seats[0].Stack)

	_, err = db.Exec(ctx, `DELETE FROM round_results WHERE room_id = $1`, room)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, room)
	require.NoError(t, err)
}
