// internal/broadcast/broadcast_test.go
package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSubscriber forwards events to a channel.
type chanSubscriber struct {
	ch chan models.Event
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan models.Event, 16)}
}

func (s *chanSubscriber) Send(_ context.Context, ev models.Event) error {
	select {
	case s.ch <- ev:
		return nil
	default:
		return errors.New("subscriber full")
	}
}

func (s *chanSubscriber) next(t *testing.T) models.Event {
	t.Helper()
	select {
	case ev := <-s.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return models.Event{}
	}
}

// failingSubscriber counts calls and always fails.
type failingSubscriber struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSubscriber) Send(context.Context, models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("closed")
}

func TestHubDeliversToRoomOnly(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	ctx := context.Background()

	roomA, roomB := uuid.New(), uuid.New()
	a1, a2, b1 := newChanSubscriber(), newChanSubscriber(), newChanSubscriber()
	hub.Subscribe(roomA, a1)
	hub.Subscribe(roomA, a2)
	hub.Subscribe(roomB, b1)
	assert.Equal(t, 2, hub.Count(roomA))

	require.NoError(t, hub.Publish(ctx, models.Event{Type: engine.EventBetsPlaced, RoomID: roomA}))
	assert.Equal(t, engine.EventBetsPlaced, a1.next(t).Type)
	assert.Equal(t, engine.EventBetsPlaced, a2.next(t).Type)
	assert.Empty(t, b1.ch)
}

func TestHubUnsubscribe(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	room := uuid.New()
	sub := newChanSubscriber()

	unsubscribe := hub.Subscribe(room, sub)
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Count(room))

	require.NoError(t, hub.Publish(context.Background(), models.Event{Type: engine.EventGameState, RoomID: room}))
	assert.Empty(t, sub.ch)
}

func TestHubSkipsFailingSubscriber(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(logger)
	room := uuid.New()
	bad, good := &failingSubscriber{}, newChanSubscriber()
	hub.Subscribe(room, bad)
	hub.Subscribe(room, good)

	require.NoError(t, hub.Publish(context.Background(), models.Event{Type: engine.EventCardsDealt, RoomID: room}))
	assert.Equal(t, engine.EventCardsDealt, good.next(t).Type)
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, hook.Entries, 1)
}

func TestRelayAcrossProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newRelay := func() (*Relay, *Hub) {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		hub := NewHub(logger)
		r := NewRelay(rdb, hub, logger)
		go func() { _ = r.Run(ctx) }()
		select {
		case <-r.Ready():
		case <-time.After(2 * time.Second):
			t.Fatal("relay did not subscribe")
		}
		return r, hub
	}

	sender, senderHub := newRelay()
	_, otherHub := newRelay()

	room := uuid.New()
	local, remote := newChanSubscriber(), newChanSubscriber()
	senderHub.Subscribe(room, local)
	otherHub.Subscribe(room, remote)

	actor := uuid.New()
	require.NoError(t, sender.Publish(ctx, models.Event{Type: engine.EventGameStarted, RoomID: room, Seq: 3, Actor: &actor}))
	require.NoError(t, sender.Publish(ctx, models.NewErrorEvent(room, "not your turn")))

	for _, sub := range []*chanSubscriber{local, remote} {
		first := sub.next(t)
		assert.Equal(t, engine.EventGameStarted, first.Type)
		assert.Equal(t, uint64(3), first.Seq)
		require.NotNil(t, first.Actor)
		assert.Equal(t, actor, *first.Actor)

		second := sub.next(t)
		assert.Equal(t, engine.EventError, second.Type)
		assert.Equal(t, "not your turn", second.Error)
	}
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("6f1c0d7a-8f27-4b51-9d1e-2d7e0c3b9a10")
	assert.Equal(t, "blackjack:room:6f1c0d7a-8f27-4b51-9d1e-2d7e0c3b9a10", Channel(id))
}
