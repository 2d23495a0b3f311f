// internal/broadcast/relay.go
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "blackjack:room:"

// Channel returns the pub/sub channel of a room.
func Channel(roomID uuid.UUID) string {
	return channelPrefix + roomID.String()
}

// Relay carries events between server processes. Publish writes to the room's
// Redis channel; Run receives every room channel and hands the events to the
// local hub, so an event published on any process reaches the subscribers of
// all of them, the publishing process included.
type Relay struct {
	rdb redis.UniversalClient
	hub *Hub
	log logrus.FieldLogger

	ready     chan struct{}
	readyOnce sync.Once
}

// NewRelay returns a Relay delivering into hub.
func NewRelay(rdb redis.UniversalClient, hub *Hub, log logrus.FieldLogger) *Relay {
	return &Relay{rdb: rdb, hub: hub, log: log, ready: make(chan struct{})}
}

func (r *Relay) Publish(ctx context.Context, ev models.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, Channel(ev.RoomID), b).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Ready is closed once Run's subscription is confirmed by Redis.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

// Run subscribes to every room channel and delivers until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ps := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe room channels: %w", err)
	}
	r.readyOnce.Do(func() { close(r.ready) })

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.WithError(err).WithField("channel", msg.Channel).Error("decode relayed event")
				continue
			}
			_ = r.hub.Publish(ctx, ev)
		}
	}
}
