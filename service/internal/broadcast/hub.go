// internal/broadcast/hub.go
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/sirupsen/logrus"
)

// Publisher delivers an event to every subscriber of ev.RoomID.
type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

// Subscriber receives the events of one room. Send must not block on a slow
// peer; a subscriber that cannot keep up returns an error and is expected to
// close itself.
type Subscriber interface {
	Send(ctx context.Context, ev models.Event) error
}

// Hub fans events out to the subscribers connected to this process.
type Hub struct {
	log logrus.FieldLogger

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[Subscriber]struct{}
}

// NewHub returns an empty Hub.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{log: log, rooms: make(map[uuid.UUID]map[Subscriber]struct{})}
}

// Subscribe adds sub to a room and returns the function that removes it.
func (h *Hub) Subscribe(roomID uuid.UUID, sub Subscriber) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[Subscriber]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.rooms[roomID], sub)
			if len(h.rooms[roomID]) == 0 {
				delete(h.rooms, roomID)
			}
		})
	}
}

// Publish sends ev to every local subscriber of the room. A failing
// subscriber is logged and skipped.
func (h *Hub) Publish(ctx context.Context, ev models.Event) error {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.rooms[ev.RoomID]))
	for s := range h.rooms[ev.RoomID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.Send(ctx, ev); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{
				"room":  ev.RoomID,
				"event": ev.Type,
			}).Warn("drop event for subscriber")
		}
	}
	return nil
}

// Count returns the number of local subscribers of a room.
func (h *Hub) Count(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
