// internal/handlers/socket.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/game"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

var errSlowClient = errors.New("client is not reading its events")

// tableClient is one socket subscribed to a room. Events are queued and
// written by a single goroutine; a client whose queue fills is disconnected.
type tableClient struct {
	mu     sync.Mutex
	send   chan models.Event
	cancel context.CancelFunc
}

func (c *tableClient) Send(_ context.Context, ev models.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enqueue(ev)
}

func (c *tableClient) enqueue(ev models.Event) error {
	select {
	case c.send <- ev:
		return nil
	default:
		c.cancel()
		return errSlowClient
	}
}

// prime puts the snapshot event first in the queue. Events that arrived while
// it was loaded stay behind it unless the snapshot already includes them.
func (c *tableClient) prime(first models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var queued []models.Event
	for len(c.send) > 0 {
		queued = append(queued, <-c.send)
	}
	_ = c.enqueue(first)
	for _, ev := range queued {
		if ev.Type == engine.EventError || ev.Seq > first.Seq {
			_ = c.enqueue(ev)
		}
	}
}

func (c *tableClient) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				c.cancel()
				return
			}
		}
	}
}

// tableSocket upgrades to a WebSocket carrying one room's events out and the
// member's actions in. The first frame is the current redacted table.
func (s *server) tableSocket(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomParam(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())
	if _, err := s.Coordinator.Snapshot(r.Context(), user, roomID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.Logger.WithError(err).WithField("room", roomID).Warn("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := s.Logger.WithFields(logrus.Fields{"room": roomID, "user": user})
	client := &tableClient{send: make(chan models.Event, sendBuffer), cancel: cancel}

	// Subscribe before loading the snapshot so no transition falls between them.
	unsubscribe := s.Hub.Subscribe(roomID, client)
	defer unsubscribe()
	snap, err := s.Coordinator.Snapshot(ctx, user, roomID)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, game.ErrorReason(err))
		return
	}
	client.prime(models.Event{Type: engine.EventGameState, RoomID: roomID, Seq: snap.TurnSeq, State: &snap})
	go client.writeLoop(ctx, conn)
	log.Info("table socket connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) && r.Context().Err() == nil {
				log.Warn("table socket dropped: client too slow")
				conn.Close(websocket.StatusPolicyViolation, errSlowClient.Error())
				return
			}
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.WithError(err).Debug("table socket read ended")
			}
			log.Info("table socket disconnected")
			return
		}

		var msg models.Action
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = client.Send(ctx, models.NewErrorEvent(roomID, "malformed action: "+err.Error()))
			continue
		}
		if msg.RoomID == uuid.Nil {
			msg.RoomID = roomID
		}
		if msg.RoomID != roomID {
			_ = client.Send(ctx, models.NewErrorEvent(roomID, "action is for another room"))
			continue
		}
		// A transition that started is finished even if the socket goes away.
		if _, err := s.Coordinator.HandleAction(context.WithoutCancel(ctx), user, msg); err != nil {
			_ = client.Send(ctx, models.NewErrorEvent(roomID, game.ErrorReason(err)))
		}
	}
}
