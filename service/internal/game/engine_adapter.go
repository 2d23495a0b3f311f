// internal/game/engine_adapter.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/cache"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/jason-s-yu/blackjack/service/internal/rooms"
	"github.com/sirupsen/logrus"
)

// sideEffectTimeout bounds the history and archive writes that follow a
// committed transition.
const sideEffectTimeout = 2 * time.Second

// apply runs actions against g as one transition. Player actions pass a
// single action; a bet timeout passes one SitOut per idle seat. actor is
// uuid.Nil when the table acts on its own.
//
// Assumes the room lock is held by the caller.
func (c *Coordinator) apply(ctx context.Context, actor uuid.UUID, g engine.GameState, actions ...engine.Action) (engine.GameState, error) {
	next := g
	var events []engine.EventType
	var departed []*engine.Player
	for _, a := range actions {
		var out engine.Outcome
		next, out = engine.Apply(next, a)
		if !out.ActionSuccess {
			c.log.WithFields(logrus.Fields{
				"room":   g.RoomID,
				"user":   actor,
				"action": a.Type,
				"phase":  g.Phase,
			}).WithError(out.Err).Info("action rejected")
			return g, out.Err
		}
		events = appendEvents(events, out.Events)
		if out.Departed != nil {
			departed = append(departed, out.Departed)
		}
	}

	// Arm before saving so that every committed turn has its timer. A job
	// armed for a snapshot that is then not saved is stale.
	if err := c.arm(ctx, next); err != nil {
		c.log.WithFields(logrus.Fields{"room": g.RoomID, "seq": next.TurnSeq}).WithError(err).Error("arm turn timer")
		return g, err
	}
	saved, err := c.store.Save(ctx, next, g.Version)
	if err != nil {
		c.log.WithFields(logrus.Fields{"room": g.RoomID, "seq": next.TurnSeq}).WithError(err).Error("save state")
		c.resync(ctx, g.RoomID)
		return g, &ResourceError{Op: "save state", Err: err}
	}

	entry := c.log.WithFields(logrus.Fields{
		"room":  saved.RoomID,
		"user":  actor,
		"seq":   saved.TurnSeq,
		"phase": saved.Phase,
	})
	for _, a := range actions {
		entry.WithField("action", a.Type).Debug("action applied")
	}
	for _, p := range departed {
		entry.WithField("stack", p.Stack).Info("player left the table")
	}

	c.broadcastTransition(ctx, actor, saved, events)
	c.logActions(actor, saved, actions)
	if saved.RoundOver && !g.RoundOver {
		c.recordRound(saved)
	}
	return saved, nil
}

// appendEvents adds the events not already in dst, keeping first-seen order.
func appendEvents(dst, src []engine.EventType) []engine.EventType {
	for _, e := range src {
		seen := false
		for _, have := range dst {
			if have == e {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, e)
		}
	}
	return dst
}

// broadcastTransition sends the transition's named events, then the redacted
// snapshot.
func (c *Coordinator) broadcastTransition(ctx context.Context, actor uuid.UUID, g engine.GameState, events []engine.EventType) {
	var who *uuid.UUID
	if actor != uuid.Nil {
		who = &actor
	}
	for _, e := range events {
		c.publish(ctx, models.Event{Type: e, RoomID: g.RoomID, Seq: g.TurnSeq, Actor: who})
	}
	state := models.NewStateEvent(g)
	state.Actor = who
	c.publish(ctx, state)
}

func (c *Coordinator) publish(ctx context.Context, ev models.Event) {
	if err := c.pub.Publish(ctx, ev); err != nil {
		c.log.WithFields(logrus.Fields{"room": ev.RoomID, "event": ev.Type}).WithError(err).Error("broadcast event")
	}
}

// logActions appends the transition's actions to the room's recent history.
func (c *Coordinator) logActions(actor uuid.UUID, g engine.GameState, actions []engine.Action) {
	if c.hist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	now := c.clock.Now().UnixMilli()
	for _, a := range actions {
		payload := map[string]any{
			"seatIndex": a.SeatIndex,
			"handIndex": a.HandIndex,
		}
		if a.Amount != 0 {
			payload["amount"] = a.Amount
		}
		rec := cache.ActionRecord{
			RoomID:      g.RoomID,
			Seq:         g.TurnSeq,
			ActorUserID: actor,
			ActionType:  a.Type.String(),
			Payload:     payload,
			Timestamp:   now,
		}
		if err := c.hist.Append(ctx, rec); err != nil {
			c.log.WithFields(logrus.Fields{"room": g.RoomID, "seq": g.TurnSeq}).WithError(err).Warn("append action history")
			return
		}
	}
}

// recordRound archives a round that has just been settled.
func (c *Coordinator) recordRound(g engine.GameState) {
	if c.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := c.rec.RecordRound(ctx, rooms.NewRoundResult(g)); err != nil {
		c.log.WithFields(logrus.Fields{"room": g.RoomID, "seq": g.TurnSeq}).WithError(err).Error("record round")
	}
}
