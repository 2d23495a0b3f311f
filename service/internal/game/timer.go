// internal/game/timer.go
package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/jason-s-yu/blackjack/service/internal/scheduler"
	"github.com/jason-s-yu/blackjack/service/internal/store"
	"github.com/sirupsen/logrus"
)

// expireTimeout bounds the forced transition run when a timer fires.
const expireTimeout = 5 * time.Second

// needsClock reports whether someone is on the clock in g: a player whose turn
// it is, or seats yet to bet once somebody has.
func needsClock(g engine.GameState) bool {
	switch g.Phase {
	case engine.PhasePlayerTurn:
		return true
	case engine.PhaseWaitingForBets:
		return g.HasBets()
	}
	return false
}

// arm points the room's timer at g before g is saved: a job for g.TurnSeq
// when someone is on the clock, no job otherwise. Schedule replaces the job
// pending for the room, so a failed call leaves the previous timer in place.
//
// Assumes the room lock is held by the caller.
func (c *Coordinator) arm(ctx context.Context, g engine.GameState) error {
	if !needsClock(g) {
		if err := c.sched.Cancel(ctx, g.RoomID); err != nil {
			return &ResourceError{Op: "cancel timer", Err: err}
		}
		return nil
	}
	job := scheduler.Job{RoomID: g.RoomID, TurnSeq: g.TurnSeq}
	if err := c.sched.Schedule(ctx, job, c.turnLimit(g)); err != nil {
		return &ResourceError{Op: "schedule timer", Err: err}
	}
	return nil
}

// resync re-arms the room's timer for the stored snapshot. It follows a
// transition that changed the timer but was not saved, and a fired timer
// whose forced action failed.
//
// Assumes the room lock is held by the caller.
func (c *Coordinator) resync(ctx context.Context, roomID uuid.UUID) {
	entry := c.log.WithField("room", roomID)
	g, err := c.store.Load(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		if err := c.sched.Cancel(ctx, roomID); err != nil {
			entry.WithError(err).Error("cancel turn timer")
		}
		return
	}
	if err != nil {
		entry.WithError(err).Error("load state to restore turn timer")
		return
	}
	if err := c.arm(ctx, g); err != nil {
		entry.WithField("seq", g.TurnSeq).WithError(err).Error("restore turn timer")
	}
}

// timeoutActions returns what the table does for players who ran out of
// time: stand the active hand, or sit out every seat that has not bet.
func timeoutActions(g engine.GameState) []engine.Action {
	switch g.Phase {
	case engine.PhasePlayerTurn:
		seat, hand, ok := g.CurrentTurn()
		if !ok {
			return nil
		}
		return []engine.Action{{Type: engine.ActionStand, SeatIndex: seat, HandIndex: hand}}
	case engine.PhaseWaitingForBets:
		if !g.HasBets() {
			return nil
		}
		var out []engine.Action
		for _, seat := range g.IdleSeats() {
			out = append(out, engine.Action{Type: engine.ActionSitOut, SeatIndex: seat})
		}
		return out
	}
	return nil
}

// expire handles a fired turn timer. A timer whose TurnSeq no longer matches
// the stored snapshot belongs to a turn that has already moved on.
func (c *Coordinator) expire(ctx context.Context, job scheduler.Job) {
	ctx, cancel := context.WithTimeout(ctx, expireTimeout)
	defer cancel()

	unlock := c.locks.lock(job.RoomID)
	defer unlock()

	entry := c.log.WithFields(logrus.Fields{"room": job.RoomID, "seq": job.TurnSeq})
	g, err := c.store.Load(ctx, job.RoomID)
	if errors.Is(err, store.ErrNotFound) {
		entry.Debug("turn timer for closed table")
		return
	}
	if err != nil {
		entry.WithError(err).Error("load state for turn timer")
		return
	}
	if g.TurnSeq != job.TurnSeq {
		entry.WithField("current", g.TurnSeq).Debug("stale turn timer")
		return
	}

	actions := timeoutActions(g)
	if len(actions) == 0 {
		return
	}
	entry.WithFields(logrus.Fields{"phase": g.Phase, "forced": len(actions)}).Info("turn timed out")
	if _, err := c.apply(ctx, uuid.Nil, g, actions...); err != nil {
		entry.WithError(err).Error("forced action failed")
		c.publish(ctx, models.NewErrorEvent(job.RoomID, ErrorReason(err)))
		// The fired job was consumed; give the stalled turn a new one.
		c.resync(ctx, job.RoomID)
	}
}
