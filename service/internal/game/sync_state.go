// internal/game/sync_state.go
package game

import (
	"context"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/cache"
)

// Snapshot returns the redacted table of a room for a member who is joining
// or reconnecting.
func (c *Coordinator) Snapshot(ctx context.Context, actor, roomID uuid.UUID) (engine.GameState, error) {
	if _, err := c.membership(ctx, roomID, actor); err != nil {
		return engine.GameState{}, err
	}
	g, err := c.load(ctx, roomID)
	if err != nil {
		return engine.GameState{}, err
	}
	return engine.Redact(g), nil
}

// RecentActions returns up to n of the room's latest actions, oldest first.
// It is empty when no history is configured.
func (c *Coordinator) RecentActions(ctx context.Context, actor, roomID uuid.UUID, n int64) ([]cache.ActionRecord, error) {
	if _, err := c.membership(ctx, roomID, actor); err != nil {
		return nil, err
	}
	if c.hist == nil {
		return nil, nil
	}
	recs, err := c.hist.Recent(ctx, roomID, n)
	if err != nil {
		return nil, &ResourceError{Op: "load action history", Err: err}
	}
	return recs, nil
}
