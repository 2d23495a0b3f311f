// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
)

var (
	// ErrNotFound is returned when a room has no table snapshot.
	ErrNotFound = errors.New("game state not found")
	// ErrVersionConflict is returned by Save when the stored snapshot is not the
	// version the caller read.
	ErrVersionConflict = errors.New("game state version conflict")
)

// Store is the shared home of every room's GameState snapshot.
type Store interface {
	// Load returns the current snapshot of a room.
	Load(ctx context.Context, roomID uuid.UUID) (engine.GameState, error)
	// Save writes g if the stored version still equals expected (0 means the
	// room must have no snapshot yet) and returns g stamped with its new
	// version.
	Save(ctx context.Context, g engine.GameState, expected uint64) (engine.GameState, error)
	// Delete evicts a room's snapshot. Deleting a missing room is not an error.
	Delete(ctx context.Context, roomID uuid.UUID) error
}
