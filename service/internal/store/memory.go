// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
)

// MemoryStore keeps snapshots in process memory. It serves single-process
// deployments and tests.
type MemoryStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]engine.GameState
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uuid.UUID]engine.GameState)}
}

func (s *MemoryStore) Load(_ context.Context, roomID uuid.UUID) (engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.states[roomID]
	if !ok {
		return engine.GameState{}, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, g engine.GameState, expected uint64) (engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current uint64
	if cur, ok := s.states[g.RoomID]; ok {
		current = cur.Version
	}
	if current != expected {
		return engine.GameState{}, ErrVersionConflict
	}
	g = g.Clone()
	g.Version = expected + 1
	s.states[g.RoomID] = g
	return g.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, roomID)
	return nil
}
