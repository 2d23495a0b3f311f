// internal/rooms/memory.go
package rooms

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryDirectory keeps membership and archived rounds in process, for tests
// and single-node development.
type MemoryDirectory struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]Membership
	rounds map[uuid.UUID][]RoundResult
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		rooms:  make(map[uuid.UUID]Membership),
		rounds: make(map[uuid.UUID][]RoundResult),
	}
}

// Put stores m, replacing any previous membership of the room.
func (d *MemoryDirectory) Put(m Membership) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m.Members = slices.Clone(m.Members)
	d.rooms[m.RoomID] = m
}

func (d *MemoryDirectory) Membership(_ context.Context, roomID uuid.UUID) (Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.rooms[roomID]
	if !ok {
		return Membership{}, ErrRoomNotFound
	}
	m.Members = slices.Clone(m.Members)
	return m, nil
}

func (d *MemoryDirectory) RecordRound(_ context.Context, res RoundResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, have := range d.rounds[res.RoomID] {
		if have.TurnSeq == res.TurnSeq {
			return nil
		}
	}
	d.rounds[res.RoomID] = append(d.rounds[res.RoomID], res)
	return nil
}

// Rounds returns the archived rounds of a room, newest first.
func (d *MemoryDirectory) Rounds(_ context.Context, roomID uuid.UUID, limit int) ([]RoundResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all := d.rounds[roomID]
	out := make([]RoundResult, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
