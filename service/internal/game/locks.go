// internal/game/locks.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// roomLocks hands out one mutex per room. Entries are created on demand and
// removed when the last holder or waiter releases them.
type roomLocks struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: make(map[uuid.UUID]*roomLock)}
}

// lock blocks until the room is free and returns the function that frees it.
func (l *roomLocks) lock(roomID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	rl, ok := l.rooms[roomID]
	if !ok {
		rl = &roomLock{}
		l.rooms[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.rooms, roomID)
		}
		l.mu.Unlock()
	}
}

// size returns the number of rooms with a holder or waiter.
func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
