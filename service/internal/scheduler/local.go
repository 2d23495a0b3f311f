// internal/scheduler/local.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LocalScheduler keeps turn timers in process. It is correct only when a
// single server instance owns every room.
type LocalScheduler struct {
	clock quartz.Clock
	log   logrus.FieldLogger

	mu      sync.Mutex
	handler Handler
	timers  map[uuid.UUID]*localTimer
}

type localTimer struct {
	job   Job
	timer *quartz.Timer
}

// NewLocalScheduler returns a LocalScheduler driven by clock.
func NewLocalScheduler(clock quartz.Clock, log logrus.FieldLogger) *LocalScheduler {
	return &LocalScheduler{
		clock:  clock,
		log:    log,
		timers: make(map[uuid.UUID]*localTimer),
	}
}

func (s *LocalScheduler) Handle(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *LocalScheduler) Schedule(_ context.Context, job Job, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[job.RoomID]; ok {
		old.timer.Stop()
	}
	lt := &localTimer{job: job}
	lt.timer = s.clock.AfterFunc(delay, func() { s.fire(lt) }, "scheduler", "turn")
	s.timers[job.RoomID] = lt
	return nil
}

func (s *LocalScheduler) Cancel(_ context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lt, ok := s.timers[roomID]; ok {
		lt.timer.Stop()
		delete(s.timers, roomID)
	}
	return nil
}

// fire delivers lt unless it was replaced or cancelled after its timer
// started firing.
func (s *LocalScheduler) fire(lt *localTimer) {
	s.mu.Lock()
	if s.timers[lt.job.RoomID] != lt {
		s.mu.Unlock()
		return
	}
	delete(s.timers, lt.job.RoomID)
	h := s.handler
	s.mu.Unlock()

	if h == nil {
		s.log.WithField("room", lt.job.RoomID).Warn("turn timer fired with no handler")
		return
	}
	h(context.Background(), lt.job)
}

// Pending returns the job waiting for a room.
func (s *LocalScheduler) Pending(roomID uuid.UUID) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lt, ok := s.timers[roomID]
	if !ok {
		return Job{}, false
	}
	return lt.job, true
}

// Len returns the number of pending jobs.
func (s *LocalScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Run waits for ctx and then stops every pending timer.
func (s *LocalScheduler) Run(ctx context.Context) error {
	<-ctx.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, lt := range s.timers {
		lt.timer.Stop()
		delete(s.timers, id)
	}
	return nil
}
