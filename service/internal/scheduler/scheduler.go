// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the turn timeout of one room. TurnSeq is the snapshot sequence the
// timeout was scheduled for; a job whose TurnSeq no longer matches the stored
// snapshot is stale.
type Job struct {
	RoomID  uuid.UUID `json:"roomId"`
	TurnSeq uint64    `json:"turnSeq"`
}

// Handler runs when a job comes due.
type Handler func(ctx context.Context, job Job)

// Scheduler holds at most one pending job per room.
type Scheduler interface {
	// Handle registers the function that receives due jobs. It must be set
	// before Run.
	Handle(h Handler)
	// Schedule arranges for job to fire after delay, replacing any job
	// already pending for job.RoomID.
	Schedule(ctx context.Context, job Job, delay time.Duration) error
	// Cancel drops the pending job of a room, if any.
	Cancel(ctx context.Context, roomID uuid.UUID) error
	// Run delivers due jobs until ctx is done.
	Run(ctx context.Context) error
}
