// internal/scheduler/redis.go
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// DueKey is the sorted set of pending rooms scored by due time (unix ms).
	DueKey = "blackjack:turns"
	// PayloadKey is the hash of pending jobs by room id.
	PayloadKey = "blackjack:turns:payload"

	pollBatch = 64
)

// claimScript removes a room's job if it is due and returns its payload. The
// check and the removal are one step so that only one process delivers a job
// and a job replaced while due is never delivered with the newer payload.
var claimScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if not score or tonumber(score) > tonumber(ARGV[2]) then
  return false
end
redis.call('ZREM', KEYS[1], ARGV[1])
local payload = redis.call('HGET', KEYS[2], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
return payload
`)

// RedisScheduler keeps turn timers in Redis so any server instance can
// schedule, cancel and deliver them. Every instance polls the due set.
type RedisScheduler struct {
	rdb   redis.UniversalClient
	clock quartz.Clock
	poll  time.Duration
	log   logrus.FieldLogger

	mu      sync.Mutex
	handler Handler
}

// NewRedisScheduler returns a RedisScheduler that checks for due jobs every
// poll interval.
func NewRedisScheduler(rdb redis.UniversalClient, clock quartz.Clock, poll time.Duration, log logrus.FieldLogger) *RedisScheduler {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &RedisScheduler{rdb: rdb, clock: clock, poll: poll, log: log}
}

func (s *RedisScheduler) Handle(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *RedisScheduler) Schedule(ctx context.Context, job Job, delay time.Duration) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	member := job.RoomID.String()
	due := s.clock.Now().Add(delay).UnixMilli()

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, DueKey, redis.Z{Score: float64(due), Member: member})
		p.HSet(ctx, PayloadKey, member, b)
		return nil
	})
	if err != nil {
		return fmt.Errorf("schedule turn timer: %w", err)
	}
	return nil
}

func (s *RedisScheduler) Cancel(ctx context.Context, roomID uuid.UUID) error {
	member := roomID.String()
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, DueKey, member)
		p.HDel(ctx, PayloadKey, member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel turn timer: %w", err)
	}
	return nil
}

// Pending returns the job waiting for a room and its due time.
func (s *RedisScheduler) Pending(ctx context.Context, roomID uuid.UUID) (Job, time.Time, bool, error) {
	member := roomID.String()
	score, err := s.rdb.ZScore(ctx, DueKey, member).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, time.Time{}, false, nil
	}
	if err != nil {
		return Job{}, time.Time{}, false, err
	}
	b, err := s.rdb.HGet(ctx, PayloadKey, member).Bytes()
	if err != nil {
		return Job{}, time.Time{}, false, err
	}
	var job Job
	if err := json.Unmarshal(b, &job); err != nil {
		return Job{}, time.Time{}, false, err
	}
	return job, time.UnixMilli(int64(score)), true, nil
}

// Run polls for due jobs until ctx is done.
func (s *RedisScheduler) Run(ctx context.Context) error {
	w := s.clock.TickerFunc(ctx, s.poll, func() error {
		s.deliverDue(ctx)
		return nil
	}, "scheduler", "poll")
	err := w.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// deliverDue claims and hands over every job whose due time has passed.
func (s *RedisScheduler) deliverDue(ctx context.Context) int {
	now := s.clock.Now().UnixMilli()
	members, err := s.rdb.ZRangeByScore(ctx, DueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: pollBatch,
	}).Result()
	if err != nil {
		if ctx.Err() == nil {
			s.log.WithError(err).Error("poll turn timers")
		}
		return 0
	}

	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()

	delivered := 0
	for _, member := range members {
		payload, err := claimScript.Run(ctx, s.rdb, []string{DueKey, PayloadKey}, member, now).Text()
		if errors.Is(err, redis.Nil) {
			// Claimed elsewhere, or rescheduled into the future.
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("room", member).Error("claim turn timer")
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			s.log.WithError(err).WithField("room", member).Error("decode turn timer")
			continue
		}
		if h == nil {
			s.log.WithField("room", member).Warn("turn timer due with no handler")
			continue
		}
		h(ctx, job)
		delivered++
	}
	return delivered
}
