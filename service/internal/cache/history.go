// internal/cache/history.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ActionRecord is one applied action in a room's recent history.
type ActionRecord struct {
	RoomID      uuid.UUID      `json:"roomId"`
	Seq         uint64         `json:"seq"`         // TurnSeq after the action.
	ActorUserID uuid.UUID      `json:"actorUserId"` // Nil for actions forced by a timeout.
	ActionType  string         `json:"actionType"`
	Payload     map[string]any `json:"payload,omitempty"`
	Timestamp   int64          `json:"timestamp"` // Unix milliseconds.
}

// History keeps the most recent action records of each room in a capped
// Redis list. It is a debugging trail for live tables, not an archive: the
// list is trimmed on every append and dropped when the table closes.
type History struct {
	rdb redis.Cmdable
	max int64
}

// NewHistory returns a History keeping at most max records per room.
func NewHistory(rdb redis.Cmdable, max int64) *History {
	if max <= 0 {
		max = 200
	}
	return &History{rdb: rdb, max: max}
}

func historyKey(roomID uuid.UUID) string {
	return "blackjack:actions:" + roomID.String()
}

// Append records rec, dropping the oldest entries beyond the cap.
func (h *History) Append(ctx context.Context, rec ActionRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := historyKey(rec.RoomID)
	_, err = h.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, b)
		p.LTrim(ctx, key, -h.max, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append action record: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest records for a room, oldest first.
func (h *History) Recent(ctx context.Context, roomID uuid.UUID, n int64) ([]ActionRecord, error) {
	raw, err := h.rdb.LRange(ctx, historyKey(roomID), -n, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read action records: %w", err)
	}
	out := make([]ActionRecord, 0, len(raw))
	for _, s := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode action record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Drop deletes a room's history.
func (h *History) Drop(ctx context.Context, roomID uuid.UUID) error {
	return h.rdb.Del(ctx, historyKey(roomID)).Err()
}
