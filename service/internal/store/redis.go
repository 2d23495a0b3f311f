// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each room's snapshot as JSON under blackjack:state:<roomId>.
// Save is a compare-and-swap on the snapshot's Version using WATCH/MULTI.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore returns a RedisStore on rdb.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// StateKey is the Redis key of a room's snapshot.
func StateKey(roomID uuid.UUID) string {
	return "blackjack:state:" + roomID.String()
}

func (s *RedisStore) Load(ctx context.Context, roomID uuid.UUID) (engine.GameState, error) {
	b, err := s.rdb.Get(ctx, StateKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.GameState{}, ErrNotFound
	}
	if err != nil {
		return engine.GameState{}, fmt.Errorf("get game state: %w", err)
	}
	var g engine.GameState
	if err := json.Unmarshal(b, &g); err != nil {
		return engine.GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	return g, nil
}

func (s *RedisStore) Save(ctx context.Context, g engine.GameState, expected uint64) (engine.GameState, error) {
	key := StateKey(g.RoomID)
	g.Version = expected + 1
	b, err := json.Marshal(g)
	if err != nil {
		return engine.GameState{}, fmt.Errorf("encode game state: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}

	err = s.rdb.Watch(ctx, txf, key)
	switch {
	case err == nil:
		return g, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return engine.GameState{}, ErrVersionConflict
	default:
		return engine.GameState{}, fmt.Errorf("save game state: %w", err)
	}
}

// storedVersion reads only the version field of the watched snapshot; 0 when
// the key is absent.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (uint64, error) {
	b, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get game state: %w", err)
	}
	var head struct {
		Version uint64 `json:"version"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return 0, fmt.Errorf("decode game state version: %w", err)
	}
	return head.Version, nil
}

func (s *RedisStore) Delete(ctx context.Context, roomID uuid.UUID) error {
	if err := s.rdb.Del(ctx, StateKey(roomID)).Err(); err != nil {
		return fmt.Errorf("delete game state: %w", err)
	}
	return nil
}
