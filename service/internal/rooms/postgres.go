// internal/rooms/postgres.go
package rooms

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// DB is the Postgres pool backing room membership and the round archive.
type DB struct{ *pgxpool.Pool }

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{p}, nil
}

// Migrate creates the tables this package reads and writes.
func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// Membership loads the host and members of a room.
func (db *DB) Membership(ctx context.Context, roomID uuid.UUID) (Membership, error) {
	m := Membership{RoomID: roomID}
	err := db.QueryRow(ctx, `SELECT host_id FROM rooms WHERE id = $1`, roomID).Scan(&m.HostID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Membership{}, ErrRoomNotFound
	}
	if err != nil {
		return Membership{}, fmt.Errorf("load room %s: %w", roomID, err)
	}

	rows, err := db.Query(ctx, `
		SELECT user_id
		  FROM room_members
		 WHERE room_id = $1
		 ORDER BY joined_at, user_id
	`, roomID)
	if err != nil {
		return Membership{}, fmt.Errorf("load members of %s: %w", roomID, err)
	}
	m.Members, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return Membership{}, fmt.Errorf("scan members of %s: %w", roomID, err)
	}
	return m, nil
}

// PutRoom creates or updates a room and adds members to it.
func (db *DB) PutRoom(ctx context.Context, m Membership) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO rooms(id, host_id) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET host_id = EXCLUDED.host_id
		`, m.RoomID, m.HostID); err != nil {
			return fmt.Errorf("upsert room: %w", err)
		}
		for _, u := range m.Members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO room_members(room_id, user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, m.RoomID, u); err != nil {
				return fmt.Errorf("add member: %w", err)
			}
		}
		return nil
	})
}

// RecordRound archives a settled round. Recording the same round twice keeps
// the first record.
func (db *DB) RecordRound(ctx context.Context, res RoundResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode round: %w", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO round_results(room_id, turn_seq, table_name, result)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, turn_seq) DO NOTHING
	`, res.RoomID, int64(res.TurnSeq), res.TableName, b)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}

// Rounds returns the most recent archived rounds of a room, newest first.
func (db *DB) Rounds(ctx context.Context, roomID uuid.UUID, limit int) ([]RoundResult, error) {
	rows, err := db.Query(ctx, `
		SELECT result
		  FROM round_results
		 WHERE room_id = $1
		 ORDER BY turn_seq DESC
		 LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan rounds: %w", err)
	}
	out := make([]RoundResult, 0, len(raw))
	for _, b := range raw {
		var res RoundResult
		if err := json.Unmarshal(b, &res); err != nil {
			return nil, fmt.Errorf("decode round: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}
