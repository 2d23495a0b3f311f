// cmd/server/token.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/service/internal/auth"
	"github.com/jason-s-yu/blackjack/service/internal/rooms"
)

// TokenCmd prints a signed player token. Production tokens come from the
// account service; this is for local play.
type TokenCmd struct {
	JWTSecret string        `help:"HS256 signing secret." env:"JWT_SECRET" required:""`
	User      string        `arg:"" optional:"" help:"User id; a new one is generated when omitted."`
	TTL       time.Duration `help:"Token lifetime." default:"24h"`
}

func (c *TokenCmd) Run() error {
	user := uuid.New()
	if c.User != "" {
		var err error
		if user, err = uuid.Parse(c.User); err != nil {
			return fmt.Errorf("user: %w", err)
		}
	}
	token, err := auth.NewVerifier([]byte(c.JWTSecret)).Issue(user, c.TTL)
	if err != nil {
		return err
	}
	fmt.Printf("user:  %s\ntoken: %s\n", user, token)
	return nil
}

// RoomCmd writes a room's membership to the directory. Lobbies normally do
// this; the command exists for local setups without one.
type RoomCmd struct {
	DatabaseURL string   `help:"Postgres URL of the room directory." env:"DATABASE_URL" required:""`
	Migrate     bool     `help:"Create the directory tables if missing." env:"DATABASE_MIGRATE"`
	Room        string   `help:"Room id; a new one is generated when omitted."`
	Host        string   `help:"Host user id." required:""`
	Members     []string `name:"member" help:"Member user id. Repeatable."`
}

func (c *RoomCmd) Run() error {
	ctx := context.Background()

	m := rooms.Membership{RoomID: uuid.New()}
	var err error
	if c.Room != "" {
		if m.RoomID, err = uuid.Parse(c.Room); err != nil {
			return fmt.Errorf("room: %w", err)
		}
	}
	if m.HostID, err = uuid.Parse(c.Host); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	for _, s := range c.Members {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("member %q: %w", s, err)
		}
		m.Members = append(m.Members, id)
	}

	db, err := rooms.Open(ctx, c.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if c.Migrate {
		if err := rooms.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := db.PutRoom(ctx, m); err != nil {
		return err
	}
	fmt.Printf("room: %s\n", m.RoomID)
	return nil
}
