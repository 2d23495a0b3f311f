// internal/game/game.go
package game

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/broadcast"
	"github.com/jason-s-yu/blackjack/service/internal/cache"
	"github.com/jason-s-yu/blackjack/service/internal/config"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/jason-s-yu/blackjack/service/internal/rooms"
	"github.com/jason-s-yu/blackjack/service/internal/scheduler"
	"github.com/jason-s-yu/blackjack/service/internal/store"
	"github.com/sirupsen/logrus"
)

// Options wires a Coordinator to its adapters.
type Options struct {
	Store     store.Store          // Shared GameState snapshots.
	Scheduler scheduler.Scheduler  // Turn timers.
	Publisher broadcast.Publisher  // Room-wide events.
	Directory rooms.Directory      // Who may act in a room.
	Recorder  rooms.Recorder       // Optional archive of settled rounds.
	History   *cache.History       // Optional recent-action trail.
	Tables    []config.TableConfig // Table kinds a room can open.
	Clock     quartz.Clock         // Defaults to the real clock.
	Seed      func() uint64        // Shuffle seed for new tables; defaults to the clock.
	Logger    logrus.FieldLogger   // Required.
}

// Coordinator is the single path by which table state changes. Every change,
// whether sent by a player or forced by a turn timeout, runs
// load → apply → arm timer → save → broadcast under the room's lock.
type Coordinator struct {
	store  store.Store
	sched  scheduler.Scheduler
	pub    broadcast.Publisher
	dir    rooms.Directory
	rec    rooms.Recorder
	hist   *cache.History
	tables map[string]config.TableConfig
	kinds  []config.TableConfig
	clock  quartz.Clock
	seed   func() uint64
	log    logrus.FieldLogger

	locks *roomLocks
}

// New builds a Coordinator and registers it as the scheduler's handler.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		store:  opts.Store,
		sched:  opts.Scheduler,
		pub:    opts.Publisher,
		dir:    opts.Directory,
		rec:    opts.Recorder,
		hist:   opts.History,
		tables: config.Index(opts.Tables),
		kinds:  opts.Tables,
		clock:  opts.Clock,
		seed:   opts.Seed,
		log:    opts.Logger,
		locks:  newRoomLocks(),
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.seed == nil {
		c.seed = func() uint64 { return uint64(c.clock.Now().UnixNano()) }
	}
	c.sched.Handle(c.expire)
	return c
}

// Tables returns the configured table kinds in configuration order.
func (c *Coordinator) Tables() []config.TableConfig {
	return slices.Clone(c.kinds)
}

// HandleAction applies a player's action message and returns the resulting
// snapshot. On any error the stored state is unchanged.
func (c *Coordinator) HandleAction(ctx context.Context, actor uuid.UUID, msg models.Action) (engine.GameState, error) {
	if err := msg.Validate(); err != nil {
		return engine.GameState{}, err
	}

	unlock := c.locks.lock(msg.RoomID)
	defer unlock()

	m, err := c.membership(ctx, msg.RoomID, actor)
	if err != nil {
		return engine.GameState{}, err
	}
	g, err := c.load(ctx, msg.RoomID)
	if err != nil {
		return engine.GameState{}, err
	}

	a := msg.ToEngine(actor)
	if err := authorize(m, g, actor, a); err != nil {
		c.log.WithFields(logrus.Fields{
			"room":   msg.RoomID,
			"user":   actor,
			"action": a.Type,
		}).WithError(err).Info("action refused")
		return engine.GameState{}, err
	}
	return c.apply(ctx, actor, g, a)
}

// authorize checks that actor may take a. Sit always seats the actor, so it
// only needs membership.
func authorize(m rooms.Membership, g engine.GameState, actor uuid.UUID, a engine.Action) error {
	switch a.Type {
	case engine.ActionReset, engine.ActionDealer:
		if !m.IsHost(actor) {
			return forbidden("only the host may %s", a.Type)
		}
		return nil
	case engine.ActionSit:
		return nil
	}

	if a.SeatIndex < 0 || a.SeatIndex >= len(g.Seats) || !g.Seats[a.SeatIndex].Occupied() {
		// Let the engine reject actions on missing or empty seats.
		return nil
	}
	if g.Seats[a.SeatIndex].Player.UserID == actor {
		return nil
	}
	if (a.Type == engine.ActionLeave || a.Type == engine.ActionSitOut) && m.IsHost(actor) {
		return nil
	}
	return forbidden("seat %d belongs to another player", a.SeatIndex)
}

// CreateTable opens a table of the named kind in a room. Only the host may
// open one, and a room holds at most one table.
func (c *Coordinator) CreateTable(ctx context.Context, actor, roomID uuid.UUID, tableName string) (engine.GameState, error) {
	tc, ok := c.tables[tableName]
	if !ok {
		return engine.GameState{}, ErrUnknownTable
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	m, err := c.membership(ctx, roomID, actor)
	if err != nil {
		return engine.GameState{}, err
	}
	if !m.IsHost(actor) {
		return engine.GameState{}, forbidden("only the host may open a table")
	}

	g := engine.NewGame(roomID, tc.Name, tc.Rules(), c.seed())
	saved, err := c.store.Save(ctx, g, 0)
	if errors.Is(err, store.ErrVersionConflict) {
		return engine.GameState{}, ErrTableExists
	}
	if err != nil {
		return engine.GameState{}, &ResourceError{Op: "save state", Err: err}
	}

	c.log.WithFields(logrus.Fields{"room": roomID, "user": actor, "table": tc.Name}).Info("table opened")
	c.publish(ctx, models.NewStateEvent(saved))
	return saved, nil
}

// CloseTable removes a room's table, its pending timer and its action trail.
func (c *Coordinator) CloseTable(ctx context.Context, actor, roomID uuid.UUID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	m, err := c.membership(ctx, roomID, actor)
	if err != nil {
		return err
	}
	if !m.IsHost(actor) {
		return forbidden("only the host may close the table")
	}
	if _, err := c.load(ctx, roomID); err != nil {
		return err
	}

	if err := c.sched.Cancel(ctx, roomID); err != nil {
		return &ResourceError{Op: "cancel timer", Err: err}
	}
	if err := c.store.Delete(ctx, roomID); err != nil {
		c.resync(ctx, roomID)
		return &ResourceError{Op: "delete state", Err: err}
	}
	if c.hist != nil {
		if err := c.hist.Drop(ctx, roomID); err != nil {
			c.log.WithError(err).WithField("room", roomID).Warn("drop action history")
		}
	}

	c.log.WithFields(logrus.Fields{"room": roomID, "user": actor}).Info("table closed")
	c.publish(ctx, models.NewErrorEvent(roomID, "table closed"))
	return nil
}

func (c *Coordinator) membership(ctx context.Context, roomID, actor uuid.UUID) (rooms.Membership, error) {
	m, err := c.dir.Membership(ctx, roomID)
	if errors.Is(err, rooms.ErrRoomNotFound) {
		return rooms.Membership{}, forbidden("not a member of this room")
	}
	if err != nil {
		return rooms.Membership{}, &ResourceError{Op: "load membership", Err: err}
	}
	if !m.IsMember(actor) {
		return rooms.Membership{}, forbidden("not a member of this room")
	}
	return m, nil
}

func (c *Coordinator) load(ctx context.Context, roomID uuid.UUID) (engine.GameState, error) {
	g, err := c.store.Load(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return engine.GameState{}, ErrNoTable
	}
	if err != nil {
		return engine.GameState{}, &ResourceError{Op: "load state", Err: err}
	}
	return g, nil
}

// turnLimit returns the turn limit of the table kind g was opened with.
func (c *Coordinator) turnLimit(g engine.GameState) time.Duration {
	if tc, ok := c.tables[g.TableConfigID]; ok {
		return tc.TurnLimit()
	}
	return config.DefaultTurnLimit
}
