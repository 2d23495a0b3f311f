// cmd/server/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/jason-s-yu/blackjack/service/internal/auth"
	"github.com/jason-s-yu/blackjack/service/internal/broadcast"
	"github.com/jason-s-yu/blackjack/service/internal/cache"
	"github.com/jason-s-yu/blackjack/service/internal/config"
	"github.com/jason-s-yu/blackjack/service/internal/game"
	"github.com/jason-s-yu/blackjack/service/internal/handlers"
	"github.com/jason-s-yu/blackjack/service/internal/rooms"
	"github.com/jason-s-yu/blackjack/service/internal/scheduler"
	"github.com/jason-s-yu/blackjack/service/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the HTTP and WebSocket server together with the broadcast
// relay and the turn scheduler.
type ServeCmd struct {
	config.Config `embed:""`

	Origins []string `help:"Additional origins allowed to open table sockets." env:"BLACKJACK_ORIGINS"`
}

func (c *ServeCmd) Run() error {
	logger, err := config.NewLogger(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := config.LoadTables(c.TablesFile)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	rdb, err := cache.Connect(ctx, c.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	db, err := rooms.Open(ctx, c.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if c.Migrate {
		if err := rooms.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("room directory schema applied")
	}

	clock := quartz.NewReal()
	var sched scheduler.Scheduler
	switch c.Scheduler {
	case "local":
		sched = scheduler.NewLocalScheduler(clock, logger.WithField("component", "scheduler"))
	default:
		sched = scheduler.NewRedisScheduler(rdb, clock, c.SchedulerPoll, logger.WithField("component", "scheduler"))
	}

	hub := broadcast.NewHub(logger.WithField("component", "hub"))
	relay := broadcast.NewRelay(rdb, hub, logger.WithField("component", "relay"))

	coord := game.New(game.Options{
		Store:     store.NewRedisStore(rdb),
		Scheduler: sched,
		Publisher: relay,
		Directory: db,
		Recorder:  db,
		History:   cache.NewHistory(rdb, 0),
		Tables:    tables,
		Clock:     clock,
		Logger:    logger.WithField("component", "coordinator"),
	})

	srv := &http.Server{
		Addr: c.Addr,
		Handler: handlers.NewRouter(handlers.Deps{
			Coordinator:    coord,
			Hub:            hub,
			Verifier:       auth.NewVerifier([]byte(c.JWTSecret)),
			Logger:         logger.WithField("component", "http"),
			OriginPatterns: c.Origins,
			Health: func(ctx context.Context) error {
				if err := rdb.Ping(ctx).Err(); err != nil {
					return err
				}
				return db.Ping(ctx)
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relay.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":      c.Addr,
			"scheduler": c.Scheduler,
			"tables":    len(tables),
		}).Info("blackjack server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
