// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the process settings. Every field can come from the
// environment (optionally seeded from a .env file) and be overridden by a
// command-line flag of the same name.
type Config struct {
	Addr          string        `help:"HTTP listen address." env:"BLACKJACK_ADDR" default:":8080"`
	RedisURL      string        `help:"Redis URL for state, timers and the broadcast relay." env:"REDIS_URL" default:"redis://localhost:6379/0"`
	DatabaseURL   string        `help:"Postgres URL of the room directory." env:"DATABASE_URL" required:""`
	JWTSecret     string        `help:"HS256 secret used to verify player tokens." env:"JWT_SECRET" required:""`
	TablesFile    string        `help:"HCL file with table definitions." env:"TABLES_FILE" default:"tables.hcl"`
	LogLevel      string        `help:"Log level." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	LogFormat     string        `help:"Log format." env:"LOG_FORMAT" default:"text" enum:"text,json"`
	Scheduler     string        `help:"Turn timer backend: local timers or the shared Redis queue." env:"SCHEDULER" default:"redis" enum:"local,redis"`
	SchedulerPoll time.Duration `help:"Poll interval of the Redis turn queue." env:"SCHEDULER_POLL" default:"250ms"`
	Migrate       bool          `help:"Create the room directory tables if missing." env:"DATABASE_MIGRATE" default:"false"`
}

// LoadDotEnv loads the given .env files (".env" when none are named) into the
// process environment. Missing files are not an error; variables already set
// are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// NewLogger builds the process logger.
func NewLogger(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(lvl)

	switch format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}
