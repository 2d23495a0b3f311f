// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTables(t *testing.T) {
	src := `
table "high-roller" {
  decks        = 8
  seats        = 5
  min_bet      = 100
  max_bet      = 5000
  max_buy_in   = 100000
  turn_seconds = 45
  hit_soft_17  = false
}

table "quick" {
  turn_seconds = 10
}
`
	tables, err := ParseTables([]byte(src), "tables.hcl")
	require.NoError(t, err)
	require.Len(t, tables, 2)

	hr := tables[0]
	assert.Equal(t, "high-roller", hr.Name)
	rules := hr.Rules()
	assert.Equal(t, 8, rules.DeckCount)
	assert.Equal(t, 5, rules.Seats)
	assert.Equal(t, int64(100), rules.MinBet)
	assert.Equal(t, int64(5000), rules.MaxBet)
	assert.Equal(t, int64(100000), rules.BuyInLimit())
	assert.False(t, rules.HitSoft17)
	assert.Equal(t, 45*time.Second, hr.TurnLimit())

	q := tables[1]
	assert.Equal(t, 6, q.Decks, "unset fields take the engine defaults")
	assert.Equal(t, 6, q.Seats)
	assert.Equal(t, int64(1), q.MinBet)
	assert.True(t, q.Rules().HitSoft17)
	assert.Equal(t, engine.MaxStack, q.Rules().BuyInLimit())
	assert.Equal(t, 10*time.Second, q.TurnLimit())

	idx := Index(tables)
	assert.Contains(t, idx, "quick")
}

func TestParseTablesErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":       `table "x" {`,
		"duplicate":    "table \"a\" {}\ntable \"a\" {}\n",
		"invalid rule": `table "x" { decks = 12 }`,
		"buy-in limit": `table "x" { max_buy_in = -5 }`,
		"empty":        ``,
		"unknown attr": `table "x" { surrender = true }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTables([]byte(src), "tables.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()

	tables, err := LoadTables(filepath.Join(dir, "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTables(), tables)

	path := filepath.Join(dir, "tables.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`table "solo" { seats = 1 }`), 0o600))
	tables, err = LoadTables(path)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "solo", tables[0].Name)
	assert.Equal(t, DefaultTurnLimit, tables[0].TurnLimit())
}

func TestDefaultTablesAreValid(t *testing.T) {
	for _, tc := range DefaultTables() {
		assert.NoError(t, tc.Rules().Validate(), tc.Name)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLACKJACK_TEST_DOTENV=from-file\n"), 0o600))

	t.Setenv("BLACKJACK_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("BLACKJACK_TEST_DOTENV"))
	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "from-file", os.Getenv("BLACKJACK_TEST_DOTENV"))

	t.Setenv("BLACKJACK_TEST_DOTENV", "from-env")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("BLACKJACK_TEST_DOTENV"), "set variables win")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = NewLogger("loud", "text")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}
