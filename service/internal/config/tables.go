// internal/config/tables.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	engine "github.com/jason-s-yu/blackjack/engine"
)

// DefaultTurnLimit applies to tables that do not set turn_seconds.
const DefaultTurnLimit = 30 * time.Second

// TablesFile is the root of a table definition file:
//
//	table "classic" {
//	  decks        = 6
//	  seats        = 6
//	  min_bet      = 5
//	  max_bet      = 500
//	  max_buy_in   = 10000
//	  turn_seconds = 20
//	  hit_soft_17  = true
//	}
type TablesFile struct {
	Tables []TableConfig `hcl:"table,block"`
}

// TableConfig defines one kind of table a room can be opened with.
type TableConfig struct {
	Name        string `hcl:"name,label" json:"name"`
	Decks       int    `hcl:"decks,optional" json:"decks"`
	Seats       int    `hcl:"seats,optional" json:"seats"`
	MinBet      int64  `hcl:"min_bet,optional" json:"minBet"`
	MaxBet      int64  `hcl:"max_bet,optional" json:"maxBet"`
	MaxBuyIn    int64  `hcl:"max_buy_in,optional" json:"maxBuyIn"`
	TurnSeconds int    `hcl:"turn_seconds,optional" json:"turnSeconds"`
	HitSoft17   *bool  `hcl:"hit_soft_17,optional" json:"hitSoft17"`
}

// Rules returns the engine rules for the table.
func (t TableConfig) Rules() engine.TableRules {
	r := engine.TableRules{
		DeckCount: t.Decks,
		Seats:     t.Seats,
		MinBet:    t.MinBet,
		MaxBet:    t.MaxBet,
		MaxBuyIn:  t.MaxBuyIn,
		HitSoft17: true,
	}
	if t.HitSoft17 != nil {
		r.HitSoft17 = *t.HitSoft17
	}
	return r
}

// TurnLimit is how long a player may take before the table acts for them.
func (t TableConfig) TurnLimit() time.Duration {
	if t.TurnSeconds <= 0 {
		return DefaultTurnLimit
	}
	return time.Duration(t.TurnSeconds) * time.Second
}

// DefaultTables is used when no table file exists.
func DefaultTables() []TableConfig {
	return []TableConfig{
		{Name: "classic", Decks: 6, Seats: 6, MinBet: 5, MaxBet: 500, TurnSeconds: 30},
		{Name: "single-deck", Decks: 1, Seats: 4, MinBet: 10, MaxBet: 200, TurnSeconds: 20},
	}
}

// LoadTables reads table definitions from an HCL file. A missing file yields
// DefaultTables.
func LoadTables(filename string) ([]TableConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultTables(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decodeTables(file)
}

// ParseTables decodes table definitions from HCL source.
func ParseTables(src []byte, filename string) ([]TableConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeTables(file)
}

func decodeTables(file *hcl.File) ([]TableConfig, error) {
	var tf TablesFile
	if diags := gohcl.DecodeBody(file.Body, nil, &tf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := engine.DefaultTableRules()
	seen := make(map[string]bool, len(tf.Tables))
	for i := range tf.Tables {
		t := &tf.Tables[i]
		if seen[t.Name] {
			return nil, fmt.Errorf("table %q defined twice", t.Name)
		}
		seen[t.Name] = true

		if t.Decks == 0 {
			t.Decks = defaults.DeckCount
		}
		if t.Seats == 0 {
			t.Seats = defaults.Seats
		}
		if t.MinBet == 0 {
			t.MinBet = defaults.MinBet
		}
		if err := t.Rules().Validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
	}
	if len(tf.Tables) == 0 {
		return nil, fmt.Errorf("no tables defined")
	}
	return tf.Tables, nil
}

// Index maps table names to their definitions.
func Index(tables []TableConfig) map[string]TableConfig {
	m := make(map[string]TableConfig, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}
