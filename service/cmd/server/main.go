// cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/jason-s-yu/blackjack/service/internal/config"
)

// version is set by ldflags during build.
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version."`
	Serve   ServeCmd         `cmd:"" default:"withargs" help:"Run the blackjack table server."`
	Token   TokenCmd         `cmd:"" help:"Issue a player token for local testing."`
	Room    RoomCmd          `cmd:"" help:"Register a room and its members in the directory."`
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Live multiplayer blackjack tables."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run())
}
