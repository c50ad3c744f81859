package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-admin-console/internal/config"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `short:"c" type:"path" env:"CONSOLE_CONFIG" help:"Path to a YAML configuration file."`
}

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" help:"Serve the admin console over HTTP."`
	Page     pageCmd     `cmd:"" help:"Print one page of a list screen."`
	Nav      navCmd      `cmd:"" help:"Print the admin navigation."`
	Fixtures fixturesCmd `cmd:"" help:"Fixture document utilities."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("consolectl"),
		kong.Description("Admin console server and list inspection utility."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Bind(&c.Globals),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (g *Globals) load() (*config.Config, error) {
	return config.Load(g.Config)
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
