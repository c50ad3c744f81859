package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/goliatone/go-admin-console/components/console"
)

type navCmd struct {
	Locale string `help:"Locale used to resolve labels."`
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."`
}

func (cmd *navCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer a.close()
	return encode(out, cmd.Format, a.service.Navigation(ctx, console.ViewerContext{Locale: cmd.Locale}))
}
