package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/gorouter"
	"github.com/goliatone/go-admin-console/pkg/goadmin"
)

type serveCmd struct {
	Addr string `help:"Listen address (overrides server.addr)."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	logger := newLogger(cfg, os.Stderr)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	renderer, err := console.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := console.NewController(console.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		BasePath: cfg.Server.BasePath,
	})

	admin, err := goadmin.New(goadmin.Config{
		EnableConsole:  true,
		Service:        a.service,
		BasePath:       cfg.Server.BasePath,
		MenuBuilder:    loggingMenuBuilder{logger: logger},
		ActivityConfig: cfg.Activity,
	})
	if err != nil {
		return err
	}
	if err := admin.Bootstrap(ctx); err != nil {
		return err
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        a.executor,
		Broadcast:  a.auth.Broadcast(),
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("console listening",
			slog.String("addr", cfg.Server.Addr),
			slog.String("base_path", cfg.Server.BasePath),
		)
		errc <- server.Serve(cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("console stopped")
	return nil
}

// loggingMenuBuilder records seeded menu entries in the log when no admin
// menu store is attached.
type loggingMenuBuilder struct {
	logger *slog.Logger
}

func (b loggingMenuBuilder) EnsureMenuItem(ctx context.Context, menuCode string, item goadmin.MenuItem) error {
	b.logger.DebugContext(ctx, "menu item",
		slog.String("menu", menuCode),
		slog.String("id", item.ID),
		slog.String("parent", item.ParentID),
		slog.String("route", item.Route),
		slog.Int("position", item.Position),
	)
	return nil
}

