package goadmin

import (
	"context"
	"errors"
	"path"

	"github.com/goliatone/go-admin-console/components/console"
	activitypkg "github.com/goliatone/go-admin-console/pkg/activity"
	consolepkg "github.com/goliatone/go-admin-console/pkg/console"
)

// MenuBuilder ensures console entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures console link metadata. ParentID is empty for top level
// entries.
type MenuItem struct {
	ID       string
	ParentID string
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the console service and feature flags into an admin shell.
type Config struct {
	EnableConsole  bool
	MenuCode       string
	MenuBuilder    MenuBuilder
	Service        *consolepkg.Service
	BasePath       string
	Viewer         console.ViewerContext
	ActivityHooks  activitypkg.Hooks
	ActivityConfig activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg     Config
	emitter *activitypkg.Emitter
}

// New creates an Admin helper that can seed console menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableConsole && cfg.Service == nil {
		return nil, errors.New("goadmin: console service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin"
	}
	return &Admin{
		cfg:     cfg,
		emitter: activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig),
	}, nil
}

// Console exposes the configured console service when enabled.
func (a *Admin) Console() *consolepkg.Service {
	if !a.cfg.EnableConsole {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds the console navigation into the admin menu, parents
// before children.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableConsole || a.cfg.MenuBuilder == nil {
		return nil
	}
	items := a.MenuItems(ctx)
	for _, item := range items {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return err
		}
	}
	if a.emitter.Enabled() {
		return a.emitter.Emit(ctx, activitypkg.Event{
			Verb:       "seeded",
			ActorID:    a.cfg.Viewer.UserID,
			ObjectType: "admin_menu",
			ObjectID:   a.cfg.MenuCode,
			Metadata:   map[string]any{"items": len(items)},
		})
	}
	return nil
}

// MenuItems flattens the console navigation with routes under BasePath.
func (a *Admin) MenuItems(ctx context.Context) []MenuItem {
	if a.cfg.Service == nil {
		return nil
	}
	var out []MenuItem
	var walk func(parent string, items []console.MenuItem)
	walk = func(parent string, items []console.MenuItem) {
		for _, item := range items {
			out = append(out, MenuItem{
				ID:       item.ID,
				ParentID: parent,
				Label:    item.Label,
				Route:    path.Join(a.cfg.BasePath, item.Route),
				Icon:     item.Icon,
				Position: item.Position,
			})
			walk(item.ID, item.Children)
		}
	}
	walk("", a.cfg.Service.Navigation(ctx, a.cfg.Viewer))
	return out
}
