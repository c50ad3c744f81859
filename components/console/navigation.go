package console

import (
	"context"
	"fmt"
)

// MenuItem is one entry of the admin sidebar.
type MenuItem struct {
	ID       string     `json:"id" yaml:"id"`
	Label    string     `json:"label" yaml:"label"`
	Route    string     `json:"route" yaml:"route"`
	Icon     string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Position int        `json:"position" yaml:"position"`
	Children []MenuItem `json:"children,omitempty" yaml:"children,omitempty"`
}

var settingsMenu = []MenuItem{
	{ID: "settings.profile", Label: "Profile", Route: "/settings/profile", Icon: "user"},
	{ID: "settings.password", Label: "Password", Route: "/settings/password", Icon: "lock"},
	{ID: "settings.terms", Label: "Terms & Conditions", Route: "/settings/terms", Icon: "file-text"},
	{ID: "settings.privacy", Label: "Privacy Policy", Route: "/settings/privacy", Icon: "shield"},
}

// Navigation returns the sidebar for viewer: the overview, one entry per
// screen, then settings. Labels are translated under "console.menu.<id>".
func (s *Service) Navigation(ctx context.Context, viewer ViewerContext) []MenuItem {
	items := []MenuItem{{ID: "dashboard", Label: "Dashboard", Route: "/", Icon: "layout-dashboard"}}
	s.mu.RLock()
	screens := s.screens
	s.mu.RUnlock()
	for _, name := range screenOrder {
		def := screens[name]
		items = append(items, MenuItem{
			ID:    string(def.name),
			Label: def.title,
			Route: def.route,
			Icon:  def.icon,
		})
	}
	items = append(items, MenuItem{
		ID:       "settings",
		Label:    "Settings",
		Route:    "/settings",
		Icon:     "settings",
		Children: append([]MenuItem(nil), settingsMenu...),
	})
	return s.localizeMenu(ctx, viewer.Locale, items)
}

func (s *Service) localizeMenu(ctx context.Context, locale string, items []MenuItem) []MenuItem {
	for i := range items {
		items[i].Position = (i + 1) * 10
		key := fmt.Sprintf("console.menu.%s", items[i].ID)
		items[i].Label = translateOrFallback(ctx, s.opts.Translator, key, locale, items[i].Label, nil)
		if len(items[i].Children) > 0 {
			items[i].Children = s.localizeMenu(ctx, locale, items[i].Children)
		}
	}
	return items
}

// ScreenTitle returns the translated title of screen.
func (s *Service) ScreenTitle(ctx context.Context, viewer ViewerContext, screen Screen) (string, error) {
	def, err := s.screen(screen)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("console.menu.%s", def.name)
	return translateOrFallback(ctx, s.opts.Translator, key, viewer.Locale, def.title, nil), nil
}
