package console

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-admin-console/components/listing"
)

// Options configures the console Service. Collaborators are interfaces so
// applications can swap implementations.
type Options struct {
	Dataset      *Dataset
	StateStore   StateStore
	ChartCache   RenderCache
	Translator   TranslationService
	Telemetry    Telemetry
	Logger       *slog.Logger
	DefaultLimit int
	ChartTheme   string
	// ChartAssetsHost points the chart runtime at a CDN or self-hosted
	// copy of the ECharts scripts. Empty keeps the go-echarts default.
	ChartAssetsHost string
	// Now stamps product changes. Defaults to time.Now.
	Now func() time.Time
}

// Service serves the list screens and the overview. It owns a copy of the
// dataset; product changes rebuild the screens over the new record set.
type Service struct {
	opts Options

	mu      sync.RWMutex
	data    Dataset
	screens map[Screen]*screenDef
}

// NewService builds a Service with safe defaults. Without a Dataset the
// embedded fixtures are loaded.
func NewService(opts Options) (*Service, error) {
	if opts.Dataset == nil {
		dataset, err := DefaultDataset()
		if err != nil {
			return nil, fmt.Errorf("console: load fixtures: %w", err)
		}
		opts.Dataset = &dataset
	}
	if opts.StateStore == nil {
		opts.StateStore = NewInMemoryStateStore()
	}
	if opts.ChartCache == nil {
		opts.ChartCache = NewChartCache(5 * time.Minute)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if !listing.IsAllowedLimit(opts.DefaultLimit) {
		opts.DefaultLimit = listing.DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	data := opts.Dataset.clone()
	return &Service{
		opts:    opts,
		data:    data,
		screens: newScreens(data),
	}, nil
}

// Dataset returns the records the service lists.
func (s *Service) Dataset() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

// List applies query to the viewer's stored state for screen and returns the
// resulting page.
func (s *Service) List(ctx context.Context, viewer ViewerContext, screen Screen, query ListQuery) (ListView, error) {
	def, err := s.screen(screen)
	if err != nil {
		return ListView{}, err
	}
	state, err := s.loadState(ctx, viewer, screen)
	if err != nil {
		return ListView{}, err
	}
	state = applyQuery(state, query, def.canSort)

	// The page is clamped against the total, so learn the total first.
	_, state = def.apply(state)
	if query.Page != 0 {
		state = state.WithPage(query.Page)
	}
	page, state := def.apply(state)

	if viewer.UserID != "" {
		if err := s.opts.StateStore.SaveState(ctx, viewer, screen, state); err != nil {
			return ListView{}, fmt.Errorf("console: save %s state: %w", screen, err)
		}
	}
	s.opts.Logger.DebugContext(ctx, "list screen",
		slog.String("screen", string(screen)),
		slog.String("user_id", viewer.UserID),
		slog.Int("page", page.Page),
		slog.Int("total", page.Total),
	)
	s.opts.Telemetry.Record(ctx, "console.list", map[string]any{
		"screen":  string(screen),
		"user_id": viewer.UserID,
		"page":    page.Page,
		"total":   page.Total,
	})
	view := buildView(def, page, state)
	view.Title = translateOrFallback(ctx, s.opts.Translator, "console.menu."+string(def.name), viewer.Locale, def.title, nil)
	return view, nil
}

// Reset drops the viewer's stored state for screen.
func (s *Service) Reset(ctx context.Context, viewer ViewerContext, screen Screen) error {
	if _, err := s.screen(screen); err != nil {
		return err
	}
	if err := s.opts.StateStore.DeleteState(ctx, viewer, screen); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "console.list.reset", map[string]any{
		"screen":  string(screen),
		"user_id": viewer.UserID,
	})
	return nil
}

// Screens lists the registered screens in menu order.
func (s *Service) Screens() []Screen {
	return slices.Clone(screenOrder)
}

func (s *Service) screen(name Screen) (*screenDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.screens[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	return def, nil
}

func (s *Service) loadState(ctx context.Context, viewer ViewerContext, screen Screen) (listing.State, error) {
	state, ok, err := s.opts.StateStore.LoadState(ctx, viewer, screen)
	if err != nil {
		return listing.State{}, fmt.Errorf("console: load %s state: %w", screen, err)
	}
	if !ok {
		return listing.NewState(s.opts.DefaultLimit), nil
	}
	return state, nil
}

// applyQuery runs the transitions the query asks for. Values equal to the
// current state are skipped so that repeating a search does not reset the page.
func applyQuery(state listing.State, q ListQuery, canSort func(string) bool) listing.State {
	if q.ClearFilters {
		state = state.ClearFilters()
	}
	if q.Search != nil && *q.Search != state.Criteria.Search {
		state = state.WithSearch(*q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		value := q.Filters[key]
		current := state.Criteria.Filters[listing.NormalizeKey(key)]
		if value == current || (value == listing.Wildcard && current == "") {
			continue
		}
		state = state.WithFilter(key, value)
	}
	if q.Limit != 0 && q.Limit != state.Pagination.Limit {
		state = state.WithLimit(q.Limit)
	}
	if q.ClearSort {
		state = state.ClearSort()
	}
	if q.Sort != "" && canSort(q.Sort) {
		switch {
		case q.Direction != "":
			state = state.WithSort(q.Sort, listing.ParseDirection(q.Direction))
		case q.ToggleSort:
			state = state.ToggleSort(q.Sort)
		case state.Sort == nil || state.Sort.Key != listing.NormalizeKey(q.Sort):
			state = state.WithSort(q.Sort, listing.Asc)
		}
	}
	return state
}

func buildView(def *screenDef, page listing.Page[Row], state listing.State) ListView {
	view := ListView{
		Screen:     def.name,
		Title:      def.title,
		Columns:    def.columns,
		FilterDefs: def.filters,
		Rows:       page.Visible,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		Limit:      page.Limit,
		Limits:     slices.Clone(listing.AllowedLimits),
		Search:     state.Criteria.Search,
		Filters:    state.Criteria.Active(),
		Sort:       state.Sort,
		Pages:      listing.PageWindow(page.Page, page.TotalPages),
		Empty:      len(page.Visible) == 0,
	}
	if view.Empty {
		view.EmptyMessage = def.emptyMessage
	} else {
		view.From = (page.Page-1)*page.Limit + 1
		view.To = view.From + len(page.Visible) - 1
	}
	return view
}
