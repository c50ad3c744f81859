package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/console"
)

type listService interface {
	List(ctx context.Context, viewer console.ViewerContext, screen console.Screen, query console.ListQuery) (console.ListView, error)
}

// ListInput asks for one page of a list screen.
type ListInput struct {
	Viewer console.ViewerContext
	Screen console.Screen
	Query  console.ListQuery
}

// ListScreenQuery resolves a list screen page for a viewer.
type ListScreenQuery struct {
	service listService
}

// NewListScreenQuery builds the query.
func NewListScreenQuery(service listService) *ListScreenQuery {
	return &ListScreenQuery{service: service}
}

var _ gocommand.Querier[ListInput, console.ListView] = (*ListScreenQuery)(nil)

// Query runs the list pipeline.
func (q *ListScreenQuery) Query(ctx context.Context, input ListInput) (console.ListView, error) {
	return q.service.List(ctx, input.Viewer, input.Screen, input.Query)
}

type overviewService interface {
	Overview(ctx context.Context) (console.Overview, error)
}

// OverviewQuery resolves the landing page summary.
type OverviewQuery struct {
	service overviewService
}

// NewOverviewQuery builds the query.
func NewOverviewQuery(service overviewService) *OverviewQuery {
	return &OverviewQuery{service: service}
}

var _ gocommand.Querier[console.ViewerContext, console.Overview] = (*OverviewQuery)(nil)

// Query builds the overview. The viewer is accepted for symmetry with the
// other queries; the overview is the same for everyone.
func (q *OverviewQuery) Query(ctx context.Context, _ console.ViewerContext) (console.Overview, error) {
	return q.service.Overview(ctx)
}

type navigationService interface {
	Navigation(ctx context.Context, viewer console.ViewerContext) []console.MenuItem
}

// NavigationQuery resolves the sidebar for a viewer.
type NavigationQuery struct {
	service navigationService
}

// NewNavigationQuery builds the query.
func NewNavigationQuery(service navigationService) *NavigationQuery {
	return &NavigationQuery{service: service}
}

var _ gocommand.Querier[console.ViewerContext, []console.MenuItem] = (*NavigationQuery)(nil)

// Query returns the localized menu.
func (q *NavigationQuery) Query(ctx context.Context, viewer console.ViewerContext) ([]console.MenuItem, error) {
	return q.service.Navigation(ctx, viewer), nil
}
