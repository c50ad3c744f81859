package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-admin-console/components/listing"
	"github.com/goliatone/go-admin-console/components/otp"
)

// PageSource is the slice of Service the controller renders from.
type PageSource interface {
	List(ctx context.Context, viewer ViewerContext, screen Screen, query ListQuery) (ListView, error)
	Overview(ctx context.Context) (Overview, error)
	Navigation(ctx context.Context, viewer ViewerContext) []MenuItem
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Service          PageSource
	Renderer         Renderer
	ListTemplate     string
	OverviewTemplate string
	VerifyTemplate   string
	BasePath         string
}

// Controller renders the console HTML pages.
type Controller struct {
	opts ControllerOptions
}

var (
	errMissingService  = errors.New("console: service not configured")
	errMissingRenderer = errors.New("console: renderer not configured")
)

// NewController builds a controller with default template names.
func NewController(opts ControllerOptions) *Controller {
	if opts.ListTemplate == "" {
		opts.ListTemplate = ListTemplate
	}
	if opts.OverviewTemplate == "" {
		opts.OverviewTemplate = OverviewTemplate
	}
	if opts.VerifyTemplate == "" {
		opts.VerifyTemplate = VerifyTemplate
	}
	return &Controller{opts: opts}
}

// RenderList writes the list page for screen.
func (c *Controller) RenderList(ctx context.Context, viewer ViewerContext, screen Screen, query ListQuery, out io.Writer) error {
	if c.opts.Service == nil {
		return errMissingService
	}
	view, err := c.opts.Service.List(ctx, viewer, screen, query)
	if err != nil {
		return err
	}
	payload := c.basePayload(ctx, viewer, string(screen))
	payload["list"] = listPayload(view)
	return c.render(c.opts.ListTemplate, payload, out)
}

// RenderOverview writes the landing page.
func (c *Controller) RenderOverview(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Service == nil {
		return errMissingService
	}
	overview, err := c.opts.Service.Overview(ctx)
	if err != nil {
		return err
	}
	payload := c.basePayload(ctx, viewer, "dashboard")
	cards := make([]map[string]any, len(overview.Cards))
	for i, card := range overview.Cards {
		cards[i] = map[string]any{
			"key":         card.Key,
			"title":       card.Title,
			"value":       card.Value,
			"description": card.Description,
			"icon":        card.Icon,
			"route":       c.opts.BasePath + card.Route,
		}
	}
	payload["cards"] = cards
	payload["chart_html"] = overview.ChartHTML
	return c.render(c.opts.OverviewTemplate, payload, out)
}

// RenderVerify writes the code entry page for snap.
func (c *Controller) RenderVerify(ctx context.Context, viewer ViewerContext, snap otp.Snapshot, out io.Writer) error {
	payload := c.basePayload(ctx, viewer, "")
	payload["session"] = map[string]any{
		"id":         snap.SessionID,
		"purpose":    string(snap.Purpose),
		"email":      snap.Email,
		"digits":     snap.Digits,
		"focus":      snap.Focus,
		"status":     string(snap.Status),
		"error":      snap.Error,
		"cooldown":   snap.Cooldown,
		"can_resend": snap.CanResend,
		"next":       snap.Next,
	}
	return c.render(c.opts.VerifyTemplate, payload, out)
}

func (c *Controller) basePayload(ctx context.Context, viewer ViewerContext, active string) map[string]any {
	var menu []map[string]any
	if c.opts.Service != nil {
		for _, item := range c.opts.Service.Navigation(ctx, viewer) {
			menu = append(menu, map[string]any{
				"id":     item.ID,
				"label":  item.Label,
				"route":  c.opts.BasePath + item.Route,
				"icon":   item.Icon,
				"active": item.ID == active,
			})
		}
	}
	return map[string]any{
		"base_path": c.opts.BasePath,
		"locale":    viewer.Locale,
		"menu":      menu,
	}
}

func (c *Controller) render(name string, payload map[string]any, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	if _, err := c.opts.Renderer.Render(name, payload, out); err != nil {
		return fmt.Errorf("console: render %s: %w", name, err)
	}
	return nil
}

// listPayload flattens a ListView into template-friendly values. Cells are
// pre-formatted because templates cannot index rows by a dynamic key.
func listPayload(view ListView) map[string]any {
	columns := make([]map[string]any, len(view.Columns))
	for i, col := range view.Columns {
		columns[i] = map[string]any{
			"key":       col.Key,
			"label":     col.Label,
			"sortable":  col.Sortable,
			"direction": string(view.SortDirection(col.Key)),
			"next":      string(nextDirection(view.SortDirection(col.Key))),
		}
	}
	rows := make([][]string, len(view.Rows))
	for i, row := range view.Rows {
		cells := make([]string, len(view.Columns))
		for j, col := range view.Columns {
			if v, ok := row[col.Key]; ok && v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	filters := make([]map[string]any, len(view.FilterDefs))
	for i, def := range view.FilterDefs {
		selected := view.FilterValue(def.Key)
		options := make([]map[string]any, len(def.Options))
		for j, opt := range def.Options {
			options[j] = map[string]any{
				"value":    opt.Value,
				"label":    opt.Label,
				"selected": opt.Value == selected,
			}
		}
		filters[i] = map[string]any{"key": def.Key, "label": def.Label, "options": options}
	}
	pages := make([]map[string]any, len(view.Pages))
	for i, marker := range view.Pages {
		pages[i] = map[string]any{
			"page":     marker.Number,
			"ellipsis": marker.Ellipsis,
			"current":  marker.Current,
		}
	}
	limits := make([]map[string]any, len(view.Limits))
	for i, limit := range view.Limits {
		limits[i] = map[string]any{"value": limit, "selected": limit == view.Limit}
	}
	return map[string]any{
		"screen":        string(view.Screen),
		"title":         view.Title,
		"columns":       columns,
		"rows":          rows,
		"filters":       filters,
		"pages":         pages,
		"limits":        limits,
		"search":        view.Search,
		"total":         view.Total,
		"page":          view.Page,
		"total_pages":   view.TotalPages,
		"has_prev":      view.Page > 1,
		"has_next":      view.Page < view.TotalPages,
		"prev":          view.Page - 1,
		"next":          view.Page + 1,
		"from":          view.From,
		"to":            view.To,
		"empty":         view.Empty,
		"empty_message": view.EmptyMessage,
	}
}

// nextDirection is the direction a column header link requests: ascending
// for an unsorted column, the opposite direction otherwise.
func nextDirection(current listing.Direction) listing.Direction {
	if current == "" {
		return listing.Asc
	}
	return current.Flip()
}
