package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admin-console/components/console"
)

type pageCmd struct {
	Screen string            `arg:"" help:"Screen to list (users, products, categories, bookings)."`
	Search string            `help:"Free-text search."`
	Filter map[string]string `help:"Categorical filters as key=value (repeatable)."`
	Sort   string            `help:"Sort column."`
	Dir    string            `help:"Sort direction (asc or desc)."`
	Page   int               `default:"1" help:"Page to show."`
	Limit  int               `help:"Rows per page (5, 10, 20 or 50)."`
	Format string            `default:"yaml" enum:"yaml,json" help:"Output format."`
}

func (cmd *pageCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer a.close()

	view, err := a.service.List(ctx, console.ViewerContext{}, cmd.screen(), cmd.query())
	if err != nil {
		return err
	}
	return encode(out, cmd.Format, pageOutput(view))
}

func (cmd *pageCmd) screen() console.Screen {
	return console.Screen(strcase.ToSnake(strings.TrimSpace(cmd.Screen)))
}

func (cmd *pageCmd) query() console.ListQuery {
	q := console.ListQuery{
		Filters:   map[string]string{},
		Sort:      cmd.Sort,
		Direction: cmd.Dir,
		Page:      cmd.Page,
		Limit:     cmd.Limit,
	}
	if cmd.Search != "" {
		search := cmd.Search
		q.Search = &search
	}
	for k, v := range cmd.Filter {
		q.Filters[strcase.ToSnake(k)] = v
	}
	return q
}

type pageSummary struct {
	Screen     string            `yaml:"screen" json:"screen"`
	Title      string            `yaml:"title" json:"title"`
	Page       int               `yaml:"page" json:"page"`
	TotalPages int               `yaml:"total_pages" json:"total_pages"`
	Total      int               `yaml:"total" json:"total"`
	Showing    string            `yaml:"showing" json:"showing"`
	Filters    map[string]string `yaml:"filters,omitempty" json:"filters,omitempty"`
	Sort       string            `yaml:"sort,omitempty" json:"sort,omitempty"`
	Rows       []console.Row     `yaml:"rows" json:"rows"`
	Message    string            `yaml:"message,omitempty" json:"message,omitempty"`
}

func pageOutput(view console.ListView) pageSummary {
	out := pageSummary{
		Screen:     string(view.Screen),
		Title:      view.Title,
		Page:       view.Page,
		TotalPages: view.TotalPages,
		Total:      view.Total,
		Filters:    view.Filters,
		Rows:       view.Rows,
		Message:    view.EmptyMessage,
	}
	if view.Empty {
		out.Showing = fmt.Sprintf("0 of %d", view.Total)
	} else {
		out.Showing = fmt.Sprintf("%d-%d of %d", view.From, view.To, view.Total)
	}
	if view.Sort != nil {
		out.Sort = view.Sort.Key + " " + string(view.Sort.Direction)
	}
	return out
}

func encode(out io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
