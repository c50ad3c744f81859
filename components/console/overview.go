package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	bookingChartKey    = "overview.bookings.status"
)

var bookingStatuses = []string{"Completed", "Running", "Upcoming"}

// StatCard is one headline number on the overview.
type StatCard struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Route       string `json:"route,omitempty"`
}

// StatusCount counts bookings in one status by payment state.
type StatusCount struct {
	Status  string `json:"status"`
	Paid    int    `json:"paid"`
	Pending int    `json:"pending"`
}

// Overview is the dashboard landing page.
type Overview struct {
	Cards         []StatCard    `json:"cards"`
	BookingStatus []StatusCount `json:"booking_status"`
	ChartHTML     string        `json:"chart_html"`
}

// Overview summarises the dataset and renders the booking status chart.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	counts := bookingCounts(data.Bookings)

	var revenue float64
	pending := 0
	for _, b := range data.Bookings {
		if b.PaymentStatus == "Paid" {
			revenue += b.Amount
		} else {
			pending++
		}
	}
	active := 0
	for _, u := range data.Users {
		if u.Status == "active" {
			active++
		}
	}

	cards := []StatCard{
		{Key: "users", Title: "Total Users", Value: strconv.Itoa(len(data.Users)), Description: fmt.Sprintf("%d active", active), Icon: "users", Route: "/users"},
		{Key: "products", Title: "Total Products", Value: strconv.Itoa(len(data.Products)), Description: "in catalog", Icon: "package", Route: "/products"},
		{Key: "categories", Title: "Categories", Value: strconv.Itoa(len(data.Categories)), Description: "product groups", Icon: "folder-tree", Route: "/categories"},
		{Key: "revenue", Title: "Revenue", Value: formatMoney(revenue), Description: fmt.Sprintf("%d payments pending", pending), Icon: "dollar-sign", Route: "/bookings"},
	}

	html, err := s.opts.ChartCache.GetOrRender(bookingChartKey, func() (string, error) {
		return renderBookingChart(counts, s.opts.ChartTheme, s.opts.ChartAssetsHost)
	})
	if err != nil {
		return Overview{}, fmt.Errorf("console: render booking chart: %w", err)
	}
	s.opts.Telemetry.Record(ctx, "console.overview", map[string]any{
		"bookings": len(data.Bookings),
	})
	return Overview{Cards: cards, BookingStatus: counts, ChartHTML: html}, nil
}

func bookingCounts(bookings []Booking) []StatusCount {
	index := make(map[string]int, len(bookingStatuses))
	out := make([]StatusCount, len(bookingStatuses))
	for i, status := range bookingStatuses {
		index[status] = i
		out[i].Status = status
	}
	for _, b := range bookings {
		i, ok := index[b.Status]
		if !ok {
			continue
		}
		if b.PaymentStatus == "Paid" {
			out[i].Paid++
		} else {
			out[i].Pending++
		}
	}
	return out
}

func renderBookingChart(counts []StatusCount, theme, assetsHost string) (string, error) {
	if theme == "" {
		theme = types.ThemeWesteros
	}
	if assetsHost != "" && !strings.HasSuffix(assetsHost, "/") {
		assetsHost += "/"
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Bookings", Subtitle: "by status and payment"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:      theme,
			Width:      "100%",
			Height:     defaultChartHeight,
			AssetsHost: assetsHost,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	x := make([]string, len(counts))
	paid := make([]opts.BarData, len(counts))
	pending := make([]opts.BarData, len(counts))
	for i, c := range counts {
		x[i] = c.Status
		paid[i] = opts.BarData{Name: c.Status, Value: c.Paid}
		pending[i] = opts.BarData{Name: c.Status, Value: c.Pending}
	}
	bar.SetXAxis(x).
		AddSeries("Paid", paid).
		AddSeries("Pending", pending)
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
