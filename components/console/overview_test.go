package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	calls int
	html  string
}

func (c *countingCache) GetOrRender(_ string, render func() (string, error)) (string, error) {
	c.calls++
	if c.html != "" {
		return c.html, nil
	}
	return render()
}

func TestOverviewSummarisesDataset(t *testing.T) {
	telemetry := &recordingTelemetry{}
	svc := newTestService(t, Options{Telemetry: telemetry})

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, overview.Cards, 4)
	assert.Equal(t, "42", overview.Cards[0].Value)
	assert.Equal(t, "30 active", overview.Cards[0].Description)
	assert.Equal(t, "36", overview.Cards[1].Value)
	assert.Equal(t, "12", overview.Cards[2].Value)
	assert.Equal(t, "$9072.50", overview.Cards[3].Value)
	assert.Equal(t, "14 payments pending", overview.Cards[3].Description)

	assert.Equal(t, []StatusCount{
		{Status: "Completed", Paid: 28, Pending: 0},
		{Status: "Running", Paid: 2, Pending: 6},
		{Status: "Upcoming", Paid: 4, Pending: 8},
	}, overview.BookingStatus)
	assert.Contains(t, overview.ChartHTML, "echarts")
	assert.Equal(t, []string{"console.overview"}, telemetry.events)
}

func TestOverviewUsesRenderCache(t *testing.T) {
	cache := &countingCache{html: "<div>cached</div>"}
	svc := newTestService(t, Options{ChartCache: cache})

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<div>cached</div>", overview.ChartHTML)
	assert.Equal(t, 1, cache.calls)
}

func TestBookingChartUsesAssetsHost(t *testing.T) {
	html, err := renderBookingChart(bookingCounts(nil), "", "https://cdn.example.com/echarts")
	require.NoError(t, err)
	assert.Contains(t, html, "https://cdn.example.com/echarts/echarts.min.js")
}
