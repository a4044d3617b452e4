package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/hitplot"
)

func newTestCollector(t *testing.T) *Collector {
	c, err := New(Config{Namespace: "test", Subsystem: "unit"})
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, c *Collector) string {
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNew_EmptyNamespace(t *testing.T) {
	_, err := New(Config{Subsystem: "unit"})
	assert.Error(t, err)
}

func TestNew_WithProcessMetrics(t *testing.T) {
	c, err := New(Config{Namespace: "test", EnableProcessMetrics: true})
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "test_process_")
}

func TestRebuildMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.RebuildCompleted(2*time.Millisecond, 12)
	c.RebuildCompleted(3*time.Millisecond, 7)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.rebuilds))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.cells))

	c.RebuildFailed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.cells))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "test_unit_rebuild_duration_seconds_count 2")
	assert.Contains(t, out, "test_unit_rebuilds_total 2")
}

func TestEventMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.EventDispatched(hitplot.EventHoverEnter)
	c.EventDispatched(hitplot.EventClick)
	c.EventDispatched(hitplot.EventClick)
	c.EventSuppressed(hitplot.PointerMove)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.dispatched.WithLabelValues("click")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("hover-enter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.suppressed.WithLabelValues("move")))
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_events_dispatched_total{type="click"} 2`)
}

func TestCollectorWithChart(t *testing.T) {
	c := newTestCollector(t)

	opts := hitplot.DefaultOptions()
	clock := hitplot.NewManualClock(time.Unix(0, 0))
	opts.Clock = clock
	chart := hitplot.NewChart(opts)
	chart.SetMetrics(c)

	chart.Update([]hitplot.Shape{
		{X: hitplot.Axis{Center: 1, Radius: 1}, Y: hitplot.Axis{Center: 1, Radius: 1}},
		{X: hitplot.Axis{Center: 4, Radius: 1}, Y: hitplot.Axis{Center: 2, Radius: 1}},
		{X: hitplot.Axis{Center: 9, Radius: 1}, Y: hitplot.Axis{Center: 5, Radius: 1}},
	}, hitplot.Size{Width: 200, Height: 100})

	chart.HandlePointer(hitplot.PointerInput{Kind: hitplot.PointerMove, X: 10, Y: 10})
	clock.Advance(opts.DebounceDelay)
	chart.Tick()
	chart.HandlePointer(hitplot.PointerInput{Kind: hitplot.PointerClick, X: 10, Y: 10})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.rebuilds))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cells))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.suppressed.WithLabelValues("move")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("click")))
}
