// Package metrics exposes hitplot interaction layer measurements to
// Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phanxgames/hitplot"
)

// Config holds configuration for the collector.
type Config struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
	// RebuildBuckets are the rebuild duration histogram buckets in seconds.
	RebuildBuckets []float64
	ConstLabels    prometheus.Labels
}

// DefaultConfig returns the collector configuration used by the CLI.
func DefaultConfig() Config {
	return Config{Namespace: "hitplot", Subsystem: "interaction"}
}

// Collector implements hitplot.MetricsSink on a private Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	rebuilds   prometheus.Counter
	failures   prometheus.Counter
	duration   prometheus.Histogram
	cells      prometheus.Gauge
	dispatched *prometheus.CounterVec
	suppressed *prometheus.CounterVec
}

var _ hitplot.MetricsSink = (*Collector)(nil)

// New creates a collector and registers its metrics.
func New(cfg Config) (*Collector, error) {
	if cfg.Namespace == "" {
		return nil, errors.New("metrics: namespace is required")
	}
	if cfg.RebuildBuckets == nil {
		cfg.RebuildBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25}
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{
			Namespace: cfg.Namespace,
		}))
	}
	if cfg.EnableGoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}

	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}
	}

	c := &Collector{
		registry: registry,
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts(
			opts("rebuilds_total", "Interaction layer rebuilds that completed."))),
		failures: prometheus.NewCounter(prometheus.CounterOpts(
			opts("rebuild_failures_total", "Interaction layer rebuilds that produced no layer."))),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "rebuild_duration_seconds",
			Help:        "Time spent building the interaction layer.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.RebuildBuckets,
		}),
		cells: prometheus.NewGauge(prometheus.GaugeOpts(
			opts("cells", "Cells in the current tessellation."))),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("events_dispatched_total", "Interaction events delivered to handlers.")), []string{"type"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("events_suppressed_total", "Pointer events dropped while the layer was stale.")), []string{"pointer"}),
	}

	for _, col := range []prometheus.Collector{c.rebuilds, c.failures, c.duration, c.cells, c.dispatched, c.suppressed} {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RebuildCompleted records a successful rebuild.
func (c *Collector) RebuildCompleted(d time.Duration, cells int) {
	c.rebuilds.Inc()
	c.duration.Observe(d.Seconds())
	c.cells.Set(float64(cells))
}

// RebuildFailed records a rebuild that left the chart without a layer.
func (c *Collector) RebuildFailed() {
	c.failures.Inc()
	c.cells.Set(0)
}

// EventDispatched counts a delivered event.
func (c *Collector) EventDispatched(t hitplot.EventType) {
	c.dispatched.WithLabelValues(t.String()).Inc()
}

// EventSuppressed counts a dropped pointer event.
func (c *Collector) EventSuppressed(k hitplot.PointerKind) {
	c.suppressed.WithLabelValues(k.String()).Inc()
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
