package config

import (
	"github.com/spf13/viper"

	"github.com/phanxgames/hitplot"
	"github.com/phanxgames/hitplot/metrics"
)

const (
	DefaultViewportWidth  = 800
	DefaultViewportHeight = 600

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsAddr = ":9091"
)

// setDefaults registers defaults whose zero value is meaningful, so that
// ApplyDefaults cannot tell "unset" from "off". Registering the keys also
// makes them visible to AutomaticEnv during Unmarshal.
func setDefaults(v *viper.Viper) {
	o := hitplot.DefaultOptions()
	v.SetDefault("chart.interactive", o.Interactive)
	v.SetDefault("chart.use_tessellation", o.UseTessellation)
	v.SetDefault("chart.clip_cells", o.ClipCells)
	v.SetDefault("chart.show_cells", o.ShowCells)
	v.SetDefault("chart.pad_data", o.PadData)
	v.SetDefault("chart.clip_edge", o.ClipEdge)
	v.SetDefault("chart.debounce_delay", o.DebounceDelay)
	v.SetDefault("chart.clip_radius", o.ClipRadius)
	v.SetDefault("chart.pad_data_outer", o.PadDataOuter)
	v.SetDefault("chart.pad_data_values", o.PadDataValues)
	v.SetDefault("chart.bounds_margin", o.BoundsMargin)
	v.SetDefault("chart.dedup_epsilon", o.DedupEpsilon)
	v.SetDefault("chart.jitter", o.Jitter)
	v.SetDefault("chart.seed", o.Seed)
	v.SetDefault("chart.tooltip_offset_x", o.TooltipOffset.X)
	v.SetDefault("chart.tooltip_offset_y", o.TooltipOffset.Y)
	v.SetDefault("viewport.width", DefaultViewportWidth)
	v.SetDefault("viewport.height", DefaultViewportHeight)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.enable_process_metrics", false)
	v.SetDefault("metrics.enable_go_metrics", false)
}

// ApplyDefaults fills zero-value fields in cfg whose zero value is never
// valid. Explicit settings are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Chart.BoundMultiplier == 0 {
		cfg.Chart.BoundMultiplier = hitplot.DefaultBoundMultiplier
	}

	if cfg.Viewport.Width == 0 {
		cfg.Viewport.Width = DefaultViewportWidth
	}
	if cfg.Viewport.Height == 0 {
		cfg.Viewport.Height = DefaultViewportHeight
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	mc := metrics.DefaultConfig()
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = mc.Namespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = mc.Subsystem
	}
}

// MetricsConfig converts the metrics section for metrics.New.
func (c *Config) MetricsConfig() metrics.Config {
	mc := metrics.DefaultConfig()
	mc.Namespace = c.Metrics.Namespace
	mc.Subsystem = c.Metrics.Subsystem
	mc.EnableProcessMetrics = c.Metrics.EnableProcessMetrics
	mc.EnableGoMetrics = c.Metrics.EnableGoMetrics
	return mc
}
