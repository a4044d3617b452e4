// Package config loads hitplot chart, logging, and metrics settings from YAML
// files and HITPLOT_* environment variables.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/phanxgames/hitplot"
)

// Config is the root configuration of the hitplot tools.
type Config struct {
	Chart    ChartConfig    `mapstructure:"chart"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Shapes   []ShapeConfig  `mapstructure:"shapes"`
}

// ChartConfig mirrors hitplot.Options.
type ChartConfig struct {
	BoundMultiplier float64   `mapstructure:"bound_multiplier"`
	ForceX          []float64 `mapstructure:"force_x"`
	ForceY          []float64 `mapstructure:"force_y"`
	XDomain         []float64 `mapstructure:"x_domain"`
	YDomain         []float64 `mapstructure:"y_domain"`
	XRange          []float64 `mapstructure:"x_range"`
	YRange          []float64 `mapstructure:"y_range"`
	PadData         bool      `mapstructure:"pad_data"`
	PadDataOuter    float64   `mapstructure:"pad_data_outer"`
	PadDataValues   int       `mapstructure:"pad_data_values"`
	ClipEdge        bool      `mapstructure:"clip_edge"`

	Interactive     bool          `mapstructure:"interactive"`
	UseTessellation bool          `mapstructure:"use_tessellation"`
	ClipCells       bool          `mapstructure:"clip_cells"`
	ClipRadius      float64       `mapstructure:"clip_radius"`
	ShowCells       bool          `mapstructure:"show_cells"`
	DebounceDelay   time.Duration `mapstructure:"debounce_delay"`

	Margin         MarginConfig `mapstructure:"margin"`
	TooltipOffsetX float64      `mapstructure:"tooltip_offset_x"`
	TooltipOffsetY float64      `mapstructure:"tooltip_offset_y"`

	BoundsMargin float64 `mapstructure:"bounds_margin"`
	DedupEpsilon float64 `mapstructure:"dedup_epsilon"`
	Jitter       float64 `mapstructure:"jitter"`
	Seed         uint64  `mapstructure:"seed"`
}

// MarginConfig is the plot margin in pixels.
type MarginConfig struct {
	Top    float64 `mapstructure:"top"`
	Right  float64 `mapstructure:"right"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
}

// ViewportConfig is the plot size in pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// LogConfig selects the zap logger built by the logging package.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig controls the Prometheus collector and its HTTP endpoint.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Addr                 string `mapstructure:"addr"`
	Namespace            string `mapstructure:"namespace"`
	Subsystem            string `mapstructure:"subsystem"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// ShapeConfig is one ellipse in data coordinates.
type ShapeConfig struct {
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
	RX       float64 `mapstructure:"rx"`
	RY       float64 `mapstructure:"ry"`
	Size     float64 `mapstructure:"size"`
	Kind     string  `mapstructure:"kind"`
	Label    string  `mapstructure:"label"`
	Class    string  `mapstructure:"class"`
	Inactive bool    `mapstructure:"inactive"`
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	ch := c.Chart
	if !(ch.BoundMultiplier >= 1) || math.IsInf(ch.BoundMultiplier, 0) {
		return fmt.Errorf("config: chart.bound_multiplier must be >= 1, got %v", ch.BoundMultiplier)
	}
	pairs := []struct {
		key string
		v   []float64
	}{
		{"chart.x_domain", ch.XDomain},
		{"chart.y_domain", ch.YDomain},
		{"chart.x_range", ch.XRange},
		{"chart.y_range", ch.YRange},
	}
	for _, p := range pairs {
		if len(p.v) != 0 && len(p.v) != 2 {
			return fmt.Errorf("config: %s needs exactly two values, got %d", p.key, len(p.v))
		}
	}
	if ch.PadDataOuter < 0 {
		return fmt.Errorf("config: chart.pad_data_outer must be ≥ 0, got %v", ch.PadDataOuter)
	}
	if ch.ClipRadius < 0 {
		return fmt.Errorf("config: chart.clip_radius must be ≥ 0, got %v", ch.ClipRadius)
	}
	if ch.DebounceDelay < 0 {
		return fmt.Errorf("config: chart.debounce_delay must be ≥ 0, got %v", ch.DebounceDelay)
	}
	if ch.BoundsMargin < 0 || ch.DedupEpsilon < 0 || ch.Jitter < 0 {
		return fmt.Errorf("config: chart.bounds_margin, dedup_epsilon and jitter must be ≥ 0")
	}

	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("config: viewport %vx%v is negative", c.Viewport.Width, c.Viewport.Height)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics.addr is required when metrics are enabled")
	}

	for i, s := range c.Shapes {
		if _, err := hitplot.ParseShapeKind(s.Kind); err != nil {
			return fmt.Errorf("config: shapes[%d]: %w", i, err)
		}
	}
	return nil
}

// ToOptions converts the chart section into hitplot.Options.
func (c *Config) ToOptions() hitplot.Options {
	ch := c.Chart
	o := hitplot.DefaultOptions()
	o.BoundMultiplier = ch.BoundMultiplier
	o.ForceX = ch.ForceX
	o.ForceY = ch.ForceY
	o.XDomain = pair(ch.XDomain)
	o.YDomain = pair(ch.YDomain)
	o.XRange = pair(ch.XRange)
	o.YRange = pair(ch.YRange)
	o.PadData = ch.PadData
	o.PadDataOuter = ch.PadDataOuter
	o.PadDataValues = ch.PadDataValues
	o.ClipEdge = ch.ClipEdge
	o.Interactive = ch.Interactive
	o.UseTessellation = ch.UseTessellation
	o.ClipCells = ch.ClipCells
	o.ClipRadius = ch.ClipRadius
	o.ShowCells = ch.ShowCells
	o.DebounceDelay = ch.DebounceDelay
	o.Margin = hitplot.Margin{
		Top:    ch.Margin.Top,
		Right:  ch.Margin.Right,
		Bottom: ch.Margin.Bottom,
		Left:   ch.Margin.Left,
	}
	o.TooltipOffset = hitplot.Vec2{X: ch.TooltipOffsetX, Y: ch.TooltipOffsetY}
	o.BoundsMargin = ch.BoundsMargin
	o.DedupEpsilon = ch.DedupEpsilon
	o.Jitter = ch.Jitter
	o.Seed = ch.Seed
	return o
}

// Size returns the configured viewport.
func (c *Config) Size() hitplot.Size {
	return hitplot.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// ToShapes converts the shapes section. Kinds are checked by Validate.
func (c *Config) ToShapes() []hitplot.Shape {
	out := make([]hitplot.Shape, len(c.Shapes))
	for i, s := range c.Shapes {
		kind, _ := hitplot.ParseShapeKind(s.Kind)
		out[i] = hitplot.Shape{
			X:        hitplot.Axis{Center: s.X, Radius: s.RX},
			Y:        hitplot.Axis{Center: s.Y, Radius: s.RY},
			Size:     s.Size,
			Kind:     kind,
			Label:    s.Label,
			Class:    s.Class,
			Inactive: s.Inactive,
		}
	}
	return out
}

func pair(v []float64) *[2]float64 {
	if len(v) != 2 {
		return nil
	}
	return &[2]float64{v[0], v[1]}
}
