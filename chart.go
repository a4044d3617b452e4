package hitplot

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPadDataOuter is the outer padding fraction used by PadData.
	DefaultPadDataOuter = 0.1

	// edgeClipPadding is how far the ClipEdge rectangle extends past the
	// plot on each side.
	edgeClipPadding = 10.0
)

// DefaultTooltipOffset is added to an entity's position to place tooltips.
var DefaultTooltipOffset = Vec2{X: 10, Y: 10}

// MetricsSink receives interaction layer measurements.
type MetricsSink interface {
	RebuildCompleted(d time.Duration, cells int)
	RebuildFailed()
	EventDispatched(t EventType)
	EventSuppressed(k PointerKind)
}

// Options configures a Chart. Start from DefaultOptions; the zero value
// disables interaction.
type Options struct {
	// Scale derivation; see ScaleOptions.
	BoundMultiplier float64
	ForceX, ForceY  []float64
	XDomain         *[2]float64
	YDomain         *[2]float64
	XRange          *[2]float64
	YRange          *[2]float64
	PadData         bool
	PadDataOuter    float64
	PadDataValues   int

	// ClipEdge asks the renderer to clip shapes to EdgeClip.
	ClipEdge bool

	// Interactive enables the interaction layer.
	Interactive bool
	// UseTessellation routes pointer events through a Voronoi tessellation
	// of shape centers. When false, events hit the topmost ellipse under the
	// pointer.
	UseTessellation bool
	// ClipCells limits each cell's hit area to a circle of ClipRadius
	// pixels, or ClipRadiusFunc(index, shape) when set.
	ClipCells      bool
	ClipRadius     float64
	ClipRadiusFunc func(index int, s Shape) float64
	// ShowCells asks the renderer to draw the tessellation.
	ShowCells bool

	// DebounceDelay is the quiet period before rebuilding. Zero rebuilds
	// synchronously in Update.
	DebounceDelay time.Duration
	// Active filters which shapes take part in interaction. Nil means
	// !Shape.Inactive.
	Active func(index int, s Shape) bool

	Margin        Margin
	TooltipOffset Vec2

	BoundsMargin float64
	DedupEpsilon float64
	Jitter       float64
	// Seed seeds the jitter source so tessellations are reproducible.
	Seed uint64

	// Clock drives the debounce timer. Nil uses SystemClock.
	Clock Clock
}

// DefaultOptions returns the default chart configuration.
func DefaultOptions() Options {
	return Options{
		BoundMultiplier: DefaultBoundMultiplier,
		PadDataOuter:    DefaultPadDataOuter,
		Interactive:     true,
		UseTessellation: true,
		ClipRadius:      DefaultClipRadius,
		DebounceDelay:   DefaultDebounceDelay,
		TooltipOffset:   DefaultTooltipOffset,
		BoundsMargin:    DefaultBoundsMargin,
		DedupEpsilon:    DefaultDedupEpsilon,
		Jitter:          DefaultJitter,
	}
}

// ScaleOptions returns the scale-related subset of o.
func (o Options) ScaleOptions() ScaleOptions {
	return ScaleOptions{
		BoundMultiplier: o.BoundMultiplier,
		ForceX:          o.ForceX,
		ForceY:          o.ForceY,
		XDomain:         o.XDomain,
		YDomain:         o.YDomain,
		XRange:          o.XRange,
		YRange:          o.YRange,
		PadData:         o.PadData,
		PadDataOuter:    o.PadDataOuter,
		PadDataValues:   o.PadDataValues,
	}
}

// ShapeGeometry is the pixel geometry of one shape for the renderer.
type ShapeGeometry struct {
	Index  int
	CX, CY float64
	RX, RY float64

	// PositionChanged is set when the center or radii changed, or a global
	// change moved every shape.
	PositionChanged bool
	// AppearanceChanged is set when the kind or size changed, or a global
	// change occurred.
	AppearanceChanged bool
}

// Ellipse returns the geometry as a hit area.
func (g ShapeGeometry) Ellipse() HitEllipse {
	return HitEllipse{CenterX: g.CX, CenterY: g.CY, RadiusX: g.RX, RadiusY: g.RY}
}

// Frame is the result of one Update pass.
type Frame struct {
	Scales  ScaleResult
	Changes ScaleChanges
	Shapes  []ShapeGeometry
	// Entered and Exited list shape indices that appeared or disappeared
	// since the previous pass.
	Entered []int
	Exited  []int
}

type directHit struct {
	index int
	hit   HitEllipse
}

// Chart is the top-level object that owns the scales, the diff cache, the
// interaction layer and its handlers.
type Chart struct {
	id     uuid.UUID
	opts   Options
	clock  Clock
	rng    *rand.Rand
	logger *zap.Logger
	debug  bool

	metrics MetricsSink
	store   EntityStore

	shapes     []Shape
	geometry   []ShapeGeometry
	viewport   Size
	origin     Vec2
	scales     ScaleResult
	prevScales *ScaleResult
	cache      *DiffCache[int]

	// Interaction layer
	sched      *Scheduler
	tess       *Tessellation
	direct     []directHit
	handlers   handlerRegistry
	hovered    int
	highlights map[int]struct{}
	suppressed int

	injectQueue []PointerInput
	script      *ScriptRunner
}

// NewChart creates a chart with the given options.
func NewChart(opts Options) *Chart {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	c := &Chart{
		id:         uuid.New(),
		opts:       opts,
		clock:      clock,
		rng:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		logger:     zap.NewNop(),
		cache:      NewDiffCache[int](),
		hovered:    -1,
		highlights: make(map[int]struct{}),
	}
	c.sched = NewScheduler(clock, opts.DebounceDelay, c.rebuild)
	return c
}

// ID returns the chart's unique identifier.
func (c *Chart) ID() uuid.UUID {
	return c.id
}

// Options returns the chart's configuration.
func (c *Chart) Options() Options {
	return c.opts
}

// SetLogger sets the logger. Nil restores the no-op logger.
func (c *Chart) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

// SetDebugMode enables or disables debug mode. When enabled, rebuild timing,
// site and cell counts, suppressed events and suspicious shapes are logged at
// debug level.
func (c *Chart) SetDebugMode(enabled bool) {
	c.debug = enabled
}

// SetMetrics sets the optional metrics sink.
func (c *Chart) SetMetrics(m MetricsSink) {
	c.metrics = m
}

// SetEntityStore sets the optional ECS bridge.
func (c *Chart) SetEntityStore(store EntityStore) {
	c.store = store
}

// SetOrigin sets the plot container's position used for event positions.
func (c *Chart) SetOrigin(x, y float64) {
	c.origin = Vec2{X: x, Y: y}
}

// Shapes returns the shapes of the last Update. The returned slice MUST NOT
// be mutated.
func (c *Chart) Shapes() []Shape {
	return c.shapes
}

// Geometry returns the pixel geometry of the last Update. The returned slice
// MUST NOT be mutated.
func (c *Chart) Geometry() []ShapeGeometry {
	return c.geometry
}

// Scales returns the scales of the last Update.
func (c *Chart) Scales() ScaleResult {
	return c.scales
}

// Viewport returns the plot size of the last Update.
func (c *Chart) Viewport() Size {
	return c.viewport
}

// Tessellation returns the current interaction layer, or nil when none is
// built.
func (c *Chart) Tessellation() *Tessellation {
	return c.tess
}

// Scheduler returns the chart's rebuild scheduler.
func (c *Chart) Scheduler() *Scheduler {
	return c.sched
}

// Stale reports whether pointer events are currently suppressed.
func (c *Chart) Stale() bool {
	return c.sched.Stale()
}

// Suppressed returns how many pointer events were dropped while stale.
func (c *Chart) Suppressed() int {
	return c.suppressed
}

// EdgeClip returns the rectangle shapes are clipped to when ClipEdge is set.
func (c *Chart) EdgeClip() Rect {
	h := 0.0
	if c.viewport.Height > 0 {
		h = c.viewport.Height + 2*edgeClipPadding
	}
	return Rect{
		X:      -edgeClipPadding,
		Y:      -edgeClipPadding,
		Width:  c.viewport.Width + 2*edgeClipPadding,
		Height: h,
	}
}

// Update takes a new shape list and plot size, recomputes scales and pixel
// geometry, and invalidates the interaction layer. Shape.Series is
// overwritten with each shape's index.
func (c *Chart) Update(shapes []Shape, viewport Size) *Frame {
	prevN := len(c.shapes)
	c.shapes = append(c.shapes[:0], shapes...)
	for i := range c.shapes {
		c.shapes[i].Series = i
	}
	c.viewport = viewport

	if c.debug {
		c.debugCheckShapes(c.shapes)
	}

	scales := ComputeScales(c.shapes, viewport, c.opts.ScaleOptions())
	changes := scales.Changes(c.prevScales)
	c.scales = scales
	c.prevScales = &scales
	global := changes.Any()

	f := &Frame{
		Scales:  scales,
		Changes: changes,
		Shapes:  make([]ShapeGeometry, len(c.shapes)),
	}
	for i := prevN; i < len(c.shapes); i++ {
		f.Entered = append(f.Entered, i)
	}
	for i := len(c.shapes); i < prevN; i++ {
		c.cache.Delete(i)
		f.Exited = append(f.Exited, i)
	}

	x, y := scales.X, scales.Y
	unitX := x.Map(1) - x.Map(0)
	unitY := y.Map(0) - y.Map(1)
	for i := range c.shapes {
		s := c.shapes[i]
		// Both groups always run so every field's cache stays current.
		pos := c.cache.Diff(i,
			Field{"x", func() any { return s.X.Center }},
			Field{"y", func() any { return s.Y.Center }},
			Field{"rx", func() any { return s.X.Radius }},
			Field{"ry", func() any { return s.Y.Radius }},
		)
		look := c.cache.Diff(i,
			Field{"kind", func() any { return s.Kind }},
			Field{"size", func() any { return s.sizeOrDefault() }},
		)
		f.Shapes[i] = ShapeGeometry{
			Index:             i,
			CX:                nanToZero(x.Map(s.X.Center)),
			CY:                nanToZero(y.Map(s.Y.Center)),
			RX:                nanToZero(math.Abs(s.X.Radius * unitX)),
			RY:                nanToZero(math.Abs(s.Y.Radius * unitY)),
			PositionChanged:   pos || global,
			AppearanceChanged: look || global,
		}
	}
	c.geometry = f.Shapes

	if c.opts.Interactive {
		c.sched.Invalidate()
	}
	return f
}

// Tick advances the rebuild scheduler and then feeds at most one injected
// pointer event. Call it once per frame.
func (c *Chart) Tick() {
	c.sched.Tick()
	c.processInjectedInput()
}

// Close cancels any pending rebuild. The chart dispatches nothing until the
// next Update.
func (c *Chart) Close() {
	c.sched.Cancel()
}

// rebuild replaces the interaction layer with one built from the current
// shapes. Highlights and hover state are reset.
func (c *Chart) rebuild() {
	c.ClearHighlights()
	c.hovered = -1
	c.tess = nil
	c.direct = c.direct[:0]

	var stats debugStats
	t0 := time.Now()

	if !c.opts.UseTessellation {
		for i, s := range c.shapes {
			if c.active(i, s) {
				c.direct = append(c.direct, directHit{index: i, hit: c.geometry[i].Ellipse()})
			}
		}
		if c.metrics != nil {
			c.metrics.RebuildCompleted(time.Since(t0), 0)
		}
		return
	}

	sites, radii := c.sites()
	stats.siteTime = time.Since(t0)
	stats.siteCount = len(sites)
	t1 := time.Now()

	topts := TessellateOptions{
		BoundsMargin: c.opts.BoundsMargin,
		DedupEpsilon: c.opts.DedupEpsilon,
		Jitter:       c.opts.Jitter,
		Rand:         c.rng,
		ClipCells:    c.opts.ClipCells,
	}
	if c.opts.ClipCells {
		topts.ClipRadius = func(i int) float64 { return radii[i] }
	}
	tess, err := Tessellate(sites, c.viewport, topts)
	if err != nil {
		// No interaction layer this pass; the next rebuild recovers.
		c.logger.Warn("interaction layer rebuild failed",
			zap.Stringer("chart", c.id), zap.Int("sites", len(sites)), zap.Error(err))
		if c.metrics != nil {
			c.metrics.RebuildFailed()
		}
		return
	}
	c.tess = tess

	stats.tessTime = time.Since(t1)
	stats.cellCount = tess.Len()
	stats.droppedSites = len(sites) - len(tess.Sites())
	c.debugLog(stats)
	if c.metrics != nil {
		c.metrics.RebuildCompleted(time.Since(t0), tess.Len())
	}
}

// sites returns one tessellation site per active shape and, per site, its
// clip radius.
func (c *Chart) sites() ([]Site, []float64) {
	sites := make([]Site, 0, len(c.shapes))
	var radii []float64
	for i, s := range c.shapes {
		if !c.active(i, s) {
			continue
		}
		g := c.geometry[i]
		sites = append(sites, Site{Pos: Vec2{X: g.CX, Y: g.CY}, EntityIndex: i})
		if c.opts.ClipCells {
			r := c.opts.ClipRadius
			if c.opts.ClipRadiusFunc != nil {
				r = c.opts.ClipRadiusFunc(i, s)
			}
			radii = append(radii, r)
		}
	}
	return sites, radii
}

func (c *Chart) active(i int, s Shape) bool {
	if c.opts.Active != nil {
		return c.opts.Active(i, s)
	}
	return !s.Inactive
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
