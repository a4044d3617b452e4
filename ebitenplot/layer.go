// Package ebitenplot draws a hitplot chart with Ebitengine and feeds it mouse
// input. The chart itself stays renderer-agnostic; this package is one
// possible host.
package ebitenplot

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/hitplot"
)

const (
	// clickSlop is how far, in pixels, the pointer may travel between press
	// and release and still count as a click.
	clickSlop = 4.0
	// doubleClickWindow is the longest gap between two clicks that forms a
	// double click.
	doubleClickWindow = 400 * time.Millisecond
	// glowDuration is how long a hover highlight takes to fade in or out, in
	// seconds.
	glowDuration = 0.15
)

// Style controls how shapes and cells are drawn.
type Style struct {
	Fill        hitplot.Color
	Highlight   hitplot.Color
	Cell        hitplot.Color
	Clip        hitplot.Color
	StrokeWidth float64
	// Segments is the number of edges used to approximate an ellipse.
	Segments int
}

// DefaultStyle returns a muted palette suited to a dark background.
func DefaultStyle() Style {
	return Style{
		Fill:        hitplot.Color{R: 0.35, G: 0.55, B: 0.85, A: 0.8},
		Highlight:   hitplot.Color{R: 1, G: 0.75, B: 0.2, A: 1},
		Cell:        hitplot.Color{R: 1, G: 1, B: 1, A: 0.15},
		Clip:        hitplot.Color{R: 1, G: 1, B: 1, A: 0.08},
		StrokeWidth: 1,
		Segments:    32,
	}
}

type glow struct {
	tween  *gween.Tween
	alpha  float32
	target float32
}

type pointerState struct {
	inside   bool
	down     bool
	last     hitplot.Vec2
	press    hitplot.Vec2
	click    hitplot.Vec2
	clickAt  time.Time
	hasClick bool
}

// Layer hosts a chart inside an Ebitengine game. Call Update from the game's
// Update and Draw from its Draw.
type Layer struct {
	chart  *hitplot.Chart
	style  Style
	clock  hitplot.Clock
	shapes []hitplot.Shape
	// rect is the plot area on screen.
	rect hitplot.Rect

	// ShowCells draws the tessellation. It starts from Options.ShowCells.
	ShowCells bool

	ptr   pointerState
	glows map[int]*glow
	batch meshBatch
}

// NewLayer wraps chart. A nil clock uses the chart's system clock for double
// click timing.
func NewLayer(chart *hitplot.Chart, style Style, clock hitplot.Clock) *Layer {
	if clock == nil {
		clock = hitplot.SystemClock()
	}
	if style.Segments < 8 {
		style.Segments = 8
	}
	l := &Layer{
		chart: chart,
		style: style,
		clock: clock,
		glows: make(map[int]*glow),

		ShowCells: chart.Options().ShowCells,
	}
	return l
}

// Chart returns the wrapped chart.
func (l *Layer) Chart() *hitplot.Chart { return l.chart }

// SetShapes places the plot at rect on screen and updates the chart.
func (l *Layer) SetShapes(shapes []hitplot.Shape, rect hitplot.Rect) *hitplot.Frame {
	l.shapes = shapes
	l.rect = rect
	l.chart.SetOrigin(rect.X, rect.Y)
	return l.chart.Update(shapes, hitplot.Size{Width: rect.Width, Height: rect.Height})
}

// Update reads the mouse, advances highlight fades by one tick and ticks the
// chart.
func (l *Layer) Update() error {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	l.step(float64(mx), float64(my), pressed, float32(1.0/float64(ebiten.TPS())))
	return nil
}

// step is Update with its inputs supplied.
func (l *Layer) step(sx, sy float64, pressed bool, dt float32) {
	l.chart.Tick()
	l.feed(sx, sy, pressed)
	l.advance(dt)
}

// feed runs the pointer state machine for one sample in screen pixels.
func (l *Layer) feed(sx, sy float64, pressed bool) {
	p := &l.ptr
	pos := hitplot.Vec2{X: sx - l.rect.X, Y: sy - l.rect.Y}
	inside := pos.X >= 0 && pos.Y >= 0 && pos.X <= l.rect.Width && pos.Y <= l.rect.Height

	if !inside {
		if p.inside {
			l.chart.HandlePointer(hitplot.PointerInput{Kind: hitplot.PointerLeave})
		}
		p.inside = false
		p.down = pressed
		return
	}

	if !p.inside || pos != p.last {
		l.chart.HandlePointer(hitplot.PointerInput{Kind: hitplot.PointerMove, X: pos.X, Y: pos.Y})
	}
	p.inside = true
	p.last = pos

	switch {
	case pressed && !p.down:
		p.press = pos
	case !pressed && p.down && dist(p.press, pos) <= clickSlop:
		now := l.clock.Now()
		kind := hitplot.PointerClick
		if p.hasClick && now.Sub(p.clickAt) <= doubleClickWindow && dist(p.click, pos) <= clickSlop {
			kind = hitplot.PointerDoubleClick
			p.hasClick = false
		} else {
			p.click, p.clickAt, p.hasClick = pos, now, true
		}
		l.chart.HandlePointer(hitplot.PointerInput{Kind: kind, X: pos.X, Y: pos.Y})
	}
	p.down = pressed
}

func dist(a, b hitplot.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// fade starts tweening entity i's highlight toward target.
func (l *Layer) fade(i int, target float32) {
	g, ok := l.glows[i]
	if !ok {
		g = &glow{}
		l.glows[i] = g
	}
	g.target = target
	g.tween = gween.New(g.alpha, target, glowDuration, ease.OutQuad)
}

// advance follows the chart's highlight state, whether driven by hover or by
// Chart.Highlight, and steps every fade by dt seconds. Fully faded highlights
// are dropped.
func (l *Layer) advance(dt float32) {
	for _, geo := range l.chart.Geometry() {
		var target float32
		if l.chart.Highlighted(geo.Index) {
			target = 1
		}
		g, ok := l.glows[geo.Index]
		switch {
		case ok && g.target != target:
			l.fade(geo.Index, target)
		case !ok && target > 0:
			l.fade(geo.Index, target)
		}
	}
	n := len(l.chart.Geometry())
	for i, g := range l.glows {
		if i >= n && g.target != 0 {
			l.fade(i, 0)
		}
		val, done := g.tween.Update(dt)
		g.alpha = val
		if done && val == 0 {
			delete(l.glows, i)
		}
	}
}

// Glow returns entity i's current highlight strength in [0, 1].
func (l *Layer) Glow(i int) float32 {
	if g, ok := l.glows[i]; ok {
		return g.alpha
	}
	return 0
}

// Draw renders cells, clip circles and shapes onto screen.
func (l *Layer) Draw(screen *ebiten.Image) {
	dst := screen
	opts := l.chart.Options()
	if opts.ClipEdge {
		r := l.chart.EdgeClip()
		x0, y0 := int(l.rect.X+r.X), int(l.rect.Y+r.Y)
		dst = screen.SubImage(image.Rect(x0, y0, x0+int(r.Width), y0+int(r.Height))).(*ebiten.Image)
	}
	l.build(dst, l.ShowCells)
	l.batch.flush(dst)
}

// build fills the batch for one frame, flushing to dst whenever the batch
// fills up. Geometry is translated to screen space. A nil dst never flushes.
func (l *Layer) build(dst *ebiten.Image, showCells bool) {
	l.batch.reset()
	st := l.style
	off := hitplot.Vec2{X: l.rect.X, Y: l.rect.Y}

	if t := l.chart.Tessellation(); showCells && t != nil {
		for _, c := range t.Cells() {
			pts := make([]hitplot.Vec2, len(c.Polygon.Points))
			for i, p := range c.Polygon.Points {
				pts[i] = hitplot.Vec2{X: p.X + off.X, Y: p.Y + off.Y}
			}
			l.reserve(dst, 4*(len(pts)+st.Segments))
			l.batch.strokePolygon(pts, st.StrokeWidth, st.Cell)
			if c.ClipRadius > 0 {
				l.batch.strokeCircle(c.Site.X+off.X, c.Site.Y+off.Y, c.ClipRadius, st.Segments, st.StrokeWidth, st.Clip)
			}
		}
	}

	for _, g := range l.chart.Geometry() {
		e := g.Ellipse()
		e.CenterX += off.X
		e.CenterY += off.Y
		col := st.Fill
		if a := l.Glow(g.Index); a > 0 {
			col = lerpColor(st.Fill, st.Highlight, float64(a))
		}
		l.reserve(dst, st.Segments+1)
		l.batch.fillEllipse(e, st.Segments, col)
	}
}

func (l *Layer) reserve(dst *ebiten.Image, n int) {
	if dst != nil {
		l.batch.flushIfFull(dst, n)
	}
}
