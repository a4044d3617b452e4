package hitplot

import (
	"math"
	"slices"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.BoundMultiplier != 1.2 {
		t.Errorf("BoundMultiplier = %v, want 1.2", o.BoundMultiplier)
	}
	if !o.Interactive || !o.UseTessellation {
		t.Error("default chart should be interactive with tessellation")
	}
	if o.DebounceDelay != 300*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 300ms", o.DebounceDelay)
	}
	if o.ClipRadius != 25 || o.BoundsMargin != 10 {
		t.Errorf("ClipRadius = %v, BoundsMargin = %v; want 25, 10", o.ClipRadius, o.BoundsMargin)
	}
	if o.TooltipOffset != (Vec2{X: 10, Y: 10}) {
		t.Errorf("TooltipOffset = %v, want (10, 10)", o.TooltipOffset)
	}
	if o.PadDataOuter != 0.1 || o.DedupEpsilon != 1e-4 || o.Jitter != 1e-4 {
		t.Errorf("PadDataOuter = %v, DedupEpsilon = %v, Jitter = %v", o.PadDataOuter, o.DedupEpsilon, o.Jitter)
	}
}

func TestChartIDUnique(t *testing.T) {
	a := NewChart(DefaultOptions())
	b := NewChart(DefaultOptions())
	if a.ID() == b.ID() {
		t.Error("two charts share an ID")
	}
}

func TestUpdateAssignsSeries(t *testing.T) {
	c, _ := newTestChart(0)
	shapes := twoShapes()
	shapes[0].Series = 42
	shapes[1].Series = 42
	c.Update(shapes, testViewport)

	for i, s := range c.Shapes() {
		if s.Series != i {
			t.Errorf("shape %d Series = %d, want %d", i, s.Series, i)
		}
	}
	if shapes[0].Series != 42 {
		t.Error("Update should not modify the caller's slice")
	}
}

func TestUpdateGeometry(t *testing.T) {
	c, _ := newTestChart(0)
	shapes := []Shape{
		{X: Axis{Center: 0, Radius: 2}, Y: Axis{Center: 0, Radius: 1}},
		{X: Axis{Center: math.NaN(), Radius: -1}, Y: Axis{Center: 4, Radius: 0}},
	}
	f := c.Update(shapes, Size{Width: 200, Height: 100})

	x, y := f.Scales.X, f.Scales.Y
	unitX := x.Map(1) - x.Map(0)
	unitY := y.Map(0) - y.Map(1)

	g := f.Shapes[0]
	if g.CX != x.Map(0) || g.CY != y.Map(0) {
		t.Errorf("center = (%v, %v), want (%v, %v)", g.CX, g.CY, x.Map(0), y.Map(0))
	}
	if !approxEqual(g.RX, 2*unitX, 1e-9) || !approxEqual(g.RY, unitY, 1e-9) {
		t.Errorf("radii = (%v, %v), want (%v, %v)", g.RX, g.RY, 2*unitX, unitY)
	}

	g = f.Shapes[1]
	if g.CX != 0 {
		t.Errorf("NaN center should map to 0, got %v", g.CX)
	}
	if !approxEqual(g.RX, unitX, 1e-9) {
		t.Errorf("negative radius should use its magnitude, got %v want %v", g.RX, unitX)
	}
	if g.RY != 0 {
		t.Errorf("RY = %v, want 0", g.RY)
	}
	if e := g.Ellipse(); e.RadiusX != g.RX || e.CenterY != g.CY {
		t.Errorf("Ellipse() = %+v does not match geometry %+v", e, g)
	}
}

func TestUpdateChangeFlags(t *testing.T) {
	c, _ := newTestChart(0)
	base := []Shape{
		{X: Axis{Center: 0, Radius: 1}, Y: Axis{Center: 0, Radius: 1}},
		{X: Axis{Center: 10, Radius: 1}, Y: Axis{Center: 10, Radius: 1}},
		{X: Axis{Center: 5, Radius: 1}, Y: Axis{Center: 5, Radius: 1}},
	}

	f := c.Update(base, testViewport)
	for _, g := range f.Shapes {
		if !g.PositionChanged || !g.AppearanceChanged {
			t.Errorf("first pass: shape %d flags = %v, %v; want both set", g.Index, g.PositionChanged, g.AppearanceChanged)
		}
	}

	f = c.Update(base, testViewport)
	if f.Changes.Any() {
		t.Errorf("identical update reported global changes %+v", f.Changes)
	}
	for _, g := range f.Shapes {
		if g.PositionChanged || g.AppearanceChanged {
			t.Errorf("identical update: shape %d flagged changed", g.Index)
		}
	}

	// Move the middle shape without touching the domain, restyle another.
	next := slices.Clone(base)
	next[2].X.Center = 6
	next[1].Kind = ShapeDiamond
	f = c.Update(next, testViewport)
	if f.Changes.Any() {
		t.Fatalf("domain should not change, got %+v", f.Changes)
	}
	want := []struct{ pos, look bool }{{false, false}, {false, true}, {true, false}}
	for i, w := range want {
		g := f.Shapes[i]
		if g.PositionChanged != w.pos || g.AppearanceChanged != w.look {
			t.Errorf("shape %d flags = %v, %v; want %v, %v", i, g.PositionChanged, g.AppearanceChanged, w.pos, w.look)
		}
	}

	// A viewport change marks every shape.
	f = c.Update(next, Size{Width: 300, Height: 100})
	for _, g := range f.Shapes {
		if !g.PositionChanged || !g.AppearanceChanged {
			t.Errorf("resize: shape %d not flagged", g.Index)
		}
	}
}

func TestUpdateSizeDefault(t *testing.T) {
	c, _ := newTestChart(0)
	shapes := twoShapes()
	c.Update(shapes, testViewport)

	// Size 0 and size 1 are the same appearance.
	shapes[0].Size = 1
	f := c.Update(shapes, testViewport)
	if f.Shapes[0].AppearanceChanged {
		t.Error("explicit default size should not count as a change")
	}
}

func TestUpdateEnterExit(t *testing.T) {
	c, _ := newTestChart(0)
	three := append(twoShapes(), Shape{X: Axis{Center: 5}, Y: Axis{Center: 5}})

	f := c.Update(three, testViewport)
	if !slices.Equal(f.Entered, []int{0, 1, 2}) || len(f.Exited) != 0 {
		t.Errorf("first pass entered %v exited %v", f.Entered, f.Exited)
	}

	f = c.Update(three[:1], testViewport)
	if len(f.Entered) != 0 || !slices.Equal(f.Exited, []int{1, 2}) {
		t.Errorf("shrink entered %v exited %v", f.Entered, f.Exited)
	}
	if c.cache.Len() != 1 {
		t.Errorf("cache keys = %d, want 1 after exits", c.cache.Len())
	}

	// A re-added entity compares against nothing, not stale data.
	f = c.Update(three, testViewport)
	if !slices.Equal(f.Entered, []int{1, 2}) {
		t.Errorf("regrow entered %v, want [1 2]", f.Entered)
	}
	if !f.Shapes[2].PositionChanged {
		t.Error("re-added shape should be flagged changed")
	}
}

func TestUpdateInvalidatesScheduler(t *testing.T) {
	c, clock := newTestChart(200 * time.Millisecond)
	for range 4 {
		c.Update(twoShapes(), testViewport)
		clock.Advance(50 * time.Millisecond)
		c.Tick()
	}
	if c.Scheduler().Runs() != 0 {
		t.Fatalf("rebuild ran during the burst")
	}
	clock.Advance(150 * time.Millisecond)
	c.Tick()
	if c.Scheduler().Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", c.Scheduler().Runs())
	}
	if c.Tessellation() == nil {
		t.Error("tessellation should exist after the rebuild")
	}
}

func TestChartClose(t *testing.T) {
	c, clock := newTestChart(100 * time.Millisecond)
	c.Update(twoShapes(), testViewport)
	c.Close()
	c.Close()
	clock.Advance(time.Second)
	c.Tick()
	if c.Tessellation() != nil || !c.Stale() {
		t.Error("closed chart should not rebuild")
	}
}

func TestEdgeClip(t *testing.T) {
	c, _ := newTestChart(0)
	c.Update(nil, Size{Width: 300, Height: 200})
	want := Rect{X: -10, Y: -10, Width: 320, Height: 220}
	if got := c.EdgeClip(); got != want {
		t.Errorf("EdgeClip() = %+v, want %+v", got, want)
	}

	c.Update(nil, Size{Width: 300, Height: 0})
	if got := c.EdgeClip(); got.Height != 0 {
		t.Errorf("EdgeClip().Height = %v, want 0 for an empty plot", got.Height)
	}
}

func TestClipRadiusFunc(t *testing.T) {
	c, _ := newTestChart(0, func(o *Options) {
		o.ClipCells = true
		o.ClipRadiusFunc = func(i int, s Shape) float64 { return float64(10 * (i + 1)) }
	})
	c.Update(twoShapes(), testViewport)
	for _, cell := range c.Tessellation().Cells() {
		if want := float64(10 * (cell.EntityIndex + 1)); cell.ClipRadius != want {
			t.Errorf("cell %d ClipRadius = %v, want %v", cell.EntityIndex, cell.ClipRadius, want)
		}
	}
}

func TestSeedMakesRebuildsReproducible(t *testing.T) {
	build := func() []Site {
		c, _ := newTestChart(0, func(o *Options) { o.Seed = 99 })
		c.Update(twoShapes(), testViewport)
		return c.Tessellation().Sites()
	}
	a, b := build(), build()
	if !slices.Equal(a, b) {
		t.Errorf("sites differ for the same seed: %v vs %v", a, b)
	}
}
