package hitplot

import "math"

// DefaultBoundMultiplier inflates radii for domain fitting so decorative
// overlays around an ellipse are not clipped at the plot edge.
const DefaultBoundMultiplier = 1.2

// degenerateInflation is the relative widening applied to a zero-width domain.
const degenerateInflation = 0.01

// LinearScale maps a continuous domain onto a pixel range.
type LinearScale struct {
	domain [2]float64
	rng    [2]float64
}

// NewLinearScale creates a scale with the given domain and range.
func NewLinearScale(domain, rng [2]float64) *LinearScale {
	return &LinearScale{domain: domain, rng: rng}
}

// Domain returns the scale's input interval.
func (s *LinearScale) Domain() [2]float64 { return s.domain }

// Range returns the scale's output interval.
func (s *LinearScale) Range() [2]float64 { return s.rng }

// Map converts a domain value to a range value.
func (s *LinearScale) Map(v float64) float64 {
	d := s.domain[1] - s.domain[0]
	if d == 0 {
		return (s.rng[0] + s.rng[1]) / 2
	}
	t := (v - s.domain[0]) / d
	return s.rng[0] + t*(s.rng[1]-s.rng[0])
}

// Invert converts a range value back to a domain value.
func (s *LinearScale) Invert(p float64) float64 {
	r := s.rng[1] - s.rng[0]
	if r == 0 {
		return (s.domain[0] + s.domain[1]) / 2
	}
	t := (p - s.rng[0]) / r
	return s.domain[0] + t*(s.domain[1]-s.domain[0])
}

// Copy returns an independent copy of the scale.
func (s *LinearScale) Copy() *LinearScale {
	c := *s
	return &c
}

// Extent is the inflated bounding box of a shape used for domain fitting.
type Extent struct {
	UpperX, UpperY float64
	LowerX, LowerY float64
}

// ShapeExtent computes the extent of s with the bound multiplier m.
func ShapeExtent(s Shape, m float64) Extent {
	return Extent{
		UpperX: s.X.Center + m*s.X.Radius,
		UpperY: s.Y.Center + m*s.Y.Radius,
		LowerX: s.X.Center - m*s.X.Radius,
		LowerY: s.Y.Center - m*s.Y.Radius,
	}
}

// ScaleOptions controls ComputeScales. Nil domain and range overrides mean
// "derive from data".
type ScaleOptions struct {
	// BoundMultiplier inflates radii. Values below 1 use
	// DefaultBoundMultiplier.
	BoundMultiplier float64
	ForceX, ForceY  []float64
	XDomain         *[2]float64
	YDomain         *[2]float64
	XRange          *[2]float64
	YRange          *[2]float64

	// PadData narrows the x range to line up with an ordinal scale of
	// PadDataValues slots (len(shapes) when zero) and PadDataOuter outer
	// padding, as used by bar charts sharing the plot area.
	PadData       bool
	PadDataOuter  float64
	PadDataValues int
}

// ScaleResult is the output of ComputeScales.
type ScaleResult struct {
	X, Y *LinearScale
	// SinglePoint is set when either axis's data domain had zero width
	// before inflation.
	SinglePoint bool
	Viewport    Size
}

// ScaleChanges reports the global changes between two scale results that
// invalidate every shape regardless of its own fields.
type ScaleChanges struct {
	Scale    bool
	Domain   bool
	Viewport bool
}

// Any reports whether any global change is set.
func (c ScaleChanges) Any() bool {
	return c.Scale || c.Domain || c.Viewport
}

// Changes compares r with the previous result. A nil prev reports no scale
// or viewport change but a domain change, matching a first render.
func (r ScaleResult) Changes(prev *ScaleResult) ScaleChanges {
	if prev == nil {
		return ScaleChanges{Domain: true}
	}
	return ScaleChanges{
		Scale:    r.X.Map(1) != prev.X.Map(1) || r.Y.Map(1) != prev.Y.Map(1),
		Domain:   r.X.Domain() != prev.X.Domain() || r.Y.Domain() != prev.Y.Domain(),
		Viewport: r.Viewport != prev.Viewport,
	}
}

// ComputeScales derives the x and y scales for shapes drawn into viewport.
func ComputeScales(shapes []Shape, viewport Size, opts ScaleOptions) ScaleResult {
	m := opts.BoundMultiplier
	if m < 1 {
		m = DefaultBoundMultiplier
	}

	var xDom, yDom [2]float64
	if opts.XDomain != nil {
		xDom = *opts.XDomain
	} else {
		xDom = extentOf(shapes, m, true, opts.ForceX)
	}
	if opts.YDomain != nil {
		yDom = *opts.YDomain
	} else {
		yDom = extentOf(shapes, m, false, opts.ForceY)
	}

	w, h := viewport.Width, viewport.Height

	xRange := [2]float64{0, w}
	switch {
	case opts.XRange != nil:
		xRange = *opts.XRange
	case opts.PadData && len(shapes) > 0:
		n := opts.PadDataValues
		if n <= 0 {
			n = len(shapes)
		}
		p := opts.PadDataOuter
		xRange = [2]float64{
			(w*p + w) / (2 * float64(n)),
			w - w*(1+p)/(2*float64(n)),
		}
	}
	yRange := [2]float64{h, 0}
	if opts.YRange != nil {
		yRange = *opts.YRange
	}

	single := xDom[0] == xDom[1] || yDom[0] == yDom[1]

	return ScaleResult{
		X:           NewLinearScale(fixDomain(xDom), xRange),
		Y:           NewLinearScale(fixDomain(yDom), yRange),
		SinglePoint: single,
		Viewport:    viewport,
	}
}

// extentOf returns [min, max] over the lower/upper extents of shapes on one
// axis plus the forced values. Non-finite values are skipped. With no finite
// value the result is [NaN, NaN].
func extentOf(shapes []Shape, m float64, xAxis bool, force []float64) [2]float64 {
	lo, hi := math.NaN(), math.NaN()
	add := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	for _, s := range shapes {
		e := ShapeExtent(s, m)
		if xAxis {
			add(e.UpperX)
			add(e.LowerX)
		} else {
			add(e.UpperY)
			add(e.LowerY)
		}
	}
	for _, v := range force {
		add(v)
	}
	return [2]float64{lo, hi}
}

// fixDomain applies the degenerate and NaN policies so the returned domain
// always has two distinct, non-NaN bounds.
func fixDomain(d [2]float64) [2]float64 {
	if math.IsNaN(d[0]) || math.IsNaN(d[1]) {
		return [2]float64{-1, 1}
	}
	if d[0] == d[1] {
		v := d[0]
		if v == 0 {
			return [2]float64{-1, 1}
		}
		d = [2]float64{v - v*degenerateInflation, v + v*degenerateInflation}
		if d[0] == d[1] {
			return [2]float64{-1, 1}
		}
	}
	return d
}
