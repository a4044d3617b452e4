package hitplot

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// DefaultBoundsMargin extends the tessellation bounds past the viewport
	// on every side.
	DefaultBoundsMargin = 10.0
	// DefaultDedupEpsilon is the per-axis distance under which two sorted
	// sites are treated as one.
	DefaultDedupEpsilon = 1e-4
	// DefaultJitter is the magnitude of the random offset added to sites.
	DefaultJitter = 1e-4
	// DefaultClipRadius is the clip circle radius used when ClipCells is set.
	DefaultClipRadius = 25.0
)

// ErrInvalidSite is returned by Tessellate when a site has a non-finite
// coordinate.
var ErrInvalidSite = errors.New("hitplot: invalid tessellation site")

// Site is one tessellation input point in plot-relative pixels.
type Site struct {
	Pos         Vec2
	EntityIndex int
}

// TessellateOptions controls Tessellate.
type TessellateOptions struct {
	BoundsMargin float64
	DedupEpsilon float64

	// Jitter is added to each coordinate as Rand.Float64()*Jitter. A nil
	// Rand disables jitter.
	Jitter float64
	Rand   *rand.Rand

	// ClipCells limits each cell's hit area to a circle around its site.
	// ClipRadius receives the index of the site in the input slice; a nil
	// func uses DefaultClipRadius.
	ClipCells  bool
	ClipRadius func(siteIndex int) float64
}

// DefaultTessellateOptions returns the default tessellation settings with no
// jitter source.
func DefaultTessellateOptions() TessellateOptions {
	return TessellateOptions{
		BoundsMargin: DefaultBoundsMargin,
		DedupEpsilon: DefaultDedupEpsilon,
		Jitter:       DefaultJitter,
	}
}

// Cell is the region of the plot closer to one site than to any other.
type Cell struct {
	// SiteIndex is the index of the site in the slice passed to Tessellate.
	SiteIndex   int
	EntityIndex int
	Site        Vec2
	Polygon     HitPolygon
	// ClipRadius is zero when clipping is disabled.
	ClipRadius float64
}

// ClipCircle returns the circle that limits the cell's hit area.
func (c Cell) ClipCircle() HitCircle {
	return HitCircle{CenterX: c.Site.X, CenterY: c.Site.Y, Radius: c.ClipRadius}
}

// Contains reports whether (x, y) lies in the cell and, when clipped, in its
// clip circle.
func (c Cell) Contains(x, y float64) bool {
	if c.ClipRadius > 0 && !c.ClipCircle().Contains(x, y) {
		return false
	}
	return c.Polygon.Contains(x, y)
}

// Tessellation is an immutable Voronoi diagram of the plot area.
type Tessellation struct {
	bounds Rect
	// sites holds the deduplicated sites sorted by (x, y).
	sites []Site
	// order maps a sorted site to its index in the input slice.
	order []int
	// cellOf maps a sorted site to its position in cells, or -1 when the
	// site's cell is empty.
	cellOf []int
	cells  []Cell
}

// Tessellate builds the Voronoi tessellation of sites, clipped to the
// viewport grown by opts.BoundsMargin. An empty site list yields an empty
// tessellation. The input slice is not modified.
func Tessellate(sites []Site, viewport Size, opts TessellateOptions) (*Tessellation, error) {
	m := math.Max(opts.BoundsMargin, 0)
	t := &Tessellation{
		bounds: Rect{
			X:      -m,
			Y:      -m,
			Width:  math.Max(viewport.Width, 0) + 2*m,
			Height: math.Max(viewport.Height, 0) + 2*m,
		},
	}
	if len(sites) == 0 {
		return t, nil
	}

	type indexed struct {
		site  Site
		input int
	}
	work := make([]indexed, len(sites))
	for i, s := range sites {
		if !finite(s.Pos.X) || !finite(s.Pos.Y) {
			return nil, fmt.Errorf("%w: entity %d at (%v, %v)", ErrInvalidSite, s.EntityIndex, s.Pos.X, s.Pos.Y)
		}
		if opts.Rand != nil && opts.Jitter != 0 {
			s.Pos.X += opts.Rand.Float64() * opts.Jitter
			s.Pos.Y += opts.Rand.Float64() * opts.Jitter
		}
		work[i] = indexed{site: s, input: i}
	}

	slices.SortStableFunc(work, func(a, b indexed) int {
		if c := cmp.Compare(a.site.Pos.X, b.site.Pos.X); c != 0 {
			return c
		}
		return cmp.Compare(a.site.Pos.Y, b.site.Pos.Y)
	})

	eps := opts.DedupEpsilon
	kept := work[:1]
	for _, w := range work[1:] {
		last := kept[len(kept)-1].site.Pos
		if math.Abs(w.site.Pos.X-last.X) < eps && math.Abs(w.site.Pos.Y-last.Y) < eps {
			continue
		}
		kept = append(kept, w)
	}

	t.sites = make([]Site, len(kept))
	t.order = make([]int, len(kept))
	for i, k := range kept {
		t.sites[i] = k.site
		t.order[i] = k.input
	}

	t.build(opts)
	return t, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// build clips the bounds rectangle against the bisector of every relevant
// neighbour of each site.
func (t *Tessellation) build(opts TessellateOptions) {
	b := t.bounds
	rect := []Vec2{
		{b.X, b.Y},
		{b.X, b.Y + b.Height},
		{b.X + b.Width, b.Y + b.Height},
		{b.X + b.Width, b.Y},
	}

	n := len(t.sites)
	t.cellOf = make([]int, n)
	t.cells = make([]Cell, 0, n)
	poly := make([]Vec2, 0, 16)
	scratch := make([]Vec2, 0, 16)

	for i, s := range t.sites {
		p := s.Pos
		poly = append(poly[:0], rect...)
		reach := farthest(poly, p)

		lo, hi := i-1, i+1
		for len(poly) >= 3 && (lo >= 0 || hi < n) {
			var j int
			if hi >= n || (lo >= 0 && p.X-t.sites[lo].Pos.X <= t.sites[hi].Pos.X-p.X) {
				j = lo
				lo--
			} else {
				j = hi
				hi++
			}
			// Sites are visited in increasing x distance; once the bisector
			// lies beyond the cell's farthest vertex no later site can cut it.
			if math.Abs(t.sites[j].Pos.X-p.X) > 2*reach {
				break
			}
			scratch = clipHalfPlane(poly, p, t.sites[j].Pos, scratch)
			poly, scratch = scratch, poly
			reach = farthest(poly, p)
		}

		if len(poly) < 3 {
			t.cellOf[i] = -1
			continue
		}

		cell := Cell{
			SiteIndex:   t.order[i],
			EntityIndex: s.EntityIndex,
			Site:        p,
			Polygon:     HitPolygon{Points: slices.Clone(poly)},
		}
		if opts.ClipCells {
			cell.ClipRadius = DefaultClipRadius
			if opts.ClipRadius != nil {
				cell.ClipRadius = opts.ClipRadius(t.order[i])
			}
		}
		t.cellOf[i] = len(t.cells)
		t.cells = append(t.cells, cell)
	}
}

// farthest returns the largest distance from p to a vertex of poly.
func farthest(poly []Vec2, p Vec2) float64 {
	var d2 float64
	for _, v := range poly {
		dx, dy := v.X-p.X, v.Y-p.Y
		d2 = max(d2, dx*dx+dy*dy)
	}
	return math.Sqrt(d2)
}

// clipHalfPlane keeps the part of poly that is closer to a than to b and
// writes it into out.
func clipHalfPlane(poly []Vec2, a, b Vec2, out []Vec2) []Vec2 {
	nx, ny := b.X-a.X, b.Y-a.Y
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	side := func(v Vec2) float64 {
		return (v.X-mx)*nx + (v.Y-my)*ny
	}
	push := func(v Vec2) {
		if k := len(out); k > 0 && out[k-1] == v {
			return
		}
		out = append(out, v)
	}

	out = out[:0]
	n := len(poly)
	for k := 0; k < n; k++ {
		prev, cur := poly[(k+n-1)%n], poly[k]
		dp, dc := side(prev), side(cur)
		if dc <= 0 {
			if dp > 0 {
				push(lerpAt(prev, cur, dp, dc))
			}
			push(cur)
		} else if dp <= 0 {
			push(lerpAt(prev, cur, dp, dc))
		}
	}
	if k := len(out); k > 1 && out[0] == out[k-1] {
		out = out[:k-1]
	}
	return out
}

// lerpAt returns the point where the segment prev->cur crosses zero given
// the signed distances of its endpoints.
func lerpAt(prev, cur Vec2, dp, dc float64) Vec2 {
	f := dp / (dp - dc)
	return Vec2{
		X: prev.X + f*(cur.X-prev.X),
		Y: prev.Y + f*(cur.Y-prev.Y),
	}
}

// Bounds returns the rectangle the tessellation covers.
func (t *Tessellation) Bounds() Rect {
	return t.bounds
}

// Len returns the number of non-empty cells.
func (t *Tessellation) Len() int {
	return len(t.cells)
}

// Cells returns the tessellation's cells in site order. The returned slice
// MUST NOT be mutated.
func (t *Tessellation) Cells() []Cell {
	return t.cells
}

// Sites returns the deduplicated, jittered sites sorted by (x, y).
func (t *Tessellation) Sites() []Site {
	return t.sites
}

// Locate returns the cell containing (x, y). Points outside the bounds, or
// outside the clip circle of the nearest site when clipping is on, miss.
func (t *Tessellation) Locate(x, y float64) (Cell, bool) {
	if len(t.sites) == 0 || !t.bounds.Contains(x, y) {
		return Cell{}, false
	}
	i := t.nearest(x, y)
	if i < 0 || t.cellOf[i] < 0 {
		return Cell{}, false
	}
	c := t.cells[t.cellOf[i]]
	if c.ClipRadius > 0 && !c.ClipCircle().Contains(x, y) {
		return Cell{}, false
	}
	return c, true
}

// nearest returns the sorted index of the site closest to (x, y). Within
// the bounds that site's cell is the one containing the point.
func (t *Tessellation) nearest(x, y float64) int {
	n := len(t.sites)
	start := sort.Search(n, func(i int) bool { return t.sites[i].Pos.X >= x })
	best, bestD := -1, math.Inf(1)
	try := func(i int) {
		dx, dy := t.sites[i].Pos.X-x, t.sites[i].Pos.Y-y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	for i := start; i < n; i++ {
		dx := t.sites[i].Pos.X - x
		if dx*dx > bestD {
			break
		}
		try(i)
	}
	for i := start - 1; i >= 0; i-- {
		dx := x - t.sites[i].Pos.X
		if dx*dx > bestD {
			break
		}
		try(i)
	}
	return best
}

// Ring returns cell i as a closed orb ring.
func (t *Tessellation) Ring(i int) orb.Ring {
	pts := t.cells[i].Polygon.Points
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(pts) > 0 {
		ring = append(ring, orb.Point{pts[0].X, pts[0].Y})
	}
	return ring
}

// GeoJSON encodes the cells as a FeatureCollection of polygons in pixel
// coordinates. Each feature carries its site, entity index and clip radius.
func (t *Tessellation) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, c := range t.cells {
		f := geojson.NewFeature(orb.Polygon{t.Ring(i)})
		f.Properties["siteIndex"] = c.SiteIndex
		f.Properties["entityIndex"] = c.EntityIndex
		f.Properties["site"] = []float64{c.Site.X, c.Site.Y}
		if c.ClipRadius > 0 {
			f.Properties["clipRadius"] = c.ClipRadius
		}
		fc.Append(f)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode tessellation: %w", err)
	}
	return b, nil
}
