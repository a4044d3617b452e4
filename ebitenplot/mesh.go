package ebitenplot

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/hitplot"
)

// maxBatchVertices keeps index values within uint16.
const maxBatchVertices = 65000

// --- White pixel singleton (single-threaded, like the chart) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used as
// the source of every untextured triangle.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// meshBatch accumulates untextured triangles for one DrawTriangles call.
type meshBatch struct {
	verts []ebiten.Vertex
	inds  []uint16
}

func (b *meshBatch) reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

// vertex returns a premultiplied vertex at (x, y).
func vertex(x, y float64, c hitplot.Color) ebiten.Vertex {
	a := float32(c.A)
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(c.R) * a,
		ColorG: float32(c.G) * a,
		ColorB: float32(c.B) * a,
		ColorA: a,
	}
}

// fillEllipse appends a triangle fan covering e. Ellipses smaller than half a
// pixel are widened so that they stay visible.
func (b *meshBatch) fillEllipse(e hitplot.HitEllipse, segments int, c hitplot.Color) {
	rx, ry := max(e.RadiusX, 0.5), max(e.RadiusY, 0.5)
	base := uint16(len(b.verts))
	b.verts = append(b.verts, vertex(e.CenterX, e.CenterY, c))
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		b.verts = append(b.verts, vertex(e.CenterX+rx*math.Cos(a), e.CenterY+ry*math.Sin(a), c))
	}
	for i := 0; i < segments; i++ {
		next := (i+1)%segments + 1
		b.inds = append(b.inds, base, base+uint16(i+1), base+uint16(next))
	}
}

// strokeLine appends a quad of the given width from p to q.
func (b *meshBatch) strokeLine(p, q hitplot.Vec2, width float64, c hitplot.Color) {
	dx, dy := q.X-p.X, q.Y-p.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	base := uint16(len(b.verts))
	b.verts = append(b.verts,
		vertex(p.X+nx, p.Y+ny, c),
		vertex(p.X-nx, p.Y-ny, c),
		vertex(q.X-nx, q.Y-ny, c),
		vertex(q.X+nx, q.Y+ny, c),
	)
	b.inds = append(b.inds, base, base+1, base+2, base, base+2, base+3)
}

// strokePolygon outlines a closed polygon.
func (b *meshBatch) strokePolygon(pts []hitplot.Vec2, width float64, c hitplot.Color) {
	for i := range pts {
		b.strokeLine(pts[i], pts[(i+1)%len(pts)], width, c)
	}
}

// strokeCircle outlines a circle with the given number of segments.
func (b *meshBatch) strokeCircle(cx, cy, r float64, segments int, width float64, c hitplot.Color) {
	prev := hitplot.Vec2{X: cx + r, Y: cy}
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		cur := hitplot.Vec2{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
		b.strokeLine(prev, cur, width, c)
		prev = cur
	}
}

// flushIfFull draws and resets the batch when it nears the index limit.
func (b *meshBatch) flushIfFull(dst *ebiten.Image, reserve int) {
	if len(b.verts)+reserve > maxBatchVertices {
		b.flush(dst)
	}
}

func (b *meshBatch) flush(dst *ebiten.Image) {
	if len(b.inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	dst.DrawTriangles(b.verts, b.inds, ensureWhitePixel(), &op)
	b.reset()
}

// lerpColor mixes a toward b by t in [0, 1].
func lerpColor(a, b hitplot.Color, t float64) hitplot.Color {
	return hitplot.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
