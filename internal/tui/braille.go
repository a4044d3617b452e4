package tui

import (
	"math"

	"github.com/phanxgames/hitplot"
)

// brailleBuf is a canvas of 2x4 micro-pixels per terminal cell.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dotBits maps a micro-pixel within a cell to its braille bit, by column
// then row.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[rx][ry]
}

// drawLine draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawPolygon outlines a closed polygon given in micro-pixel space.
func (b *brailleBuf) drawPolygon(pts []hitplot.Vec2) {
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		b.drawLine(round(p.X), round(p.Y), round(q.X), round(q.Y))
	}
}

// drawEllipse outlines e, or fills it when fill is set. Degenerate ellipses
// draw a single dot.
func (b *brailleBuf) drawEllipse(e hitplot.HitEllipse, fill bool) {
	if e.RadiusX < 0.5 && e.RadiusY < 0.5 {
		b.setPixel(round(e.CenterX), round(e.CenterY))
		return
	}
	if fill {
		x0, x1 := round(e.CenterX-e.RadiusX), round(e.CenterX+e.RadiusX)
		y0, y1 := round(e.CenterY-e.RadiusY), round(e.CenterY+e.RadiusY)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if e.Contains(float64(x), float64(y)) {
					b.setPixel(x, y)
				}
			}
		}
		return
	}
	steps := max(16, int(2*math.Pi*max(e.RadiusX, e.RadiusY)))
	px, py := round(e.CenterX+e.RadiusX), round(e.CenterY)
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := round(e.CenterX + e.RadiusX*math.Cos(a))
		y := round(e.CenterY + e.RadiusY*math.Sin(a))
		b.drawLine(px, py, x, y)
		px, py = x, y
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}
