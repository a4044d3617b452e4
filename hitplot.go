package hitplot

import (
	"fmt"
	"image/color"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return color.RGBA{
		R: clamp(c.R * c.A),
		G: clamp(c.G * c.A),
		B: clamp(c.B * c.A),
		A: clamp(c.A),
	}
}

// Vec2 is a 2D vector used for positions and offsets throughout the API.
type Vec2 struct {
	X, Y float64
}

// Size is a viewport size in pixels.
type Size struct {
	Width, Height float64
}

// Margin is the space between the container edge and the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Axis is the extent of an ellipse along one data axis.
type Axis struct {
	Center float64
	Radius float64
}

// ShapeKind is the decorative symbol kind a renderer may use for a shape.
// The engine only ever treats shapes as axis-aligned ellipses.
type ShapeKind uint8

const (
	ShapeCircle       ShapeKind = iota // default
	ShapeCross                         // plus sign
	ShapeDiamond                       // rotated square
	ShapeSquare                        // axis-aligned square
	ShapeTriangleUp                    // upward triangle
	ShapeTriangleDown                  // downward triangle
)

var shapeKindNames = [...]string{
	ShapeCircle:       "circle",
	ShapeCross:        "cross",
	ShapeDiamond:      "diamond",
	ShapeSquare:       "square",
	ShapeTriangleUp:   "triangle-up",
	ShapeTriangleDown: "triangle-down",
}

// String returns the symbol name of the kind.
func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return "unknown"
}

// ParseShapeKind returns the kind named s. The empty string is a circle.
func ParseShapeKind(s string) (ShapeKind, error) {
	if s == "" {
		return ShapeCircle, nil
	}
	for i, name := range shapeKindNames {
		if name == s {
			return ShapeKind(i), nil
		}
	}
	return ShapeCircle, fmt.Errorf("hitplot: unknown shape kind %q", s)
}

// Shape is one elliptical region on the plot. Shapes are immutable for the
// duration of an update pass.
type Shape struct {
	// Series is the identity key. Chart.Update overwrites it with the
	// shape's index in the input slice.
	Series int
	X      Axis
	Y      Axis

	// Size defaults to 1 when zero.
	Size float64
	Kind ShapeKind

	// Inactive shapes are drawn but never receive pointer events.
	Inactive bool

	Label       string
	Class       string
	Hovered     bool
	BorderColor *Color
}

// sizeOrDefault returns the shape's size, falling back to 1.
func (s Shape) sizeOrDefault() float64 {
	if s.Size == 0 {
		return 1
	}
	return s.Size
}

// EventType identifies a kind of entity-level interaction event.
type EventType uint8

const (
	EventHoverEnter  EventType = iota // pointer moved onto an entity
	EventHoverMove                    // pointer moved while over an entity
	EventHoverExit                    // pointer left an entity
	EventClick                        // click over an entity
	EventDoubleClick                  // double click over an entity
)

var eventTypeNames = [...]string{
	EventHoverEnter:  "hover-enter",
	EventHoverMove:   "hover-move",
	EventHoverExit:   "hover-exit",
	EventClick:       "click",
	EventDoubleClick: "double-click",
}

// String returns the channel name of the event type.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// PointerKind identifies a raw pointer input fed into a Chart.
type PointerKind uint8

const (
	PointerMove        PointerKind = iota // cursor moved inside the plot
	PointerLeave                          // cursor left the plot
	PointerClick                          // primary button click
	PointerDoubleClick                    // primary button double click
)

var pointerKindNames = [...]string{
	PointerMove:        "move",
	PointerLeave:       "leave",
	PointerClick:       "click",
	PointerDoubleClick: "dblclick",
}

// String returns the short name of the pointer kind.
func (k PointerKind) String() string {
	if int(k) < len(pointerKindNames) {
		return pointerKindNames[k]
	}
	return "unknown"
}
