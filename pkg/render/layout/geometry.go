package layout

import "math"

// Rect is an axis-aligned box. y grows downward.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectXYWH builds a Rect from its origin and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Width returns the horizontal span of the rect.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rect.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// OverlapsX reports whether the horizontal spans intersect.
func (r Rect) OverlapsX(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right
}

// Union returns the smallest rect containing both. An empty r is ignored.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Translate moves the rect by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Point is a position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a straight line.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Bounds returns the segment's bounding rect.
func (s Segment) Bounds() Rect {
	return Rect{
		Left:   math.Min(s.X1, s.X2),
		Top:    math.Min(s.Y1, s.Y2),
		Right:  math.Max(s.X1, s.X2),
		Bottom: math.Max(s.Y1, s.Y2),
	}
}

func (s Segment) translate(dx, dy float64) Segment {
	return Segment{X1: s.X1 + dx, Y1: s.Y1 + dy, X2: s.X2 + dx, Y2: s.Y2 + dy}
}

// finite replaces NaN and infinities with fallback.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
