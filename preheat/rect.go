package preheat

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// Rect is an axis-aligned rectangle in content coordinates.
// Width and height are never negative.
type Rect struct {
	Origin fyne.Position
	Size   fyne.Size
}

// ZeroRect is the "no window yet" sentinel.
var ZeroRect = Rect{}

// NewRect builds a rectangle, clamping a negative width or height to zero.
func NewRect(x, y, width, height float32) Rect {
	return Rect{
		Origin: fyne.NewPos(x, y),
		Size:   fyne.NewSize(max(width, 0), max(height, 0)),
	}
}

// RectFromBounds builds a rectangle from its edges. Inverted edges give an empty rectangle.
func RectFromBounds(minX, minY, maxX, maxY float32) Rect {
	return NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Clamped returns r with a negative size clamped to zero.
func (r Rect) Clamped() Rect {
	return NewRect(r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

func (r Rect) MinX() float32 { return r.Origin.X }
func (r Rect) MinY() float32 { return r.Origin.Y }
func (r Rect) MaxX() float32 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float32 { return r.Origin.Y + r.Size.Height }
func (r Rect) MidY() float32 { return r.Origin.Y + r.Size.Height/2 }

// Area returns width*height.
func (r Rect) Area() float32 {
	return r.Size.Width * r.Size.Height
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// IsZero reports whether r is the zero sentinel.
func (r Rect) IsZero() bool {
	return r == ZeroRect
}

// Intersect returns the overlap of r and o. The second result is false when
// the overlap has zero area, including rectangles that only share an edge.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	minX := max(r.MinX(), o.MinX())
	minY := max(r.MinY(), o.MinY())
	maxX := min(r.MaxX(), o.MaxX())
	maxY := min(r.MaxY(), o.MaxY())
	if maxX <= minX || maxY <= minY {
		return ZeroRect, false
	}
	return RectFromBounds(minX, minY, maxX, maxY), true
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	_, ok := r.Intersect(o)
	return ok
}

// Union returns the smallest rectangle containing both r and o.
// Empty rectangles do not contribute.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o.Clamped()
	}
	if o.Empty() {
		return r
	}
	return RectFromBounds(
		min(r.MinX(), o.MinX()),
		min(r.MinY(), o.MinY()),
		max(r.MaxX(), o.MaxX()),
		max(r.MaxY(), o.MaxY()),
	)
}

// InsetBy shrinks r by dx on the left and right and by dy on the top and bottom.
// Negative values grow it.
func (r Rect) InsetBy(dx, dy float32) Rect {
	return NewRect(r.Origin.X+dx, r.Origin.Y+dy, r.Size.Width-2*dx, r.Size.Height-2*dy)
}

// Subtract returns pairwise-disjoint rectangles covering r minus o.
//
// Full-width bands above and below the overlap come first, then the slivers
// left and right of the overlap inside its vertical band. A vertical scroll
// therefore yields at most two rectangles.
func (r Rect) Subtract(o Rect) []Rect {
	if r.Empty() {
		return nil
	}
	in, ok := r.Intersect(o)
	if !ok {
		return []Rect{r}
	}

	var out []Rect
	if in.MinY() > r.MinY() {
		out = append(out, RectFromBounds(r.MinX(), r.MinY(), r.MaxX(), in.MinY()))
	}
	if in.MaxY() < r.MaxY() {
		out = append(out, RectFromBounds(r.MinX(), in.MaxY(), r.MaxX(), r.MaxY()))
	}
	if in.MinX() > r.MinX() {
		out = append(out, RectFromBounds(r.MinX(), in.MinY(), in.MinX(), in.MaxY()))
	}
	if in.MaxX() < r.MaxX() {
		out = append(out, RectFromBounds(in.MaxX(), in.MinY(), r.MaxX(), in.MaxY()))
	}
	return out
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}
