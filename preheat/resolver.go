package preheat

import (
	"math"
	"sort"

	"fyne.io/fyne/v2"
)

// GridGeometry describes a row-major grid of equally sized cells.
// It is supplied by the presentation layer and read-only to this package.
type GridGeometry interface {
	ItemSize() fyne.Size
	ColumnCount() int
	Spacing() float32
	ItemCount() int
}

// Grid is a fixed GridGeometry.
type Grid struct {
	Item    fyne.Size
	Columns int
	Gap     float32
	Count   int
}

func (g Grid) ItemSize() fyne.Size { return g.Item }
func (g Grid) ColumnCount() int    { return g.Columns }
func (g Grid) Spacing() float32    { return g.Gap }
func (g Grid) ItemCount() int      { return g.Count }

// PositionsIn returns, in ascending order, the positions whose cells overlap rect.
// Only the rows and columns rect touches are visited.
func PositionsIn(rect Rect, g GridGeometry) []int {
	rect = rect.Clamped()
	count := g.ItemCount()
	item := g.ItemSize()
	if rect.Empty() || count <= 0 || item.Width <= 0 || item.Height <= 0 {
		return nil
	}

	cols := max(g.ColumnCount(), 1)
	pad := max(g.Spacing(), 0)
	stepX := item.Width + pad
	stepY := item.Height + pad

	maxRow := (count - 1) / cols
	startRow := clampIndex(rect.MinY()/stepY, maxRow)
	endRow := clampIndex(rect.MaxY()/stepY, maxRow)
	startCol := clampIndex(rect.MinX()/stepX, cols-1)
	endCol := clampIndex(rect.MaxX()/stepX, cols-1)

	var ids []int
	for row := startRow; row <= endRow; row++ {
		y1 := float32(row) * stepY
		y2 := y1 + item.Height
		if y1 >= rect.MaxY() || y2 <= rect.MinY() {
			continue
		}
		for col := startCol; col <= endCol; col++ {
			i := row*cols + col
			if i >= count {
				break
			}
			x1 := float32(col) * stepX
			x2 := x1 + item.Width
			if x1 < rect.MaxX() && x2 > rect.MinX() {
				ids = append(ids, i)
			}
		}
	}
	return ids
}

// PositionsInAll returns the ascending, duplicate-free union of PositionsIn over rects.
func PositionsInAll(rects []Rect, g GridGeometry) []int {
	if len(rects) == 1 {
		return PositionsIn(rects[0], g)
	}

	seen := make(map[int]struct{})
	var ids []int
	for _, r := range rects {
		for _, i := range PositionsIn(r, g) {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			ids = append(ids, i)
		}
	}
	sort.Ints(ids)
	return ids
}

// clampIndex floors v and clamps it to [0, hi].
func clampIndex(v float32, hi int) int {
	f := math.Floor(float64(v))
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}
