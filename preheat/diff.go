package preheat

// Diff splits the move from prev to next into the regions that entered the
// window (added) and the regions that left it (removed).
//
// Rectangles within each list are disjoint and never overlap prev∩next.
// Empty rectangles never appear in either list.
func Diff(prev, next Rect) (added, removed []Rect) {
	prev, next = prev.Clamped(), next.Clamped()

	in, ok := prev.Intersect(next)
	if !ok {
		if !next.Empty() {
			added = []Rect{next}
		}
		if !prev.Empty() {
			removed = []Rect{prev}
		}
		return added, removed
	}

	return next.Subtract(in), prev.Subtract(in)
}
