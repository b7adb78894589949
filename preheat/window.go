package preheat

import "fyne.io/fyne/v2"

// PreheatWindowState is the window last used to update the asset cache and
// the thumbnail size requested from it.
type PreheatWindowState struct {
	PreviousRect  Rect
	ThumbnailSize fyne.Size
}

// Commit records r as the window the cache now reflects.
func (s PreheatWindowState) Commit(r Rect) PreheatWindowState {
	s.PreviousRect = r
	return s
}

// Reset drops the previous window so the next update always triggers.
func (s PreheatWindowState) Reset() PreheatWindowState {
	s.PreviousRect = ZeroRect
	return s
}

// WindowTracker decides when a scroll has moved far enough to recompute the
// cache window.
type WindowTracker struct {
	opts Options
}

func NewWindowTracker(opts Options) WindowTracker {
	return WindowTracker{opts: opts.normalized()}
}

func (t WindowTracker) Options() Options {
	return t.opts
}

// PreheatRect grows visible vertically by BufferFactor of its height on each side.
func (t WindowTracker) PreheatRect(visible Rect) Rect {
	visible = visible.Clamped()
	return visible.InsetBy(0, -t.opts.BufferFactor*visible.Size.Height)
}

// ShouldUpdate reports whether the vertical center of candidate has moved
// strictly more than UpdateThreshold*viewportHeight away from the previous
// window. With no previous window any non-empty candidate triggers.
func (t WindowTracker) ShouldUpdate(s PreheatWindowState, candidate Rect, viewportHeight float32) bool {
	if candidate.Empty() {
		return false
	}
	if s.PreviousRect.IsZero() {
		return true
	}
	delta := candidate.MidY() - s.PreviousRect.MidY()
	if delta < 0 {
		delta = -delta
	}
	return delta > max(viewportHeight, 0)*t.opts.UpdateThreshold
}

// Update computes the preheat rect for visible and whether it should replace
// the previous window. The caller commits it once the cache has been updated.
func (t WindowTracker) Update(s PreheatWindowState, visible Rect) (Rect, bool) {
	next := t.PreheatRect(visible)
	return next, t.ShouldUpdate(s, next, visible.Clamped().Size.Height)
}
