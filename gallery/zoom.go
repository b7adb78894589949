package gallery

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const thumbnailSideKey = "xmediagrid:thumbnailSide"

// thumbnailSides are the thumbnail edge lengths, in canvas units, that
// zooming steps through.
var thumbnailSides = []float32{64, 96, 128, 160, 192, 256}

const defaultThumbnailSide = 128

// wheelNotch is the scroll delta of one mouse wheel click.
const wheelNotch = float32(40)

// thumbnailZoom holds the current thumbnail side and persists it.
type thumbnailZoom struct {
	prefs fyne.Preferences
	level int
}

func newThumbnailZoom(prefs fyne.Preferences) *thumbnailZoom {
	side := float32(defaultThumbnailSide)
	if prefs != nil {
		side = float32(prefs.FloatWithFallback(thumbnailSideKey, defaultThumbnailSide))
	}
	return &thumbnailZoom{prefs: prefs, level: nearestSide(side)}
}

// nearestSide returns the step closest to side.
func nearestSide(side float32) int {
	if math.IsNaN(float64(side)) || side <= 0 {
		side = defaultThumbnailSide
	}
	best := 0
	for i, s := range thumbnailSides {
		if math.Abs(float64(s-side)) < math.Abs(float64(thumbnailSides[best]-side)) {
			best = i
		}
	}
	return best
}

func (z *thumbnailZoom) side() float32 {
	return thumbnailSides[z.level]
}

// step moves n levels and reports whether the side changed.
func (z *thumbnailZoom) step(n int) bool {
	return z.setLevel(z.level + n)
}

func (z *thumbnailZoom) setLevel(level int) bool {
	level = max(0, min(level, len(thumbnailSides)-1))
	if level == z.level {
		return false
	}
	z.level = level
	if z.prefs != nil {
		z.prefs.SetFloat(thumbnailSideKey, float64(z.side()))
	}
	return true
}

// pixels is the size of a thumbnail in device pixels on a canvas of the given scale.
func (z *thumbnailZoom) pixels(scale float32) fyne.Size {
	if scale <= 0 {
		scale = 1
	}
	return fyne.NewSquareSize(float32(math.Round(float64(z.side() * scale))))
}

// notchCounter turns scroll deltas into whole wheel notches. Touchpads send
// small deltas, the remainder carries over to the next event.
type notchCounter struct {
	acc float32
}

func (n *notchCounter) add(dy float32) int {
	if math.IsNaN(float64(dy)) || math.IsInf(float64(dy), 0) {
		return 0
	}
	n.acc += dy
	notches := int(n.acc / wheelNotch)
	n.acc -= float32(notches) * wheelNotch
	return notches
}

func zoomModifierHeld() bool {
	d, ok := fyne.CurrentApp().Driver().(desktop.Driver)
	if !ok {
		return false
	}
	// Control, or Command on macOS.
	return d.CurrentKeyModifiers()&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
}

// zoomOverlay covers the grid and only claims scroll events while the zoom
// modifier is held, so plain scrolling still reaches the grid. Each notch is
// one zoom step; onZoom receives the new thumbnail side.
type zoomOverlay struct {
	widget.BaseWidget

	zoom    *thumbnailZoom
	notches notchCounter
	onZoom  func(side float32)
}

var _ fyne.Scrollable = (*zoomOverlay)(nil)

func newZoomOverlay(zoom *thumbnailZoom, onZoom func(side float32)) *zoomOverlay {
	o := &zoomOverlay{zoom: zoom, onZoom: onZoom}
	o.ExtendBaseWidget(o)
	return o
}

func (o *zoomOverlay) Visible() bool {
	return o.BaseWidget.Visible() && zoomModifierHeld()
}

func (o *zoomOverlay) Scrolled(e *fyne.ScrollEvent) {
	n := o.notches.add(e.Scrolled.DY)
	if n == 0 || !o.zoom.step(n) {
		return
	}
	if o.onZoom != nil {
		o.onZoom(o.zoom.side())
	}
}

func (o *zoomOverlay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}
