package gallery

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func TestNotchCounter(t *testing.T) {
	var n notchCounter

	if got := n.add(25); got != 0 {
		t.Errorf("Expected no notch for a partial scroll, got %d", got)
	}
	if got := n.add(25); got != 1 {
		t.Errorf("Expected the remainder to complete a notch, got %d", got)
	}
	if got := n.add(-90); got != -2 {
		t.Errorf("Expected two notches back, got %d", got)
	}
	if got := n.add(float32(math.NaN())); got != 0 {
		t.Errorf("Expected NaN to be ignored, got %d", got)
	}
	if got := n.add(float32(math.Inf(1))); got != 0 {
		t.Errorf("Expected Inf to be ignored, got %d", got)
	}
}

func TestNearestSide(t *testing.T) {
	tests := []struct {
		side float32
		want float32
	}{
		{128, 128},
		{100, 96},
		{1000, 256},
		{-5, 128},
		{float32(math.NaN()), 128},
	}
	for _, tt := range tests {
		if got := thumbnailSides[nearestSide(tt.side)]; got != tt.want {
			t.Errorf("nearestSide(%v) = %v, want %v", tt.side, got, tt.want)
		}
	}
}

func TestThumbnailZoom_StepAndPersist(t *testing.T) {
	a := test.NewApp()
	prefs := a.Preferences()

	z := newThumbnailZoom(prefs)
	if z.side() != defaultThumbnailSide {
		t.Fatalf("Expected default side %d, got %v", defaultThumbnailSide, z.side())
	}

	if !z.step(1) || z.side() != 160 {
		t.Errorf("Expected one step up to 160, got %v", z.side())
	}
	if got := prefs.Float(thumbnailSideKey); got != 160 {
		t.Errorf("Expected side 160 to be saved, got %v", got)
	}

	if !z.step(-10) || z.side() != thumbnailSides[0] {
		t.Errorf("Expected clamping to the smallest side, got %v", z.side())
	}
	if z.step(-1) {
		t.Error("Stepping past the smallest side should report no change")
	}

	if restored := newThumbnailZoom(prefs); restored.side() != thumbnailSides[0] {
		t.Errorf("Expected the saved side to be restored, got %v", restored.side())
	}

	if got := z.pixels(2); got != fyne.NewSquareSize(128) {
		t.Errorf("Expected 128px on a 2x canvas, got %v", got)
	}
	if got := z.pixels(0); got != fyne.NewSquareSize(64) {
		t.Errorf("Expected an unset scale to count as 1, got %v", got)
	}
}

func TestZoomOverlay_ScrolledReportsSide(t *testing.T) {
	test.NewApp()

	z := newThumbnailZoom(nil)
	var sides []float32
	o := newZoomOverlay(z, func(side float32) { sides = append(sides, side) })

	o.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 20}})
	if len(sides) != 0 {
		t.Fatalf("Expected no zoom for half a notch, got %v", sides)
	}
	o.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 60}})
	if len(sides) != 1 || sides[0] != 192 {
		t.Errorf("Expected two steps to 192, got %v", sides)
	}

	// No report once the largest side is reached.
	o.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 400}})
	o.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 40}})
	if len(sides) != 2 || sides[1] != 256 {
		t.Errorf("Expected a single report at the largest side, got %v", sides)
	}
}
