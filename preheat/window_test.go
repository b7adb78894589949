package preheat

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func TestWindowTracker_PreheatRect(t *testing.T) {
	tr := NewWindowTracker(DefaultOptions())
	got := tr.PreheatRect(NewRect(0, 0, 300, 300))
	if got != NewRect(0, -150, 300, 600) {
		t.Errorf("Unexpected preheat rect %s", got)
	}
}

func TestWindowTracker_FirstUpdateAlwaysTriggers(t *testing.T) {
	tr := NewWindowTracker(DefaultOptions())
	var s PreheatWindowState

	if !tr.ShouldUpdate(s, NewRect(0, 0, 10, 10), 300) {
		t.Error("Expected an update with no previous window")
	}
	if tr.ShouldUpdate(s, ZeroRect, 300) {
		t.Error("An empty candidate should never trigger")
	}
}

func TestWindowTracker_Threshold(t *testing.T) {
	tr := NewWindowTracker(Options{BufferFactor: 0.5, UpdateThreshold: 0.25})
	s := PreheatWindowState{}.Commit(NewRect(0, -150, 300, 600))

	// A quarter of 400 is 100.
	if tr.ShouldUpdate(s, NewRect(0, -50, 300, 600), 400) {
		t.Error("A move equal to the threshold should not trigger")
	}
	if tr.ShouldUpdate(s, NewRect(0, -250, 300, 600), 400) {
		t.Error("An upward move equal to the threshold should not trigger")
	}
	if !tr.ShouldUpdate(s, NewRect(0, -49, 300, 600), 400) {
		t.Error("A move past the threshold should trigger")
	}
	if !tr.ShouldUpdate(s, NewRect(0, -251, 300, 600), 400) {
		t.Error("An upward move past the threshold should trigger")
	}
}

func TestWindowTracker_Update(t *testing.T) {
	tr := NewWindowTracker(DefaultOptions())
	var s PreheatWindowState

	next, ok := tr.Update(s, NewRect(0, 0, 300, 300))
	if !ok || next != NewRect(0, -150, 300, 600) {
		t.Fatalf("Unexpected first update %s (ok=%v)", next, ok)
	}
	s = s.Commit(next)

	// 90 is below a third of 300.
	if _, ok := tr.Update(s, NewRect(0, 90, 300, 300)); ok {
		t.Error("Small scroll should not trigger")
	}
	if next, ok := tr.Update(s, NewRect(0, 150, 300, 300)); !ok || next != NewRect(0, 0, 300, 600) {
		t.Errorf("Unexpected update after scrolling 150: %s (ok=%v)", next, ok)
	}

	if !s.Reset().PreviousRect.IsZero() {
		t.Error("Reset should restore the zero sentinel")
	}
}

func TestOptions_Preferences(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	prefs := a.Preferences()

	if got := LoadOptions(prefs); got != DefaultOptions() {
		t.Errorf("Expected defaults, got %+v", got)
	}

	Options{BufferFactor: 1, UpdateThreshold: 0.5}.Save(prefs)
	got := LoadOptions(prefs)
	if got.BufferFactor != 1 || got.UpdateThreshold != 0.5 {
		t.Errorf("Unexpected options after save %+v", got)
	}

	prefs.SetFloat(bufferFactorKey, -2)
	if got := LoadOptions(prefs); got.BufferFactor != DefaultBufferFactor {
		t.Errorf("Expected invalid buffer factor to fall back, got %g", got.BufferFactor)
	}
}

func TestPreheatWindowState_KeepsThumbnailSize(t *testing.T) {
	s := PreheatWindowState{ThumbnailSize: fyne.NewSize(256, 256)}
	s = s.Commit(NewRect(0, 0, 1, 1)).Reset()
	if s.ThumbnailSize != fyne.NewSize(256, 256) {
		t.Errorf("Thumbnail size lost: %v", s.ThumbnailSize)
	}
}
