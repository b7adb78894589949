package preheat

import (
	"math"

	"fyne.io/fyne/v2"
)

const (
	bufferFactorKey    = "xmediagrid:preheatBufferFactor"
	updateThresholdKey = "xmediagrid:preheatUpdateThreshold"
)

// Defaults for Options.
const (
	DefaultBufferFactor    = 0.5
	DefaultUpdateThreshold = float32(1.0 / 3.0)
)

// Options tunes the preheat window.
type Options struct {
	// BufferFactor is how much of the visible height is added above and
	// below the visible rect. 0.5 gives a window twice the visible area.
	BufferFactor float32

	// UpdateThreshold is the fraction of the viewport height the window
	// center must move before the cache window is recomputed.
	UpdateThreshold float32
}

func DefaultOptions() Options {
	return Options{
		BufferFactor:    DefaultBufferFactor,
		UpdateThreshold: DefaultUpdateThreshold,
	}
}

// LoadOptions reads Options from the app preferences, falling back to the
// defaults for missing or invalid values.
func LoadOptions(prefs fyne.Preferences) Options {
	o := DefaultOptions()
	if prefs == nil {
		return o
	}
	o.BufferFactor = float32(prefs.FloatWithFallback(bufferFactorKey, float64(o.BufferFactor)))
	o.UpdateThreshold = float32(prefs.FloatWithFallback(updateThresholdKey, float64(o.UpdateThreshold)))
	return o.normalized()
}

// Save stores o in the app preferences.
func (o Options) Save(prefs fyne.Preferences) {
	o = o.normalized()
	prefs.SetFloat(bufferFactorKey, float64(o.BufferFactor))
	prefs.SetFloat(updateThresholdKey, float64(o.UpdateThreshold))
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if !validFactor(o.BufferFactor) {
		o.BufferFactor = d.BufferFactor
	}
	if !validFactor(o.UpdateThreshold) {
		o.UpdateThreshold = d.UpdateThreshold
	}
	return o
}

func validFactor(f float32) bool {
	v := float64(f)
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
