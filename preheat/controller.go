package preheat

import (
	"image"
	"sync/atomic"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xmediagrid/assets"
)

// Controller wires scroll and cell events to the asset cache and the
// thumbnail fetcher. All methods must be called from the UI goroutine.
type Controller struct {
	// OnCacheWindowUpdated is called after each cache window change with the
	// positions that entered and left the window.
	OnCacheWindowUpdated func(added, removed []int)
	// OnImageReady is called once per live fetch with the thumbnail, or nil
	// if none could be produced.
	OnImageReady func(pos int, img image.Image)

	tracker WindowTracker
	state   PreheatWindowState
	cache   *CacheManager
	fetch   *FetchCoordinator

	snap    atomic.Pointer[assets.Snapshot]
	geom    GridGeometry
	visible Rect
}

// NewController builds a Controller over an asset cache and an image decoder.
// Often both are the same assets.ThumbnailCache.
func NewController(cache AssetCache, decoder ImageDecoder, opts Options, fetchOpts ...FetchOption) *Controller {
	c := &Controller{
		tracker: NewWindowTracker(opts),
		cache:   NewCacheManager(cache),
	}
	c.fetch = NewFetchCoordinator(decoder, c.lookup, c.imageReady, fetchOpts...)
	return c
}

func (c *Controller) lookup(pos int) (assets.ID, bool) {
	return c.snap.Load().ID(pos)
}

func (c *Controller) imageReady(pos int, img image.Image) {
	if c.OnImageReady != nil {
		c.OnImageReady(pos, img)
	}
}

// Snapshot returns the assets currently shown.
func (c *Controller) Snapshot() *assets.Snapshot {
	return c.snap.Load()
}

// State returns the current preheat window state.
func (c *Controller) State() PreheatWindowState {
	return c.state
}

// Fetcher exposes the fetch coordinator for status queries.
func (c *Controller) Fetcher() *FetchCoordinator {
	return c.fetch
}

// SetSnapshot replaces the assets wholesale. Outstanding fetches are
// cancelled and the cache window is rebuilt from scratch.
func (c *Controller) SetSnapshot(snap *assets.Snapshot) {
	c.fetch.CancelAll()
	c.snap.Store(snap)
	c.ResetWindow()
	c.refresh()
}

// SetGeometry replaces the grid layout, e.g. after a resize or zoom.
func (c *Controller) SetGeometry(g GridGeometry) {
	c.geom = g
	c.ResetWindow()
	c.refresh()
}

// SetThumbnailSize sets the pixel size requested from the cache.
func (c *Controller) SetThumbnailSize(size fyne.Size) {
	if size == c.state.ThumbnailSize {
		return
	}
	c.state.ThumbnailSize = size
	c.ResetWindow()
	c.refresh()
}

// VisibleRectChanged moves the cache window along with the viewport once
// it has travelled far enough.
func (c *Controller) VisibleRectChanged(visible Rect) {
	c.visible = visible.Clamped()
	snap := c.snap.Load()
	if c.geom == nil || snap == nil {
		return
	}

	next, ok := c.tracker.Update(c.state, c.visible)
	if !ok {
		return
	}

	addedRects, removedRects := Diff(c.state.PreviousRect, next)
	added := PositionsInAll(addedRects, c.geom)
	removed := PositionsInAll(removedRects, c.geom)
	c.cache.Apply(snap, added, removed, c.state.ThumbnailSize)
	c.state = c.state.Commit(next)

	if c.OnCacheWindowUpdated != nil {
		c.OnCacheWindowUpdated(added, removed)
	}
}

// ResetWindow clears the asset cache and forgets the previous window, so the
// next VisibleRectChanged rebuilds it.
func (c *Controller) ResetWindow() {
	c.cache.Reset()
	c.state = c.state.Reset()
}

func (c *Controller) refresh() {
	if !c.visible.Empty() {
		c.VisibleRectChanged(c.visible)
	}
}

// ItemWillAppear starts the thumbnail fetch for pos.
func (c *Controller) ItemWillAppear(pos int) Generation {
	return c.fetch.Request(pos, c.state.ThumbnailSize)
}

// ItemDidDisappear cancels delivery for pos.
func (c *Controller) ItemDidDisappear(pos int) {
	c.fetch.Cancel(pos)
}
