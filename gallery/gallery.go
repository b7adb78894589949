// Package gallery is a scrolling thumbnail grid over a media library that
// keeps thumbnails decoded just ahead of the viewport.
package gallery

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/xmediagrid/assets"
	"github.com/alexballas/xmediagrid/preheat"
)

const pollInterval = 50 * time.Millisecond

// Thumbnails is the cache behind a Gallery. *assets.ThumbnailCache implements it.
type Thumbnails interface {
	preheat.AssetCache
	preheat.ImageDecoder
	Cached(id assets.ID, size fyne.Size) (image.Image, bool)
}

// coverSource is implemented by sources that can show a folder background.
type coverSource interface {
	Cover() (assets.Cover, bool)
}

// Gallery shows the assets of a Source in a zoomable grid.
type Gallery struct {
	widget.BaseWidget

	// OnSelected is called when an asset is tapped.
	OnSelected func(assets.Asset)

	source assets.Source
	thumbs Thumbnails
	ctrl   *preheat.Controller

	snap      *assets.Snapshot
	cells map[int]*mediaCell
	zoom  *thumbnailZoom

	grid    *widget.GridWrap
	header  *fyne.Container
	denied  *fyne.Container
	empty   *widget.Label
	content *fyne.Container

	lastOffset float32
	lastSize   fyne.Size
	lastGeom   preheat.Grid

	pollMu   sync.Mutex
	pollStop chan struct{}
}

// New creates a gallery over src. Call Reload to load it.
func New(src assets.Source, thumbs Thumbnails, opts preheat.Options) *Gallery {
	g := &Gallery{
		source: src,
		thumbs: thumbs,
		cells:  make(map[int]*mediaCell),
	}
	var prefs fyne.Preferences
	if a := fyne.CurrentApp(); a != nil {
		prefs = a.Preferences()
	}
	g.zoom = newThumbnailZoom(prefs)

	g.ctrl = preheat.NewController(thumbs, thumbs, opts)
	g.ctrl.OnImageReady = g.imageReady

	g.grid = widget.NewGridWrap(
		func() int { return g.snap.Len() },
		func() fyne.CanvasObject { return newMediaCell(g) },
		func(id widget.GridWrapItemID, o fyne.CanvasObject) {
			cell := o.(*mediaCell)
			if a, ok := g.snap.At(id); ok {
				cell.bind(id, a)
			}
		},
	)

	g.header = container.NewStack()
	g.header.Hide()

	g.empty = widget.NewLabel(lang.L("No photos or videos"))
	g.empty.Alignment = fyne.TextAlignCenter
	g.empty.Hide()

	g.denied = container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle(lang.L("Access to the media library was denied."), fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewButtonWithIcon(lang.L("Request Access"), theme.FolderOpenIcon(), g.requestAccess),
	))
	g.denied.Hide()

	overlay := newZoomOverlay(g.zoom, g.applyZoom)
	body := container.NewBorder(g.header, nil, nil, nil, container.NewStack(g.grid, overlay))
	g.content = container.NewStack(body, g.empty, g.denied)

	g.ExtendBaseWidget(g)
	return g
}

func (g *Gallery) CreateRenderer() fyne.WidgetRenderer {
	g.startPolling()
	return &galleryRenderer{WidgetRenderer: widget.NewSimpleRenderer(g.content), g: g}
}

type galleryRenderer struct {
	fyne.WidgetRenderer
	g *Gallery
}

func (r *galleryRenderer) Destroy() {
	r.g.stopPolling()
	r.WidgetRenderer.Destroy()
}

// Controller returns the preheat controller driving the cache.
func (g *Gallery) Controller() *preheat.Controller {
	return g.ctrl
}

// Snapshot returns the assets currently shown.
func (g *Gallery) Snapshot() *assets.Snapshot {
	return g.snap
}

// Close stops watching the viewport and cancels outstanding fetches.
func (g *Gallery) Close() {
	g.stopPolling()
	g.ctrl.Fetcher().CancelAll()
}

// Reload checks access and fetches the assets again in the background.
// Access is requested first if it was never asked for.
func (g *Gallery) Reload() {
	go func() {
		err := g.load(context.Background(), false)
		if err != nil && !errors.Is(err, assets.ErrNotAuthorized) {
			fyne.LogError("Failed to load media library", err)
		}
	}()
}

func (g *Gallery) requestAccess() {
	go func() {
		if err := g.load(context.Background(), true); err != nil && !errors.Is(err, assets.ErrNotAuthorized) {
			fyne.LogError("Failed to request media library access", err)
		}
	}()
}

func (g *Gallery) load(ctx context.Context, ask bool) error {
	status := g.source.AuthorizationStatus()
	if ask || status == assets.StatusNotDetermined {
		var err error
		status, err = g.source.RequestAuthorization(ctx)
		if err != nil && !status.Granted() {
			fyne.Do(func() { g.showDenied(true) })
			return err
		}
	}
	if !status.Granted() {
		fyne.Do(func() { g.showDenied(true) })
		return assets.ErrNotAuthorized
	}

	snap, err := assets.FetchSnapshot(ctx, g.source)
	if err != nil {
		return err
	}

	var cover assets.Cover
	hasCover := false
	if cs, ok := g.source.(coverSource); ok {
		cover, hasCover = cs.Cover()
	}

	fyne.Do(func() {
		g.showDenied(false)
		g.setCover(cover, hasCover)
		g.SetSnapshot(snap)
	})
	return nil
}

// SetSnapshot replaces the assets shown. Must be called on the UI goroutine.
func (g *Gallery) SetSnapshot(snap *assets.Snapshot) {
	for pos, cell := range g.cells {
		cell.unbind()
		delete(g.cells, pos)
	}
	g.snap = snap
	g.ctrl.SetSnapshot(snap)

	if snap.Len() == 0 {
		g.empty.Show()
	} else {
		g.empty.Hide()
	}
	g.grid.ScrollToTop()
	g.grid.Refresh()
	g.syncViewport()
}

func (g *Gallery) showDenied(denied bool) {
	if denied {
		g.denied.Show()
		g.empty.Hide()
	} else {
		g.denied.Hide()
	}
}

func (g *Gallery) setCover(cover assets.Cover, ok bool) {
	if !ok {
		g.header.Objects = nil
		g.header.Hide()
		return
	}

	var img *canvas.Image
	if cover.URI != nil {
		img = canvas.NewImageFromURI(cover.URI)
	} else {
		img = canvas.NewImageFromResource(cover.Resource)
	}
	img.FillMode = cover.Fill
	img.SetMinSize(fyne.NewSize(0, coverHeight))
	g.header.Objects = []fyne.CanvasObject{img}
	g.header.Show()
	g.header.Refresh()
}

func (g *Gallery) adjustZoom(steps int) {
	if steps != 0 && g.zoom.step(steps) {
		g.applyZoom(g.zoom.side())
	}
}

func (g *Gallery) setZoomLevel(level int) {
	if g.zoom.setLevel(level) {
		g.applyZoom(g.zoom.side())
	}
}

// applyZoom restarts the cache window for a new thumbnail side: bound cells
// are released, the controller gets the new pixel size and, once the grid
// has laid out the new cells, the new geometry.
func (g *Gallery) applyZoom(float32) {
	for pos, cell := range g.cells {
		cell.unbind()
		delete(g.cells, pos)
	}
	g.ctrl.SetThumbnailSize(g.thumbnailSize())
	g.grid.Refresh()

	size := g.grid.Size()
	if g.snap == nil || size.Width <= 0 || size.Height <= 0 {
		return
	}
	g.lastGeom, g.lastSize = g.geometry(), size
	g.ctrl.SetGeometry(g.lastGeom)
	g.syncViewport()
}

func (g *Gallery) cellSize() fyne.Size {
	return calculateCellSize(g.zoom.side())
}

// thumbnailSize is the pixel size of a cell's thumbnail on the current canvas.
func (g *Gallery) thumbnailSize() fyne.Size {
	var scale float32
	if c := fyne.CurrentApp().Driver().CanvasForObject(g.grid); c != nil {
		scale = c.Scale()
	}
	return g.zoom.pixels(scale)
}

func (g *Gallery) geometry() preheat.Grid {
	return preheat.Grid{
		Item:    g.cellSize(),
		Columns: max(g.grid.ColumnCount(), 1),
		Gap:     g.grid.Theme().Size(theme.SizeNamePadding),
		Count:   g.snap.Len(),
	}
}

// syncViewport feeds the current scroll position and layout to the controller.
func (g *Gallery) syncViewport() {
	size := g.grid.Size()
	if size.Width <= 0 || size.Height <= 0 || g.snap == nil {
		return
	}

	if ts := g.thumbnailSize(); ts != g.ctrl.State().ThumbnailSize {
		g.ctrl.SetThumbnailSize(ts)
	}
	if geom := g.geometry(); geom != g.lastGeom || size != g.lastSize {
		g.lastGeom, g.lastSize = geom, size
		g.ctrl.SetGeometry(geom)
	}

	g.lastOffset = g.grid.GetScrollOffset()
	g.ctrl.VisibleRectChanged(preheat.NewRect(0, g.lastOffset, size.Width, size.Height))
}

func (g *Gallery) startPolling() {
	g.pollMu.Lock()
	defer g.pollMu.Unlock()
	if g.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	g.pollStop = stop

	ticker := time.NewTicker(pollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fyne.Do(g.pollViewport)
			case <-stop:
				return
			}
		}
	}()
}

func (g *Gallery) stopPolling() {
	g.pollMu.Lock()
	defer g.pollMu.Unlock()
	if g.pollStop != nil {
		close(g.pollStop)
		g.pollStop = nil
	}
}

func (g *Gallery) pollViewport() {
	if g.grid.GetScrollOffset() == g.lastOffset && g.grid.Size() == g.lastSize && g.grid.ColumnCount() == g.lastGeom.Columns {
		return
	}
	g.syncViewport()
}

func (g *Gallery) cachedThumbnail(id assets.ID) (image.Image, bool) {
	size := g.ctrl.State().ThumbnailSize
	if size.IsZero() {
		size = g.thumbnailSize()
	}
	return g.thumbs.Cached(id, size)
}

// cellWillAppear registers cell at its position and, when fetch is set,
// starts loading its thumbnail.
func (g *Gallery) cellWillAppear(c *mediaCell, fetch bool) {
	g.cells[c.pos] = c
	if fetch {
		if g.ctrl.State().ThumbnailSize.IsZero() {
			g.ctrl.SetThumbnailSize(g.thumbnailSize())
		}
		g.ctrl.ItemWillAppear(c.pos)
	} else {
		g.ctrl.ItemDidDisappear(c.pos)
	}
}

func (g *Gallery) cellDidDisappear(c *mediaCell) {
	// A recycled cell may still carry a position another cell now shows.
	if g.cells[c.pos] != c {
		return
	}
	delete(g.cells, c.pos)
	g.ctrl.ItemDidDisappear(c.pos)
}

func (g *Gallery) imageReady(pos int, img image.Image) {
	if c, ok := g.cells[pos]; ok && c.pos == pos {
		c.setImage(img)
	}
}

func (g *Gallery) selected(pos int) {
	a, ok := g.snap.At(pos)
	if !ok || g.OnSelected == nil {
		return
	}
	g.OnSelected(a)
}
