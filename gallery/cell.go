package gallery

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/xmediagrid/assets"
)

// coverHeight is the height of the folder background header.
const coverHeight = 128

// calculateCellSize returns the size of one grid cell: a square thumbnail
// of the given side with a single line of text below it.
func calculateCellSize(side float32) fyne.Size {
	s, _ := fyne.CurrentApp().Driver().RenderedTextSize("A", theme.TextSize(), fyne.TextStyle{}, nil)
	return fyne.NewSize(side, side+s.Height+theme.Padding()*2)
}

func placeholderIcon(kind assets.MediaKind) fyne.Resource {
	if kind == assets.KindVideo {
		return theme.MediaVideoIcon()
	}
	return theme.FileImageIcon()
}

// mediaCell shows one asset. Cells are recycled by the grid; pos is the
// position the cell is currently bound to, -1 when unbound.
type mediaCell struct {
	widget.BaseWidget
	g *Gallery

	pos   int
	asset assets.Asset

	thumb       *canvas.Image
	placeholder *widget.Icon
	progress    *widget.ProgressBarInfinite
	name        *widget.Label
	durationBg  *canvas.Rectangle
	duration    *canvas.Text
}

func newMediaCell(g *Gallery) *mediaCell {
	c := &mediaCell{
		g:           g,
		pos:         -1,
		thumb:       canvas.NewImageFromImage(nil),
		placeholder: widget.NewIcon(nil),
		progress:    widget.NewProgressBarInfinite(),
		name:        widget.NewLabel(""),
		durationBg:  canvas.NewRectangle(color.NRGBA{A: 0x99}),
		duration:    canvas.NewText("", color.White),
	}
	c.thumb.FillMode = canvas.ImageFillContain
	c.thumb.Hide()
	c.progress.Stop()
	c.progress.Hide()
	c.name.Alignment = fyne.TextAlignCenter
	c.name.Truncation = fyne.TextTruncateEllipsis
	c.duration.TextSize = theme.CaptionTextSize()
	c.duration.TextStyle = fyne.TextStyle{Monospace: true}
	c.durationBg.Hide()
	c.duration.Hide()
	c.ExtendBaseWidget(c)
	return c
}

func (c *mediaCell) CreateRenderer() fyne.WidgetRenderer {
	return &mediaCellRenderer{cell: c}
}

// bind attaches the cell to the asset at pos. Rebinding to the same asset is
// a no-op so grid refreshes don't restart fetches.
func (c *mediaCell) bind(pos int, a assets.Asset) {
	if c.pos == pos && c.asset.ID == a.ID {
		return
	}
	if c.pos >= 0 {
		c.g.cellDidDisappear(c)
	}
	c.pos = pos
	c.asset = a

	c.name.SetText(a.Name)
	label := assets.FormatDuration(a.Duration)
	c.duration.Text = label
	if label == "" {
		c.durationBg.Hide()
		c.duration.Hide()
	} else {
		c.durationBg.Show()
		c.duration.Show()
	}

	c.thumb.Image = nil
	c.thumb.Hide()
	c.placeholder.SetResource(placeholderIcon(a.Kind))
	c.placeholder.Hide()

	if img, ok := c.g.cachedThumbnail(a.ID); ok {
		c.setImage(img)
		c.g.cellWillAppear(c, false)
		return
	}

	c.progress.Show()
	c.progress.Start()
	c.g.cellWillAppear(c, true)
	c.Refresh()
}

// unbind detaches the cell, e.g. when the snapshot is replaced.
func (c *mediaCell) unbind() {
	c.pos = -1
	c.asset = assets.Asset{}
	c.progress.Stop()
	c.progress.Hide()
}

// setImage shows img, or the placeholder icon when img is nil.
func (c *mediaCell) setImage(img image.Image) {
	c.progress.Stop()
	c.progress.Hide()
	if img == nil {
		c.thumb.Image = nil
		c.thumb.Hide()
		c.placeholder.Show()
	} else {
		c.thumb.Image = img
		c.thumb.Show()
		c.placeholder.Hide()
	}
	c.Refresh()
}

func (c *mediaCell) Tapped(*fyne.PointEvent) {
	if c.pos >= 0 {
		c.g.selected(c.pos)
	}
}

type mediaCellRenderer struct {
	cell *mediaCell
}

func (r *mediaCellRenderer) Layout(size fyne.Size) {
	c := r.cell
	side := size.Width
	thumbSize := fyne.NewSquareSize(side)

	c.thumb.Resize(thumbSize)
	c.thumb.Move(fyne.NewPos(0, 0))

	iconSize := fyne.NewSquareSize(side / 2)
	c.placeholder.Resize(iconSize)
	c.placeholder.Move(fyne.NewPos((side-iconSize.Width)/2, (side-iconSize.Height)/2))

	barHeight := c.progress.MinSize().Height
	c.progress.Resize(fyne.NewSize(side-theme.Padding()*4, barHeight))
	c.progress.Move(fyne.NewPos(theme.Padding()*2, (side-barHeight)/2))

	textSize := c.duration.MinSize()
	pad := theme.Padding()
	bgSize := fyne.NewSize(textSize.Width+pad*2, textSize.Height)
	bgPos := fyne.NewPos(side-bgSize.Width-pad, side-bgSize.Height-pad)
	c.durationBg.Resize(bgSize)
	c.durationBg.Move(bgPos)
	c.duration.Resize(textSize)
	c.duration.Move(bgPos.AddXY(pad, 0))

	c.name.Resize(fyne.NewSize(side, size.Height-side))
	c.name.Move(fyne.NewPos(0, side))
}

func (r *mediaCellRenderer) MinSize() fyne.Size {
	return r.cell.g.cellSize()
}

func (r *mediaCellRenderer) Refresh() {
	c := r.cell
	c.thumb.Refresh()
	c.placeholder.Refresh()
	c.progress.Refresh()
	c.name.Refresh()
	c.durationBg.Refresh()
	c.duration.Refresh()
	r.Layout(c.Size())
}

func (r *mediaCellRenderer) Objects() []fyne.CanvasObject {
	c := r.cell
	return []fyne.CanvasObject{c.placeholder, c.thumb, c.progress, c.durationBg, c.duration, c.name}
}

func (r *mediaCellRenderer) Destroy() {
	r.cell.progress.Stop()
}
