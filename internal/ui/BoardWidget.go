package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	board "BrushBoard/internal/canvas"
	"BrushBoard/internal/doc"
	"BrushBoard/internal/export"
	"BrushBoard/internal/logging"
	boardnet "BrushBoard/internal/net"
	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

// BoardWidget shows a canvas and feeds it mouse gestures. All methods
// must run on the fyne goroutine; Deliver may be called from anywhere.
type BoardWidget struct {
	widget.BaseWidget

	canvas     *board.Canvas
	raster     *render.Raster
	background color.NRGBA

	drawing bool
	last    state.Point

	statusBar *widget.Label
	// OnChange is called after the document changed.
	OnChange func()
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget shows c, which must draw on raster.
func NewBoardWidget(c *board.Canvas, raster *render.Raster, background color.NRGBA) *BoardWidget {
	b := &BoardWidget{
		canvas:     c,
		raster:     raster,
		background: background,
		statusBar:  widget.NewLabel("Ready"),
	}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Canvas() *board.Canvas { return b.canvas }

// StatusBar returns the label SetStatus writes to.
func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus shows text in the status bar. Safe from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

func (b *BoardWidget) changed() {
	b.Refresh()
	if b.OnChange != nil {
		b.OnChange()
	}
}

// toPoint converts a widget position to canvas coordinates.
func (b *BoardWidget) toPoint(p fyne.Position) state.Point {
	return b.canvas.ViewToCanvas(state.Point{X: p.X, Y: p.Y})
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.drawing = true
	b.last = b.toPoint(e.Position)
	b.canvas.OnInputBegin(b.last, 1)
	b.Refresh()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.drawing {
		return
	}
	b.last = b.toPoint(e.Position)
	b.canvas.OnInputMove(b.last, 1)
	b.Refresh()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.drawing {
		return
	}
	b.drawing = false
	b.canvas.OnInputEnd(b.toPoint(e.Position), 1)
	b.changed()
}

// DragEnd ends a gesture whose release was not reported by MouseUp.
func (b *BoardWidget) DragEnd() {
	if !b.drawing {
		return
	}
	b.drawing = false
	b.canvas.OnInputEnd(b.last, 1)
	b.changed()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

// Scrolled zooms the board.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	zoom := b.canvas.Zoom()
	if e.Scrolled.DY > 0 {
		zoom *= 1.1
	} else {
		zoom /= 1.1
	}
	b.canvas.SetZoom(max(0.25, min(zoom, 4)))
	b.Refresh()
}

func (b *BoardWidget) Undo() {
	if b.canvas.Undo() {
		b.changed()
	}
}

func (b *BoardWidget) Redo() {
	if b.canvas.Redo() {
		b.changed()
	}
}

func (b *BoardWidget) ClearBoard() {
	if b.canvas.Clear() {
		b.changed()
	}
}

// NewBoard drops the document and starts an empty one. Observers such as
// a share outbox carry over.
func (b *BoardWidget) NewBoard() {
	b.canvas.ResetData(b.canvas.History().Observers())
	b.changed()
	b.SetStatus("New board")
}

// Deliver applies a message from a peer on the fyne goroutine.
func (b *BoardWidget) Deliver(m boardnet.Message) {
	e, err := m.Element(b.canvas.Brushes())
	if err != nil {
		logging.Logger().Warn("dropping peer message", "type", m.Type, "origin", m.Origin, "err", err)
		return
	}
	fyne.Do(func() {
		b.canvas.ApplyRemote(e)
		b.Refresh()
	})
}

// SaveToFile writes the visible document to writer and closes it.
func (b *BoardWidget) SaveToFile(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			logging.Logger().Warn("closing saved file failed", "err", err)
		}
	}()
	d := doc.FromHistory(b.canvas.History(), b.canvas.Size())
	if err := d.Encode(writer); err != nil {
		logging.Logger().Error("save failed", "uri", writer.URI().String(), "err", err)
		b.SetStatus("Error saving file")
		return
	}
	logging.Logger().Info("document saved", "uri", writer.URI().String(), "lines", d.Info.Lines)
	b.SetStatus(fmt.Sprintf("Saved %d drawings", d.Info.Lines+d.Info.Chartlets))
}

// LoadFromFile replaces the document with the one read from reader and
// closes it.
func (b *BoardWidget) LoadFromFile(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			logging.Logger().Warn("closing loaded file failed", "err", err)
		}
	}()
	d, err := doc.Decode(reader)
	if err != nil {
		logging.Logger().Error("load failed", "uri", reader.URI().String(), "err", err)
		b.SetStatus("Error parsing file - invalid format")
		return
	}
	elements, err := d.Elements(b.canvas.Brushes())
	if err != nil {
		logging.Logger().Error("load failed", "uri", reader.URI().String(), "err", err)
		b.SetStatus(err.Error())
		return
	}
	b.canvas.Load(elements)
	b.changed()
	logging.Logger().Info("document loaded", "uri", reader.URI().String(), "id", d.Info.Identifier, "elements", len(elements))
	b.SetStatus(fmt.Sprintf("Loaded %d drawings", len(elements)))
}

// ExportPDF writes the visible document as a PDF to writer and closes it.
func (b *BoardWidget) ExportPDF(writer fyne.URIWriteCloser) {
	defer writer.Close()
	opts := export.DefaultOptions()
	opts.Background = b.background
	err := export.WritePDF(writer, b.canvas.History().Visible(), b.canvas.Brushes(), b.canvas.Textures(), opts)
	if err != nil {
		logging.Logger().Error("pdf export failed", "uri", writer.URI().String(), "err", err)
		b.SetStatus("Error exporting PDF")
		return
	}
	b.SetStatus("Exported " + writer.URI().Name())
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(b.background)
	r.image = canvas.NewImageFromImage(b.raster.Frame())
	r.image.FillMode = canvas.ImageFillStretch
	r.image.ScaleMode = canvas.ImageScalePixels
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	image      *canvas.Image
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.image}
}

func (r *boardWidgetRenderer) Refresh() {
	r.image.Image = r.board.raster.Frame()
	r.image.Refresh()
}

// Layout sizes the drawing buffer to the widget in device pixels.
func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.image.Resize(size)

	scale := float32(1)
	if c := fyne.CurrentApp().Driver().CanvasForObject(r.board); c != nil {
		scale = c.Scale()
	}
	b := r.board.canvas
	b.SetScale(scale)
	b.Resize(image.Pt(int(math.Ceil(float64(size.Width*scale))), int(math.Ceil(float64(size.Height*scale)))))
	r.Refresh()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}
