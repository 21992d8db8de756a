package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"BrushBoard/internal/brush"
)

// Palette is the set of swatches shown in the toolbar.
var Palette = []color.NRGBA{
	{A: 255},
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the brush, color and size controls and the document
// actions for b. Dialogs open on win.
func NewToolbar(b *BoardWidget, win fyne.Window) fyne.CanvasObject {
	reg := b.Canvas().Brushes()

	sizeSlider := widget.NewSlider(1, 50)
	sizeSlider.Step = 0.5
	sizeSlider.SetValue(float64(reg.Current().Config().PointSize))
	sizeSlider.OnChanged = func(val float64) {
		reg.Current().Config().PointSize = float32(val)
	}

	brushSelect := widget.NewSelect(brushNames(reg), func(name string) {
		if err := b.Canvas().UseBrush(name); err != nil {
			b.SetStatus(err.Error())
			return
		}
		sizeSlider.SetValue(float64(reg.Current().Config().PointSize))
	})
	brushSelect.SetSelected(reg.Current().Name())

	swatches := make([]fyne.CanvasObject, len(Palette))
	for i, c := range Palette {
		swatches[i] = newColorSwatch(c, func(c color.NRGBA) {
			reg.Current().Config().Color = c
		})
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), b.NewBoard),
		widget.NewToolbarAction(theme.ContentUndoIcon(), b.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), b.Redo),
		widget.NewToolbarAction(theme.DeleteIcon(), b.ClearBoard),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil || r == nil {
					return
				}
				b.LoadFromFile(r)
			}, win)
			d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			d.Show()
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil || w == nil {
					return
				}
				b.SaveToFile(w)
			}, win)
			d.SetFileName("board.json")
			d.Show()
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil || w == nil {
					return
				}
				b.ExportPDF(w)
			}, win)
			d.SetFileName("board.pdf")
			d.Show()
		}),
	)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Brush:"),
		brushSelect,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		container.NewHBox(swatches...),
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider),
		layout.NewSpacer(),
	)
}

func brushNames(reg *brush.Registry) []string {
	all := reg.All()
	names := make([]string, len(all))
	for i, b := range all {
		names[i] = b.Name()
	}
	return names
}
