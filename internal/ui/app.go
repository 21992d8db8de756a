package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type Options struct {
	Title string
	Size  fyne.Size
	// ShareLink is shown with a copy button when the board is shared.
	ShareLink string
	// OnClose runs after the window closed.
	OnClose func()
}

// RunApp shows b in a window of a and blocks until it is closed.
func RunApp(a fyne.App, b *BoardWidget, opts Options) {
	w := a.NewWindow(opts.Title)
	w.Resize(opts.Size)

	footer := []fyne.CanvasObject{b.StatusBar(), layout.NewSpacer()}
	if opts.ShareLink != "" {
		footer = append(footer,
			widget.NewLabel(opts.ShareLink),
			widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
				w.Clipboard().SetContent(opts.ShareLink)
				b.SetStatus("Share link copied")
			}),
		)
	}

	content := container.NewBorder(NewToolbar(b, w), container.NewHBox(footer...), nil, nil, b)
	w.SetContent(content)
	w.ShowAndRun()
	if opts.OnClose != nil {
		opts.OnClose()
	}
}
