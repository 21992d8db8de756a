// Package export renders documents to other formats.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/logging"
	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

// BrushFinder looks brushes up by name. *brush.Registry implements it.
type BrushFinder interface {
	Find(name string) (brush.Brush, bool)
}

type Options struct {
	// Background fills the page and is the color erased sprites take.
	Background color.NRGBA
	// Margin around the drawing, in points.
	Margin float64
}

// DefaultOptions is a white page with a 20 point margin.
func DefaultOptions() Options {
	return Options{Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Margin: 20}
}

// WritePDF draws elements on a single page sized to fit them, one filled
// circle per sprite, and writes the PDF to w. Clear markers are ignored;
// pass the visible elements.
func WritePDF(w io.Writer, elements []state.Element, brushes BrushFinder, textures *render.Textures, opts Options) error {
	var bounds state.Rect
	for _, e := range elements {
		bounds = bounds.Union(state.ElementBounds(e))
	}
	if bounds.Empty() {
		bounds = state.Rect{Max: state.Point{X: 595, Y: 842}}
	}
	width := float64(bounds.Width()) + 2*opts.Margin
	height := float64(bounds.Height()) + 2*opts.Margin
	dx := opts.Margin - float64(bounds.Min.X)
	dy := opts.Margin - float64(bounds.Min.Y)

	p := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetCreator("BrushBoard", true)
	p.AddPage()

	bg := opts.Background
	p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.Rect(0, 0, width, height, "F")

	for _, e := range elements {
		switch e := e.(type) {
		case *state.Stroke:
			erase := false
			if b, ok := brushes.Find(e.BrushName); ok {
				erase = b.Blend() == state.BlendErase
			}
			for _, v := range state.BuildVertices(e.Segments, e.Color, e.Rotation, 1) {
				c := v.Color
				if erase {
					c.R, c.G, c.B = bg.R, bg.G, bg.B
				}
				p.SetFillColor(int(c.R), int(c.G), int(c.B))
				p.SetAlpha(float64(c.A)/0xff, "Normal")
				p.Circle(float64(v.Position.X)+dx, float64(v.Position.Y)+dy, float64(v.Size)/2, "F")
			}
			p.SetAlpha(1, "Normal")
		case *state.Chartlet:
			if err := drawChartlet(p, e, textures, dx, dy); err != nil {
				logging.Logger().Warn("chartlet skipped in pdf", "index", e.Index, "err", err)
			}
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func drawChartlet(p *gofpdf.Fpdf, c *state.Chartlet, textures *render.Textures, dx, dy float64) error {
	img, ok := textures.Find(c.TextureID)
	if !ok {
		return &render.ResourceError{ID: c.TextureID}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return &render.ResourceError{ID: c.TextureID, Err: err}
	}
	name := "chartlet-" + c.TextureID
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	if p.GetImageInfo(name) == nil {
		p.RegisterImageOptionsReader(name, opts, &buf)
	}
	if err := p.Error(); err != nil {
		return err
	}

	cx, cy := float64(c.Center.X)+dx, float64(c.Center.Y)+dy
	w, h := float64(c.Width), float64(c.Height)
	p.TransformBegin()
	p.TransformRotate(-float64(c.Angle)*180/math.Pi, cx, cy)
	p.ImageOptions(name, cx-w/2, cy-h/2, w, h, false, opts, 0, "")
	p.TransformEnd()
	return nil
}

// WritePDFFile is WritePDF to a file at path.
func WritePDFFile(path string, elements []state.Element, brushes BrushFinder, textures *render.Textures, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePDF(f, elements, brushes, textures, opts); err != nil {
		f.Close()
		return err
	}
	logging.Logger().Info("pdf exported", "path", path, "elements", len(elements))
	return f.Close()
}
