// Package doc reads and writes the persisted form of a drawing.
//
// A document holds the visible elements of a history: strokes with their
// segments and chartlets. Brushes are stored by name and resolved again
// when the document is turned back into elements.
package doc

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"slices"

	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/logging"
	"BrushBoard/internal/state"
)

// Version is the document format written by Encode. Decode accepts only
// this version.
const Version = 1

type Info struct {
	Identifier string `json:"identifier"`
	Version    int    `json:"version"`
	Lines      int    `json:"lines"`
	Chartlets  int    `json:"chartlets"`
	Textures   int    `json:"textures"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Line struct {
	Begin     state.Point `json:"begin"`
	End       state.Point `json:"end"`
	PointSize float32     `json:"pointSize"`
	PointStep float32     `json:"pointStep"`
	Color     string      `json:"color,omitempty"`
}

type Stroke struct {
	Index int    `json:"index"`
	Brush string `json:"brush"`
	Color string `json:"color"`
	Owner string `json:"owner,omitempty"`
	Lines []Line `json:"lines"`
}

type Chartlet struct {
	Index   int         `json:"index"`
	Center  state.Point `json:"center"`
	Width   float32     `json:"width"`
	Height  float32     `json:"height"`
	Texture string      `json:"texture"`
	Angle   float32     `json:"angle"`
	Owner   string      `json:"owner,omitempty"`
}

type Document struct {
	Info      Info       `json:"info"`
	Size      Size       `json:"size"`
	Strokes   []Stroke   `json:"strokes"`
	Chartlets []Chartlet `json:"chartlets"`
}

// DecodeError reports a document that is malformed or of another format
// version.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode document: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// UnresolvedBrushError reports a stroke whose brush is not registered.
type UnresolvedBrushError struct {
	Name  string
	Index int
}

func (e *UnresolvedBrushError) Error() string {
	return fmt.Sprintf("stroke %d: brush %q is not registered", e.Index, e.Name)
}

// BrushFinder looks brushes up by name. *brush.Registry implements it.
type BrushFinder interface {
	Find(name string) (brush.Brush, bool)
}

// FromHistory builds a document from the visible elements of h with a
// fresh identifier.
func FromHistory(h *state.History, size image.Point) *Document {
	d := &Document{
		Info: Info{Identifier: uuid.NewString(), Version: Version},
		Size: Size{Width: size.X, Height: size.Y},
	}
	textures := make(map[string]struct{})
	for _, e := range h.Visible() {
		switch e := e.(type) {
		case *state.Stroke:
			d.Strokes = append(d.Strokes, StrokeFrom(e))
		case *state.Chartlet:
			d.Chartlets = append(d.Chartlets, ChartletFrom(e))
			textures[e.TextureID] = struct{}{}
		}
	}
	d.Info.Lines = len(d.Strokes)
	d.Info.Chartlets = len(d.Chartlets)
	d.Info.Textures = len(textures)
	return d
}

// StrokeFrom returns the persisted form of s.
func StrokeFrom(s *state.Stroke) Stroke {
	out := Stroke{
		Index: s.Index,
		Brush: s.BrushName,
		Color: formatColor(s.Color),
		Owner: s.Owner,
		Lines: make([]Line, len(s.Segments)),
	}
	for i, seg := range s.Segments {
		out.Lines[i] = Line{
			Begin:     seg.Begin,
			End:       seg.End,
			PointSize: seg.PointSize,
			PointStep: seg.PointStep,
		}
		if seg.Color != nil {
			out.Lines[i].Color = formatColor(*seg.Color)
		}
	}
	return out
}

// ChartletFrom returns the persisted form of c.
func ChartletFrom(c *state.Chartlet) Chartlet {
	return Chartlet{
		Index:   c.Index,
		Center:  c.Center,
		Width:   c.Width,
		Height:  c.Height,
		Texture: c.TextureID,
		Angle:   c.Angle,
		Owner:   c.Owner,
	}
}

// Encode writes d as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Decode reads a document and checks its version and colors. Any failure
// is a *DecodeError.
func Decode(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if d.Info.Version != Version {
		return nil, &DecodeError{Err: fmt.Errorf("unsupported format version %d", d.Info.Version)}
	}
	for _, s := range d.Strokes {
		if _, err := parseColor(s.Color); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("stroke %d: %w", s.Index, err)}
		}
		for _, l := range s.Lines {
			if err := l.validate(); err != nil {
				return nil, &DecodeError{Err: fmt.Errorf("stroke %d: %w", s.Index, err)}
			}
		}
	}
	return &d, nil
}

// Elements turns the document back into finished elements ordered by
// index. Every stroke's brush must be found by brushes; its rotation
// comes from the brush found.
func (d *Document) Elements(brushes BrushFinder) ([]state.Element, error) {
	out := make([]state.Element, 0, len(d.Strokes)+len(d.Chartlets))
	for _, s := range d.Strokes {
		e, err := s.Element(brushes)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	for _, c := range d.Chartlets {
		out = append(out, c.Element())
	}
	slices.SortStableFunc(out, func(a, b state.Element) int { return cmp.Compare(a.Idx(), b.Idx()) })
	return out, nil
}

// Element resolves the stroke's brush and rebuilds the stroke. It fails
// with *UnresolvedBrushError when the brush is unknown and *DecodeError
// when a color does not parse.
func (s Stroke) Element(brushes BrushFinder) (*state.Stroke, error) {
	b, ok := brushes.Find(s.Brush)
	if !ok {
		return nil, &UnresolvedBrushError{Name: s.Brush, Index: s.Index}
	}
	base, err := parseColor(s.Color)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	segs := make([]state.Segment, len(s.Lines))
	for i, l := range s.Lines {
		if err := l.validate(); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("stroke %d: %w", s.Index, err)}
		}
		segs[i] = state.Segment{
			Begin:     l.Begin,
			End:       l.End,
			PointSize: l.PointSize,
			PointStep: l.PointStep,
		}
		if l.Color != "" {
			c, err := parseColor(l.Color)
			if err != nil {
				return nil, &DecodeError{Err: err}
			}
			segs[i].Color = &c
		}
	}
	out := state.NewStroke(b.Name(), base, b.Config().Rotation, segs...)
	out.Index = s.Index
	out.Owner = s.Owner
	return out, nil
}

func (c Chartlet) Element() *state.Chartlet {
	return &state.Chartlet{
		Index:     c.Index,
		Center:    c.Center,
		Width:     c.Width,
		Height:    c.Height,
		TextureID: c.Texture,
		Angle:     c.Angle,
		Owner:     c.Owner,
	}
}

// SaveFile writes the visible content of h to path.
func SaveFile(path string, h *state.History, size image.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	d := FromHistory(h, size)
	if err := d.Encode(f); err != nil {
		f.Close()
		return err
	}
	logging.Logger().Info("document saved", "path", path, "lines", d.Info.Lines, "chartlets", d.Info.Chartlets)
	return f.Close()
}

// LoadFile reads the document at path and resolves its elements.
func LoadFile(path string, brushes BrushFinder) (*Document, []state.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return nil, nil, err
	}
	elements, err := d.Elements(brushes)
	if err != nil {
		return nil, nil, err
	}
	logging.Logger().Info("document loaded", "path", path, "id", d.Info.Identifier, "elements", len(elements))
	return d, elements, nil
}

// validate rejects lines that cannot be drawn or would expand to an
// unbounded number of sprites.
func (l Line) validate() error {
	for _, v := range []float32{l.Begin.X, l.Begin.Y, l.End.X, l.End.Y, l.PointSize, l.PointStep} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return errors.New("line has a non-finite value")
		}
	}
	if l.PointSize < 0 {
		return fmt.Errorf("negative point size %g", l.PointSize)
	}
	if l.PointStep < state.MinPointStep {
		return fmt.Errorf("point step %g below %g", l.PointStep, state.MinPointStep)
	}
	if l.Color != "" {
		if _, err := parseColor(l.Color); err != nil {
			return err
		}
	}
	return nil
}

func formatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

var errBadColor = errors.New("color must be #rrggbb or #rrggbbaa")

func parseColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = errBadColor
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%q: %w", s, errBadColor)
	}
	return c, nil
}
