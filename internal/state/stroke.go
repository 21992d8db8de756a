package state

import (
	"image/color"
	"math/rand/v2"
	"slices"
)

// Stroke is a line strip: the segments produced by one gesture with one
// brush. Segments are only ever appended.
type Stroke struct {
	Index int
	// BrushName is resolved against the brush registry when drawing.
	BrushName string
	// Color is used by segments without their own color.
	Color    color.NRGBA
	Owner    string
	Rotation Rotation
	Segments []Segment

	vertices []Vertex
	built    int // segments already expanded into vertices
	scale    float32
	rebuilds int
	rnd      func() float32
}

func NewStroke(brushName string, base color.NRGBA, rot Rotation, segs ...Segment) *Stroke {
	return &Stroke{
		BrushName: brushName,
		Color:     base,
		Rotation:  rot,
		Segments:  slices.Clone(segs),
		rnd:       rand.Float32,
	}
}

func (*Stroke) elementMarker()   {}
func (s *Stroke) Idx() int       { return s.Index }
func (s *Stroke) setIndex(i int) { s.Index = i }
func (s *Stroke) Author() string { return s.Owner }

// Append adds segments and marks the vertex buffer stale. The buffer is
// rebuilt on the next call to Vertices.
func (s *Stroke) Append(segs ...Segment) {
	s.Segments = append(s.Segments, segs...)
}

// Stale reports whether the next Vertices call has work to do.
func (s *Stroke) Stale() bool { return s.built != len(s.Segments) }

// Vertices returns the point-sprite buffer for the stroke at the given
// device scale, building it if segments were appended since the last call
// or the scale changed.
//
// A returned buffer is never written to again: rebuilding after an append
// copies the existing sprites into a new slice and expands only the new
// segments.
func (s *Stroke) Vertices(scale float32) []Vertex {
	if scale != s.scale {
		s.vertices, s.built, s.scale = nil, 0, scale
	}
	if !s.Stale() {
		return s.vertices
	}

	fresh := s.Segments[s.built:]
	est := 0
	for _, seg := range fresh {
		est += int(max(seg.Length()/max(seg.PointStep, 1), 1))
	}
	next := append(make([]Vertex, 0, len(s.vertices)+est), s.vertices...)
	rnd := s.rnd
	if rnd == nil {
		rnd = rand.Float32
	}
	s.vertices = appendVertices(next, fresh, s.Color, s.Rotation, scale, rnd)
	s.built = len(s.Segments)
	s.rebuilds++
	return s.vertices
}

// Rebuilds counts how many times the vertex buffer was (re)built.
func (s *Stroke) Rebuilds() int { return s.rebuilds }

// Clone returns a copy sharing no segment storage with s. The vertex
// cache is not copied.
func (s *Stroke) Clone() *Stroke {
	c := NewStroke(s.BrushName, s.Color, s.Rotation, s.Segments...)
	c.Index = s.Index
	c.Owner = s.Owner
	for i, seg := range c.Segments {
		if seg.Color != nil {
			col := *seg.Color
			c.Segments[i].Color = &col
		}
	}
	return c
}
