package state

// Rect is an axis aligned rectangle in canvas coordinates. The zero Rect
// is empty.
type Rect struct {
	Min, Max Point
}

func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Union returns the smallest rectangle covering r and s.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Min: Point{min(r.Min.X, s.Min.X), min(r.Min.Y, s.Min.Y)},
		Max: Point{max(r.Max.X, s.Max.X), max(r.Max.Y, s.Max.Y)},
	}
}

// Pad grows r by d on every side.
func (r Rect) Pad(d float32) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

// Bounds returns the area covered by the stroke's sprites, padded by half
// the largest sprite size.
func (s *Stroke) Bounds() Rect {
	if len(s.Segments) == 0 {
		return Rect{}
	}
	first := s.Segments[0].Begin
	minX, minY, maxX, maxY := first.X, first.Y, first.X, first.Y
	var size float32
	for _, seg := range s.Segments {
		for _, p := range [2]Point{seg.Begin, seg.End} {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
		size = max(size, seg.PointSize)
	}
	return Rect{Min: Point{minX, minY}, Max: Point{maxX, maxY}}.Pad(size / 2)
}

// ElementBounds returns the canvas area an element draws on. Clear
// markers cover nothing.
func ElementBounds(e Element) Rect {
	switch e := e.(type) {
	case *Stroke:
		return e.Bounds()
	case *Chartlet:
		return e.Bounds()
	}
	return Rect{}
}
