package state

// Element is a unit of the document: a stroke, a chartlet or a clear
// marker. Only types in this package implement it.
type Element interface {
	elementMarker()

	// Idx returns the position assigned when the element was finished.
	// Zero means not finished yet.
	Idx() int
	setIndex(int)

	// Author returns the site id of whoever created the element.
	Author() string
}

// Chartlet places a texture on the canvas.
type Chartlet struct {
	Index     int
	Center    Point
	Width     float32
	Height    float32
	TextureID string
	Angle     float32
	Owner     string
}

func (*Chartlet) elementMarker()   {}
func (c *Chartlet) Idx() int       { return c.Index }
func (c *Chartlet) setIndex(i int) { c.Index = i }
func (c *Chartlet) Author() string { return c.Owner }

// Bounds returns the axis aligned box the unrotated chartlet covers.
func (c *Chartlet) Bounds() Rect {
	return Rect{
		Min: Point{c.Center.X - c.Width/2, c.Center.Y - c.Height/2},
		Max: Point{c.Center.X + c.Width/2, c.Center.Y + c.Height/2},
	}
}

// ClearMarker records a clear of the canvas. Everything before it is
// hidden until the marker is undone.
type ClearMarker struct {
	Index int
	Owner string
}

func (*ClearMarker) elementMarker()   {}
func (m *ClearMarker) Idx() int       { return m.Index }
func (m *ClearMarker) setIndex(i int) { m.Index = i }
func (m *ClearMarker) Author() string { return m.Owner }
