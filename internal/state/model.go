package state

import (
	"image/color"
	"time"

	"github.com/chewxy/math32"
)

// Point is a position in canvas-local coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(s float32) Point { return Point{p.X * s, p.Y * s} }

// Mid returns the point halfway between p and q.
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Lerp interpolates from p (t=0) to q (t=1).
func (p Point) Lerp(q Point, t float32) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float32 {
	return math32.Hypot(q.X-p.X, q.Y-p.Y)
}

// Sample is a resampled point along a smoothed path.
type Sample struct {
	Point
	Pressure float32
	Time     time.Time
}

// NewSample builds a sample, clamping pressure to [0, 1].
func NewSample(p Point, pressure float32, at time.Time) Sample {
	return Sample{Point: p, Pressure: clampUnit(pressure), Time: at}
}

func clampUnit(v float32) float32 {
	switch {
	case v < 0 || math32.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

// MinPointStep is the smallest sprite spacing a segment may carry.
const MinPointStep = 1e-2

// Segment is one drawable span of a stroke.
type Segment struct {
	Begin     Point
	End       Point
	PointSize float32
	PointStep float32
	// Color overrides the stroke color when set.
	Color *color.NRGBA
}

func (s Segment) Length() float32 { return s.Begin.Distance(s.End) }

// Angle is the direction of travel from Begin to End, in radians.
func (s Segment) Angle() float32 {
	return math32.Atan2(s.End.Y-s.Begin.Y, s.End.X-s.Begin.X)
}

type RotationKind uint8

const (
	RotationFixed RotationKind = iota
	RotationRandom
	RotationAhead
)

func (k RotationKind) String() string {
	switch k {
	case RotationRandom:
		return "random"
	case RotationAhead:
		return "ahead"
	}
	return "fixed"
}

// Rotation decides the angle of each sprite. Angle is only read for
// RotationFixed.
type Rotation struct {
	Kind  RotationKind
	Angle float32
}

func FixedRotation(angle float32) Rotation { return Rotation{Kind: RotationFixed, Angle: angle} }

// BlendMode tells the render target how a stroke composites.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	// BlendErase removes destination coverage (reverse subtract).
	BlendErase
)

// Vertex is one point sprite in a vertex buffer.
type Vertex struct {
	Position Point
	Size     float32
	Angle    float32
	Color    color.NRGBA
}
