package state

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func seg(x0, y0, x1, y1, size, step float32) Segment {
	return Segment{Begin: Point{x0, y0}, End: Point{x1, y1}, PointSize: size, PointStep: step}
}

func TestBuildVertices(t *testing.T) {
	tests := []struct {
		name      string
		seg       Segment
		scale     float32
		positions []Point
	}{
		{"even spacing", seg(0, 0, 10, 0, 4, 2), 1, []Point{{0, 0}, {2, 0}, {4, 0}, {6, 0}, {8, 0}}},
		{"scaled", seg(0, 0, 10, 0, 4, 5), 2, []Point{{0, 0}, {5, 0}, {10, 0}, {15, 0}}},
		{"scaled down", seg(0, 0, 10, 0, 4, 2), 0.5, []Point{{0, 0}, {2, 0}}},
		{"shorter than step", seg(3, 3, 3.5, 3, 4, 2), 1, []Point{{3, 3}}},
		{"zero step", seg(0, 0, 2, 0, 4, 0), 1, []Point{{0, 0}, {1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := BuildVertices([]Segment{tt.seg}, black, FixedRotation(0), tt.scale)
			require.Len(t, vs, len(tt.positions))
			for i, v := range vs {
				assert.InDelta(t, tt.positions[i].X, v.Position.X, 1e-4)
				assert.InDelta(t, tt.positions[i].Y, v.Position.Y, 1e-4)
				assert.Equal(t, tt.seg.PointSize*tt.scale, v.Size)
				assert.Equal(t, black, v.Color)
			}
		})
	}
}

func TestBuildVerticesCapsSpritesPerSegment(t *testing.T) {
	vs := BuildVertices([]Segment{seg(0, 0, 1000, 0, 1, 1e-3)}, black, FixedRotation(0), 1)
	assert.Len(t, vs, MaxSegmentSprites)
	assert.InDelta(t, 0, vs[0].Position.X, 1e-4)
	assert.Less(t, vs[len(vs)-1].Position.X, float32(1000))
}

func TestBuildVerticesColorOverride(t *testing.T) {
	own := seg(0, 0, 4, 0, 2, 2)
	own.Color = &white
	vs := BuildVertices([]Segment{seg(0, 0, 4, 0, 2, 2), own}, black, FixedRotation(0), 1)
	require.Len(t, vs, 4)
	assert.Equal(t, black, vs[0].Color)
	assert.Equal(t, white, vs[3].Color)
}

func TestBuildVerticesRotation(t *testing.T) {
	segs := []Segment{seg(0, 0, 0, 10, 2, 1)}

	for _, v := range BuildVertices(segs, black, FixedRotation(0.7), 1) {
		assert.Equal(t, float32(0.7), v.Angle)
	}
	for _, v := range BuildVertices(segs, black, Rotation{Kind: RotationAhead}, 1) {
		assert.InDelta(t, math32.Pi/2, v.Angle, 1e-6)
	}
	for _, v := range BuildVertices(segs, black, Rotation{Kind: RotationRandom}, 1) {
		assert.GreaterOrEqual(t, v.Angle, -math32.Pi)
		assert.LessOrEqual(t, v.Angle, math32.Pi)
	}
}

func TestStrokeVertexCache(t *testing.T) {
	s := NewStroke("pen", black, Rotation{Kind: RotationRandom}, seg(0, 0, 10, 0, 2, 2))
	assert.True(t, s.Stale())

	first := s.Vertices(1)
	again := s.Vertices(1)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, s.Rebuilds())
	require.Len(t, first, 5)

	s.Append(seg(10, 0, 20, 0, 2, 2))
	assert.True(t, s.Stale())
	grown := s.Vertices(1)
	assert.Equal(t, 2, s.Rebuilds())
	require.Len(t, grown, 10)
	assert.Equal(t, first, grown[:5], "existing sprites keep their angles")
	assert.Len(t, first, 5, "published buffer is untouched")
	assert.Equal(t, float32(10), grown[5].Position.X)

	s.Vertices(2)
	assert.Equal(t, 3, s.Rebuilds())
}

func TestStrokeEmptyHasNoVertices(t *testing.T) {
	s := NewStroke("pen", black, FixedRotation(0))
	assert.Empty(t, s.Vertices(1))
	assert.Equal(t, 0, s.Rebuilds())
	assert.True(t, s.Bounds().Empty())
}

func TestStrokeCloneIsIndependent(t *testing.T) {
	own := seg(0, 0, 1, 1, 2, 1)
	own.Color = &color.NRGBA{R: 9, A: 255}
	s := NewStroke("pen", black, FixedRotation(0), own)
	s.Index, s.Owner = 4, "site"

	c := s.Clone()
	c.Segments[0].Color.R = 200
	c.Append(seg(1, 1, 2, 2, 2, 1))

	assert.Equal(t, uint8(9), s.Segments[0].Color.R)
	assert.Len(t, s.Segments, 1)
	assert.Equal(t, 4, c.Index)
	assert.Equal(t, "site", c.Owner)
}

func TestStrokeBounds(t *testing.T) {
	s := NewStroke("pen", black, FixedRotation(0), seg(0, 0, 10, 5, 4, 1), seg(10, 5, -2, 8, 6, 1))
	b := s.Bounds()
	assert.Equal(t, Rect{Min: Point{-5, -3}, Max: Point{13, 11}}, b)

	ch := &Chartlet{Center: Point{50, 50}, Width: 20, Height: 10}
	u := b.Union(ElementBounds(ch))
	assert.Equal(t, Point{-5, -3}, u.Min)
	assert.Equal(t, Point{60, 55}, u.Max)
	assert.True(t, ElementBounds(&ClearMarker{}).Empty())
}
