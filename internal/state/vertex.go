package state

import (
	"image/color"
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// MaxSegmentSprites caps the sprites one segment expands to.
const MaxSegmentSprites = 1 << 16

// BuildVertices expands segments into point sprites. Positions and sizes
// are multiplied by scale first; each scaled segment is then cut into
// max(length/step, 1) evenly spaced sprites starting at its begin point,
// at most MaxSegmentSprites. Sprites take the segment color when set and
// base otherwise.
func BuildVertices(segs []Segment, base color.NRGBA, rot Rotation, scale float32) []Vertex {
	return appendVertices(nil, segs, base, rot, scale, rand.Float32)
}

// appendVertices is BuildVertices writing into dst. rnd supplies values in
// [0, 1) for random rotation.
func appendVertices(dst []Vertex, segs []Segment, base color.NRGBA, rot Rotation, scale float32, rnd func() float32) []Vertex {
	for _, seg := range segs {
		begin := seg.Begin.Scale(scale)
		end := seg.End.Scale(scale)
		step := seg.PointStep
		if step <= 0 {
			step = 1
		}
		count := min(max(begin.Distance(end)/step, 1), MaxSegmentSprites)

		c := base
		if seg.Color != nil {
			c = *seg.Color
		}
		ahead := seg.Angle()
		for i := 0; i < int(count); i++ {
			var angle float32
			switch rot.Kind {
			case RotationFixed:
				angle = rot.Angle
			case RotationRandom:
				angle = (rnd()*2 - 1) * math32.Pi
			case RotationAhead:
				angle = ahead
			}
			dst = append(dst, Vertex{
				Position: begin.Lerp(end, float32(i)/count),
				Size:     seg.PointSize * scale,
				Angle:    angle,
				Color:    c,
			})
		}
	}
	return dst
}
