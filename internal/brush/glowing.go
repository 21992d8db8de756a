package brush

import (
	"image/color"
	"slices"

	"BrushBoard/internal/state"
)

const (
	DefaultCoreProportion = 0.25
	// maxPendingCore bounds the core queue; older core segments are
	// released early past it.
	maxPendingCore = 4096
)

// Glowing draws a wide shadow with a thin bright core line on top. The
// core is made by a nested Stamp at CoreProportion of the size and step 1.
// Core segments are queued and only released once the gesture has moved
// half the shadow rim past them, so the core trails the leading edge.
type Glowing struct {
	*Stamp

	// CoreProportion is the core size relative to PointSize, in (0, 1].
	CoreProportion float32
	CoreColor      color.NRGBA

	core    *Stamp
	pending []state.Segment
}

func NewGlowing(name, texture string) *Glowing {
	g := &Glowing{
		Stamp:          NewStamp(name, texture),
		CoreProportion: DefaultCoreProportion,
		CoreColor:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		core:           NewStamp(name+".sub", ""),
	}
	g.syncCore()
	return g
}

func (g *Glowing) SetZoom(zoom float32) {
	g.Stamp.SetZoom(zoom)
	g.core.SetZoom(zoom)
}

// Pending returns the number of core segments waiting for release.
func (g *Glowing) Pending() int { return len(g.pending) }

// MakeSegments returns the shadow for from-to followed by the core
// segments released by this move.
//
// A queued core segment is released when its begin point is at least
// PointSize*(1-CoreProportion)/2 away from the incoming from point.
func (g *Glowing) MakeSegments(from, to state.Sample) []state.Segment {
	out := g.Stamp.segments(from, to, false)

	delta := g.cfg.PointSize * (1 - g.CoreProportion) / 2
	n := 0
	for n < len(g.pending) && g.pending[n].Begin.Distance(from.Point) >= delta {
		n++
	}
	out = append(out, g.pending[:n]...)
	g.pending = slices.Delete(g.pending, 0, n)

	g.syncCore()
	g.pending = append(g.pending, g.core.segments(from, to, true)...)
	if over := len(g.pending) - maxPendingCore; over > 0 {
		out = append(out, g.pending[:over]...)
		g.pending = slices.Delete(g.pending, 0, over)
	}
	return out
}

// FinishLineStrip releases every queued core segment.
func (g *Glowing) FinishLineStrip(state.Sample) []state.Segment {
	out := slices.Clone(g.pending)
	g.pending = g.pending[:0]
	return out
}

// syncCore derives the core brush settings from the outer ones.
func (g *Glowing) syncCore() {
	g.core.cfg = Config{
		PointSize:        g.cfg.PointSize * g.CoreProportion,
		PointStep:        1,
		Color:            g.CoreColor,
		Opacity:          1,
		ForceSensitivity: g.cfg.ForceSensitivity,
		ForceOnTap:       g.cfg.ForceOnTap,
		Rotation:         g.cfg.Rotation,
		ScaleWithCanvas:  g.cfg.ScaleWithCanvas,
	}
}
