package brush

import (
	"github.com/chewxy/math32"

	"BrushBoard/internal/state"
)

// Stamp is the plain brush: one segment per pair of samples, its size
// following pressure.
type Stamp struct {
	name    string
	texture string
	cfg     Config
	zoom    float32
}

func NewStamp(name, texture string) *Stamp {
	return &Stamp{name: name, texture: texture, cfg: DefaultConfig(), zoom: 1}
}

func (b *Stamp) Name() string           { return b.name }
func (b *Stamp) Texture() string        { return b.texture }
func (b *Stamp) Blend() state.BlendMode { return state.BlendNormal }
func (b *Stamp) Config() *Config        { return &b.cfg }

// SetZoom sets the canvas zoom level; sizes and steps are divided by it
// unless ScaleWithCanvas is set.
func (b *Stamp) SetZoom(zoom float32) {
	if zoom <= 0 {
		zoom = 1
	}
	b.zoom = zoom
}

func (b *Stamp) MakeSegments(from, to state.Sample) []state.Segment {
	return b.segments(from, to, false)
}

func (b *Stamp) FinishLineStrip(state.Sample) []state.Segment { return nil }

// segments builds the single segment for from-to. With unique set the
// segment carries the brush color instead of deferring to the stroke.
func (b *Stamp) segments(from, to state.Sample, unique bool) []state.Segment {
	force := from.Pressure*0.95 + to.Pressure*0.05
	rate := math32.Pow(force, b.cfg.ForceSensitivity)

	scale := float32(1)
	if !b.cfg.ScaleWithCanvas {
		scale = b.zoom
	}
	seg := state.Segment{
		Begin:     from.Point,
		End:       to.Point,
		PointSize: b.cfg.PointSize * rate / scale,
		PointStep: max(b.cfg.PointStep/scale, state.MinPointStep),
	}
	if unique {
		c := b.cfg.RenderingColor()
		seg.Color = &c
	}
	return []state.Segment{seg}
}

// Eraser removes what is below it. Its segments are those of a Stamp.
type Eraser struct {
	*Stamp
}

func NewEraser(name, texture string) *Eraser {
	return &Eraser{Stamp: NewStamp(name, texture)}
}

func (*Eraser) Blend() state.BlendMode { return state.BlendErase }
