// Package brush turns samples into drawable segments.
//
// A Brush is configured through the Config it exposes and produces
// segments pair by pair while a gesture runs. Variants differ in how they
// composite (Eraser) or in what they emit (Glowing, which layers a thin
// core line over a wide shadow).
package brush

import (
	"fmt"
	"image/color"

	"BrushBoard/internal/state"
)

// Brush makes segments for a stroke.
type Brush interface {
	// Name identifies the brush; strokes refer to brushes by name.
	Name() string
	// Texture is the id of the sprite texture, empty for the default dot.
	Texture() string
	Blend() state.BlendMode
	// Config returns the live configuration. Changes apply to the next
	// segments made.
	Config() *Config
	// MakeSegments returns the segments spanning from and to.
	MakeSegments(from, to state.Sample) []state.Segment
	// FinishLineStrip returns segments held back by the brush. It is
	// called once when a gesture ends.
	FinishLineStrip(at state.Sample) []state.Segment
}

// Zoomer is implemented by brushes whose output depends on the canvas
// zoom level.
type Zoomer interface {
	SetZoom(zoom float32)
}

// Config holds the settings shared by every brush.
type Config struct {
	// PointSize is the sprite diameter at full pressure.
	PointSize float32
	// PointStep is the minimum distance between sprites.
	PointStep float32
	Color     color.NRGBA
	Opacity   float32
	// ForceSensitivity is the pressure exponent: 0 ignores pressure,
	// 1 scales the size linearly with it.
	ForceSensitivity float32
	// ForceOnTap is the pressure used for taps.
	ForceOnTap float32
	Rotation   state.Rotation
	// ScaleWithCanvas keeps sprite size constant on screen when false.
	ScaleWithCanvas bool
}

// DefaultConfig returns the settings of a fresh brush: a 4 point black dot
// at 30% opacity drawn at every point, ignoring pressure.
func DefaultConfig() Config {
	return Config{
		PointSize:  4,
		PointStep:  1,
		Color:      color.NRGBA{A: 255},
		Opacity:    0.3,
		ForceOnTap: 1,
	}
}

// RenderingColor returns Color with its alpha scaled by Opacity.
func (c *Config) RenderingColor() color.NRGBA {
	out := c.Color
	out.A = uint8(float32(c.Color.A)*max(min(c.Opacity, 1), 0) + 0.5)
	return out
}

// Kind names a brush variant.
type Kind string

const (
	KindStamp   Kind = "stamp"
	KindEraser  Kind = "eraser"
	KindGlowing Kind = "glowing"
)

// New creates a brush of the given kind with default settings.
func New(kind Kind, name, texture string) (Brush, error) {
	switch kind {
	case KindStamp, "":
		return NewStamp(name, texture), nil
	case KindEraser:
		return NewEraser(name, texture), nil
	case KindGlowing:
		return NewGlowing(name, texture), nil
	}
	return nil, fmt.Errorf("unknown brush kind %q", kind)
}
