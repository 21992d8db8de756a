// Package render draws vertex buffers and chartlets onto render targets.
package render

import (
	"errors"
	"fmt"
	"image"

	"BrushBoard/internal/state"
)

// ErrUnsupported means there is no backend able to draw. Drawing
// operations become no-ops once it is detected.
var ErrUnsupported = errors.New("render: no drawing backend available")

// ResourceError reports a texture that is missing or cannot be decoded.
// Callers may retry with another id or fall back to the default texture.
type ResourceError struct {
	ID  string
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("texture %q not found", e.ID)
	}
	return fmt.Sprintf("texture %q: %v", e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Target receives drawing commands. Nothing is visible until
// CommitCommands publishes the frame.
type Target interface {
	// UpdateBuffer resizes the drawing buffer to size device pixels.
	UpdateBuffer(size image.Point)
	Clear()
	// DrawSprites stamps the texture once per vertex.
	DrawSprites(vertices []state.Vertex, textureID string, blend state.BlendMode)
	DrawChartlet(c *state.Chartlet, scale float32)
	CommitCommands()
}

// Prober is implemented by targets that can tell whether their backend
// works.
type Prober interface {
	Probe() error
}

// Check returns ErrUnsupported when t is nil or its backend reports a
// failure.
func Check(t Target) error {
	if t == nil {
		return ErrUnsupported
	}
	if p, ok := t.(Prober); ok {
		if err := p.Probe(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
	}
	return nil
}
