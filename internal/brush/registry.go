package brush

import (
	"fmt"

	"BrushBoard/internal/logging"
	"BrushBoard/internal/state"
)

// DefaultName is the name of the brush every registry starts with.
const DefaultName = "brush.default"

// Registry holds the brushes a canvas can draw with, by name.
type Registry struct {
	brushes []Brush
	current Brush
}

// NewRegistry returns a registry holding only the default round brush,
// which is also current.
func NewRegistry() *Registry {
	def := NewStamp(DefaultName, "")
	return &Registry{brushes: []Brush{def}, current: def}
}

// Register adds b. Names must be unique.
func (r *Registry) Register(b Brush) error {
	if _, ok := r.Find(b.Name()); ok {
		return fmt.Errorf("brush %q already registered", b.Name())
	}
	r.brushes = append(r.brushes, b)
	logging.Logger().Info("brush registered", "name", b.Name(), "texture", b.Texture())
	return nil
}

// Find returns the brush registered under name.
func (r *Registry) Find(name string) (Brush, bool) {
	for _, b := range r.brushes {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Use makes the named brush current. Segments the previous brush still
// holds back are dropped; finish the gesture first to keep them.
func (r *Registry) Use(name string) error {
	b, ok := r.Find(name)
	if !ok {
		return fmt.Errorf("brush %q not registered", name)
	}
	if b != r.current {
		r.current.FinishLineStrip(state.Sample{})
	}
	r.current = b
	return nil
}

// Current returns the brush new strokes are drawn with.
func (r *Registry) Current() Brush { return r.current }

// Default returns the built-in round brush.
func (r *Registry) Default() Brush { return r.brushes[0] }

// All returns the registered brushes, default first.
func (r *Registry) All() []Brush {
	out := make([]Brush, len(r.brushes))
	copy(out, r.brushes)
	return out
}

// SetZoom forwards the canvas zoom level to every brush that uses it.
func (r *Registry) SetZoom(zoom float32) {
	for _, b := range r.brushes {
		if z, ok := b.(Zoomer); ok {
			z.SetZoom(zoom)
		}
	}
}
