package canvas

import (
	"slices"

	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

// Delegate can veto drawing before it happens. Every method defaults to
// allowing when no delegate is set.
type Delegate interface {
	// ShouldBeginLine is asked once per gesture. Returning false skips the
	// whole line.
	ShouldBeginLine(c *Canvas, p state.Point, pressure float32) bool
	ShouldRenderTap(c *Canvas, p state.Point) bool
	ShouldRenderChartlet(c *Canvas, ch *state.Chartlet) bool
}

// ActionObserver is told about drawing actions on a canvas, as opposed to
// document changes which go to state.Observer.
type ActionObserver interface {
	TapRendered(c *Canvas, p state.Point)
	ChartletRendered(c *Canvas, ch *state.Chartlet)
	LineBegan(c *Canvas, p state.Point, pressure float32)
	LineMoved(c *Canvas, p state.Point, pressure float32)
	LineFinished(c *Canvas, p state.Point, pressure float32)
	Redrawn(c *Canvas, t render.Target)
}

// NopActionObserver implements ActionObserver with no-ops.
type NopActionObserver struct{}

func (NopActionObserver) TapRendered(*Canvas, state.Point)           {}
func (NopActionObserver) ChartletRendered(*Canvas, *state.Chartlet)  {}
func (NopActionObserver) LineBegan(*Canvas, state.Point, float32)    {}
func (NopActionObserver) LineMoved(*Canvas, state.Point, float32)    {}
func (NopActionObserver) LineFinished(*Canvas, state.Point, float32) {}
func (NopActionObserver) Redrawn(*Canvas, render.Target)             {}

type actionEntry struct {
	id int
	o  ActionObserver
}

// ObserveActions registers o and returns a function removing it.
func (c *Canvas) ObserveActions(o ActionObserver) (remove func()) {
	c.nextAction++
	id := c.nextAction
	c.actions = append(c.actions, actionEntry{id: id, o: o})
	return func() {
		c.actions = slices.DeleteFunc(c.actions, func(e actionEntry) bool { return e.id == id })
	}
}

func (c *Canvas) eachAction(fn func(ActionObserver)) {
	for _, e := range slices.Clone(c.actions) {
		fn(e.o)
	}
}
