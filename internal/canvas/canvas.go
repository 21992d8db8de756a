// Package canvas drives the stroke pipeline: input events are smoothed,
// resampled, turned into segments by the current brush, recorded in the
// history and drawn on a render target.
//
// A Canvas is not safe for concurrent use. Input, remote elements and UI
// actions must all be delivered on one goroutine.
package canvas

import (
	"fmt"
	"image"
	"math"
	"time"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/logging"
	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

// minLinePoints is the number of raw points a gesture needs to be drawn
// as a line. Shorter gestures are drawn as taps.
const minLinePoints = 3

type Canvas struct {
	brushes  *brush.Registry
	textures *render.Textures
	target   render.Target
	history  *state.History

	smoother state.CurveSmoother
	sampler  state.StepSampler
	drawing  bool
	last     state.Sample
	// remote elements received while a gesture is open
	pending []state.Element

	size  image.Point
	scale float32
	zoom  float32
	now   func() time.Time

	delegate   Delegate
	actions    []actionEntry
	nextAction int
}

// New returns a canvas drawing on target. When target is nil or its
// backend fails its check, drawing is disabled with a warning and the
// canvas keeps recording the document.
func New(target render.Target, brushes *brush.Registry, textures *render.Textures, size image.Point) *Canvas {
	if err := render.Check(target); err != nil {
		logging.Logger().Warn("rendering disabled", "err", err)
		target = nil
	}
	if brushes == nil {
		brushes = brush.NewRegistry()
	}
	if textures == nil {
		textures = render.NewTextures()
	}
	c := &Canvas{
		brushes:  brushes,
		textures: textures,
		target:   target,
		history:  state.NewHistory(nil),
		size:     size,
		scale:    1,
		zoom:     1,
		now:      time.Now,
	}
	if c.target != nil {
		c.target.UpdateBuffer(size)
		c.target.Clear()
		c.target.CommitCommands()
	}
	return c
}

func (c *Canvas) Brushes() *brush.Registry   { return c.brushes }
func (c *Canvas) Textures() *render.Textures { return c.textures }
func (c *Canvas) History() *state.History    { return c.history }

// Target returns the render target, or nil when drawing is disabled.
func (c *Canvas) Target() render.Target { return c.target }

func (c *Canvas) SetDelegate(d Delegate) { c.delegate = d }

// Size returns the drawing buffer size in device pixels.
func (c *Canvas) Size() image.Point { return c.size }

// Resize changes the drawing buffer size and redraws.
func (c *Canvas) Resize(size image.Point) {
	if size == c.size {
		return
	}
	c.size = size
	c.Redraw()
}

// SetScale sets the device scale: canvas points times scale gives device
// pixels.
func (c *Canvas) SetScale(scale float32) {
	if scale <= 0 {
		scale = 1
	}
	if scale == c.scale {
		return
	}
	c.scale = scale
	c.Redraw()
}

// SetZoom sets the zoom level. Brushes that do not scale with the canvas
// keep their on-screen size.
func (c *Canvas) SetZoom(zoom float32) {
	if zoom <= 0 {
		zoom = 1
	}
	c.zoom = zoom
	c.brushes.SetZoom(zoom)
	c.Redraw()
}

func (c *Canvas) Zoom() float32 { return c.zoom }

// ViewToCanvas converts a point in view coordinates, which are device
// pixels divided by the device scale, to canvas coordinates.
func (c *Canvas) ViewToCanvas(p state.Point) state.Point { return p.Scale(1 / c.zoom) }

func (c *Canvas) renderScale() float32 { return c.scale * c.zoom }

// OnInputBegin starts a gesture at p.
func (c *Canvas) OnInputBegin(p state.Point, pressure float32) {
	if c.drawing {
		c.OnInputEnd(c.last.Point, c.last.Pressure)
	}
	c.sampler.Reset()
	c.drawing = false
	if c.delegate != nil && !c.delegate.ShouldBeginLine(c, p, pressure) {
		return
	}
	c.drawing = true
	c.smoother.Begin(p)
	c.last = state.NewSample(p, pressure, c.now())
	c.eachAction(func(o ActionObserver) { o.LineBegan(c, p, pressure) })
}

// OnInputMove continues the open gesture. It is ignored when no gesture
// is open or p repeats the previous point.
func (c *Canvas) OnInputMove(p state.Point, pressure float32) {
	if !c.drawing || p == c.last.Point {
		return
	}
	c.last = state.NewSample(p, pressure, c.now())
	c.pushSamples(c.smoother.Push(p), pressure, false)
	c.eachAction(func(o ActionObserver) { o.LineMoved(c, p, pressure) })
}

// OnInputEnd finishes the open gesture at p. Gestures with too few points
// to make a curve are drawn as a tap from their first to their last
// point. Whatever the brush held back is flushed and the stroke is
// finished.
func (c *Canvas) OnInputEnd(p state.Point, pressure float32) {
	if !c.drawing {
		return
	}
	c.drawing = false
	defer c.flushPending()
	defer c.history.FinishCurrentElement()
	defer c.sampler.Reset()

	raw := c.smoother.Points()
	switch {
	case len(raw) >= minLinePoints:
		verts := c.smoother.Push(p)
		verts = append(verts, c.smoother.Finish()...)
		c.pushSamples(verts, pressure, true)
	case len(raw) > 0:
		from, to := raw[0], raw[len(raw)-1]
		c.smoother.Finish()
		c.renderTap(from, to)
	}

	end := state.NewSample(p, pressure, c.now())
	c.render(c.brushes.Current().FinishLineStrip(end))
	c.eachAction(func(o ActionObserver) { o.LineFinished(c, p, pressure) })
}

// UseBrush makes the named brush current. An open gesture is finished
// with the previous brush first.
func (c *Canvas) UseBrush(name string) error {
	if _, ok := c.brushes.Find(name); !ok {
		return fmt.Errorf("brush %q not registered", name)
	}
	if c.drawing {
		c.OnInputEnd(c.last.Point, c.last.Pressure)
	}
	return c.brushes.Use(name)
}

// pushSamples resamples smoothed vertices and renders the segments
// between consecutive samples.
func (c *Canvas) pushSamples(verts []state.Point, pressure float32, end bool) {
	b := c.brushes.Current()
	prev, ok := c.sampler.Last()
	samples := c.sampler.Push(verts, b.Config().PointStep, pressure, c.now(), end)

	var segs []state.Segment
	for _, s := range samples {
		if ok {
			segs = append(segs, b.MakeSegments(prev, s)...)
		}
		prev, ok = s, true
	}
	c.render(segs)
}

func (c *Canvas) renderTap(from, to state.Point) {
	if c.delegate != nil && !c.delegate.ShouldRenderTap(c, from) {
		return
	}
	b := c.brushes.Current()
	force := b.Config().ForceOnTap
	at := c.now()
	c.render(b.MakeSegments(state.NewSample(from, force, at), state.NewSample(to, force, at)))
	c.eachAction(func(o ActionObserver) { o.TapRendered(c, from) })
}

// render records segs in the open stroke of the current brush and draws
// them.
func (c *Canvas) render(segs []state.Segment) {
	if len(segs) == 0 {
		return
	}
	b := c.brushes.Current()
	cfg := b.Config()
	s := state.NewStroke(b.Name(), cfg.RenderingColor(), cfg.Rotation, segs...)
	s.Owner = state.LocalSite()
	c.history.Append(s)

	if c.target == nil {
		return
	}
	c.target.DrawSprites(state.BuildVertices(segs, s.Color, s.Rotation, c.renderScale()), b.Texture(), b.Blend())
	c.target.CommitCommands()
}

// RenderChartlet places a texture centered on center and draws it. It
// returns nil without error when the delegate vetoes the chartlet.
func (c *Canvas) RenderChartlet(center state.Point, width, height float32, textureID string, angle float32) (*state.Chartlet, error) {
	if _, ok := c.textures.Find(textureID); !ok {
		return nil, &render.ResourceError{ID: textureID}
	}
	ch := &state.Chartlet{
		Center:    center,
		Width:     width,
		Height:    height,
		TextureID: textureID,
		Angle:     angle,
		Owner:     state.LocalSite(),
	}
	if c.delegate != nil && !c.delegate.ShouldRenderChartlet(c, ch) {
		return nil, nil
	}
	c.history.Insert(ch)
	if c.target != nil {
		c.target.DrawChartlet(ch, c.renderScale())
		c.target.CommitCommands()
	}
	c.eachAction(func(o ActionObserver) { o.ChartletRendered(c, ch) })
	return ch, nil
}

// CurrentVertexBuffer returns the sprite buffer of the stroke with the
// given index. Index 0 addresses the stroke still being drawn.
func (c *Canvas) CurrentVertexBuffer(index int) ([]state.Vertex, bool) {
	e, ok := c.history.Element(index)
	if !ok {
		return nil, false
	}
	s, ok := e.(*state.Stroke)
	if !ok {
		return nil, false
	}
	return s.Vertices(c.renderScale()), true
}

// Undo removes the last element and redraws. It reports whether anything
// was undone.
func (c *Canvas) Undo() bool {
	if !c.history.Undo() {
		return false
	}
	c.Redraw()
	return true
}

// Redo restores the last undone element and redraws.
func (c *Canvas) Redo() bool {
	if !c.history.Redo() {
		return false
	}
	c.Redraw()
	return true
}

// Clear records a clear marker and wipes the target. Clearing an empty
// canvas twice records nothing.
func (c *Canvas) Clear() bool {
	if !c.history.Clear(state.LocalSite()) {
		return false
	}
	if c.target != nil {
		c.target.Clear()
		c.target.CommitCommands()
	}
	return true
}

// ResetData drops the whole document and starts a new empty history
// notifying obs. It cannot be undone. Observers are not carried over
// implicitly: pass c.History().Observers() to keep them. Every observer
// of the new history is told about the reset after the redraw.
func (c *Canvas) ResetData(obs *state.Observers) {
	if c.drawing {
		// Segments held back by the brush belong to the dropped document.
		c.brushes.Current().FinishLineStrip(c.last)
	}
	old := c.history
	c.history = state.NewHistory(obs)
	c.drawing = false
	c.smoother.Finish()
	c.sampler.Reset()
	c.pending = nil
	logging.Logger().Info("document reset", "elements", len(old.Elements()))
	c.Redraw()
	c.history.Observers().HistoryReset(old, c.history)
}

// Load replaces the document content with finished elements and redraws.
func (c *Canvas) Load(elements []state.Element) {
	c.history.Load(elements)
	c.Redraw()
}

// Redraw replays the document on the canvas target.
func (c *Canvas) Redraw() {
	if c.target == nil {
		return
	}
	c.RedrawOn(c.target, c.size)
}

// RedrawOn finishes the open element and replays every element on t from
// an empty buffer of the given size.
func (c *Canvas) RedrawOn(t render.Target, size image.Point) {
	c.history.FinishCurrentElement()
	t.UpdateBuffer(size)
	t.Clear()
	for _, e := range c.history.Elements() {
		c.drawElement(t, e)
	}
	t.CommitCommands()
	c.eachAction(func(o ActionObserver) { o.Redrawn(c, t) })
}

func (c *Canvas) drawElement(t render.Target, e state.Element) {
	switch e := e.(type) {
	case *state.Stroke:
		b, ok := c.brushes.Find(e.BrushName)
		if !ok {
			logging.Logger().Warn("unknown brush, drawing with default", "brush", e.BrushName, "index", e.Index)
			b = c.brushes.Default()
		}
		t.DrawSprites(e.Vertices(c.renderScale()), b.Texture(), b.Blend())
	case *state.Chartlet:
		t.DrawChartlet(e, c.renderScale())
	case *state.ClearMarker:
		t.Clear()
	}
}

// Snapshot renders e alone on an offscreen buffer the size of the
// canvas. A nil e renders the whole document.
func (c *Canvas) Snapshot(e state.Element) *image.NRGBA {
	r := render.NewRaster(c.size, c.textures)
	if e == nil {
		c.RedrawOn(r, c.size)
		return r.Frame()
	}
	r.Clear()
	c.drawElement(r, e)
	r.CommitCommands()
	return r.Frame()
}

// ApplyRemote adds an element authored elsewhere. A clear marker clears
// the canvas. While a gesture is open the element is held until the
// gesture ends so the local stroke is not split.
func (c *Canvas) ApplyRemote(e state.Element) {
	if c.drawing {
		c.pending = append(c.pending, e)
		return
	}
	if m, ok := e.(*state.ClearMarker); ok {
		if c.history.Clear(m.Owner) && c.target != nil {
			c.target.Clear()
			c.target.CommitCommands()
		}
		return
	}
	c.history.Insert(e)
	if c.target != nil {
		c.drawElement(c.target, e)
		c.target.CommitCommands()
	}
}

func (c *Canvas) flushPending() {
	pending := c.pending
	c.pending = nil
	for _, e := range pending {
		c.ApplyRemote(e)
	}
}

// DocumentBounds returns the device pixel rectangle covering every
// visible element, clipped to the canvas.
func (c *Canvas) DocumentBounds() image.Rectangle {
	var r state.Rect
	for _, e := range c.history.Visible() {
		r = r.Union(state.ElementBounds(e))
	}
	if r.Empty() {
		return image.Rectangle{}
	}
	s := c.renderScale()
	out := image.Rect(
		int(math.Floor(float64(r.Min.X*s))), int(math.Floor(float64(r.Min.Y*s))),
		int(math.Ceil(float64(r.Max.X*s))), int(math.Ceil(float64(r.Max.Y*s))),
	)
	return out.Intersect(image.Rectangle{Max: c.size})
}
