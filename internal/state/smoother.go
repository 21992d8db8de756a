package state

const (
	// smootherWindow is the number of raw points kept for curve context.
	smootherWindow = 4
	// curveStepLength is the target distance between vertices of one
	// quadratic piece.
	curveStepLength = 5
	minCurveSteps   = 2
)

// CurveSmoother turns raw input points into a smoothed path. Quadratic
// pieces run between midpoints of consecutive raw points, using the raw
// point between them as control, so the path passes near but not through
// the samples. Output lags input by about half a raw segment.
//
// The zero value is ready to use; the first Push acts as Begin.
type CurveSmoother struct {
	window  []Point
	end     Point // last vertex handed out
	emitted bool
}

// Begin drops any state and starts a new path at p.
func (c *CurveSmoother) Begin(p Point) {
	c.window = append(c.window[:0], p)
	c.end = p
	c.emitted = false
}

// Points returns the raw points currently buffered.
func (c *CurveSmoother) Points() []Point { return c.window }

// Push adds the next raw point and returns the vertices that became
// available. Consecutive duplicates are ignored.
func (c *CurveSmoother) Push(p Point) []Point {
	if len(c.window) == 0 {
		c.Begin(p)
		return nil
	}
	if c.window[len(c.window)-1] == p {
		return nil
	}
	c.window = append(c.window, p)
	if len(c.window) < smootherWindow {
		return nil
	}

	var out []Point
	w := c.window
	if !c.emitted {
		out = c.lead(out)
	}
	out = c.quad(out, w[2], w[2].Mid(w[3]))
	c.window = append(c.window[:0], w[1:]...)
	return out
}

// Finish flushes the tail of the path up to the last raw point and resets
// the smoother. A second Finish returns nothing.
func (c *CurveSmoother) Finish() []Point {
	defer c.reset()
	w := c.window
	if len(w) < 2 {
		return nil
	}

	var out []Point
	if !c.emitted {
		out = c.lead(out)
	}
	last := w[len(w)-1]
	return c.quad(out, last, last)
}

func (c *CurveSmoother) reset() {
	c.window = c.window[:0]
	c.emitted = false
}

// lead emits the start point and the pieces that precede the first full
// window.
func (c *CurveSmoother) lead(out []Point) []Point {
	w := c.window
	c.end = w[0]
	c.emitted = true
	out = append(out, w[0])
	if len(w) >= 3 {
		out = c.quad(out, w[1], w[1].Mid(w[2]))
	}
	return out
}

// quad appends the quadratic from c.end through control to end, excluding
// its first point, and advances c.end.
func (c *CurveSmoother) quad(out []Point, control, end Point) []Point {
	begin := c.end
	dist := begin.Distance(end)
	if dist == 0 {
		return out
	}
	steps := max(int(dist/curveStepLength), minCurveSteps)
	prev := begin
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps)
		u := 1 - t
		v := Point{
			X: u*u*begin.X + 2*u*t*control.X + t*t*end.X,
			Y: u*u*begin.Y + 2*u*t*control.Y + t*t*end.Y,
		}
		if i == steps {
			v = end
		}
		if v == prev {
			continue
		}
		out = append(out, v)
		prev = v
	}
	c.end = end
	return out
}
