package brush

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrushBoard/internal/state"
)

func sample(x, y, pressure float32) state.Sample {
	return state.NewSample(state.Point{X: x, Y: y}, pressure, time.Time{})
}

func TestStampSegment(t *testing.T) {
	b := NewStamp("pen", "")
	cfg := b.Config()
	cfg.PointSize = 10
	cfg.PointStep = 3

	segs := b.MakeSegments(sample(0, 0, 0.2), sample(5, 0, 0.9))
	require.Len(t, segs, 1)
	assert.Equal(t, state.Point{}, segs[0].Begin)
	assert.Equal(t, state.Point{X: 5}, segs[0].End)
	assert.Equal(t, float32(10), segs[0].PointSize, "pressure ignored at sensitivity 0")
	assert.Equal(t, float32(3), segs[0].PointStep)
	assert.Nil(t, segs[0].Color)
	assert.Empty(t, b.FinishLineStrip(sample(5, 0, 1)))
}

func TestStampPressureSensitivity(t *testing.T) {
	b := NewStamp("pen", "")
	b.Config().PointSize = 10
	b.Config().ForceSensitivity = 1

	segs := b.MakeSegments(sample(0, 0, 0.5), sample(1, 0, 0.5))
	assert.InDelta(t, 5, segs[0].PointSize, 1e-5)

	// the start pressure dominates
	segs = b.MakeSegments(sample(0, 0, 1), sample(1, 0, 0))
	assert.InDelta(t, 9.5, segs[0].PointSize, 1e-5)
}

func TestStampZoom(t *testing.T) {
	b := NewStamp("pen", "")
	b.Config().PointSize = 8
	b.Config().PointStep = 2
	b.SetZoom(2)

	seg := b.MakeSegments(sample(0, 0, 1), sample(1, 0, 1))[0]
	assert.Equal(t, float32(4), seg.PointSize)
	assert.Equal(t, float32(1), seg.PointStep)

	b.Config().ScaleWithCanvas = true
	seg = b.MakeSegments(sample(0, 0, 1), sample(1, 0, 1))[0]
	assert.Equal(t, float32(8), seg.PointSize)
}

func TestRenderingColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Color = color.NRGBA{R: 200, A: 255}
	cfg.Opacity = 0.5
	assert.Equal(t, color.NRGBA{R: 200, A: 128}, cfg.RenderingColor())

	cfg.Opacity = 3
	assert.Equal(t, uint8(255), cfg.RenderingColor().A)
}

func TestEraser(t *testing.T) {
	e := NewEraser("eraser", "")
	s := NewStamp("pen", "")
	assert.Equal(t, state.BlendErase, e.Blend())
	assert.Equal(t, state.BlendNormal, s.Blend())

	from, to := sample(1, 2, 1), sample(3, 4, 1)
	assert.Equal(t, s.MakeSegments(from, to), e.MakeSegments(from, to))
}

func TestGlowingCoreLags(t *testing.T) {
	g := NewGlowing("glow", "")
	g.Config().PointSize = 20
	require.Equal(t, float32(0.25), g.CoreProportion)

	var shadow, core int
	prev := sample(0, 0, 1)
	for x := 1; x <= 100; x++ {
		next := sample(float32(x), 0, 1)
		for _, seg := range g.MakeSegments(prev, next) {
			if seg.Color == nil {
				shadow++
			} else {
				core++
			}
		}
		prev = next
	}
	assert.Equal(t, 100, shadow)
	assert.Less(t, core, shadow)
	assert.Equal(t, 100-core, g.Pending())

	rest := g.FinishLineStrip(prev)
	assert.Equal(t, 100, core+len(rest), "every buffered core segment is released")
	assert.Zero(t, g.Pending())
	assert.Empty(t, g.FinishLineStrip(prev))
}

func TestGlowingCoreSegments(t *testing.T) {
	g := NewGlowing("glow", "")
	g.Config().PointSize = 20
	g.Config().PointStep = 6

	g.MakeSegments(sample(0, 0, 1), sample(10, 0, 1))
	core := g.FinishLineStrip(sample(10, 0, 1))
	require.Len(t, core, 1)
	assert.Equal(t, float32(5), core[0].PointSize)
	assert.Equal(t, float32(1), core[0].PointStep)
	require.NotNil(t, core[0].Color)
	assert.Equal(t, g.CoreColor, *core[0].Color)
}

func TestGlowingQueueIsBounded(t *testing.T) {
	g := NewGlowing("glow", "")
	g.Config().PointSize = 1e9
	p := sample(0, 0, 1)
	var released int
	for range maxPendingCore + 10 {
		for _, seg := range g.MakeSegments(p, p) {
			if seg.Color != nil {
				released++
			}
		}
	}
	assert.Equal(t, maxPendingCore, g.Pending())
	assert.Equal(t, 10, released)
}

func TestNew(t *testing.T) {
	for _, kind := range []Kind{KindStamp, KindEraser, KindGlowing} {
		b, err := New(kind, string(kind), "tex")
		require.NoError(t, err)
		assert.Equal(t, string(kind), b.Name())
		assert.Equal(t, "tex", b.Texture())
	}
	_, err := New("crayon", "c", "")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DefaultName, r.Current().Name())
	assert.Same(t, r.Default(), r.Current())

	glow := NewGlowing("glow", "")
	require.NoError(t, r.Register(glow))
	assert.Error(t, r.Register(NewStamp("glow", "")))
	assert.Error(t, r.Use("missing"))

	require.NoError(t, r.Use("glow"))
	assert.Same(t, glow, r.Current())
	b, ok := r.Find("glow")
	assert.True(t, ok)
	assert.Same(t, glow, b)
	assert.Len(t, r.All(), 2)

	r.SetZoom(4)
	glow.Config().PointSize = 8
	seg := glow.MakeSegments(sample(0, 0, 1), sample(1, 0, 1))[0]
	assert.Equal(t, float32(2), seg.PointSize)

	require.Positive(t, glow.Pending())
	require.NoError(t, r.Use(DefaultName))
	assert.Zero(t, glow.Pending())
}
