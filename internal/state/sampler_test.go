package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerPassthrough(t *testing.T) {
	raw := []Point{{0, 0}, {3, 1}, {9, 4}, {14, 9}, {15, 15}, {22, 19}, {30, 20}}
	var (
		c        CurveSmoother
		s        StepSampler
		vertices []Point
		samples  []Sample
	)
	now := time.Now()
	c.Begin(raw[0])
	for _, p := range raw[1:] {
		batch := c.Push(p)
		vertices = append(vertices, batch...)
		samples = append(samples, s.Push(batch, 1, 0.5, now, false)...)
	}
	batch := c.Finish()
	vertices = append(vertices, batch...)
	samples = append(samples, s.Push(batch, 1, 0.5, now, true)...)

	require.Len(t, samples, len(vertices))
	for i := range vertices {
		assert.Equal(t, vertices[i], samples[i].Point)
	}
}

func TestSamplerMinimumSpacing(t *testing.T) {
	var s StepSampler
	pts := line(101, 1)
	var samples []Sample
	for i := 0; i < len(pts); i += 10 {
		samples = append(samples, s.Push(pts[i:min(i+10, len(pts))], 10, 1, time.Time{}, false)...)
	}
	require.Greater(t, len(samples), 2)
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i-1].Distance(samples[i].Point), float32(10))
	}
}

func TestSamplerForcesEndPoint(t *testing.T) {
	var s StepSampler
	samples := s.Push(line(26, 1), 10, 1, time.Time{}, true)
	require.NotEmpty(t, samples)
	last := samples[len(samples)-1]
	assert.Equal(t, Point{X: 25}, last.Point)
	assert.Less(t, samples[len(samples)-2].Distance(last.Point), float32(10))

	s.Reset()
	samples = s.Push(line(26, 1), 10, 1, time.Time{}, false)
	assert.Equal(t, Point{X: 20}, samples[len(samples)-1].Point)
}

func TestSamplerInterpolatesPressure(t *testing.T) {
	var s StepSampler
	anchor := s.Push([]Point{{0, 0}, {1, 0}}, 1, 0.2, time.Time{}, false)
	require.Len(t, anchor, 2)

	samples := s.Push([]Point{{2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0}}, 1, 0.8, time.Time{}, false)
	require.Len(t, samples, 5)
	prev := float32(0.2)
	for _, smp := range samples {
		assert.GreaterOrEqual(t, smp.Pressure, prev)
		assert.GreaterOrEqual(t, smp.Pressure, float32(0.2))
		assert.LessOrEqual(t, smp.Pressure, float32(0.8))
		prev = smp.Pressure
	}
	assert.InDelta(t, 0.32, samples[0].Pressure, 1e-6)
	assert.InDelta(t, 0.8, samples[4].Pressure, 1e-6)
}

func TestSamplerShortFirstBatch(t *testing.T) {
	var s StepSampler
	assert.Empty(t, s.Push([]Point{{1, 1}}, 1, 1, time.Time{}, true))
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestSamplerClampsPressure(t *testing.T) {
	var s StepSampler
	samples := s.Push([]Point{{0, 0}, {5, 0}}, 1, 1.7, time.Time{}, false)
	require.Len(t, samples, 2)
	assert.Equal(t, float32(1), samples[1].Pressure)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, Point{5, 0}, last.Point)
}
