package state

import "time"

// StepSampler resamples smoothed vertices so that consecutive samples are
// at least one brush step apart.
type StepSampler struct {
	last    Sample
	hasLast bool
}

// Last returns the most recently emitted sample.
func (s *StepSampler) Last() (Sample, bool) { return s.last, s.hasLast }

// Reset forgets the last sample; the next Push starts a new gesture.
func (s *StepSampler) Reset() {
	s.last = Sample{}
	s.hasLast = false
}

// Push resamples vertices at the given step. Pressure moves linearly from
// the last emitted sample's pressure to pressure across the batch. With
// step <= 1 every vertex is emitted. When end is set the final vertex is
// always emitted.
//
// At the start of a gesture the first vertex becomes the anchor and is
// emitted too; a first batch shorter than two vertices yields nothing.
func (s *StepSampler) Push(vertices []Point, step, pressure float32, at time.Time, end bool) []Sample {
	var out []Sample
	if !s.hasLast {
		if len(vertices) < 2 {
			return nil
		}
		s.last = NewSample(vertices[0], pressure, at)
		s.hasLast = true
		out = append(out, s.last)
		vertices = vertices[1:]
	}

	from := s.last.Pressure
	target := clampUnit(pressure)
	n := float32(len(vertices))
	for i, v := range vertices {
		force := from + (target-from)*float32(i+1)/n
		isEnd := end && i == len(vertices)-1
		if step <= 1 || isEnd || s.last.Distance(v) >= step {
			s.last = NewSample(v, force, at)
			out = append(out, s.last)
		}
	}
	return out
}
