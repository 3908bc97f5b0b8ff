// Package sampler records windowed averages of the wave field at fixed
// points and exports the resulting histories.
package sampler

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Distortions81/ripple-tank/internal/lattice"
)

// DefaultCapacity is the history length used when none is given.
const DefaultCapacity = 1024

// Field is the read side of a wave model.
type Field interface {
	Average(x, y, window int) lattice.Value
}

// palette holds the predefined sampler colours, picked by index.
var palette = []color.RGBA{
	{R: 230, G: 25, B: 75, A: 255},
	{R: 60, G: 180, B: 75, A: 255},
	{R: 0, G: 130, B: 200, A: 255},
	{R: 245, G: 130, B: 48, A: 255},
	{R: 145, G: 30, B: 180, A: 255},
	{R: 70, G: 240, B: 240, A: 255},
	{R: 240, G: 50, B: 230, A: 255},
	{R: 128, G: 128, B: 0, A: 255},
}

// PaletteColor returns the i-th predefined colour, cycling through the
// palette.
func PaletteColor(i int) color.RGBA {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

// Sampler keeps a rolling history of the field averaged over a square
// window around (X, Y).
type Sampler struct {
	Name   string
	X, Y   int
	Window int
	Color  color.RGBA

	history []float64
	start   int
	count   int
}

// New returns a sampler with room for capacity samples. A capacity below 1
// uses DefaultCapacity.
func New(name string, x, y, window, capacity int, c color.RGBA) *Sampler {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Sampler{
		Name:    name,
		X:       x,
		Y:       y,
		Window:  max(window, 0),
		Color:   c,
		history: make([]float64, capacity),
	}
}

// Record samples f and appends the value, dropping the oldest sample when
// the history is full.
func (s *Sampler) Record(f Field) lattice.Value {
	v := f.Average(s.X, s.Y, s.Window)
	capacity := len(s.history)
	if s.count < capacity {
		s.history[(s.start+s.count)%capacity] = float64(v)
		s.count++
	} else {
		s.history[s.start] = float64(v)
		s.start = (s.start + 1) % capacity
	}
	return v
}

// Len returns the number of recorded samples.
func (s *Sampler) Len() int { return s.count }

// Capacity returns the maximum history length.
func (s *Sampler) Capacity() int { return len(s.history) }

// History returns the recorded samples, oldest first.
func (s *Sampler) History() []float64 {
	out := make([]float64, s.count)
	capacity := len(s.history)
	for i := range out {
		out[i] = s.history[(s.start+i)%capacity]
	}
	return out
}

// Last returns the most recent sample, or 0 if none was recorded.
func (s *Sampler) Last() float64 {
	if s.count == 0 {
		return 0
	}
	return s.history[(s.start+s.count-1)%len(s.history)]
}

// Reset drops the history.
func (s *Sampler) Reset() {
	s.start, s.count = 0, 0
}

// Stats summarises a sampler history.
type Stats struct {
	Count    int
	Mean     float64
	StdDev   float64
	Min, Max float64
}

// Stats computes summary statistics over the current history.
func (s *Sampler) Stats() Stats {
	h := s.History()
	if len(h) == 0 {
		return Stats{}
	}
	st := Stats{Count: len(h), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range h {
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	if len(h) == 1 {
		st.Mean = h[0]
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(h, nil)
	return st
}
