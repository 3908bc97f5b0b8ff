package source

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/wave"
)

// Waveform selects the oscillator shape.
type Waveform string

const (
	Sine   Waveform = "sine"
	Square Waveform = "square"
)

// Oscillator drives a periodic signal, pulling one sample per simulation
// step. The step rate plays the role of the audio sample rate.
type Oscillator struct {
	emitter
	Amplitude float64

	streamer beep.Streamer
	frame    [][2]float64
}

// NewOscillator returns an oscillator of frequency freq (cycles per second
// of simulated time) at (x, y), sampled stepRate times per second.
func NewOscillator(x, y, radius int, shape Waveform, freq, amplitude float64, stepRate int) (*Oscillator, error) {
	sr := beep.SampleRate(stepRate)
	var (
		s   beep.Streamer
		err error
	)
	switch shape {
	case Sine, "":
		s, err = generators.SineTone(sr, freq)
	case Square:
		s, err = newSquareTone(sr, freq)
	default:
		return nil, fmt.Errorf("unknown waveform %q", shape)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s oscillator: %w", shape, err)
	}
	return &Oscillator{
		emitter:   newEmitter(x, y, radius),
		Amplitude: amplitude,
		streamer:  s,
		frame:     make([][2]float64, 1),
	}, nil
}

// Apply implements Source.
func (o *Oscillator) Apply(m *wave.Model, _ int) {
	n, ok := o.streamer.Stream(o.frame)
	if !ok || n == 0 {
		return
	}
	o.emit(m, lattice.Value(o.Amplitude*o.frame[0][0]))
}

// squareTone is a +/-1 square wave streamer.
type squareTone struct {
	phase float64
	step  float64
}

func newSquareTone(sr beep.SampleRate, freq float64) (beep.Streamer, error) {
	if freq <= 0 || float64(sr) < 2*freq {
		return nil, fmt.Errorf("frequency %v out of range for rate %d", freq, sr)
	}
	return &squareTone{step: freq / float64(sr)}, nil
}

func (s *squareTone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := -1.0
		if s.phase < 0.5 {
			v = 1.0
		}
		samples[i][0] = v
		samples[i][1] = v
		s.phase += s.step
		s.phase -= math.Floor(s.phase)
	}
	return len(samples), true
}

func (s *squareTone) Err() error { return nil }
