package sampler

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// dcAlpha is the smoothing factor of the DC tracker used for AC coupling.
const dcAlpha = 0.001

// ErrEmptyHistory is returned when exporting a sampler with no samples.
var ErrEmptyHistory = errors.New("sampler history is empty")

// acCoupled removes a slowly varying DC component from samples and scales
// the result so the loudest sample reaches full scale.
func acCoupled(samples []float64) []float64 {
	out := make([]float64, len(samples))
	var dc, peak float64
	for i, v := range samples {
		dc += dcAlpha * (v - dc)
		out[i] = v - dc
		peak = math.Max(peak, math.Abs(out[i]))
	}
	if peak == 0 {
		return out
	}
	for i := range out {
		out[i] = math.Max(-1, math.Min(1, out[i]/peak))
	}
	return out
}

// historyStreamer plays a fixed sample slice as mono audio.
type historyStreamer struct {
	samples []float64
	pos     int
}

func (h *historyStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if h.pos >= len(h.samples) {
		return 0, false
	}
	for i := range samples {
		if h.pos >= len(h.samples) {
			break
		}
		v := h.samples[h.pos]
		samples[i][0] = v
		samples[i][1] = v
		h.pos++
		n++
	}
	return n, true
}

func (h *historyStreamer) Err() error { return nil }

// WriteWAV encodes the history as a 16-bit mono WAV at sampleRate, one
// sample per recorded step.
func (s *Sampler) WriteWAV(w io.WriteSeeker, sampleRate int) error {
	h := s.History()
	if len(h) == 0 {
		return ErrEmptyHistory
	}
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, &historyStreamer{samples: acCoupled(h)}, format); err != nil {
		return fmt.Errorf("encoding %s history: %w", s.Name, err)
	}
	return nil
}

// SavePlot draws the histories of samplers against step number and writes
// the image to path. The format follows the file extension.
func SavePlot(path string, widthIn, heightIn float64, samplers ...*Sampler) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("creating plot: %w", err)
	}
	p.Title.Text = "Sampled amplitude"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "amplitude"
	for _, s := range samplers {
		h := s.History()
		if len(h) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(h))
		for i, v := range h {
			xys[i].X = float64(i)
			xys[i].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.Name, err)
		}
		line.Color = s.Color
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	if err := p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
