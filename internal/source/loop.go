package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/wave"
)

// Channel selects which part of a stereo recording drives a loop.
type Channel string

const (
	Mono  Channel = "mono" // average of both channels
	Left  Channel = "left"
	Right Channel = "right"
)

// pcmFrameBytes is one decoded frame: two little-endian int16 samples.
const pcmFrameBytes = 4

const pcmScale = 1.0 / 32768

// mixer returns the function folding one stereo frame into a sample.
func (c Channel) mixer() (func(l, r int16) lattice.Value, error) {
	switch c {
	case Mono, "":
		return func(l, r int16) lattice.Value {
			return (lattice.Value(l) + lattice.Value(r)) * (0.5 * pcmScale)
		}, nil
	case Left:
		return func(l, _ int16) lattice.Value { return lattice.Value(l) * pcmScale }, nil
	case Right:
		return func(_, r int16) lattice.Value { return lattice.Value(r) * pcmScale }, nil
	}
	return nil, fmt.Errorf("unknown channel %q", c)
}

// LoadLoop decodes the WAV at path, resampled to sampleRate, and folds each
// frame to one sample in [-1, 1) according to ch.
func LoadLoop(path string, sampleRate int, ch Channel) ([]lattice.Value, error) {
	mix, err := ch.mixer()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening loop: %w", err)
	}
	defer f.Close()

	stream, err := wav.DecodeWithSampleRate(sampleRate, f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	samples, err := readFrames(stream, mix)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %s has no audio frames", path)
	}
	return samples, nil
}

// readFrames drains r in chunks and mixes every complete frame. Reads may
// split frames; a trailing partial frame is dropped.
func readFrames(r io.Reader, mix func(l, r int16) lattice.Value) ([]lattice.Value, error) {
	buf := make([]byte, 1024*pcmFrameBytes)
	var out []lattice.Value
	pending := 0
	for {
		n, err := r.Read(buf[pending:])
		n += pending
		whole := n - n%pcmFrameBytes
		for off := 0; off < whole; off += pcmFrameBytes {
			left := int16(binary.LittleEndian.Uint16(buf[off:]))
			right := int16(binary.LittleEndian.Uint16(buf[off+2:]))
			out = append(out, mix(left, right))
		}
		pending = copy(buf, buf[whole:n])
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Loop replays a recorded signal as a pressure source, one sample per step,
// wrapping at the end.
type Loop struct {
	emitter
	Amplitude float64

	samples []lattice.Value
	pos     int
}

// NewLoop returns a loop source. An empty sample set emits zeros.
func NewLoop(x, y, radius int, samples []lattice.Value, amplitude float64) *Loop {
	return &Loop{emitter: newEmitter(x, y, radius), Amplitude: amplitude, samples: samples}
}

// Apply implements Source.
func (l *Loop) Apply(m *wave.Model, _ int) {
	if len(l.samples) == 0 {
		l.emit(m, 0)
		return
	}
	v := l.samples[l.pos]
	l.pos++
	if l.pos >= len(l.samples) {
		l.pos = 0
	}
	l.emit(m, lattice.Value(l.Amplitude)*v)
}
