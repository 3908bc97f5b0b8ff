// Package source drives a wave model with persistent point sources.
package source

import (
	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/wave"
)

// Source injects values into a model before each time step.
type Source interface {
	Apply(m *wave.Model, step int)
}

// Offset is a cell offset relative to a source centre.
type Offset struct {
	DX, DY int
}

// Footprint returns the offsets of every cell inside a disc of the given
// radius. Radius 0 is the centre cell alone.
func Footprint(radius int) []Offset {
	radius = max(radius, 0)
	offsets := make([]Offset, 0, (2*radius+1)*(2*radius+1))
	r2 := radius * radius
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			if x*x+y*y <= r2 {
				offsets = append(offsets, Offset{DX: x, DY: y})
			}
		}
	}
	return offsets
}

// emitter places a value on every free cell of a footprint.
type emitter struct {
	x, y      int
	footprint []Offset
}

func newEmitter(x, y, radius int) emitter {
	return emitter{x: x, y: y, footprint: Footprint(radius)}
}

// emit writes v around the emitter centre, skipping cells outside the
// lattice and cells blocked by the potential.
func (e emitter) emit(m *wave.Model, v lattice.Value) {
	l := m.Lattice()
	for _, o := range e.footprint {
		cx, cy := e.x+o.DX, e.y+o.DY
		if !l.Contains(cx, cy) {
			continue
		}
		if m.Potential(cx, cy) != 0 {
			continue
		}
		m.SetSourceValue(cx, cy, v)
	}
}

// Drip writes Amplitude once every Period steps and leaves the field free in
// between.
type Drip struct {
	emitter
	Period    int
	Amplitude float64
}

// NewDrip returns a drip at (x, y). A period below 1 drips every step.
func NewDrip(x, y, radius, period int, amplitude float64) *Drip {
	return &Drip{emitter: newEmitter(x, y, radius), Period: max(period, 1), Amplitude: amplitude}
}

// Apply implements Source.
func (d *Drip) Apply(m *wave.Model, step int) {
	if step%d.Period != 0 {
		return
	}
	d.emit(m, lattice.Value(d.Amplitude))
}
