// Package wave composes the visible lattice with a propagator into a
// steppable wave simulation.
package wave

import (
	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/potential"
	"github.com/Distortions81/ripple-tank/internal/propagator"
)

// DefaultDamping is the absorbing margin, in cells, added on every side.
const DefaultDamping = 50

type options struct {
	dampX, dampY int
	workers      int
}

// Option configures New.
type Option func(*options)

// WithDamping overrides the absorbing margin along each axis.
func WithDamping(dampX, dampY int) Option {
	return func(o *options) {
		o.dampX, o.dampY = dampX, dampY
	}
}

// WithWorkers shards the propagator's stencil over n goroutines.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Model owns the physically meaningful, unpadded field and the propagator
// that advances it. The lattice and propagator always have the same
// unpadded size.
type Model struct {
	lattice    *lattice.Lattice
	propagator propagator.Propagator
}

// New returns a width x length model over a zero potential, driven by a
// damped propagator.
func New(width, length int, opts ...Option) *Model {
	o := options{dampX: DefaultDamping, dampY: DefaultDamping, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	p := propagator.NewDamped(potential.NewConstant(0), width, length, o.dampX, o.dampY,
		propagator.WithWorkers(o.workers))
	return NewWithPropagator(width, length, p)
}

// NewWithPropagator returns a model driven by p, which must already be
// sized width x length.
func NewWithPropagator(width, length int, p propagator.Propagator) *Model {
	return &Model{
		lattice:    lattice.New(width, length),
		propagator: p,
	}
}

// Lattice exposes the visible field. Callers must not resize it.
func (m *Model) Lattice() *lattice.Lattice { return m.lattice }

// Propagator returns the propagator driving the model.
func (m *Model) Propagator() propagator.Propagator { return m.propagator }

// Width returns the field width in cells.
func (m *Model) Width() int { return m.lattice.Width() }

// Length returns the field length in cells.
func (m *Model) Length() int { return m.lattice.Length() }

// Propagate advances the simulation by one time step.
func (m *Model) Propagate() error {
	return m.propagator.Propagate(m.lattice)
}

// SetSourceValue pins v at (x, y) in both the visible field and the
// propagator history.
func (m *Model) SetSourceValue(x, y int, v lattice.Value) {
	m.lattice.Set(x, y, v)
	m.propagator.SetBoundaryCondition(x, y, v)
}

// Value returns the visible amplitude at (x, y).
func (m *Model) Value(x, y int) lattice.Value {
	return m.lattice.At(x, y)
}

// Average returns the windowed mean of the visible field around (x, y).
func (m *Model) Average(x, y, window int) lattice.Value {
	return m.lattice.Average(x, y, window)
}

// SetSize resizes the model, discarding all field data.
func (m *Model) SetSize(width, length int) {
	m.lattice.SetSize(width, length)
	m.propagator.SetSize(width, length)
}

// SetPotential replaces the obstacle field.
func (m *Model) SetPotential(p potential.Potential) {
	m.propagator.SetPotential(p)
}

// Potential returns the obstacle field at (x, y).
func (m *Model) Potential(x, y int) float64 {
	return m.propagator.Potential(x, y)
}

// Scale rescales the field and its history.
func (m *Model) Scale(factor lattice.Value) {
	m.lattice.Scale(factor)
	m.propagator.Scale(factor)
}

// Clear zeroes the field and its history.
func (m *Model) Clear() {
	m.lattice.Clear()
	m.propagator.Clear()
}
