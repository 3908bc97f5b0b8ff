// Package propagator advances a damped 2D wave field one time step at a
// time over a lattice padded with an absorbing margin.
package propagator

import (
	"errors"

	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/potential"
)

// Stencil weights and damping constants of the finite difference update.
const (
	NeighborPropagate = 0.14
	DiagPropagate     = 0.06
	SelfPropagate     = 1.1
	MemoryTerm        = 0.95

	// XfrFactor is the total weight transferred by one update; dividing by
	// it keeps a uniform field constant before damping.
	XfrFactor = 4*(NeighborPropagate+DiagPropagate) + SelfPropagate - MemoryTerm
	// DampFactor removes 1% of the energy per step.
	DampFactor = 0.99
	MultFactor = DampFactor / XfrFactor

	// EdgeDampStep is the per-cell attenuation increment inside the
	// absorbing band.
	EdgeDampStep = 0.0001
)

// ErrNoOpenCL is returned by NewOpenCL in builds without the opencl tag.
var ErrNoOpenCL = errors.New("OpenCL support is not enabled; rebuild with -tags opencl")

// Propagator advances wave history and writes the visible field. All
// coordinates are in the caller's unpadded system and are not checked.
type Propagator interface {
	// Propagate computes one time step and copies the unpadded field into out.
	Propagate(out *lattice.Lattice) error
	// SetBoundaryCondition pins a value into both history generations.
	SetBoundaryCondition(x, y int, v lattice.Value)
	SetPotential(p potential.Potential)
	Potential(x, y int) float64
	// SetSize changes the unpadded size, discarding history if the padded
	// size changes.
	SetSize(width, length int)
	Scale(factor lattice.Value)
	Clear()
}

// padded shifts lookups from padded lattice coordinates into the caller's
// coordinate system.
type padded struct {
	inner        potential.Potential
	dampX, dampY int
}

func (p padded) At(x, y int) float64 {
	return p.inner.At(x-p.dampX, y-p.dampY)
}
