package propagator

import (
	"github.com/Distortions81/ripple-tank/internal/lattice"
	"github.com/Distortions81/ripple-tank/internal/potential"
)

const (
	neighbor32 = lattice.Value(NeighborPropagate)
	diag32     = lattice.Value(DiagPropagate)
	self32     = lattice.Value(SelfPropagate)
	memory32   = lattice.Value(MemoryTerm)
	mult32     = lattice.Value(MultFactor)
)

// stencilKernel computes the interior of d.current from d.prior and
// d.priorPrior.
type stencilKernel interface {
	step(d *Damped) error
}

// Damped is the damped classical wave propagator. It keeps three
// generations of the field on a lattice enlarged by dampX and dampY cells on
// every side; the margin absorbs outgoing waves before they can reflect off
// the true boundary.
type Damped struct {
	potential    padded
	dampX, dampY int
	width        int
	length       int

	current    *lattice.Lattice
	prior      *lattice.Lattice
	priorPrior *lattice.Lattice

	damping bool
	workers int
	kernel  stencilKernel
}

// Option configures a Damped propagator.
type Option func(*Damped)

// WithWorkers shards the stencil rows over n goroutines.
func WithWorkers(n int) Option {
	return func(d *Damped) {
		d.workers = max(n, 1)
	}
}

// WithoutDamping disables the absorbing edge passes.
func WithoutDamping() Option {
	return func(d *Damped) {
		d.damping = false
	}
}

// NewDamped returns a propagator for a width x length field padded by dampX
// and dampY cells. A nil potential is treated as zero everywhere.
func NewDamped(p potential.Potential, width, length, dampX, dampY int, opts ...Option) *Damped {
	d := &Damped{
		dampX:      max(dampX, 0),
		dampY:      max(dampY, 0),
		current:    lattice.New(0, 0),
		prior:      lattice.New(0, 0),
		priorPrior: lattice.New(0, 0),
		damping:    true,
		workers:    1,
		kernel:     cpuKernel{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.SetPotential(p)
	d.resize(width, length)
	return d
}

// DampX returns the padding added on each side along x.
func (d *Damped) DampX() int { return d.dampX }

// DampY returns the padding added on each side along y.
func (d *Damped) DampY() int { return d.dampY }

// Width returns the unpadded width.
func (d *Damped) Width() int { return d.width }

// Length returns the unpadded length.
func (d *Damped) Length() int { return d.length }

// SetPotential replaces the obstacle field.
func (d *Damped) SetPotential(p potential.Potential) {
	if p == nil {
		p = potential.NewConstant(0)
	}
	d.potential = padded{inner: p, dampX: d.dampX, dampY: d.dampY}
}

// Potential returns the obstacle field at an unpadded coordinate.
func (d *Damped) Potential(x, y int) float64 {
	return d.potential.At(x+d.dampX, y+d.dampY)
}

// SetSize resizes the history only when the padded size changes.
func (d *Damped) SetSize(width, length int) {
	pw := max(width, 0) + 2*d.dampX
	pl := max(length, 0) + 2*d.dampY
	if pw == d.current.Width() && pl == d.current.Length() {
		d.width, d.length = max(width, 0), max(length, 0)
		return
	}
	d.resize(width, length)
}

func (d *Damped) resize(width, length int) {
	d.width = max(width, 0)
	d.length = max(length, 0)
	pw := d.width + 2*d.dampX
	pl := d.length + 2*d.dampY
	d.current.SetSize(pw, pl)
	d.prior.SetSize(pw, pl)
	d.priorPrior.SetSize(pw, pl)
}

// SetBoundaryCondition writes v into the prior and prior-prior generations
// so that the next step sees it as a persistent source.
func (d *Damped) SetBoundaryCondition(x, y int, v lattice.Value) {
	px, py := x+d.dampX, y+d.dampY
	d.prior.Set(px, py, v)
	d.priorPrior.Set(px, py, v)
}

// Scale multiplies the stored history by factor.
func (d *Damped) Scale(factor lattice.Value) {
	d.prior.Scale(factor)
	d.priorPrior.Scale(factor)
}

// Clear zeroes the stored history.
func (d *Damped) Clear() {
	d.prior.Clear()
	d.priorPrior.Clear()
}

// Propagate advances one time step and copies the unpadded field into out,
// resizing out if it does not match.
func (d *Damped) Propagate(out *lattice.Lattice) error {
	if err := d.kernel.step(d); err != nil {
		return err
	}
	if d.damping {
		d.copyEdges()
		d.dampBand(d.current)
		d.dampBand(d.prior)
	}
	d.swap()
	if d.damping {
		d.dampBand(d.prior)
		d.dampBand(d.priorPrior)
	}
	d.extract(out)
	return nil
}

// swap rotates the generations: prior becomes prior-prior and the freshly
// computed field becomes prior. The old prior-prior buffer is reused for the
// next step's output.
func (d *Damped) swap() {
	d.priorPrior, d.prior, d.current = d.prior, d.current, d.priorPrior
}

// stencilRows applies the update to padded rows [x0, x1). Cells with a
// non-zero potential are forced to zero.
func (d *Damped) stencilRows(x0, x1 int) {
	n := d.current.Length()
	for i := x0; i < x1; i++ {
		up := d.prior.Row(i - 1)
		row := d.prior.Row(i)
		down := d.prior.Row(i + 1)
		mem := d.priorPrior.Row(i)
		out := d.current.Row(i)
		for j := 1; j < n-1; j++ {
			if d.potential.At(i, j) != 0 {
				out[j] = 0
				continue
			}
			orth := up[j] + row[j-1] + row[j+1] + down[j]
			diag := up[j-1] + up[j+1] + down[j-1] + down[j+1]
			out[j] = mult32 * (row[j]*self32 - mem[j]*memory32 + orth*neighbor32 + diag*diag32)
		}
	}
}

// copyEdges sets the outer ring of the new field to the prior-prior values
// one cell inward. The column pass runs last, so each corner takes the cell
// one column in on its own row.
func (d *Damped) copyEdges() {
	w, n := d.current.Width(), d.current.Length()
	if w < 2 || n < 2 {
		return
	}
	copy(d.current.Row(0), d.priorPrior.Row(1))
	copy(d.current.Row(w-1), d.priorPrior.Row(w-2))
	for i := 0; i < w; i++ {
		src := d.priorPrior.Row(i)
		dst := d.current.Row(i)
		dst[0] = src[1]
		dst[n-1] = src[n-2]
	}
}

// dampBand attenuates a band dampX/2 rows and dampY/2 columns deep along
// each edge of l. The attenuation grows linearly towards the outer edge.
func (d *Damped) dampBand(l *lattice.Lattice) {
	w, n := l.Width(), l.Length()
	bandX := min(d.dampX/2, w/2)
	bandY := min(d.dampY/2, n/2)
	for k := 0; k < bandX; k++ {
		f := lattice.Value(1 - float64(bandX-k)*EdgeDampStep)
		scaleRow(l.Row(k), f)
		scaleRow(l.Row(w-1-k), f)
	}
	if bandY == 0 {
		return
	}
	for i := 0; i < w; i++ {
		row := l.Row(i)
		for k := 0; k < bandY; k++ {
			f := lattice.Value(1 - float64(bandY-k)*EdgeDampStep)
			row[k] *= f
			row[n-1-k] *= f
		}
	}
}

func scaleRow(row []lattice.Value, f lattice.Value) {
	for j := range row {
		row[j] *= f
	}
}

// extract copies the unpadded interior of the newest generation into out.
func (d *Damped) extract(out *lattice.Lattice) {
	if out.Width() != d.width || out.Length() != d.length {
		out.SetSize(d.width, d.length)
	}
	for i := 0; i < d.width; i++ {
		src := d.prior.Row(i + d.dampX)
		copy(out.Row(i), src[d.dampY:d.dampY+d.length])
	}
}
