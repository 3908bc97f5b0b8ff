// Package potential models the scalar fields that mark obstacles in the
// wave medium. A non-zero potential at a lattice cell blocks propagation
// there.
package potential

import (
	"log/slog"
	"reflect"
)

// Potential is a scalar field over lattice coordinates. Implementations must
// be safe for concurrent reads and return 0 where they have no data.
type Potential interface {
	At(x, y int) float64
}

// Constant is the same value everywhere.
type Constant struct {
	Value float64
}

// NewConstant returns a constant potential.
func NewConstant(v float64) *Constant {
	return &Constant{Value: v}
}

// At implements Potential.
func (c *Constant) At(int, int) float64 { return c.Value }

// Composite sums an ordered list of child potentials. Children are shared,
// not owned: the same child may appear in other composites or more than once
// in this one.
type Composite struct {
	children []Potential
}

// NewComposite returns a composite over the given children.
func NewComposite(children ...Potential) *Composite {
	c := &Composite{}
	for _, p := range children {
		c.Add(p)
	}
	return c
}

// Add appends p.
func (c *Composite) Add(p Potential) {
	if p == nil {
		return
	}
	c.children = append(c.children, p)
}

// Remove drops the first child identical to p. Removing a potential that is
// not present logs a warning and leaves the composite unchanged. Children
// of uncomparable types (slice, map or func backed) never match.
func (c *Composite) Remove(p Potential) {
	for i, child := range c.children {
		if identical(child, p) {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
	slog.Warn("remove of potential not in composite", "children", len(c.children))
}

// identical reports whether a and b are the same comparable value.
func identical(a, b Potential) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Len returns the number of children.
func (c *Composite) Len() int { return len(c.children) }

// At implements Potential.
func (c *Composite) At(x, y int) float64 {
	var sum float64
	for _, p := range c.children {
		sum += p.At(x, y)
	}
	return sum
}

// Precomputed is a dense snapshot of another potential over
// [0,width) x [0,length). Outside that region it is exactly zero, so an
// obstacle reaching past the table edge is cut off there.
type Precomputed struct {
	width  int
	length int
	table  []float64
}

// NewPrecomputed evaluates inner once for every cell of the region.
func NewPrecomputed(inner Potential, width, length int) *Precomputed {
	width = max(width, 0)
	length = max(length, 0)
	p := &Precomputed{
		width:  width,
		length: length,
		table:  make([]float64, width*length),
	}
	for i := 0; i < width; i++ {
		base := i * length
		for j := 0; j < length; j++ {
			p.table[base+j] = inner.At(i, j)
		}
	}
	return p
}

// At implements Potential.
func (p *Precomputed) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= p.width || y >= p.length {
		return 0
	}
	return p.table[x*p.length+y]
}
