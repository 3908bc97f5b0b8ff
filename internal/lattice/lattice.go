// Package lattice provides the dense 2D amplitude grid shared by the wave
// propagator and the sampling code.
package lattice

// Value is a single wave amplitude sample.
type Value = float32

// noCopy makes go vet's copylocks check reject value copies of a Lattice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Lattice stores width*length amplitudes in row-major order, indexed as
// x*length + y. Lattices are held by pointer; use AssignFrom to copy one.
type Lattice struct {
	_ noCopy

	width  int
	length int
	values []Value
}

// New allocates a zeroed lattice. Either dimension may be zero.
func New(width, length int) *Lattice {
	l := &Lattice{}
	l.SetSize(width, length)
	return l
}

// SetSize reallocates the backing array and zeroes every cell, even when the
// dimensions are unchanged.
func (l *Lattice) SetSize(width, length int) {
	if width < 0 {
		width = 0
	}
	if length < 0 {
		length = 0
	}
	l.width = width
	l.length = length
	l.values = make([]Value, width*length)
}

// Width returns the number of rows (x extent).
func (l *Lattice) Width() int { return l.width }

// Length returns the number of columns (y extent).
func (l *Lattice) Length() int { return l.length }

// Len returns the number of cells.
func (l *Lattice) Len() int { return len(l.values) }

// At returns the value at (x, y). Coordinates are not checked.
func (l *Lattice) At(x, y int) Value {
	assertInBounds(l, x, y)
	return l.values[x*l.length+y]
}

// Set writes v at (x, y). Coordinates are not checked.
func (l *Lattice) Set(x, y int, v Value) {
	assertInBounds(l, x, y)
	l.values[x*l.length+y] = v
}

// Contains reports whether (x, y) lies inside the lattice.
func (l *Lattice) Contains(x, y int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.length
}

// Row returns the length contiguous values of row x. The slice aliases the
// lattice storage.
func (l *Lattice) Row(x int) []Value {
	assertInBounds(l, x, 0)
	base := x * l.length
	return l.values[base : base+l.length : base+l.length]
}

// Values returns the whole backing array in row-major order.
func (l *Lattice) Values() []Value {
	return l.values
}

// Average returns the mean of the square window of half-width window centred
// on (x, y). The window is clipped to the lattice and the mean is taken over
// the clipped cell count.
func (l *Lattice) Average(x, y, window int) Value {
	if len(l.values) == 0 {
		return 0
	}
	x0 := max(x-window, 0)
	x1 := min(x+window, l.width-1)
	y0 := max(y-window, 0)
	y1 := min(y+window, l.length-1)
	if x1 < x0 || y1 < y0 {
		return 0
	}
	var sum float64
	for i := x0; i <= x1; i++ {
		row := l.values[i*l.length : (i+1)*l.length]
		for j := y0; j <= y1; j++ {
			sum += float64(row[j])
		}
	}
	count := (x1 - x0 + 1) * (y1 - y0 + 1)
	return Value(sum / float64(count))
}

// Scale multiplies every cell by factor.
func (l *Lattice) Scale(factor Value) {
	if factor == 1 {
		return
	}
	for i := range l.values {
		l.values[i] *= factor
	}
}

// ScaleAt multiplies a single cell by factor.
func (l *Lattice) ScaleAt(x, y int, factor Value) {
	assertInBounds(l, x, y)
	l.values[x*l.length+y] *= factor
}

// Clear zeroes every cell, keeping the dimensions.
func (l *Lattice) Clear() {
	l.SetSize(l.width, l.length)
}

// AssignFrom deep-copies src into l, resizing l only when the dimensions
// differ.
func (l *Lattice) AssignFrom(src *Lattice) {
	if l == src {
		return
	}
	if l.width != src.width || l.length != src.length {
		l.SetSize(src.width, src.length)
	}
	copy(l.values, src.values)
}
