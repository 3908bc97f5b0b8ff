package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCenterLattice(t *testing.T) *Lattice {
	t.Helper()
	l := New(5, 5)
	l.Set(2, 2, 9)
	return l
}

func TestNew(t *testing.T) {
	l := New(3, 4)
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 4, l.Length())
	require.Len(t, l.Values(), 12)
	for _, v := range l.Values() {
		assert.Zero(t, v)
	}

	empty := New(0, 7)
	assert.Equal(t, 0, empty.Len())
	assert.Zero(t, empty.Average(0, 0, 3))
}

func TestRowMajorIndexing(t *testing.T) {
	l := New(3, 4)
	l.Set(1, 2, 7)
	assert.Equal(t, Value(7), l.Values()[1*4+2])
	assert.Equal(t, []Value{0, 0, 7, 0}, l.Row(1))

	l.Row(2)[3] = 5
	assert.Equal(t, Value(5), l.At(2, 3))
}

func TestContains(t *testing.T) {
	l := New(3, 4)
	assert.True(t, l.Contains(0, 0))
	assert.True(t, l.Contains(2, 3))
	assert.False(t, l.Contains(3, 0))
	assert.False(t, l.Contains(0, 4))
	assert.False(t, l.Contains(-1, 0))
}

func TestAverage(t *testing.T) {
	l := newCenterLattice(t)

	tests := []struct {
		name         string
		x, y, window int
		want         Value
	}{
		{name: "single cell", x: 2, y: 2, window: 0, want: 9},
		{name: "3x3 window", x: 2, y: 2, window: 1, want: 1},
		{name: "full lattice", x: 2, y: 2, window: 2, want: 9.0 / 25},
		{name: "corner misses center", x: 0, y: 0, window: 1, want: 0},
		{name: "clipped corner", x: 0, y: 0, window: 2, want: 9.0 / 9},
		{name: "clipped edge", x: 0, y: 2, window: 2, want: 9.0 / 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, l.Average(tt.x, tt.y, tt.window), 1e-6)
		})
	}
}

func TestAverageCornerWindow(t *testing.T) {
	l := New(5, 5)
	l.Set(4, 4, 9)
	assert.Zero(t, l.Average(0, 0, 2))
	assert.InDelta(t, 9.0/9, l.Average(4, 4, 2), 1e-6)
}

func TestSetSizeIsDestructive(t *testing.T) {
	l := newCenterLattice(t)
	l.SetSize(10, 20)
	assert.Equal(t, 10, l.Width())
	assert.Equal(t, 20, l.Length())
	assert.Zero(t, l.At(2, 2))

	l.Set(2, 2, 9)
	l.SetSize(10, 20)
	assert.Zero(t, l.At(2, 2))
}

func TestClear(t *testing.T) {
	l := newCenterLattice(t)
	l.Clear()
	assert.Equal(t, 5, l.Width())
	assert.Equal(t, 5, l.Length())
	assert.Zero(t, l.At(2, 2))
}

func TestScale(t *testing.T) {
	l := newCenterLattice(t)
	l.Set(0, 0, -2)
	l.Scale(0.5)
	assert.Equal(t, Value(4.5), l.At(2, 2))
	assert.Equal(t, Value(-1), l.At(0, 0))

	l.Scale(1)
	assert.Equal(t, Value(4.5), l.At(2, 2))

	l.ScaleAt(2, 2, 2)
	assert.Equal(t, Value(9), l.At(2, 2))
	assert.Equal(t, Value(-1), l.At(0, 0))
}

func TestAssignFromResizesAndDeepCopies(t *testing.T) {
	a := newCenterLattice(t)
	b := New(2, 3)

	b.AssignFrom(a)
	assert.Equal(t, a.Width(), b.Width())
	assert.Equal(t, a.Length(), b.Length())
	assert.Equal(t, Value(9), b.At(2, 2))

	a.Set(2, 2, 1)
	a.Set(0, 0, 4)
	assert.Equal(t, Value(9), b.At(2, 2))
	assert.Zero(t, b.At(0, 0))
}

func TestAssignFromSameSizeKeepsStorage(t *testing.T) {
	a := newCenterLattice(t)
	b := New(5, 5)
	row := b.Row(2)

	b.AssignFrom(a)
	assert.Equal(t, Value(9), row[2], "same-size assignment copies into existing storage")

	b.AssignFrom(b)
	assert.Equal(t, Value(9), b.At(2, 2))
}
