package potential

import (
	"bytes"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant(t *testing.T) {
	c := NewConstant(2.5)
	assert.Equal(t, 2.5, c.At(0, 0))
	assert.Equal(t, 2.5, c.At(-40, 1000))
	assert.Zero(t, NewConstant(0).At(3, 3))
}

func TestWallBand(t *testing.T) {
	w := NewWall(geom.Point{X: 0, Y: 0}, geom.Point{X: 5, Y: 5})
	assert.InDelta(t, DefaultThickness, w.Thickness(), 1e-12)

	tests := []struct {
		x, y int
		want float64
	}{
		{2, 2, DefaultPotential},
		{2, 3, DefaultPotential},
		{3, 2, DefaultPotential},
		{4, 2, DefaultPotential},
		{0, 0, DefaultPotential},
		{5, 5, DefaultPotential},
		{6, 6, 0},
		{5, 0, 0},
		{-1, -1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.At(tt.x, tt.y), "At(%d, %d)", tt.x, tt.y)
	}
}

func TestWallThickness(t *testing.T) {
	thin := NewWallThickness(geom.Point{X: 0, Y: 5}, geom.Point{X: 10, Y: 5}, 1)
	assert.Equal(t, DefaultPotential, thin.At(4, 5))
	assert.Zero(t, thin.At(4, 6))

	thick := NewWallThickness(geom.Point{X: 0, Y: 5}, geom.Point{X: 10, Y: 5}, 7)
	assert.Equal(t, DefaultPotential, thick.At(4, 8))
	assert.Zero(t, thick.At(4, 9))
	assert.Zero(t, thick.At(11, 5), "past the end of the segment")
}

func TestWallDegenerateSegment(t *testing.T) {
	w := NewWall(geom.Point{X: 3, Y: 3}, geom.Point{X: 3, Y: 3})
	assert.Equal(t, DefaultPotential, w.At(3, 3))
	assert.Equal(t, DefaultPotential, w.At(4, 4))
	assert.Zero(t, w.At(6, 3))
}

func TestCompositeAdditivity(t *testing.T) {
	pi := NewConstant(3.14159)
	c := NewComposite()
	c.Add(pi)
	c.Add(pi)
	require.Equal(t, 2, c.Len())
	assert.InDelta(t, 2*3.14159, c.At(7, 11), 1e-12)

	c.Remove(pi)
	require.Equal(t, 1, c.Len())
	assert.InDelta(t, 3.14159, c.At(7, 11), 1e-12)
}

// captureLogs routes the default slog logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestCompositeRemoveAbsentIsNoop(t *testing.T) {
	logs := captureLogs(t)
	a := NewConstant(1)
	b := NewConstant(1)
	c := NewComposite(a)

	c.Remove(b)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "remove of potential not in composite")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1.0, c.At(0, 0))

	c.Remove(a)
	c.Remove(a)
	assert.Zero(t, c.Len())
	assert.Zero(t, c.At(0, 0))
}

// gridField is a slice backed potential, so its values cannot be compared.
type gridField []float64

func (g gridField) At(x, _ int) float64 {
	if x < 0 || x >= len(g) {
		return 0
	}
	return g[x]
}

func TestCompositeRemoveUncomparableChild(t *testing.T) {
	logs := captureLogs(t)
	field := gridField{1, 2}
	wall := NewWall(geom.Point{X: 0, Y: 0}, geom.Point{X: 4, Y: 0})
	c := NewComposite(field, wall)

	assert.NotPanics(t, func() { c.Remove(gridField{1, 2}) })
	assert.Equal(t, 2, c.Len())
	assert.Contains(t, logs.String(), "level=WARN")

	assert.NotPanics(t, func() { c.Remove(wall) })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2.0, c.At(1, 0))
}

func TestWallSquareEndsAndCovers(t *testing.T) {
	w := NewWall(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0})

	assert.Equal(t, DefaultPotential, w.At(5, 2))
	assert.Zero(t, w.At(5, 3))
	assert.Zero(t, w.At(-1, 0), "beyond the end of the segment")
	assert.Zero(t, w.At(40, 40))

	assert.True(t, w.covers(5, 4, 2))
	assert.False(t, w.covers(5, 5, 2))
	assert.True(t, w.covers(-3, 0, 1), "disc reaches the band past the end")
}

func TestCompositeSharesChildren(t *testing.T) {
	shared := NewConstant(1)
	left := NewComposite(shared)
	right := NewComposite(shared, left)

	assert.Equal(t, 2.0, right.At(0, 0))
	shared.Value = 4
	assert.Equal(t, 8.0, right.At(0, 0))
}

func TestPrecomputedMatchesInner(t *testing.T) {
	inner := NewWall(geom.Point{X: 0, Y: 0}, geom.Point{X: 5, Y: 5})
	p := NewPrecomputed(inner, 8, 8)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			assert.Equal(t, inner.At(x, y), p.At(x, y), "At(%d, %d)", x, y)
		}
	}
	assert.Zero(t, p.At(-1, 0))
	assert.Zero(t, p.At(0, 8))
}

func TestPrecomputedTruncation(t *testing.T) {
	const size = 50
	world := NewEnclosure(size, size, DefaultThickness)
	p := NewPrecomputed(world, size-1, size-1)

	assert.Zero(t, p.At(size/2, size), "just outside the table")
	assert.Equal(t, DefaultPotential, p.At(size/2, size-2), "wall band reaches inside")
	assert.Equal(t, DefaultPotential, world.At(size/2, size), "inner potential continues past the table")
	assert.Zero(t, p.At(size/2, size/2))
}

func TestRandomWallsAvoidExclusion(t *testing.T) {
	cfg := RandomWallConfig{
		Count:             25,
		MinLen:            5,
		MaxLen:            30,
		Thickness:         1,
		ThicknessVariance: 2,
		Width:             120,
		Length:            80,
		Margin:            2,
		ExclusionX:        60,
		ExclusionY:        40,
		ExclusionRadius:   6,
	}
	walls := RandomWalls(rand.New(rand.NewSource(1)), cfg)
	require.NotZero(t, walls.Len())

	for x := 55; x <= 65; x++ {
		for y := 35; y <= 45; y++ {
			dx, dy := float64(x)-60, float64(y)-40
			if dx*dx+dy*dy < 36 {
				assert.Zero(t, walls.At(x, y), "wall inside exclusion at (%d, %d)", x, y)
			}
		}
	}
	assert.Zero(t, walls.At(0, 0), "margin stays clear")
}

func TestRandomWallsDeterministic(t *testing.T) {
	cfg := RandomWallConfig{Count: 5, MinLen: 3, MaxLen: 9, Thickness: 2, Width: 40, Length: 40, Margin: 1}
	a := NewPrecomputed(RandomWalls(rand.New(rand.NewSource(7)), cfg), 40, 40)
	b := NewPrecomputed(RandomWalls(rand.New(rand.NewSource(7)), cfg), 40, 40)
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			require.Equal(t, a.At(x, y), b.At(x, y))
		}
	}

	empty := RandomWalls(rand.New(rand.NewSource(1)), RandomWallConfig{Count: 3, Width: 2, Length: 2, Margin: 1})
	assert.Zero(t, empty.Len())
}
