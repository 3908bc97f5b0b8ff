package potential

import (
	"math"

	"github.com/ctessum/geom"
)

const (
	// DefaultPotential is the value a wall reports inside its band.
	DefaultPotential = 100.0
	// DefaultThickness is the full width of a wall band in lattice cells.
	DefaultThickness = 5.0

	// alphaTolerance is scaled by the segment length when testing whether a
	// projection falls on the segment.
	alphaTolerance = 1e-9
)

// Wall is a band of constant potential around the segment P1-P2.
type Wall struct {
	P1, P2 geom.Point

	line   geom.LineString
	bounds *geom.Bounds // segment extent grown by the half thickness
	half   float64
	dx, dy float64
	lenSq  float64
	tol    float64
}

// NewWall returns a wall of DefaultThickness between p1 and p2.
func NewWall(p1, p2 geom.Point) *Wall {
	return NewWallThickness(p1, p2, DefaultThickness)
}

// NewWallThickness returns a wall whose band extends thickness/2 on either
// side of the segment.
func NewWallThickness(p1, p2 geom.Point, thickness float64) *Wall {
	w := &Wall{
		P1:   p1,
		P2:   p2,
		line: geom.LineString{p1, p2},
		half: thickness / 2,
		dx:   p2.X - p1.X,
		dy:   p2.Y - p1.Y,
	}
	w.bounds = w.line.Bounds()
	w.bounds.Min.X -= w.half
	w.bounds.Min.Y -= w.half
	w.bounds.Max.X += w.half
	w.bounds.Max.Y += w.half
	w.lenSq = w.dx*w.dx + w.dy*w.dy
	w.tol = alphaTolerance * math.Sqrt(w.lenSq)
	return w
}

// Thickness returns the full band width.
func (w *Wall) Thickness() float64 {
	return 2 * w.half
}

// alpha returns the position of p's projection along the segment, 0 at P1
// and 1 at P2.
func (w *Wall) alpha(p geom.Point) float64 {
	if w.lenSq == 0 {
		return 0
	}
	return ((p.X-w.P1.X)*w.dx + (p.Y-w.P1.Y)*w.dy) / w.lenSq
}

// At implements Potential. Only points whose projection lands on the
// segment are inside the band, so the ends are square rather than rounded.
func (w *Wall) At(x, y int) float64 {
	p := geom.Point{X: float64(x), Y: float64(y)}
	b := w.bounds
	if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
		return 0
	}
	if a := w.alpha(p); a < -w.tol || a > 1+w.tol {
		return 0
	}
	if w.line.Distance(p) < w.half {
		return DefaultPotential
	}
	return 0
}

// NewEnclosure returns four walls along the edges of the rectangle
// (0,0)-(width,length).
func NewEnclosure(width, length, thickness float64) *Composite {
	c0 := geom.Point{X: 0, Y: 0}
	c1 := geom.Point{X: width, Y: 0}
	c2 := geom.Point{X: width, Y: length}
	c3 := geom.Point{X: 0, Y: length}
	return NewComposite(
		NewWallThickness(c0, c1, thickness),
		NewWallThickness(c1, c2, thickness),
		NewWallThickness(c2, c3, thickness),
		NewWallThickness(c3, c0, thickness),
	)
}
