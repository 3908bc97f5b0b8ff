package potential

import (
	"math"
	"math/rand"

	"github.com/ctessum/geom"
)

// RandomWallConfig controls procedural wall placement.
type RandomWallConfig struct {
	Count             int
	MinLen, MaxLen    int
	Thickness         float64
	ThicknessVariance int

	// Walls are kept inside [Margin, Width-Margin) x [Margin, Length-Margin).
	Width, Length int
	Margin        int

	// No wall band may cover the disc of ExclusionRadius around
	// (ExclusionX, ExclusionY). Sources are usually placed there.
	ExclusionX, ExclusionY float64
	ExclusionRadius        float64
}

// maxPlacementAttempts bounds the retries for a wall that lands on the
// exclusion disc.
const maxPlacementAttempts = 16

// RandomWalls scatters axis-aligned wall segments over the region described
// by cfg and returns them as a composite.
func RandomWalls(rng *rand.Rand, cfg RandomWallConfig) *Composite {
	c := NewComposite()
	innerW := cfg.Width - 2*cfg.Margin
	innerL := cfg.Length - 2*cfg.Margin
	if innerW <= 0 || innerL <= 0 {
		return c
	}
	lengthRange := cfg.MaxLen - cfg.MinLen + 1
	if lengthRange <= 0 {
		lengthRange = 1
	}
	for s := 0; s < cfg.Count; s++ {
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			length := cfg.MinLen + rng.Intn(lengthRange)
			thickness := cfg.Thickness
			if cfg.ThicknessVariance > 0 {
				thickness += float64(rng.Intn(cfg.ThicknessVariance + 1))
			}
			x := float64(cfg.Margin + rng.Intn(innerW))
			y := float64(cfg.Margin + rng.Intn(innerL))
			p1 := geom.Point{X: x, Y: y}
			p2 := p1
			if rng.Intn(2) == 0 {
				p2.X = math.Min(x+float64(length), float64(cfg.Width-cfg.Margin-1))
			} else {
				p2.Y = math.Min(y+float64(length), float64(cfg.Length-cfg.Margin-1))
			}
			wall := NewWallThickness(p1, p2, thickness)
			if cfg.ExclusionRadius > 0 && wall.covers(cfg.ExclusionX, cfg.ExclusionY, cfg.ExclusionRadius) {
				continue
			}
			c.Add(wall)
			break
		}
	}
	return c
}

// covers reports whether the wall band comes within r of (px, py).
func (w *Wall) covers(px, py, r float64) bool {
	return w.line.Distance(geom.Point{X: px, Y: py}) < w.half+r
}
