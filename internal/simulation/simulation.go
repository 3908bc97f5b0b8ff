// Package simulation assembles a ripple tank from a scenario and drives it
// headlessly.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ctessum/geom"

	"github.com/Distortions81/ripple-tank/internal/config"
	"github.com/Distortions81/ripple-tank/internal/potential"
	"github.com/Distortions81/ripple-tank/internal/propagator"
	"github.com/Distortions81/ripple-tank/internal/sampler"
	"github.com/Distortions81/ripple-tank/internal/source"
	"github.com/Distortions81/ripple-tank/internal/wave"
)

// Simulation owns a wave model together with the sources feeding it and the
// samplers observing it. It is not safe for concurrent stepping; Pause and
// Resume may be called from any goroutine.
type Simulation struct {
	cfg      config.Simulation
	model    *wave.Model
	world    *potential.Composite
	sources  []source.Source
	samplers []*sampler.Sampler
	steps    int
	release  func()

	mu      sync.Mutex
	paused  bool
	resumed chan struct{} // closed by Resume

}

// New validates cfg and builds the tank it describes.
func New(cfg config.Simulation) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	m := cfg.Medium
	width, length := m.Width(), m.Length()

	s := &Simulation{cfg: cfg, world: buildWorld(cfg), release: func() {}}
	walls := potential.NewPrecomputed(s.world, width, length)

	var prop propagator.Propagator
	switch m.Backend {
	case config.BackendOpenCL:
		cl, err := propagator.NewOpenCL(walls, width, length, m.DampX, m.DampY, propagator.WithWorkers(m.Workers))
		if err != nil {
			return nil, fmt.Errorf("creating opencl propagator: %w", err)
		}
		prop = cl
		s.release = cl.Close
	default:
		prop = propagator.NewDamped(walls, width, length, m.DampX, m.DampY, propagator.WithWorkers(m.Workers))
	}
	s.model = wave.NewWithPropagator(width, length, prop)

	for i, sc := range cfg.Sources {
		src, err := s.buildSource(sc)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		s.sources = append(s.sources, src)
	}
	for i, sc := range cfg.Samplers {
		x, y := s.cell(sc.X, sc.Y)
		s.samplers = append(s.samplers, sampler.New(sc.Name, x, y, sc.Window, sc.History, sampler.PaletteColor(i)))
	}

	slog.Info("simulation ready",
		"width", width,
		"length", length,
		"damp_x", m.DampX,
		"damp_y", m.DampY,
		"backend", m.Backend,
		"obstacles", s.world.Len(),
		"sources", len(s.sources),
		"samplers", len(s.samplers))
	return s, nil
}

// buildWorld collects every configured obstacle into one composite.
func buildWorld(cfg config.Simulation) *potential.Composite {
	m := cfg.Medium
	thickness := m.WallThickness
	if thickness <= 0 {
		thickness = potential.DefaultThickness
	}
	world := potential.NewComposite()
	if m.Enclose {
		world.Add(potential.NewEnclosure(float64(m.Width()), float64(m.Length()), thickness))
	}
	for _, wc := range cfg.Walls {
		t := wc.Thickness
		if t <= 0 {
			t = thickness
		}
		p1 := geom.Point{X: wc.X1 * m.DivisionsPerCM, Y: wc.Y1 * m.DivisionsPerCM}
		p2 := geom.Point{X: wc.X2 * m.DivisionsPerCM, Y: wc.Y2 * m.DivisionsPerCM}
		world.Add(potential.NewWallThickness(p1, p2, t))
	}
	if rw := cfg.RandomWalls; rw.Count > 0 {
		rc := potential.RandomWallConfig{
			Count:             rw.Count,
			MinLen:            m.Cells(rw.MinLenCM),
			MaxLen:            m.Cells(rw.MaxLenCM),
			Thickness:         thickness,
			ThicknessVariance: rw.ThicknessVariance,
			Width:             m.Width(),
			Length:            m.Length(),
			Margin:            m.Cells(rw.MarginCM),
			ExclusionRadius:   float64(m.Cells(rw.ExclusionCM)),
		}
		if len(cfg.Sources) > 0 {
			rc.ExclusionX = cfg.Sources[0].X * m.DivisionsPerCM
			rc.ExclusionY = cfg.Sources[0].Y * m.DivisionsPerCM
		}
		world.Add(potential.RandomWalls(rand.New(rand.NewSource(rw.Seed)), rc))
	}
	return world
}

func (s *Simulation) buildSource(sc config.SourceConfig) (source.Source, error) {
	x, y := s.cell(sc.X, sc.Y)
	rate := s.cfg.Run.StepsPerSecond
	switch sc.Kind {
	case config.SourceOscillator:
		osc, err := source.NewOscillator(x, y, sc.Radius, source.Waveform(sc.Waveform), sc.Frequency, sc.Amplitude, rate)
		if err != nil {
			return nil, err
		}
		return osc, nil
	case config.SourceDrip:
		return source.NewDrip(x, y, sc.Radius, sc.Period, sc.Amplitude), nil
	case config.SourceWAV:
		samples, err := source.LoadLoop(sc.Path, rate, source.Channel(sc.Channel))
		if err != nil {
			return nil, err
		}
		return source.NewLoop(x, y, sc.Radius, samples, sc.Amplitude), nil
	}
	return nil, fmt.Errorf("%w %q", config.ErrSourceKind, sc.Kind)
}

// cell converts a position in centimetres to a lattice cell inside the
// tank.
func (s *Simulation) cell(xcm, ycm float64) (int, int) {
	m := s.cfg.Medium
	return clampCoord(m.Cells(xcm), 0, s.model.Width()-1), clampCoord(m.Cells(ycm), 0, s.model.Length()-1)
}

// clampCoord constrains v to lie within the inclusive [lo, hi] range.
func clampCoord(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Close releases backend resources.
func (s *Simulation) Close() {
	s.release()
	s.release = func() {}
}

// Model returns the underlying wave model.
func (s *Simulation) Model() *wave.Model { return s.model }

// Config returns the scenario the simulation was built from.
func (s *Simulation) Config() config.Simulation { return s.cfg }

// Samplers returns the probes in configuration order.
func (s *Simulation) Samplers() []*sampler.Sampler { return s.samplers }

// Sampler looks a probe up by name.
func (s *Simulation) Sampler(name string) (*sampler.Sampler, bool) {
	for _, smp := range s.samplers {
		if smp.Name == name {
			return smp, true
		}
	}
	return nil, false
}

// Steps returns the number of completed time steps.
func (s *Simulation) Steps() int { return s.steps }

// Pause stops Step from advancing the tank and makes Run wait.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.paused = true
		s.resumed = make(chan struct{})
	}
}

// Resume undoes Pause and wakes a waiting Run.
func (s *Simulation) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.paused = false
		close(s.resumed)
	}
}

// Paused reports whether the simulation is paused.
func (s *Simulation) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// waitResumed blocks while the simulation is paused.
func (s *Simulation) waitResumed(ctx context.Context) error {
	s.mu.Lock()
	paused, resumed := s.paused, s.resumed
	s.mu.Unlock()
	if !paused {
		return nil
	}
	slog.Info("simulation paused", "step", s.steps)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resumed:
		slog.Info("simulation resumed", "step", s.steps)
		return nil
	}
}

// AddObstacle adds p to the world and rebuilds the cached potential.
func (s *Simulation) AddObstacle(p potential.Potential) {
	s.world.Add(p)
	s.refreshPotential()
}

// RemoveObstacle removes p from the world and rebuilds the cached potential.
func (s *Simulation) RemoveObstacle(p potential.Potential) {
	s.world.Remove(p)
	s.refreshPotential()
}

func (s *Simulation) refreshPotential() {
	s.model.SetPotential(potential.NewPrecomputed(s.world, s.model.Width(), s.model.Length()))
}

// Step applies every source, advances the tank one time step and records
// every sampler. A paused simulation does nothing.
func (s *Simulation) Step() error {
	if s.Paused() {
		return nil
	}
	for _, src := range s.sources {
		src.Apply(s.model, s.steps)
	}
	if err := s.model.Propagate(); err != nil {
		return fmt.Errorf("propagating step %d: %w", s.steps, err)
	}
	for _, smp := range s.samplers {
		smp.Record(s.model)
	}
	s.steps++
	return nil
}

// StepBatch runs n consecutive steps.
func (s *Simulation) StepBatch(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run advances the simulation by n steps, checking ctx between steps and
// logging progress every Run.LogEvery completed steps. While paused it waits
// for Resume or for ctx to be done.
func (s *Simulation) Run(ctx context.Context, n int) error {
	every := s.cfg.Run.LogEvery
	start := time.Now()
	first := s.steps
	for s.steps-first < n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.waitResumed(ctx); err != nil {
			return err
		}
		before := s.steps
		if err := s.Step(); err != nil {
			return err
		}
		if every > 0 && s.steps > before && (s.steps-first)%every == 0 {
			slog.Info("simulation progress", "step", s.steps, "rate", stepRate(s.steps-first, time.Since(start)))
		}
	}
	slog.Info("simulation finished",
		"steps", s.steps-first,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"rate", stepRate(s.steps-first, time.Since(start)))
	return nil
}

// stepRate formats steps per second for logging.
func stepRate(steps int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f/s", float64(steps)/elapsed.Seconds())
}
