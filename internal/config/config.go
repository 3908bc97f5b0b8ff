// Package config loads ripple tank scenarios from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by Medium.Backend.
const (
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// Source kinds accepted by SourceConfig.Kind.
const (
	SourceOscillator = "oscillator"
	SourceDrip       = "drip"
	SourceWAV        = "wav"
)

var (
	ErrMediumSize     = errors.New("medium must have positive width, length and divisions per cm")
	ErrDamping        = errors.New("damping margins must not be negative")
	ErrBackend        = errors.New("unknown backend")
	ErrSourceKind     = errors.New("unknown source kind")
	ErrSourceRange    = errors.New("position outside the medium")
	ErrSourceSettings = errors.New("invalid source settings")
	ErrSamplerName    = errors.New("sampler names must be unique and non-empty")
	ErrRun            = errors.New("invalid run settings")
)

// Simulation is a complete scenario.
type Simulation struct {
	Medium      Medium          `yaml:"medium"`
	Walls       []WallConfig    `yaml:"walls,omitempty"`
	RandomWalls RandomWalls     `yaml:"random_walls"`
	Sources     []SourceConfig  `yaml:"sources"`
	Samplers    []SamplerConfig `yaml:"samplers"`
	Run         Run             `yaml:"run"`
	Output      Output          `yaml:"output"`
}

// Medium describes the tank. Distances elsewhere in the file are in
// centimetres and are converted to lattice cells through Cells.
type Medium struct {
	WidthCM        float64 `yaml:"width_cm"`
	LengthCM       float64 `yaml:"length_cm"`
	DivisionsPerCM float64 `yaml:"divisions_per_cm"`
	DampX          int     `yaml:"damp_x"` // cells
	DampY          int     `yaml:"damp_y"` // cells
	Workers        int     `yaml:"workers"`
	Backend        string  `yaml:"backend"`

	// Enclose surrounds the tank with four walls.
	Enclose       bool    `yaml:"enclose"`
	WallThickness float64 `yaml:"wall_thickness"` // cells
}

// Cells converts a distance in centimetres to whole lattice cells.
func (m Medium) Cells(cm float64) int {
	return int(math.Round(cm * m.DivisionsPerCM))
}

// Width returns the lattice width in cells.
func (m Medium) Width() int { return m.Cells(m.WidthCM) }

// Length returns the lattice length in cells.
func (m Medium) Length() int { return m.Cells(m.LengthCM) }

// WallConfig is a line segment obstacle.
type WallConfig struct {
	X1        float64 `yaml:"x1"`
	Y1        float64 `yaml:"y1"`
	X2        float64 `yaml:"x2"`
	Y2        float64 `yaml:"y2"`
	Thickness float64 `yaml:"thickness"` // cells, 0 uses the medium default
}

// RandomWalls scatters procedural walls. Lengths are in centimetres.
type RandomWalls struct {
	Count             int     `yaml:"count"`
	Seed              int64   `yaml:"seed"`
	MinLenCM          float64 `yaml:"min_len_cm"`
	MaxLenCM          float64 `yaml:"max_len_cm"`
	ThicknessVariance int     `yaml:"thickness_variance"`
	MarginCM          float64 `yaml:"margin_cm"`
	ExclusionCM       float64 `yaml:"exclusion_cm"`
}

// SourceConfig describes one emitter.
type SourceConfig struct {
	Kind      string  `yaml:"kind"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Radius    int     `yaml:"radius"` // cells
	Amplitude float64 `yaml:"amplitude"`

	// oscillator
	Waveform  string  `yaml:"waveform,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty"`

	// drip
	Period int `yaml:"period,omitempty"`

	// wav
	Path    string `yaml:"path,omitempty"`
	Channel string `yaml:"channel,omitempty"` // mono (default), left or right
}

// SamplerConfig places a probe.
type SamplerConfig struct {
	Name    string  `yaml:"name"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Window  int     `yaml:"window"` // cells
	History int     `yaml:"history"`
}

// Run controls the headless driver.
type Run struct {
	Steps          int `yaml:"steps"`
	StepsPerSecond int `yaml:"steps_per_second"`
	LogEvery       int `yaml:"log_every"`
}

// Output names the files written after a run. Empty paths are skipped.
type Output struct {
	WAV        string `yaml:"wav"`
	WAVSampler string `yaml:"wav_sampler"`
	Plot       string `yaml:"plot"`
}

// Default returns a small open tank with one oscillator and one probe.
func Default() Simulation {
	return Simulation{
		Medium: Medium{
			WidthCM:        20,
			LengthCM:       20,
			DivisionsPerCM: 10,
			DampX:          50,
			DampY:          50,
			Workers:        1,
			Backend:        BackendCPU,
			Enclose:        false,
			WallThickness:  5,
		},
		Sources: []SourceConfig{
			{
				Kind:      SourceOscillator,
				X:         10,
				Y:         10,
				Radius:    2,
				Amplitude: 1,
				Waveform:  "sine",
				Frequency: 440,
			},
		},
		Samplers: []SamplerConfig{
			{Name: "probe", X: 15, Y: 10, Window: 1, History: 4096},
		},
		Run: Run{
			Steps:          2000,
			StepsPerSecond: 8000,
			LogEvery:       500,
		},
		Output: Output{WAVSampler: "probe"},
	}
}

// Load reads a scenario from a YAML file on top of Default.
// If the file doesn't exist, returns defaults.
func Load(path string) (Simulation, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Simulation) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Validate reports the first inconsistency in cfg.
func (cfg Simulation) Validate() error {
	m := cfg.Medium
	if m.WidthCM <= 0 || m.LengthCM <= 0 || m.DivisionsPerCM <= 0 || m.Width() < 1 || m.Length() < 1 {
		return ErrMediumSize
	}
	if m.DampX < 0 || m.DampY < 0 {
		return ErrDamping
	}
	switch m.Backend {
	case "", BackendCPU, BackendOpenCL:
	default:
		return fmt.Errorf("%w %q", ErrBackend, m.Backend)
	}

	if cfg.Run.Steps < 0 || cfg.Run.StepsPerSecond < 1 || cfg.Run.LogEvery < 0 {
		return ErrRun
	}

	for i, s := range cfg.Sources {
		if err := cfg.validateSource(s); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}

	seen := make(map[string]bool, len(cfg.Samplers))
	for i, s := range cfg.Samplers {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("sampler %d: %w", i, ErrSamplerName)
		}
		seen[s.Name] = true
		if !cfg.inside(s.X, s.Y) {
			return fmt.Errorf("sampler %s: %w", s.Name, ErrSourceRange)
		}
	}

	if cfg.Output.WAV != "" && !seen[cfg.Output.WAVSampler] {
		return fmt.Errorf("output wav_sampler %q: %w", cfg.Output.WAVSampler, ErrSamplerName)
	}
	return nil
}

func (cfg Simulation) validateSource(s SourceConfig) error {
	if !cfg.inside(s.X, s.Y) {
		return ErrSourceRange
	}
	switch s.Kind {
	case SourceOscillator:
		if s.Frequency <= 0 || 2*s.Frequency > float64(cfg.Run.StepsPerSecond) {
			return fmt.Errorf("%w: frequency %v must be in (0, %d]", ErrSourceSettings, s.Frequency, cfg.Run.StepsPerSecond/2)
		}
	case SourceDrip:
		if s.Period < 1 {
			return fmt.Errorf("%w: period must be at least 1", ErrSourceSettings)
		}
	case SourceWAV:
		if s.Path == "" {
			return fmt.Errorf("%w: missing path", ErrSourceSettings)
		}
		switch s.Channel {
		case "", "mono", "left", "right":
		default:
			return fmt.Errorf("%w: unknown channel %q", ErrSourceSettings, s.Channel)
		}
	default:
		return fmt.Errorf("%w %q", ErrSourceKind, s.Kind)
	}
	return nil
}

func (cfg Simulation) inside(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= cfg.Medium.WidthCM && y <= cfg.Medium.LengthCM
}
