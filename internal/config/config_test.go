package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.Medium.Width())
	assert.Equal(t, 200, cfg.Medium.Length())
}

func TestCells(t *testing.T) {
	m := Medium{DivisionsPerCM: 4}
	assert.Equal(t, 0, m.Cells(0))
	assert.Equal(t, 10, m.Cells(2.5))
	assert.Equal(t, 1, m.Cells(0.2))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tank.yaml")
	data := []byte(`
medium:
  width_cm: 8
  divisions_per_cm: 5
  backend: opencl
  enclose: true
walls:
  - {x1: 1, y1: 1, x2: 5, y2: 1}
sources:
  - kind: drip
    x: 2
    y: 3
    amplitude: 0.5
    period: 40
run:
  steps: 10
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Medium.Width())
	assert.Equal(t, 100, cfg.Medium.Length(), "length keeps its default")
	assert.Equal(t, BackendOpenCL, cfg.Medium.Backend)
	assert.True(t, cfg.Medium.Enclose)
	assert.Equal(t, []WallConfig{{X1: 1, Y1: 1, X2: 5, Y2: 1}}, cfg.Walls)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, SourceDrip, cfg.Sources[0].Kind)
	assert.Equal(t, 40, cfg.Sources[0].Period)
	assert.Equal(t, 10, cfg.Run.Steps)
	assert.Equal(t, 8000, cfg.Run.StepsPerSecond)
	assert.Len(t, cfg.Samplers, 1)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("medium: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)
	assert.Contains(t, string(data), "divisions_per_cm: 10")

	path := filepath.Join(t.TempDir(), "tank.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Simulation)
		want   error
	}{
		{"zero width", func(c *Simulation) { c.Medium.WidthCM = 0 }, ErrMediumSize},
		{"too coarse", func(c *Simulation) { c.Medium.DivisionsPerCM = 0.01 }, ErrMediumSize},
		{"negative damping", func(c *Simulation) { c.Medium.DampY = -1 }, ErrDamping},
		{"backend", func(c *Simulation) { c.Medium.Backend = "cuda" }, ErrBackend},
		{"source kind", func(c *Simulation) { c.Sources[0].Kind = "laser" }, ErrSourceKind},
		{"source outside", func(c *Simulation) { c.Sources[0].X = 21 }, ErrSourceRange},
		{"above nyquist", func(c *Simulation) { c.Sources[0].Frequency = 4001 }, ErrSourceSettings},
		{"drip period", func(c *Simulation) {
			c.Sources[0] = SourceConfig{Kind: SourceDrip, X: 1, Y: 1}
		}, ErrSourceSettings},
		{"wav path", func(c *Simulation) {
			c.Sources[0] = SourceConfig{Kind: SourceWAV, X: 1, Y: 1}
		}, ErrSourceSettings},
		{"wav channel", func(c *Simulation) {
			c.Sources[0] = SourceConfig{Kind: SourceWAV, X: 1, Y: 1, Path: "loop.wav", Channel: "rear"}
		}, ErrSourceSettings},
		{"duplicate sampler", func(c *Simulation) {
			c.Samplers = append(c.Samplers, c.Samplers[0])
		}, ErrSamplerName},
		{"unnamed sampler", func(c *Simulation) { c.Samplers[0].Name = "" }, ErrSamplerName},
		{"sampler outside", func(c *Simulation) { c.Samplers[0].Y = -1 }, ErrSourceRange},
		{"steps per second", func(c *Simulation) { c.Run.StepsPerSecond = 0 }, ErrRun},
		{"wav sampler", func(c *Simulation) {
			c.Output.WAV = "out.wav"
			c.Output.WAVSampler = "nope"
		}, ErrSamplerName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
