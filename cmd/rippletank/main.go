package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Distortions81/ripple-tank/internal/config"
	"github.com/Distortions81/ripple-tank/internal/sampler"
	"github.com/Distortions81/ripple-tank/internal/simulation"
)

const defaultConfigPath = "rippletank.yaml"

// plot size in inches
const plotWidth, plotHeight = 8, 4

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rippletank",
		Short:         "Headless two-dimensional ripple tank",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newDefaultsCmd())
	return root
}

// runFlags override the matching config fields when set.
type runFlags struct {
	configPath string
	steps      int
	wav        string
	plot       string
	cpuProfile string
	workers    int
	backend    string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario and write the sampler outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			flags := cmd.Flags()
			if flags.Changed("steps") {
				cfg.Run.Steps = f.steps
			}
			if flags.Changed("wav") {
				cfg.Output.WAV = f.wav
			}
			if flags.Changed("plot") {
				cfg.Output.Plot = f.plot
			}
			if flags.Changed("workers") {
				cfg.Medium.Workers = f.workers
			}
			if flags.Changed("backend") {
				cfg.Medium.Backend = f.backend
			}
			return run(cmd.Context(), cfg, f.cpuProfile)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", defaultConfigPath, "scenario file (defaults are used if it does not exist)")
	fl.IntVar(&f.steps, "steps", 0, "number of time steps")
	fl.StringVar(&f.wav, "wav", "", "write the wav_sampler history to this WAV file")
	fl.StringVar(&f.plot, "plot", "", "plot every sampler history to this image file")
	fl.StringVar(&f.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	fl.IntVar(&f.workers, "workers", 1, "goroutines sharing the stencil")
	fl.StringVar(&f.backend, "backend", config.BackendCPU, "propagator backend: cpu or opencl")
	return cmd
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default scenario as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Marshal(config.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func run(ctx context.Context, cfg config.Simulation, cpuProfile string) error {
	if cpuProfile != "" {
		stop, err := startCPUProfile(cpuProfile)
		if err != nil {
			return fmt.Errorf("starting cpu profile: %w", err)
		}
		defer stop()
	}

	sim, err := simulation.New(cfg)
	if err != nil {
		return err
	}
	defer sim.Close()

	if err := sim.Run(ctx, cfg.Run.Steps); err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	for _, s := range sim.Samplers() {
		st := s.Stats()
		slog.Info("sampler", "name", s.Name, "x", s.X, "y", s.Y, "count", st.Count,
			"mean", st.Mean, "stddev", st.StdDev, "min", st.Min, "max", st.Max)
	}
	return writeOutputs(sim, cfg)
}

func writeOutputs(sim *simulation.Simulation, cfg config.Simulation) error {
	if path := cfg.Output.WAV; path != "" {
		s, ok := sim.Sampler(cfg.Output.WAVSampler)
		if !ok {
			return fmt.Errorf("unknown wav sampler %q", cfg.Output.WAVSampler)
		}
		if err := writeWAV(s, path, cfg.Run.StepsPerSecond); err != nil {
			return err
		}
		slog.Info("wrote wav", "path", path, "sampler", s.Name, "samples", s.Len())
	}
	if path := cfg.Output.Plot; path != "" {
		if err := sampler.SavePlot(path, plotWidth, plotHeight, sim.Samplers()...); err != nil {
			return err
		}
		slog.Info("wrote plot", "path", path)
	}
	return nil
}

func writeWAV(s *sampler.Sampler, path string, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := s.WriteWAV(f, rate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
