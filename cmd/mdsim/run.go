package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/config"
	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/metrics"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/protocol"
	"github.com/shiva16/molecular-design-toolkit/internal/storage"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
	"github.com/shiva16/molecular-design-toolkit/internal/tui"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// loadConfig applies, in order: defaults, a preset, a config file and
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		system, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be system/name, got %q", preset)
		}
		if cfg = config.GetPreset(system, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(system))
		}
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst = v
		}
	}
	set("name", &cfg.Name, runName)
	set("integrator", &cfg.Integrator, integrator)
	set("timestep", &cfg.Timestep, timestep)
	set("frame-interval", &cfg.FrameInterval, frameInterval)
	set("duration", &cfg.Duration, duration)
	set("temperature", &cfg.Temperature, temperature)
	set("collision-rate", &cfg.CollisionRate, collisionRate)
	set("executor", &cfg.Executor, executor)
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Lookup("minimize") != nil && flags.Changed("minimize") {
		cfg.Minimize = minimize
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newExecutor(cfg *config.Config) (compute.Executor, error) {
	return compute.New(cfg.Executor, cfg.Workers, logger)
}

func minimizeMolecule(ctx context.Context, m *mol.Molecule, iterations int) error {
	if iterations <= 0 {
		return nil
	}
	mz, ok := m.EnergyModel().(protocol.Minimizer)
	if !ok {
		return protocol.ErrCannotMinimize
	}
	e, err := mz.Minimize(ctx, iterations)
	if err != nil {
		return err
	}
	logger.Info("minimized", "molecule", m.Name, "energy", e)
	return nil
}

func runDynamics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	m, err := cfg.BuildMolecule()
	if err != nil {
		return err
	}
	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	defer exec.Close()

	if err := minimizeMolecule(ctx, m, cfg.Minimize); err != nil {
		return err
	}

	opts := []integrators.Option{integrators.WithExecutor(exec), integrators.WithLogger(logger)}
	var renderer *tui.LiveRenderer
	if live {
		if exec.Remote() {
			return fmt.Errorf("--live needs the local executor, got %s", exec.Name())
		}
		renderer = tui.NewLiveRenderer(os.Stdout, m, resolved.Params.FrameSteps(), frameRate)
		opts = append(opts, integrators.WithReporters(renderer))
	}
	integ, err := cfg.BuildIntegrator(m, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("running %s dynamics on %s (%d atoms)...\n", integ.Kind(), m.Name, m.NumAtoms())
	start := time.Now()

	var traj *trajectory.Trajectory
	switch {
	case watch:
		job, err := integ.Submit(ctx, resolved.Duration)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("%s %s", m.Name, integ.Kind())
		if err := tui.Watch(ctx, os.Stderr, tui.Entry{Label: label, Task: job}); err != nil && !errors.Is(err, tui.ErrAborted) {
			return err
		}
		if traj, err = job.Wait(ctx); err != nil {
			return err
		}
	case live:
		if err := renderer.Start(); err != nil {
			return err
		}
		traj, err = integ.Run(ctx, resolved.Duration, true)
		renderer.Stop()
		if err != nil {
			return err
		}
	default:
		if traj, err = integ.Run(ctx, resolved.Duration, true); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Name:       cfg.Name,
		Molecule:   m.Name,
		Integrator: integ.Kind(),
		Executor:   exec.Name(),
		Seed:       cfg.Seed,
		Timestep:   float64(resolved.Params.Timestep),
		Duration:   float64(resolved.Duration),
		Frames:     traj.Len(),
		NumAtoms:   m.NumAtoms(),
		Metrics:    metrics.Evaluate(traj, metrics.Standard(m.NumAtoms())...),
	}
	if integ.Kind() == integrators.KindLangevin {
		meta.Temperature = float64(resolved.Thermostat.Temperature)
		meta.CollisionRate = float64(resolved.Thermostat.CollisionRate)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if meta.ID, err = st.Save(meta, traj); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Println(tui.Summary(meta, traj.TotalEnergies()))
	return nil
}

func runProtocol(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := protocol.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := cfg.BuildMolecule()
	if err != nil {
		return err
	}
	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	defer exec.Close()

	runner := &protocol.Runner{Executor: exec, Logger: logger, Seed: cfg.Seed}
	results, runErr := runner.Run(ctx, p, m)

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tMINIMIZED\tFRAMES\tMEAN T\tDRIFT\tRUN")
	for _, res := range results {
		minimized, frames, meanT, drift, id := "-", "-", "-", "-", "-"
		if res.Minimized {
			minimized = fmt.Sprintf("%.3f", res.MinimizedEnergy)
		}
		if res.Trajectory != nil {
			frames = fmt.Sprintf("%d", res.Trajectory.Len())
			meanT = units.Temperature(res.Metrics["mean_temperature"]).String()
			drift = fmt.Sprintf("%.2e", res.Metrics["energy_drift"])
			if st != nil {
				meta := storage.RunMetadata{
					Name:       p.Name + "-" + res.Stage,
					Molecule:   m.Name,
					Integrator: res.Integrator,
					Executor:   exec.Name(),
					Seed:       cfg.Seed,
					Duration:   float64(res.Duration),
					Metrics:    res.Metrics,
				}
				if id, err = st.Save(meta, res.Trajectory); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", res.Stage, minimized, frames, meanT, drift, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	var temps []units.Temperature
	for _, s := range strings.Split(temperatures, ",") {
		t, err := units.ParseTemperature(s)
		if err != nil {
			return fmt.Errorf("temperatures: %w", err)
		}
		temps = append(temps, t)
	}

	m, err := cfg.BuildMolecule()
	if err != nil {
		return err
	}
	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	defer exec.Close()
	if err := minimizeMolecule(ctx, m, cfg.Minimize); err != nil {
		return err
	}

	runner := &protocol.Runner{Executor: exec, Logger: logger, Seed: cfg.Seed}
	results, err := runner.RunSweep(ctx, protocol.Sweep{
		Temperatures:  temps,
		CollisionRate: resolved.Thermostat.CollisionRate,
		Params:        resolved.Params,
		Duration:      resolved.Duration,
	}, m)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BATH\tMEAN T\tMEAN PE (kJ/mol)\tFRAMES")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\n",
			res.Temperature,
			units.Temperature(res.MeanTemperature),
			res.MeanPotential,
			res.Trajectory.Len(),
		)
	}
	return w.Flush()
}
