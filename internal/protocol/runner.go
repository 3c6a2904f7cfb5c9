package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/metrics"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var ErrCannotMinimize = errors.New("protocol: energy model cannot minimize")

// Minimizer is implemented by energy models that can relax a molecule.
type Minimizer interface {
	Minimize(ctx context.Context, maxIterations int) (float64, error)
}

// Runner executes protocols. The zero value runs locally without logging.
type Runner struct {
	Executor compute.Executor
	Logger   *slog.Logger
	Seed     int64
	// Defaults supplies values for fields the first stage leaves empty.
	// The zero Stage means DefaultStage.
	Defaults Stage
}

// StageResult is the outcome of one stage. Trajectory is nil for
// minimize-only stages.
type StageResult struct {
	Stage           string
	Integrator      string
	Duration        units.Time
	Minimized       bool
	MinimizedEnergy float64
	Trajectory      *trajectory.Trajectory
	Metrics         map[string]float64
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Runner) defaults() Stage {
	if r.Defaults == (Stage{}) {
		return DefaultStage()
	}
	return r.Defaults
}

func (r *Runner) options() []integrators.Option {
	opts := []integrators.Option{integrators.WithLogger(r.logger())}
	if r.Executor != nil {
		opts = append(opts, integrators.WithExecutor(r.Executor))
	}
	if r.Seed != 0 {
		opts = append(opts, integrators.WithSeed(r.Seed))
	}
	return opts
}

// Run executes every stage on m in order. Stages that resolve to the same
// integrator setup share one integrator, so its preparation is reused.
// Results of completed stages are returned alongside an error.
func (r *Runner) Run(ctx context.Context, p *Protocol, m *mol.Molecule) ([]StageResult, error) {
	if err := p.Validate(r.defaults()); err != nil {
		return nil, err
	}
	log := r.logger()
	results := make([]StageResult, 0, len(p.Stages))
	cache := make(map[setup]integrators.Integrator)

	prev := r.defaults()
	for i, s := range p.Stages {
		s = s.inherit(prev)
		prev = s
		res := StageResult{Stage: s.Name}
		log.Info("running stage", "protocol", p.Name, "stage", s.Name, "index", i+1, "of", len(p.Stages))

		if s.Minimize > 0 {
			mz, ok := m.EnergyModel().(Minimizer)
			if !ok {
				return results, fmt.Errorf("stage %d (%s): %w", i+1, s.Name, ErrCannotMinimize)
			}
			e, err := mz.Minimize(ctx, s.Minimize)
			if err != nil {
				return results, fmt.Errorf("stage %d (%s) minimize: %w", i+1, s.Name, err)
			}
			res.Minimized, res.MinimizedEnergy = true, e
			log.Info("minimized", "stage", s.Name, "energy", e)
		}

		if s.Integrator != "" {
			st, dur, err := s.resolve()
			if err != nil {
				return results, fmt.Errorf("stage %d (%s): %w", i+1, s.Name, err)
			}
			integ, ok := cache[st]
			if !ok {
				integ, err = integrators.New(st.kind, m, st.params, st.thermostat, r.options()...)
				if err != nil {
					return results, fmt.Errorf("stage %d (%s) setup: %w", i+1, s.Name, err)
				}
				cache[st] = integ
			}
			traj, err := integ.Run(ctx, dur, true)
			if err != nil {
				return results, fmt.Errorf("stage %d (%s) run: %w", i+1, s.Name, err)
			}
			res.Integrator, res.Duration, res.Trajectory = st.kind, dur, traj
			res.Metrics = metrics.Evaluate(traj, metrics.Standard(m.NumAtoms())...)
		}
		results = append(results, res)
	}
	return results, nil
}

// Sweep runs independent Langevin replicas of a molecule at several
// temperatures.
type Sweep struct {
	Temperatures  []units.Temperature
	CollisionRate units.Rate
	Params        integrators.Params
	Duration      units.Time
}

type SweepResult struct {
	Temperature     units.Temperature
	MeanTemperature float64
	MeanPotential   float64
	Trajectory      *trajectory.Trajectory
}

// RunSweep submits one replica per temperature before waiting on any of
// them, so a remote executor runs them concurrently. m is not modified.
func (r *Runner) RunSweep(ctx context.Context, s Sweep, m *mol.Molecule) ([]SweepResult, error) {
	log := r.logger()
	snap, err := m.Snapshot()
	if err != nil {
		return nil, err
	}

	jobs := make([]*integrators.Job, len(s.Temperatures))
	for i, temp := range s.Temperatures {
		replica, err := mol.FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		th := integrators.Thermostat{Temperature: temp, CollisionRate: s.CollisionRate}
		opts := append(r.options(), integrators.WithSeed(r.Seed+int64(i)+1))
		integ, err := integrators.NewLangevin(replica, s.Params, th, opts...)
		if err != nil {
			return nil, err
		}
		if jobs[i], err = integ.Submit(ctx, s.Duration); err != nil {
			return nil, fmt.Errorf("sweep %s: %w", temp, err)
		}
		log.Debug("replica submitted", "temperature", temp, "job", jobs[i].ID())
	}

	results := make([]SweepResult, 0, len(jobs))
	for i, job := range jobs {
		traj, err := job.Wait(ctx)
		if err != nil {
			return results, fmt.Errorf("sweep %s: %w", s.Temperatures[i], err)
		}
		vals := metrics.Evaluate(traj,
			metrics.NewMeanTemperature(traj.Mol.NumAtoms()),
			metrics.NewMeanPotential())
		results = append(results, SweepResult{
			Temperature:     s.Temperatures[i],
			MeanTemperature: vals["mean_temperature"],
			MeanPotential:   vals["mean_potential"],
			Trajectory:      traj,
		})
		log.Info("replica finished", "temperature", s.Temperatures[i], "mean_temperature", vals["mean_temperature"])
	}
	return results, nil
}
