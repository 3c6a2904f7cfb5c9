package integrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// Integrator is implemented by every integration scheme in this package.
type Integrator interface {
	mol.Integrator
	Kind() string
	Params() Params
	Molecule() *mol.Molecule
	Prepare() error
	Run(ctx context.Context, duration units.Time, wait bool) (*trajectory.Trajectory, error)
	Submit(ctx context.Context, duration units.Time) (*Job, error)
	MarshalRun(duration units.Time) ([]byte, error)

	base() *Base
}

// scheme is what a concrete integrator contributes to Base.
type scheme interface {
	Kind() string
	EngineIntegrator() engine.Integrator
	annotation() string
	thermostat() *Thermostat
}

type Option func(*Base)

// WithExecutor selects where the step routine runs. The default is
// compute.Local.
func WithExecutor(e compute.Executor) Option {
	return func(b *Base) { b.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Base) { b.logger = l }
}

// WithSeed fixes the random seed of stochastic schemes.
func WithSeed(seed int64) Option {
	return func(b *Base) { b.seed = seed }
}

// WithReporters attaches extra engine reporters alongside the trajectory
// reporter. They only fire when the step routine runs in this process.
func WithReporters(rs ...engine.Reporter) Option {
	return func(b *Base) { b.extra = append(b.extra, rs...) }
}

// Base holds the state shared by every scheme: the molecule, the run
// parameters, the execution strategy and the preparation cache.
type Base struct {
	mol    *mol.Molecule
	params Params
	scheme scheme

	exec   compute.Executor
	logger *slog.Logger
	seed   int64
	runs   int
	extra  []engine.Reporter

	prepared bool
	model    mol.EnergyModel
	sim      *engine.Simulation
	reporter *trajectory.Reporter
}

func newBase(m *mol.Molecule, p Params, opts []Option) (Base, error) {
	if m == nil {
		return Base{}, fmt.Errorf("integrators: nil molecule")
	}
	if err := p.Validate(); err != nil {
		return Base{}, err
	}
	b := Base{mol: m, params: p, seed: time.Now().UnixNano()}
	for _, opt := range opts {
		opt(&b)
	}
	if b.exec == nil {
		b.exec = compute.NewLocal()
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	return b, nil
}

func (b *Base) base() *Base                { return b }
func (b *Base) Params() Params             { return b.params }
func (b *Base) Molecule() *mol.Molecule    { return b.mol }
func (b *Base) Executor() compute.Executor { return b.exec }
func (b *Base) Seed() int64                { return b.seed }

// Prepared reports whether the cached preparation is still valid. The
// prepared model must still be the molecule's energy model, hold the same
// simulation, and that simulation must still carry this reporter.
func (b *Base) Prepared() bool {
	if !b.prepared || b.model == nil || b.model != b.mol.EnergyModel() || !b.model.Prepped() {
		return false
	}
	if b.sim != b.model.Simulation() {
		return false
	}
	for _, r := range b.sim.Reporters() {
		if r == b.reporter {
			return true
		}
	}
	return false
}

// Reporter returns the reporter attached by the last preparation.
func (b *Base) Reporter() *trajectory.Reporter { return b.reporter }

func (b *Base) compatibleModel() (mol.EnergyModel, error) {
	model := b.mol.EnergyModel()
	if model == nil {
		return nil, fmt.Errorf("%w: molecule %q has no energy model", ErrIncompatibleModel, b.mol.Name)
	}
	if !model.EngineCompatible() {
		return nil, fmt.Errorf("%w: %s", ErrIncompatibleModel, model.Kind())
	}
	return model, nil
}

// Prepare binds the integrator to the molecule's energy model and attaches
// a fresh reporter to its simulation. It does nothing when the previous
// preparation is still valid. Any reporters already on the simulation are
// replaced.
func (b *Base) Prepare() error {
	model, err := b.compatibleModel()
	if err != nil {
		return err
	}
	if b.Prepared() {
		return nil
	}

	b.prepared = false
	b.model = model
	if err := model.Prep(); err != nil {
		return fmt.Errorf("integrators: prepare %s: %w", model.Kind(), err)
	}
	b.sim = model.Simulation()
	if b.sim == nil {
		return fmt.Errorf("%w: %s has no simulation after prep", ErrIncompatibleModel, model.Kind())
	}
	b.reporter = trajectory.NewReporter(b.mol, b.params.FrameSteps())
	b.sim.SetReporters(append([]engine.Reporter{b.reporter}, b.extra...)...)
	b.prepared = true

	b.logger.Debug("integrator prepared",
		"integrator", b.scheme.Kind(),
		"model", model.Kind(),
		"frame_steps", b.reporter.Interval())
	return nil
}

// Run advances the molecule by duration and returns the trajectory. It
// blocks until the run finishes. When the run happened on a remote executor,
// or wait is false, the result is copied into the original molecule and the
// trajectory is rebound to it.
func (b *Base) Run(ctx context.Context, duration units.Time, wait bool) (*trajectory.Trajectory, error) {
	job, err := b.Submit(ctx, duration)
	if err != nil {
		return nil, err
	}
	traj, err := job.result(ctx)
	if err != nil {
		return nil, err
	}
	if job.remote || !wait {
		if err := b.syncBack(traj); err != nil {
			return nil, err
		}
	}
	return traj, nil
}

// Submit starts a run and returns its handle. On a local executor the run
// completes before Submit returns.
func (b *Base) Submit(ctx context.Context, duration units.Time) (*Job, error) {
	if _, err := b.compatibleModel(); err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: %s", units.ErrDuration, duration)
	}

	if !b.exec.Remote() {
		var traj *trajectory.Trajectory
		err := compute.Guard(JobName, func() error {
			var err error
			traj, err = b.run(ctx, duration)
			return err
		})
		return &Job{base: b, future: compute.Completed(JobName, nil, err), local: traj}, nil
	}

	payload, err := b.MarshalRun(duration)
	if err != nil {
		return nil, err
	}
	b.runs++
	b.logger.Debug("dispatching run", "executor", b.exec.Name(), "bytes", len(payload))
	return &Job{base: b, future: b.exec.Submit(ctx, JobName, payload), remote: true}, nil
}

// run is the step routine. It executes wherever the executor placed it.
func (b *Base) run(ctx context.Context, duration units.Time) (*trajectory.Trajectory, error) {
	if err := b.Prepare(); err != nil {
		return nil, err
	}
	steps, err := units.TimeToSteps(duration, b.params.Timestep)
	if err != nil {
		return nil, err
	}

	b.mol.Time = 0
	b.reporter.Reset()
	// The model pushes whatever integrator the molecule holds, and every
	// constructor installs itself there.
	b.mol.SetIntegrator(b.scheme)
	if err := b.model.SetEngineState(); err != nil {
		return nil, fmt.Errorf("integrators: push state: %w", err)
	}
	b.reporter.Annotation = b.scheme.annotation()
	b.reporter.ReportFromMol()

	b.logger.Info("running dynamics",
		"integrator", b.scheme.Kind(),
		"molecule", b.mol.Name,
		"duration", duration,
		"steps", steps,
		"timestep", b.params.Timestep)
	start := time.Now()
	if err := b.sim.Step(ctx, steps); err != nil {
		return nil, err
	}
	if err := b.model.SyncFromEngine(); err != nil {
		return nil, fmt.Errorf("integrators: pull state: %w", err)
	}

	if last, ok := b.reporter.LastReportTime(); !ok || last != b.mol.Time {
		b.reporter.ReportFromMol()
	}
	// TODO: this unconditional frame duplicates the guarded one above when
	// it fires; drop it once downstream consumers stop counting on two
	// trailing frames.
	b.reporter.ReportFromMol()

	traj := b.reporter.Trajectory()
	b.logger.Info("dynamics finished",
		"integrator", b.scheme.Kind(),
		"frames", traj.Len(),
		"elapsed", time.Since(start))
	return traj, nil
}

// syncBack copies the trajectory's molecule into the original one and
// rebinds the trajectory to it.
func (b *Base) syncBack(traj *trajectory.Trajectory) error {
	model, err := b.compatibleModel()
	if err != nil {
		return err
	}
	if err := model.SyncRemote(traj.Mol); err != nil {
		return fmt.Errorf("integrators: sync result: %w", err)
	}
	traj.Mol = b.mol
	return nil
}
