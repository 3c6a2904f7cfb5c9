package integrators_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var params = integrators.Params{
	Timestep:      2 * units.Femtosecond,
	FrameInterval: 10 * units.Femtosecond,
}

var _ = Describe("Verlet", func() {
	var (
		ctx   context.Context
		m     *mol.Molecule
		model *fakeModel
		integ *integrators.Verlet
	)

	BeforeEach(func() {
		ctx = context.Background()
		m, model = argon(false)
		var err error
		integ, err = integrators.NewVerlet(m, params, integrators.WithSeed(1))
		Expect(err).NotTo(HaveOccurred())
	})

	It("installs itself as the molecule's integrator", func() {
		Expect(m.Integrator()).To(BeIdenticalTo(integ))
	})

	It("resets the run-local clock on every run", func() {
		_, err := integ.Run(ctx, 0.1, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Time).To(Equal(units.Time(float64(50) * 0.002)))

		_, err = integ.Run(ctx, 0.0311, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Time).To(Equal(units.Time(float64(16) * 0.002)))
	})

	It("records the initial frame, every interval and the final frames", func() {
		traj, err := integ.Run(ctx, 0.1, true)
		Expect(err).NotTo(HaveOccurred())
		// t=0, ten interval frames, then the unconditional final frame.
		Expect(traj.Len()).To(Equal(12))
		Expect(traj.Frames[0].Time).To(BeZero())
		Expect(traj.Frames[0].Annotation).To(Equal("Verlet dynamics"))

		traj, err = integ.Run(ctx, 0.0311, true)
		Expect(err).NotTo(HaveOccurred())
		// 16 steps end off the reporting grid, so the guarded frame fires too.
		Expect(traj.Len()).To(Equal(6))
		last := traj.Frames[traj.Len()-1]
		Expect(traj.Frames[traj.Len()-2].Time).To(Equal(last.Time))
	})

	It("prepares once while the model is unchanged", func() {
		Expect(integ.Prepare()).To(Succeed())
		reporter := integ.Reporter()
		Expect(integ.Prepare()).To(Succeed())

		Expect(model.preps).To(Equal(1))
		Expect(integ.Reporter()).To(BeIdenticalTo(reporter))
		Expect(model.Simulation().Reporters()).To(HaveLen(1))
		Expect(integ.Prepared()).To(BeTrue())
	})

	It("prepares again when the energy model changes", func() {
		_, err := integ.Run(ctx, 0.01, true)
		Expect(err).NotTo(HaveOccurred())
		first := integ.Reporter()

		replacement := newFakeModel(m, false)
		Expect(integ.Prepared()).To(BeFalse())

		_, err = integ.Run(ctx, 0.01, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(replacement.preps).To(Equal(1))
		Expect(integ.Reporter()).NotTo(BeIdenticalTo(first))
		Expect(replacement.Simulation().Reporters()).To(ConsistOf(integ.Reporter()))
	})

	It("prepares again when the model drops its preparation", func() {
		Expect(integ.Prepare()).To(Succeed())
		model.Invalidate()
		Expect(integ.Prepare()).To(Succeed())
		Expect(model.preps).To(Equal(2))
	})

	It("replaces reporters already on the simulation", func() {
		Expect(model.Prep()).To(Succeed())
		model.Simulation().SetReporters(nopReporter{}, nopReporter{})
		Expect(integ.Prepare()).To(Succeed())
		Expect(model.Simulation().Reporters()).To(ConsistOf(integ.Reporter()))
	})

	It("prepares again when another integrator took over the simulation", func() {
		Expect(integ.Prepare()).To(Succeed())
		other, err := integrators.NewVerlet(m, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(other.Prepare()).To(Succeed())
		Expect(integ.Prepared()).To(BeFalse())

		traj, err := integ.Run(ctx, 0.1, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(12))
		Expect(model.Simulation().Reporters()).To(ConsistOf(integ.Reporter()))
	})

	It("steps with its own scheme after another integrator was created", func() {
		langevin, err := integrators.NewLangevin(m, params, integrators.Thermostat{Temperature: 300, CollisionRate: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Integrator()).To(BeIdenticalTo(langevin))

		traj, err := integ.Run(ctx, 0.02, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(model.Simulation().Integrator()).To(BeIdenticalTo(integ.EngineIntegrator()))
		Expect(traj.Frames[0].Annotation).To(Equal("Verlet dynamics"))

		_, err = langevin.Run(ctx, 0.02, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(model.Simulation().Integrator()).To(BeIdenticalTo(langevin.EngineIntegrator()))
	})

	It("runs extra reporters next to the trajectory reporter", func() {
		counter := &countingReporter{}
		withExtra, err := integrators.NewVerlet(m, params, integrators.WithReporters(counter))
		Expect(err).NotTo(HaveOccurred())

		_, err = withExtra.Run(ctx, 0.1, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(counter.reports).To(Equal(50))
		Expect(model.Simulation().Reporters()).To(HaveLen(2))
	})

	It("rejects models the engine cannot run", func() {
		model.incompatible = true
		_, err := integ.Run(ctx, 0.01, true)
		Expect(err).To(MatchError(integrators.ErrIncompatibleModel))
		Expect(integ.Prepare()).To(MatchError(integrators.ErrIncompatibleModel))
		Expect(model.preps).To(BeZero())

		m.SetEnergyModel(nil)
		Expect(integ.Prepare()).To(MatchError(integrators.ErrIncompatibleModel))
	})

	It("rejects negative durations", func() {
		_, err := integ.Run(ctx, -1, true)
		Expect(err).To(MatchError(units.ErrDuration))
	})

	It("builds its engine integrator from the timestep alone", func() {
		ei, ok := integ.EngineIntegrator().(*engine.VerletIntegrator)
		Expect(ok).To(BeTrue())
		Expect(ei.StepSize()).To(Equal(0.002))

		data, err := integ.MarshalRun(1)
		Expect(err).NotTo(HaveOccurred())
		var req map[string]json.RawMessage
		Expect(json.Unmarshal(data, &req)).To(Succeed())
		Expect(req).NotTo(HaveKey("thermostat"))
	})

	It("returns a trajectory bound to the original molecule when not waiting", func() {
		traj, err := integ.Run(ctx, 0.02, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Mol).To(BeIdenticalTo(m))
	})
})

var _ = Describe("Langevin", func() {
	It("builds its engine integrator from the thermostat and timestep", func() {
		m, _ := argon(false)
		th := integrators.Thermostat{Temperature: 310, CollisionRate: 2.5}
		integ, err := integrators.NewLangevin(m, params, th)
		Expect(err).NotTo(HaveOccurred())

		ei, ok := integ.EngineIntegrator().(*engine.LangevinIntegrator)
		Expect(ok).To(BeTrue())
		Expect(ei.Temperature()).To(Equal(310.0))
		Expect(ei.Friction()).To(Equal(2.5))
		Expect(ei.StepSize()).To(Equal(0.002))
	})

	It("annotates frames with the bath temperature", func() {
		m, _ := argon(false)
		integ, err := integrators.NewLangevin(m, params, integrators.Thermostat{Temperature: 300, CollisionRate: 1})
		Expect(err).NotTo(HaveOccurred())
		traj, err := integ.Run(context.Background(), 0.01, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Frames[0].Annotation).To(Equal("Langevin dynamics @ 300 K"))
	})

	It("validates the thermostat", func() {
		m, _ := argon(false)
		_, err := integrators.NewLangevin(m, params, integrators.Thermostat{Temperature: 300})
		Expect(err).To(MatchError(integrators.ErrThermostat))
		_, err = integrators.NewLangevin(m, params, integrators.Thermostat{Temperature: -1, CollisionRate: 1})
		Expect(err).To(MatchError(integrators.ErrThermostat))
	})

	It("survives a marshal round trip", func() {
		m, _ := argon(false)
		th := integrators.Thermostat{Temperature: 250, CollisionRate: 5}
		integ, err := integrators.NewLangevin(m, params, th, integrators.WithSeed(42))
		Expect(err).NotTo(HaveOccurred())

		data, err := integ.MarshalRun(0.5)
		Expect(err).NotTo(HaveOccurred())
		replica, duration, err := integrators.UnmarshalRun(data)
		Expect(err).NotTo(HaveOccurred())

		Expect(duration).To(Equal(units.Time(0.5)))
		Expect(replica.Kind()).To(Equal(integrators.KindLangevin))
		Expect(replica.Params()).To(Equal(params))
		Expect(replica.(*integrators.Langevin).Thermostat).To(Equal(th))
		Expect(replica.(*integrators.Langevin).Seed()).To(Equal(int64(42)))
		Expect(replica.Molecule()).NotTo(BeIdenticalTo(m))
		Expect(replica.Molecule().EnergyModel().Kind()).To(Equal(fakeKind))
	})
})

var _ = Describe("Silent crashes", func() {
	DescribeTable("are remapped to the remediation hint",
		func(exec func() compute.Executor) {
			m, _ := argon(true)
			e := exec()
			defer e.Close()
			integ, err := integrators.NewVerlet(m, params, integrators.WithExecutor(e))
			Expect(err).NotTo(HaveOccurred())

			_, err = integ.Run(context.Background(), 0.01, true)
			Expect(err).To(MatchError(integrators.ErrSilentCrash))
			Expect(err.Error()).To(ContainSubstring("insufficiently minimized starting geometry"))
			Expect(err.Error()).NotTo(ContainSubstring("abort"))

			var crash *integrators.CrashError
			Expect(errors.As(err, &crash)).To(BeTrue())
			Expect(crash.Cause).To(MatchError(compute.ErrProgramFailure))
		},
		Entry("local", func() compute.Executor { return compute.NewLocal() }),
		Entry("worker pool", func() compute.Executor { return compute.NewWorkerPool(1, nil) }),
	)
})

var _ = Describe("Remote execution", func() {
	var (
		ctx  context.Context
		pool *compute.WorkerPool
	)

	BeforeEach(func() {
		ctx = context.Background()
		pool = compute.NewWorkerPool(2, nil)
	})

	AfterEach(func() {
		Expect(pool.Close()).To(Succeed())
	})

	It("syncs the replica back into the original molecule", func() {
		m, model := argon(false)
		integ, err := integrators.NewVerlet(m, params, integrators.WithExecutor(pool))
		Expect(err).NotTo(HaveOccurred())
		start := engine.CloneVecs(m.Positions)

		traj, err := integ.Run(ctx, 0.1, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Mol).To(BeIdenticalTo(m))
		Expect(m.Time).To(Equal(units.Time(float64(50) * 0.002)))

		last, _ := traj.Last()
		Expect(m.Positions).To(Equal(last.Positions))
		Expect(m.Positions).NotTo(Equal(start))
		// The replica did the work; the local model was never prepared.
		Expect(model.preps).To(BeZero())
	})

	It("runs asynchronously through Submit", func() {
		m, _ := argon(false)
		integ, err := integrators.NewLangevin(m, params, integrators.DefaultThermostat(),
			integrators.WithExecutor(pool))
		Expect(err).NotTo(HaveOccurred())

		job, err := integ.Submit(ctx, 0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(job.ID()).NotTo(BeEmpty())
		Expect(job.Remote()).To(BeTrue())
		Eventually(job.Done()).Should(BeClosed())

		traj, err := job.Wait(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Status()).To(Equal(compute.StatusFinished))
		Expect(traj.Mol).To(BeIdenticalTo(m))
		Expect(traj.Frames[0].Annotation).To(Equal("Langevin dynamics @ 298 K"))
	})

	It("checks compatibility before dispatching", func() {
		m, model := argon(false)
		model.incompatible = true
		integ, err := integrators.NewVerlet(m, params, integrators.WithExecutor(pool))
		Expect(err).NotTo(HaveOccurred())
		_, err = integ.Submit(ctx, 0.01)
		Expect(err).To(MatchError(integrators.ErrIncompatibleModel))
	})
})

var _ = Describe("New", func() {
	It("builds every listed kind", func() {
		for _, kind := range integrators.Kinds() {
			m, _ := argon(false)
			integ, err := integrators.New(kind, m, params, integrators.DefaultThermostat())
			Expect(err).NotTo(HaveOccurred())
			Expect(integ.Kind()).To(Equal(kind))
		}
	})

	It("rejects unknown kinds and bad parameters", func() {
		m, _ := argon(false)
		_, err := integrators.New("rk4", m, params, integrators.DefaultThermostat())
		Expect(err).To(MatchError(integrators.ErrUnknownKind))

		integ, err := integrators.New(integrators.KindVerlet, m, integrators.Params{}, integrators.Thermostat{})
		Expect(err).To(MatchError(units.ErrTimestep))
		Expect(integ).To(BeNil())
	})
})

type nopReporter struct{}

func (nopReporter) Interval() int                                 { return 1 }
func (nopReporter) Report(*engine.Simulation, engine.State) error { return nil }

type countingReporter struct{ reports int }

func (c *countingReporter) Interval() int { return 1 }

func (c *countingReporter) Report(*engine.Simulation, engine.State) error {
	c.reports++
	return nil
}
