package engine

import (
	"context"
	"errors"
	"math"
	"testing"
)

func dimer(t *testing.T, integ Integrator, p Platform) *Simulation {
	t.Helper()
	sys := NewSystem()
	a := sys.AddParticle(12.0)
	b := sys.AddParticle(12.0)
	bonds := NewHarmonicBondForce()
	bonds.AddBond(a, b, 0.15, 2.0e5)
	sys.AddForce(bonds)

	sim, err := NewSimulation(sys, integ, p)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	if err := sim.Context().SetPositions([]Vec3{{0, 0, 0}, {0.16, 0, 0}}); err != nil {
		t.Fatalf("set positions: %v", err)
	}
	return sim
}

func argonLattice(n int, spacing float64) ([]Vec3, *System) {
	sys := NewSystem()
	lj := NewNonbondedForce()
	var pos []Vec3
	side := int(math.Ceil(math.Cbrt(float64(n))))
	for i := 0; i < n; i++ {
		x, y, z := i%side, (i/side)%side, i/(side*side)
		pos = append(pos, Vec3{float64(x) * spacing, float64(y) * spacing, float64(z) * spacing})
		sys.AddParticle(39.948)
		lj.AddParticle(0.3405, 0.996)
	}
	sys.AddForce(lj)
	return pos, sys
}

func TestVerletEnergyConservation(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.0002), Reference())

	e0 := sim.Context().State().TotalEnergy()
	if err := sim.Step(context.Background(), 5000); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	e1 := sim.Context().State().TotalEnergy()

	if drift := math.Abs(e1-e0) / math.Abs(e0); drift > 1e-3 {
		t.Errorf("energy drift too large: %.6f -> %.6f (%.2e)", e0, e1, drift)
	}
}

func TestSimulationClock(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.002), Reference())
	sim.Context().SetTime(0)

	if err := sim.Step(context.Background(), 25); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got, want := sim.Context().Time(), float64(25)*0.002; got != want {
		t.Errorf("time = %v, want %v", got, want)
	}
	if sim.CurrentStep != 25 {
		t.Errorf("expected 25 steps, got %d", sim.CurrentStep)
	}

	sim.SetIntegrator(NewVerletIntegrator(0.001))
	if err := sim.Step(context.Background(), 10); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got, want := sim.Context().Time(), 0.06; math.Abs(got-want) > 1e-12 {
		t.Errorf("time after integrator swap = %v, want %v", got, want)
	}
}

type countingReporter struct {
	interval int
	steps    []int
}

func (r *countingReporter) Interval() int { return r.interval }
func (r *countingReporter) Report(s *Simulation, st State) error {
	r.steps = append(r.steps, s.CurrentStep)
	return nil
}

func TestSimulationReporters(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.001), Reference())

	stale := &countingReporter{interval: 1}
	sim.SetReporters(stale)

	r := &countingReporter{interval: 4}
	sim.SetReporters(r)

	if got := len(sim.Reporters()); got != 1 {
		t.Fatalf("expected 1 reporter, got %d", got)
	}
	if err := sim.Step(context.Background(), 10); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if len(stale.steps) != 0 {
		t.Errorf("replaced reporter still called %d times", len(stale.steps))
	}
	if len(r.steps) != 2 || r.steps[0] != 4 || r.steps[1] != 8 {
		t.Errorf("unexpected report steps: %v", r.steps)
	}
}

type nanForce struct{}

func (nanForce) Name() string { return "nan" }
func (nanForce) Compute(_ Platform, pos []Vec3, out []Vec3) float64 {
	for i := range out {
		out[i] = Vec3{math.NaN(), 0, 0}
	}
	return 0
}

func TestSimulationNaN(t *testing.T) {
	sys := NewSystem()
	sys.AddParticle(1)
	sys.AddForce(nanForce{})

	sim, err := NewSimulation(sys, NewVerletIntegrator(0.001), Reference())
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	err = sim.Step(context.Background(), 5)
	if !errors.Is(err, ErrNaNCoordinate) {
		t.Fatalf("expected ErrNaNCoordinate, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 1 {
		t.Errorf("expected StepError at step 1, got %v", err)
	}
}

func TestSimulationCanceled(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.001), Reference())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sim.Step(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if sim.CurrentStep != 0 {
		t.Errorf("expected no steps, got %d", sim.CurrentStep)
	}
}

func TestPlatformsAgree(t *testing.T) {
	pos, sys := argonLattice(27, 0.38)

	ref, err := NewContext(sys, Reference())
	if err != nil {
		t.Fatalf("reference context: %v", err)
	}
	cpu, err := NewContext(sys, NewCPUPlatform(4))
	if err != nil {
		t.Fatalf("cpu context: %v", err)
	}
	_ = ref.SetPositions(pos)
	_ = cpu.SetPositions(pos)

	rs, cs := ref.State(), cpu.State()
	if math.Abs(rs.PotentialEnergy-cs.PotentialEnergy) > 1e-9 {
		t.Errorf("energies differ: reference %.12f, cpu %.12f", rs.PotentialEnergy, cs.PotentialEnergy)
	}
	for i := range rs.Forces {
		if rs.Forces[i].Sub(cs.Forces[i]).Norm() > 1e-9 {
			t.Errorf("force %d differs: %v vs %v", i, rs.Forces[i], cs.Forces[i])
		}
	}
}

func TestNonbondedExclusion(t *testing.T) {
	sys := NewSystem()
	lj := NewNonbondedForce()
	for i := 0; i < 2; i++ {
		sys.AddParticle(39.948)
		lj.AddParticle(0.3405, 0.996)
	}
	lj.AddExclusion(1, 0)
	sys.AddForce(lj)

	c, err := NewContext(sys, Reference())
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	_ = c.SetPositions([]Vec3{{0, 0, 0}, {0.3, 0, 0}})
	if e := c.PotentialEnergy(); e != 0 {
		t.Errorf("excluded pair contributed energy %f", e)
	}
}

func TestLennardJonesMinimum(t *testing.T) {
	sys := NewSystem()
	lj := NewNonbondedForce()
	for i := 0; i < 2; i++ {
		sys.AddParticle(39.948)
		lj.AddParticle(0.3405, 0.996)
	}
	sys.AddForce(lj)
	c, _ := NewContext(sys, Reference())

	rmin := math.Pow(2, 1.0/6) * 0.3405
	_ = c.SetPositions([]Vec3{{0, 0, 0}, {rmin, 0, 0}})
	st := c.State()

	if math.Abs(st.PotentialEnergy+0.996) > 1e-9 {
		t.Errorf("expected well depth -0.996, got %f", st.PotentialEnergy)
	}
	if st.Forces[0].Norm() > 1e-9 {
		t.Errorf("expected zero force at minimum, got %v", st.Forces[0])
	}
}

func TestContextDimensionMismatch(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.001), Reference())

	if err := sim.Context().SetPositions([]Vec3{{0, 0, 0}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if err := sim.Context().SetVelocities(make([]Vec3, 3)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSystemValidate(t *testing.T) {
	sys := NewSystem()
	sys.AddParticle(1)
	lj := NewNonbondedForce()
	sys.AddForce(lj)

	if _, err := NewContext(sys, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	bad := NewSystem()
	bad.AddParticle(0)
	if err := bad.Validate(); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestMinimize(t *testing.T) {
	sim := dimer(t, NewVerletIntegrator(0.001), Reference())
	c := sim.Context()
	before := c.PotentialEnergy()

	after, err := Minimize(context.Background(), c, 1.0, 500)
	if err != nil {
		t.Fatalf("minimize failed: %v", err)
	}
	if after >= before {
		t.Errorf("energy did not decrease: %f -> %f", before, after)
	}

	pos := c.Positions()
	if d := pos[1].Sub(pos[0]).Norm(); math.Abs(d-0.15) > 1e-3 {
		t.Errorf("expected bond relaxed to 0.15 nm, got %f", d)
	}
}

func TestLangevinAccessors(t *testing.T) {
	l := NewLangevinIntegrator(300, 1, 0.002)
	if l.Temperature() != 300 || l.Friction() != 1 || l.StepSize() != 0.002 {
		t.Errorf("unexpected parameters: T=%v gamma=%v dt=%v", l.Temperature(), l.Friction(), l.StepSize())
	}
}

func TestLangevinThermalizes(t *testing.T) {
	const (
		n    = 100
		temp = 300.0
	)
	sys := NewSystem()
	for i := 0; i < n; i++ {
		sys.AddParticle(20.0)
	}
	integ := NewLangevinIntegrator(temp, 10, 0.002)
	integ.SetRandomSeed(7)
	sim, err := NewSimulation(sys, integ, Reference())
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	ctx := context.Background()
	if err := sim.Step(ctx, 500); err != nil {
		t.Fatalf("equilibration failed: %v", err)
	}

	sum := 0.0
	samples := 0
	for i := 0; i < 200; i++ {
		if err := sim.Step(ctx, 5); err != nil {
			t.Fatalf("step failed: %v", err)
		}
		sum += sim.Context().State().KineticEnergy
		samples++
	}

	expected := 1.5 * n * boltzmann * temp
	got := sum / float64(samples)
	if math.Abs(got-expected)/expected > 0.1 {
		t.Errorf("mean kinetic energy %.3f, expected about %.3f", got, expected)
	}
}

func TestPlatformByName(t *testing.T) {
	p, err := PlatformByName("reference")
	if err != nil || p.Name() != "reference" {
		t.Errorf("PlatformByName(reference) = %v, %v", p, err)
	}
	if _, err := PlatformByName("cuda"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
	if p, err := PlatformByName(""); err != nil || p == nil {
		t.Errorf("auto-select failed: %v", err)
	}
	if names := Platforms(); len(names) != 2 || names[0] != "cpu" {
		t.Errorf("unexpected platforms: %v", names)
	}
}
