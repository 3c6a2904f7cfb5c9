package engine

import (
	"math"
	"math/rand"
)

// Integrator advances a Context by a single timestep.
type Integrator interface {
	StepSize() float64
	Step(c *Context) error
}

// VerletIntegrator implements velocity Verlet at a fixed timestep.
type VerletIntegrator struct {
	dt      float64
	prevAcc []Vec3
}

func NewVerletIntegrator(stepSize float64) *VerletIntegrator {
	return &VerletIntegrator{dt: stepSize}
}

func (v *VerletIntegrator) StepSize() float64 { return v.dt }

func (v *VerletIntegrator) ensureScratch(n int) {
	if len(v.prevAcc) != n {
		v.prevAcc = make([]Vec3, n)
	}
}

func (v *VerletIntegrator) Step(c *Context) error {
	n := len(c.positions)
	v.ensureScratch(n)
	dt := v.dt
	dt2 := dt * dt

	c.ensureForces()
	for i := 0; i < n; i++ {
		a := c.forces[i].Scale(1 / c.system.masses[i])
		v.prevAcc[i] = a
		c.positions[i] = c.positions[i].Add(c.velocities[i].Scale(dt)).Add(a.Scale(0.5 * dt2))
	}

	c.invalidate()
	c.ensureForces()

	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		aNew := c.forces[i].Scale(1 / c.system.masses[i])
		c.velocities[i] = c.velocities[i].Add(v.prevAcc[i].Add(aNew).Scale(halfDt))
	}

	c.advance(dt)
	return nil
}

// LangevinIntegrator is a leapfrog Langevin integrator coupling the system to
// a heat bath at a fixed temperature through a friction coefficient.
type LangevinIntegrator struct {
	temperature float64
	friction    float64
	dt          float64
	rng         *rand.Rand
}

// NewLangevinIntegrator takes the bath temperature (K), friction coefficient
// (1/ps) and step size (ps).
func NewLangevinIntegrator(temperature, friction, stepSize float64) *LangevinIntegrator {
	return &LangevinIntegrator{
		temperature: temperature,
		friction:    friction,
		dt:          stepSize,
		rng:         rand.New(rand.NewSource(1)),
	}
}

func (l *LangevinIntegrator) StepSize() float64    { return l.dt }
func (l *LangevinIntegrator) Temperature() float64 { return l.temperature }
func (l *LangevinIntegrator) Friction() float64    { return l.friction }

func (l *LangevinIntegrator) SetRandomSeed(seed int64) {
	l.rng = rand.New(rand.NewSource(seed))
}

const boltzmann = 0.00831446261815324

func (l *LangevinIntegrator) Step(c *Context) error {
	dt := l.dt
	vscale := math.Exp(-l.friction * dt)
	fscale := dt
	if l.friction > 0 {
		fscale = (1 - vscale) / l.friction
	}
	kT := boltzmann * l.temperature
	noise := math.Sqrt(kT * (1 - vscale*vscale))

	c.ensureForces()
	for i := range c.positions {
		m := c.system.masses[i]
		sigma := noise / math.Sqrt(m)
		kick := Vec3{l.rng.NormFloat64(), l.rng.NormFloat64(), l.rng.NormFloat64()}.Scale(sigma)
		c.velocities[i] = c.velocities[i].Scale(vscale).
			Add(c.forces[i].Scale(fscale / m)).
			Add(kick)
		c.positions[i] = c.positions[i].Add(c.velocities[i].Scale(dt))
	}

	c.invalidate()
	c.ensureForces()
	c.advance(dt)
	return nil
}
