package engine

import "fmt"

// Context holds the dynamic state of a System: positions, velocities, the
// simulation clock and the forces at the current positions.
type Context struct {
	system   *System
	platform Platform

	positions  []Vec3
	velocities []Vec3
	forces     []Vec3
	potential  float64
	fresh      bool

	// time is baseTime + steps*dt so that the clock does not accumulate
	// rounding error over long runs.
	baseTime float64
	steps    int
	dt       float64
}

func NewContext(sys *System, p Platform) (*Context, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if p == nil {
		p = Reference()
	}
	n := sys.NumParticles()
	return &Context{
		system:     sys,
		platform:   p,
		positions:  make([]Vec3, n),
		velocities: make([]Vec3, n),
		forces:     make([]Vec3, n),
	}, nil
}

func (c *Context) System() *System    { return c.system }
func (c *Context) Platform() Platform { return c.platform }
func (c *Context) Time() float64      { return c.baseTime + float64(c.steps)*c.dt }
func (c *Context) Positions() []Vec3  { return CloneVecs(c.positions) }
func (c *Context) Velocities() []Vec3 { return CloneVecs(c.velocities) }

func (c *Context) SetPositions(pos []Vec3) error {
	if len(pos) != len(c.positions) {
		return fmt.Errorf("%w: %d positions for %d particles", ErrDimensionMismatch, len(pos), len(c.positions))
	}
	copy(c.positions, pos)
	c.fresh = false
	return nil
}

// SetVelocities copies v into the context. A nil slice zeroes all velocities.
func (c *Context) SetVelocities(v []Vec3) error {
	if v == nil {
		for i := range c.velocities {
			c.velocities[i] = Vec3{}
		}
		return nil
	}
	if len(v) != len(c.velocities) {
		return fmt.Errorf("%w: %d velocities for %d particles", ErrDimensionMismatch, len(v), len(c.velocities))
	}
	copy(c.velocities, v)
	return nil
}

func (c *Context) SetTime(t float64) {
	c.baseTime = t
	c.steps = 0
}

// advance moves the clock forward by one step of size dt.
func (c *Context) advance(dt float64) {
	if dt != c.dt {
		c.baseTime = c.Time()
		c.steps = 0
		c.dt = dt
	}
	c.steps++
}

func (c *Context) ensureForces() {
	if c.fresh {
		return
	}
	for i := range c.forces {
		c.forces[i] = Vec3{}
	}
	pe := 0.0
	for _, f := range c.system.forces {
		pe += f.Compute(c.platform, c.positions, c.forces)
	}
	c.potential = pe
	c.fresh = true
}

func (c *Context) invalidate() { c.fresh = false }

// PotentialEnergy evaluates the potential at the current positions.
func (c *Context) PotentialEnergy() float64 {
	c.ensureForces()
	return c.potential
}

func (c *Context) valid() bool {
	for _, p := range c.positions {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// State evaluates forces if needed and returns a deep copy of the context.
func (c *Context) State() State {
	c.ensureForces()
	return State{
		Time:            c.Time(),
		Step:            c.steps,
		Positions:       CloneVecs(c.positions),
		Velocities:      CloneVecs(c.velocities),
		Forces:          CloneVecs(c.forces),
		PotentialEnergy: c.potential,
		KineticEnergy:   KineticEnergy(c.system.masses, c.velocities),
	}
}
