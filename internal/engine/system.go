package engine

import "fmt"

// Force is one term of the potential energy function.
type Force interface {
	Name() string
	// Compute adds the force on every particle to out and returns the
	// energy contribution.
	Compute(p Platform, pos []Vec3, out []Vec3) float64
}

// particleForce is implemented by forces that carry per-particle parameters.
type particleForce interface {
	NumParticles() int
}

// System describes the particles being simulated and the forces acting on them.
type System struct {
	masses []float64
	forces []Force
}

func NewSystem() *System {
	return &System{}
}

// AddParticle adds a particle and returns its index.
func (s *System) AddParticle(mass float64) int {
	s.masses = append(s.masses, mass)
	return len(s.masses) - 1
}

func (s *System) AddForce(f Force) int {
	s.forces = append(s.forces, f)
	return len(s.forces) - 1
}

func (s *System) NumParticles() int  { return len(s.masses) }
func (s *System) Mass(i int) float64 { return s.masses[i] }
func (s *System) Forces() []Force    { return s.forces }

// Masses returns a copy of the particle masses.
func (s *System) Masses() []float64 {
	m := make([]float64, len(s.masses))
	copy(m, s.masses)
	return m
}

// Validate checks particle masses and per-particle force parameters.
func (s *System) Validate() error {
	for i, m := range s.masses {
		if m <= 0 {
			return fmt.Errorf("%w: particle %d has mass %g", ErrParameterBounds, i, m)
		}
	}
	for _, f := range s.forces {
		pf, ok := f.(particleForce)
		if !ok {
			continue
		}
		if pf.NumParticles() != len(s.masses) {
			return fmt.Errorf("%w: %s has %d particles, system has %d",
				ErrDimensionMismatch, f.Name(), pf.NumParticles(), len(s.masses))
		}
	}
	return nil
}
