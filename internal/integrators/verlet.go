package integrators

import (
	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
)

const KindVerlet = "verlet"

// Verlet is constant-energy velocity Verlet dynamics.
type Verlet struct {
	Base
	integ *engine.VerletIntegrator
}

// NewVerlet creates a Verlet integrator and installs it as m's integrator.
func NewVerlet(m *mol.Molecule, p Params, opts ...Option) (*Verlet, error) {
	b, err := newBase(m, p, opts)
	if err != nil {
		return nil, err
	}
	v := &Verlet{Base: b, integ: engine.NewVerletIntegrator(float64(p.Timestep))}
	v.scheme = v
	m.SetIntegrator(v)
	return v, nil
}

func (v *Verlet) Kind() string                        { return KindVerlet }
func (v *Verlet) EngineIntegrator() engine.Integrator { return v.integ }

func (v *Verlet) annotation() string      { return "Verlet dynamics" }
func (v *Verlet) thermostat() *Thermostat { return nil }
