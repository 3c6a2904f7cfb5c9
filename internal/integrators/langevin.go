package integrators

import (
	"fmt"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
)

const KindLangevin = "langevin"

// Langevin is stochastic dynamics coupled to a heat bath.
type Langevin struct {
	Base
	Thermostat Thermostat

	integ *engine.LangevinIntegrator
}

// NewLangevin creates a Langevin integrator and installs it as m's
// integrator.
func NewLangevin(m *mol.Molecule, p Params, t Thermostat, opts ...Option) (*Langevin, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	b, err := newBase(m, p, opts)
	if err != nil {
		return nil, err
	}
	integ := engine.NewLangevinIntegrator(
		float64(t.Temperature),
		float64(t.CollisionRate),
		float64(p.Timestep),
	)
	integ.SetRandomSeed(b.seed)

	l := &Langevin{Base: b, Thermostat: t, integ: integ}
	l.scheme = l
	m.SetIntegrator(l)
	return l, nil
}

func (l *Langevin) Kind() string                        { return KindLangevin }
func (l *Langevin) EngineIntegrator() engine.Integrator { return l.integ }

func (l *Langevin) annotation() string {
	return fmt.Sprintf("Langevin dynamics @ %s", l.Thermostat.Temperature)
}

func (l *Langevin) thermostat() *Thermostat { return &l.Thermostat }
