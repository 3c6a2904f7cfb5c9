package mol

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var (
	ErrUnknownElement = errors.New("mol: unknown element")
	ErrAtomCount      = errors.New("mol: atom count mismatch")
	ErrBadBond        = errors.New("mol: bond references a missing atom")
)

type Atom struct {
	Name    string  `json:"name"`
	Element string  `json:"element"`
	Mass    float64 `json:"mass"`
}

// NewAtom returns an atom of the given element with its standard mass.
func NewAtom(name, symbol string) (Atom, error) {
	m, ok := Mass(symbol)
	if !ok {
		return Atom{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return Atom{Name: name, Element: symbol, Mass: m}, nil
}

type Bond struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Molecule is the host model: topology plus the dynamic state that the
// energy model and integrator read from and write back to.
type Molecule struct {
	Name  string
	Atoms []Atom
	Bonds []Bond

	Positions  []engine.Vec3 // nm
	Velocities []engine.Vec3 // nm/ps

	// Time is the run-local clock. Integrators reset it at the start of
	// every run.
	Time units.Time

	// PotentialEnergy caches the energy of the last synchronized state.
	PotentialEnergy float64

	energyModel EnergyModel
	integrator  Integrator
}

// New validates the topology and returns a molecule at rest.
func New(name string, atoms []Atom, bonds []Bond, positions []engine.Vec3) (*Molecule, error) {
	if len(positions) != len(atoms) {
		return nil, fmt.Errorf("%w: %d atoms, %d positions", ErrAtomCount, len(atoms), len(positions))
	}
	for _, b := range bonds {
		if b.A < 0 || b.B < 0 || b.A >= len(atoms) || b.B >= len(atoms) || b.A == b.B {
			return nil, fmt.Errorf("%w: %d-%d", ErrBadBond, b.A, b.B)
		}
	}
	return &Molecule{
		Name:       name,
		Atoms:      atoms,
		Bonds:      bonds,
		Positions:  engine.CloneVecs(positions),
		Velocities: make([]engine.Vec3, len(atoms)),
	}, nil
}

func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

func (m *Molecule) EnergyModel() EnergyModel { return m.energyModel }
func (m *Molecule) Integrator() Integrator   { return m.integrator }

func (m *Molecule) SetEnergyModel(em EnergyModel) { m.energyModel = em }
func (m *Molecule) SetIntegrator(i Integrator)    { m.integrator = i }

func (m *Molecule) Masses() []float64 {
	masses := make([]float64, len(m.Atoms))
	for i, a := range m.Atoms {
		masses[i] = a.Mass
	}
	return masses
}

func (m *Molecule) KineticEnergy() float64 {
	return engine.KineticEnergy(m.Masses(), m.Velocities)
}

// Temperature is the instantaneous kinetic temperature, using 3N degrees of
// freedom.
func (m *Molecule) Temperature() units.Temperature {
	dof := 3 * len(m.Atoms)
	if dof == 0 {
		return 0
	}
	return units.Temperature(2 * m.KineticEnergy() / (float64(dof) * units.BoltzmannKJ))
}

// AssignVelocities draws velocities from the Maxwell-Boltzmann distribution
// at temperature t and removes the center-of-mass motion.
func (m *Molecule) AssignVelocities(t units.Temperature, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	kT := t.KT()

	var momentum engine.Vec3
	total := 0.0
	for i, a := range m.Atoms {
		sigma := math.Sqrt(kT / a.Mass)
		v := engine.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Scale(sigma)
		m.Velocities[i] = v
		momentum = momentum.Add(v.Scale(a.Mass))
		total += a.Mass
	}
	if total == 0 {
		return
	}
	drift := momentum.Scale(1 / total)
	for i := range m.Velocities {
		m.Velocities[i] = m.Velocities[i].Sub(drift)
	}
}

// CopyStateFrom copies positions, velocities, clock and cached energy from
// other, which must have the same number of atoms.
func (m *Molecule) CopyStateFrom(other *Molecule) error {
	if other == m {
		return nil
	}
	if other.NumAtoms() != m.NumAtoms() {
		return fmt.Errorf("%w: %d atoms, source has %d", ErrAtomCount, m.NumAtoms(), other.NumAtoms())
	}
	m.Positions = engine.CloneVecs(other.Positions)
	m.Velocities = engine.CloneVecs(other.Velocities)
	m.Time = other.Time
	m.PotentialEnergy = other.PotentialEnergy
	return nil
}

// InferBonds adds a bond between every pair of non-noble atoms closer than
// tolerance times the sum of their covalent radii.
func (m *Molecule) InferBonds(tolerance float64) {
	for i := 0; i < len(m.Atoms); i++ {
		ri, ok := CovalentRadius(m.Atoms[i].Element)
		if !ok || noble(m.Atoms[i].Element) {
			continue
		}
		for j := i + 1; j < len(m.Atoms); j++ {
			rj, ok := CovalentRadius(m.Atoms[j].Element)
			if !ok || noble(m.Atoms[j].Element) {
				continue
			}
			if m.Positions[j].Sub(m.Positions[i]).Norm() < tolerance*(ri+rj) {
				m.Bonds = append(m.Bonds, Bond{A: i, B: j})
			}
		}
	}
}
