package metrics

import (
	"math"

	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// MeanPotential is the average potential energy in kJ/mol.
type MeanPotential struct {
	name    string
	total   float64
	samples int
}

func NewMeanPotential() *MeanPotential {
	return &MeanPotential{name: "mean_potential"}
}

func (e *MeanPotential) Name() string { return e.name }

func (e *MeanPotential) Observe(f trajectory.Frame) {
	e.total += f.PotentialEnergy
	e.samples++
}

func (e *MeanPotential) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanPotential) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation of the total energy from
// the first observed frame.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f trajectory.Frame) {
	energy := f.TotalEnergy()
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanTemperature is the average kinetic temperature in kelvin over 3N
// degrees of freedom.
type MeanTemperature struct {
	name    string
	dof     float64
	total   float64
	samples int
}

func NewMeanTemperature(numAtoms int) *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature", dof: float64(3 * numAtoms)}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(f trajectory.Frame) {
	if m.dof == 0 {
		return
	}
	m.total += 2 * f.KineticEnergy / (m.dof * units.BoltzmannKJ)
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.total = 0
	m.samples = 0
}
