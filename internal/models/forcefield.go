// Package models provides energy models that back a molecule with an
// engine.Simulation.
package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

const Kind = "forcefield"

const (
	DefaultBondK             = 2.5e5 // kJ/mol/nm^2
	DefaultMinimizeTolerance = 10.0  // kJ/mol/nm
)

var (
	ErrNoParameters = errors.New("models: no force field parameters for element")
	ErrNotPrepped   = errors.New("models: energy model is not prepared")
)

// Params configures a ForceField. The zero value uses the auto-selected
// platform, no cutoff and DefaultBondK.
type Params struct {
	Platform string  `json:"platform,omitempty" yaml:"platform,omitempty"`
	Cutoff   float64 `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
	BondK    float64 `json:"bond_k,omitempty" yaml:"bond_k,omitempty"`
}

// ForceField is a harmonic-bond plus Lennard-Jones energy model evaluated by
// the engine.
type ForceField struct {
	mol    *mol.Molecule
	params Params

	sim *engine.Simulation
}

// NewForceField creates a force field for m and attaches it as m's energy
// model.
func NewForceField(m *mol.Molecule, p Params) *ForceField {
	if p.BondK == 0 {
		p.BondK = DefaultBondK
	}
	ff := &ForceField{mol: m, params: p}
	m.SetEnergyModel(ff)
	return ff
}

func init() {
	mol.RegisterEnergyModel(Kind, func(m *mol.Molecule, raw json.RawMessage) (mol.EnergyModel, error) {
		var p Params
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("models: decode %s params: %w", Kind, err)
			}
		}
		return NewForceField(m, p), nil
	})
}

func (f *ForceField) Kind() string                   { return Kind }
func (f *ForceField) Params() Params                 { return f.params }
func (f *ForceField) EngineCompatible() bool         { return true }
func (f *ForceField) Prepped() bool                  { return f.sim != nil }
func (f *ForceField) Simulation() *engine.Simulation { return f.sim }

func (f *ForceField) Spec() (json.RawMessage, error) {
	return json.Marshal(f.params)
}

// Invalidate discards the prepared simulation, e.g. after a topology edit.
func (f *ForceField) Invalidate() { f.sim = nil }

// Prep builds the engine system and simulation. It is a no-op when already
// prepared.
func (f *ForceField) Prep() error {
	if f.sim != nil {
		return nil
	}
	platform, err := engine.PlatformByName(f.params.Platform)
	if err != nil {
		return err
	}
	sys, err := f.buildSystem()
	if err != nil {
		return err
	}

	var integ engine.Integrator
	if mi := f.mol.Integrator(); mi != nil {
		integ = mi.EngineIntegrator()
	}
	sim, err := engine.NewSimulation(sys, integ, platform)
	if err != nil {
		return fmt.Errorf("models: create simulation: %w", err)
	}
	f.sim = sim
	return f.pushCoordinates()
}

func (f *ForceField) buildSystem() (*engine.System, error) {
	sys := engine.NewSystem()
	lj := engine.NewNonbondedForce()
	if f.params.Cutoff > 0 {
		lj.SetCutoff(f.params.Cutoff)
	}
	for _, a := range f.mol.Atoms {
		sigma, eps, ok := LJ(a.Element)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoParameters, a.Element)
		}
		sys.AddParticle(a.Mass)
		lj.AddParticle(sigma, eps)
	}

	if len(f.mol.Bonds) > 0 {
		bonds := engine.NewHarmonicBondForce()
		neighbors := make([][]int, len(f.mol.Atoms))
		for _, b := range f.mol.Bonds {
			ra, _ := mol.CovalentRadius(f.mol.Atoms[b.A].Element)
			rb, _ := mol.CovalentRadius(f.mol.Atoms[b.B].Element)
			bonds.AddBond(b.A, b.B, ra+rb, f.params.BondK)
			lj.AddExclusion(b.A, b.B)
			neighbors[b.A] = append(neighbors[b.A], b.B)
			neighbors[b.B] = append(neighbors[b.B], b.A)
		}
		// 1-3 pairs share a bonded neighbor.
		for _, ns := range neighbors {
			for i := 0; i < len(ns); i++ {
				for j := i + 1; j < len(ns); j++ {
					lj.AddExclusion(ns[i], ns[j])
				}
			}
		}
		sys.AddForce(bonds)
	}
	sys.AddForce(lj)
	return sys, nil
}

func (f *ForceField) pushCoordinates() error {
	c := f.sim.Context()
	if err := c.SetPositions(f.mol.Positions); err != nil {
		return err
	}
	return c.SetVelocities(f.mol.Velocities)
}

// SetEngineState copies the molecule's integrator, coordinates, velocities
// and clock into the simulation and resets its step counter.
func (f *ForceField) SetEngineState() error {
	if f.sim == nil {
		return ErrNotPrepped
	}
	if mi := f.mol.Integrator(); mi != nil {
		f.sim.SetIntegrator(mi.EngineIntegrator())
	}
	if err := f.pushCoordinates(); err != nil {
		return err
	}
	f.sim.Context().SetTime(float64(f.mol.Time))
	f.sim.CurrentStep = 0
	return nil
}

func (f *ForceField) SyncFromEngine() error {
	if f.sim == nil {
		return ErrNotPrepped
	}
	st := f.sim.Context().State()
	f.mol.Positions = st.Positions
	f.mol.Velocities = st.Velocities
	f.mol.Time = units.Time(st.Time)
	f.mol.PotentialEnergy = st.PotentialEnergy
	return nil
}

func (f *ForceField) SyncRemote(replica *mol.Molecule) error {
	return f.mol.CopyStateFrom(replica)
}

// Energy evaluates the potential energy at the molecule's current positions.
func (f *ForceField) Energy() (float64, error) {
	if err := f.Prep(); err != nil {
		return 0, err
	}
	if err := f.sim.Context().SetPositions(f.mol.Positions); err != nil {
		return 0, err
	}
	e := f.sim.Context().PotentialEnergy()
	f.mol.PotentialEnergy = e
	return e, nil
}

// Minimize relaxes the molecule in place and returns the final energy.
func (f *ForceField) Minimize(ctx context.Context, maxIterations int) (float64, error) {
	if err := f.Prep(); err != nil {
		return 0, err
	}
	c := f.sim.Context()
	if err := c.SetPositions(f.mol.Positions); err != nil {
		return 0, err
	}
	e, err := engine.Minimize(ctx, c, DefaultMinimizeTolerance, maxIterations)
	f.mol.Positions = c.Positions()
	f.mol.PotentialEnergy = e
	return e, err
}
