package mol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var ErrUnknownModel = errors.New("mol: unknown energy model kind")

// ModelDecoder rebuilds an energy model for m from its Spec.
type ModelDecoder func(m *Molecule, params json.RawMessage) (EnergyModel, error)

var (
	decodersMu sync.RWMutex
	decoders   = make(map[string]ModelDecoder)
)

// RegisterEnergyModel makes an energy model kind restorable from snapshots.
func RegisterEnergyModel(kind string, dec ModelDecoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[kind] = dec
}

type ModelSpec struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Snapshot is the transportable form of a Molecule.
type Snapshot struct {
	Name            string        `json:"name"`
	Atoms           []Atom        `json:"atoms"`
	Bonds           []Bond        `json:"bonds,omitempty"`
	Positions       []engine.Vec3 `json:"positions"`
	Velocities      []engine.Vec3 `json:"velocities,omitempty"`
	Time            units.Time    `json:"time"`
	PotentialEnergy float64       `json:"potential_energy"`
	EnergyModel     *ModelSpec    `json:"energy_model,omitempty"`
}

// Snapshot captures the molecule and the spec of its energy model.
func (m *Molecule) Snapshot() (Snapshot, error) {
	s := Snapshot{
		Name:            m.Name,
		Atoms:           append([]Atom(nil), m.Atoms...),
		Bonds:           append([]Bond(nil), m.Bonds...),
		Positions:       engine.CloneVecs(m.Positions),
		Velocities:      engine.CloneVecs(m.Velocities),
		Time:            m.Time,
		PotentialEnergy: m.PotentialEnergy,
	}
	if m.energyModel != nil {
		params, err := m.energyModel.Spec()
		if err != nil {
			return Snapshot{}, fmt.Errorf("mol: snapshot energy model: %w", err)
		}
		s.EnergyModel = &ModelSpec{Kind: m.energyModel.Kind(), Params: params}
	}
	return s, nil
}

// FromSnapshot builds a new molecule. When the snapshot carries an energy
// model spec the model is rebuilt and attached.
func FromSnapshot(s Snapshot) (*Molecule, error) {
	m, err := New(s.Name, s.Atoms, s.Bonds, s.Positions)
	if err != nil {
		return nil, err
	}
	if s.Velocities != nil {
		if len(s.Velocities) != len(s.Atoms) {
			return nil, fmt.Errorf("%w: %d velocities for %d atoms", ErrAtomCount, len(s.Velocities), len(s.Atoms))
		}
		m.Velocities = engine.CloneVecs(s.Velocities)
	}
	m.Time = s.Time
	m.PotentialEnergy = s.PotentialEnergy

	if s.EnergyModel == nil {
		return m, nil
	}
	decodersMu.RLock()
	dec, ok := decoders[s.EnergyModel.Kind]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, s.EnergyModel.Kind)
	}
	em, err := dec(m, s.EnergyModel.Params)
	if err != nil {
		return nil, err
	}
	m.SetEnergyModel(em)
	return m, nil
}
