package mol

import (
	"encoding/json"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
)

// EnergyModel owns the force-field configuration of a molecule and the
// engine simulation built from it.
type EnergyModel interface {
	Kind() string
	// Spec returns the JSON parameters needed to rebuild this model on
	// another worker. Engine handles are never part of it.
	Spec() (json.RawMessage, error)

	// EngineCompatible reports whether the model is backed by the engine and
	// can hand out a Simulation.
	EngineCompatible() bool

	Prep() error
	Prepped() bool
	Simulation() *engine.Simulation

	// SetEngineState pushes the molecule's integrator, positions,
	// velocities and clock into the engine.
	SetEngineState() error
	// SyncFromEngine pulls the engine's current state into the molecule.
	SyncFromEngine() error
	// SyncRemote copies state computed on a replica back into the
	// molecule this model belongs to.
	SyncRemote(replica *Molecule) error
}

// Integrator is the molecule-side view of an integrator.
type Integrator interface {
	EngineIntegrator() engine.Integrator
}
