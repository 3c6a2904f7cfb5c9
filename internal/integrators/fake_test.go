package integrators_test

import (
	"encoding/json"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/models"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
)

const fakeKind = "test-forcefield"

// fakeModel is a force field that counts preparations and can be told to
// abort inside the engine's force evaluation.
type fakeModel struct {
	*models.ForceField
	crash        bool
	incompatible bool
	preps        int
}

type fakeSpec struct {
	Crash bool `json:"crash"`
}

func init() {
	mol.RegisterEnergyModel(fakeKind, func(m *mol.Molecule, raw json.RawMessage) (mol.EnergyModel, error) {
		var s fakeSpec
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return newFakeModel(m, s.Crash), nil
	})
}

func newFakeModel(m *mol.Molecule, crash bool) *fakeModel {
	f := &fakeModel{
		ForceField: models.NewForceField(m, models.Params{Platform: "reference"}),
		crash:      crash,
	}
	m.SetEnergyModel(f)
	return f
}

func (f *fakeModel) Kind() string           { return fakeKind }
func (f *fakeModel) EngineCompatible() bool { return !f.incompatible }

func (f *fakeModel) Spec() (json.RawMessage, error) {
	return json.Marshal(fakeSpec{Crash: f.crash})
}

func (f *fakeModel) Prep() error {
	f.preps++
	fresh := !f.ForceField.Prepped()
	if err := f.ForceField.Prep(); err != nil {
		return err
	}
	if fresh && f.crash {
		f.Simulation().System().AddForce(abortForce{})
	}
	return nil
}

type abortForce struct{}

func (abortForce) Name() string { return "abort" }

func (abortForce) Compute(engine.Platform, []engine.Vec3, []engine.Vec3) float64 {
	panic("abort")
}

// argon returns a small, relaxed-enough cluster backed by a fakeModel.
func argon(crash bool) (*mol.Molecule, *fakeModel) {
	m, err := mol.ArgonCluster(8, 0.38)
	if err != nil {
		panic(err)
	}
	m.AssignVelocities(50, 3)
	return m, newFakeModel(m, crash)
}
