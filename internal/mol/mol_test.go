package mol

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

func TestNewValidatesTopology(t *testing.T) {
	ar, _ := NewAtom("Ar1", "Ar")
	tests := []struct {
		name    string
		atoms   []Atom
		bonds   []Bond
		pos     []engine.Vec3
		wantErr error
	}{
		{"ok", []Atom{ar, ar}, []Bond{{0, 1}}, make([]engine.Vec3, 2), nil},
		{"position count", []Atom{ar, ar}, nil, make([]engine.Vec3, 1), ErrAtomCount},
		{"bond out of range", []Atom{ar}, []Bond{{0, 1}}, make([]engine.Vec3, 1), ErrBadBond},
		{"self bond", []Atom{ar, ar}, []Bond{{1, 1}}, make([]engine.Vec3, 2), ErrBadBond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New("m", tt.atoms, tt.bonds, tt.pos)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && len(m.Velocities) != len(tt.atoms) {
				t.Errorf("velocities not allocated: %d", len(m.Velocities))
			}
		})
	}
}

func TestNewAtomUnknownElement(t *testing.T) {
	if _, err := NewAtom("X", "Zz"); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("NewAtom(Zz) error = %v", err)
	}
}

func TestAssignVelocities(t *testing.T) {
	m, err := ArgonCluster(512, 0.4)
	if err != nil {
		t.Fatal(err)
	}
	m.AssignVelocities(300, 7)

	var p engine.Vec3
	for i, v := range m.Velocities {
		p = p.Add(v.Scale(m.Atoms[i].Mass))
	}
	if p.Norm() > 1e-9 {
		t.Errorf("net momentum not removed: %v", p)
	}
	if got := float64(m.Temperature()); math.Abs(got-300)/300 > 0.1 {
		t.Errorf("Temperature() = %.1f, want ~300", got)
	}
}

func TestTemperatureEmpty(t *testing.T) {
	m := &Molecule{}
	if m.Temperature() != 0 {
		t.Errorf("empty molecule temperature = %v", m.Temperature())
	}
}

func TestCopyStateFrom(t *testing.T) {
	a, _ := ArgonCluster(8, 0.4)
	b, _ := ArgonCluster(8, 0.4)
	b.Positions[3] = engine.Vec3{1, 2, 3}
	b.Velocities[3] = engine.Vec3{0.5, 0, 0}
	b.Time = 2 * units.Picosecond
	b.PotentialEnergy = -4.2

	if err := a.CopyStateFrom(b); err != nil {
		t.Fatal(err)
	}
	if a.Positions[3] != b.Positions[3] || a.Velocities[3] != b.Velocities[3] {
		t.Error("state not copied")
	}
	if a.Time != b.Time || a.PotentialEnergy != b.PotentialEnergy {
		t.Errorf("time/energy not copied: %v %v", a.Time, a.PotentialEnergy)
	}
	b.Positions[3][0] = 9
	if a.Positions[3][0] == 9 {
		t.Error("positions alias the source")
	}

	small, _ := ArgonCluster(2, 0.4)
	if err := a.CopyStateFrom(small); !errors.Is(err, ErrAtomCount) {
		t.Errorf("CopyStateFrom(mismatch) error = %v", err)
	}
}

func TestBuilders(t *testing.T) {
	c, err := ArgonCluster(10, 0.38)
	if err != nil {
		t.Fatal(err)
	}
	if c.NumAtoms() != 10 || len(c.Bonds) != 0 {
		t.Errorf("cluster: %d atoms, %d bonds", c.NumAtoms(), len(c.Bonds))
	}

	ch, err := BeadChain(6, 0.153)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Bonds) != 5 {
		t.Fatalf("chain bonds = %d, want 5", len(ch.Bonds))
	}
	for _, b := range ch.Bonds {
		d := ch.Positions[b.B].Sub(ch.Positions[b.A]).Norm()
		if math.Abs(d-0.153) > 1e-12 {
			t.Errorf("bond %v length %.6f", b, d)
		}
	}

	if _, err := ArgonCluster(0, 0.4); err == nil {
		t.Error("expected error for empty cluster")
	}
}

func TestXYZRoundTrip(t *testing.T) {
	ch, _ := BeadChain(4, 0.153)
	var buf bytes.Buffer
	if err := ch.WriteXYZ(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "4\nchain-4\n") {
		t.Fatalf("unexpected header: %q", buf.String()[:16])
	}

	got, err := ReadXYZ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "chain-4" || got.NumAtoms() != 4 {
		t.Fatalf("read %q with %d atoms", got.Name, got.NumAtoms())
	}
	for i := range got.Positions {
		if got.Positions[i].Sub(ch.Positions[i]).Norm() > 1e-6 {
			t.Errorf("atom %d: %v != %v", i, got.Positions[i], ch.Positions[i])
		}
	}
	if len(got.Bonds) != 3 {
		t.Errorf("inferred %d bonds, want 3", len(got.Bonds))
	}
}

func TestReadXYZErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad count", "x\n"},
		{"short", "2\nm\nAr 0 0 0\n"},
		{"bad coordinate", "1\nm\nAr 0 a 0\n"},
		{"missing field", "1\nm\nAr 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadXYZ(strings.NewReader(tt.input)); !errors.Is(err, ErrXYZ) {
				t.Errorf("ReadXYZ() error = %v, want ErrXYZ", err)
			}
		})
	}
}

type stubModel struct {
	mol   *Molecule
	scale float64
}

func (s *stubModel) Kind() string { return "stub" }
func (s *stubModel) Spec() (json.RawMessage, error) {
	return json.Marshal(map[string]float64{"scale": s.scale})
}
func (s *stubModel) EngineCompatible() bool             { return false }
func (s *stubModel) Prep() error                        { return nil }
func (s *stubModel) Prepped() bool                      { return true }
func (s *stubModel) Simulation() *engine.Simulation     { return nil }
func (s *stubModel) SetEngineState() error              { return nil }
func (s *stubModel) SyncFromEngine() error              { return nil }
func (s *stubModel) SyncRemote(replica *Molecule) error { return s.mol.CopyStateFrom(replica) }

func TestSnapshotRestoresModel(t *testing.T) {
	RegisterEnergyModel("stub", func(m *Molecule, params json.RawMessage) (EnergyModel, error) {
		var p struct{ Scale float64 }
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return &stubModel{mol: m, scale: p.Scale}, nil
	})

	m, _ := ArgonCluster(3, 0.4)
	m.SetEnergyModel(&stubModel{mol: m, scale: 2.5})
	m.Velocities[1] = engine.Vec3{1, 0, 0}
	m.Time = 5

	snap, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	got, err := FromSnapshot(decoded)
	if err != nil {
		t.Fatal(err)
	}
	em, ok := got.EnergyModel().(*stubModel)
	if !ok {
		t.Fatalf("energy model = %T", got.EnergyModel())
	}
	if em.scale != 2.5 || em.mol != got {
		t.Errorf("model not rebuilt against the new molecule: %+v", em)
	}
	if got.Velocities[1] != m.Velocities[1] || got.Time != m.Time {
		t.Error("dynamic state not restored")
	}
}

func TestFromSnapshotUnknownModel(t *testing.T) {
	m, _ := ArgonCluster(1, 0.4)
	snap, _ := m.Snapshot()
	snap.EnergyModel = &ModelSpec{Kind: "nope"}
	if _, err := FromSnapshot(snap); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("FromSnapshot() error = %v", err)
	}
}
