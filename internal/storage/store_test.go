package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

func sampleTrajectory(t *testing.T) *trajectory.Trajectory {
	t.Helper()
	m, err := mol.ArgonCluster(2, 0.4)
	if err != nil {
		t.Fatal(err)
	}
	traj := trajectory.New(m)
	traj.Append("Verlet dynamics")
	m.Time = 0.5 * units.Picosecond
	m.PotentialEnergy = -1.25
	m.Velocities[0] = engine.Vec3{0.1, 0, 0}
	traj.Append("Verlet dynamics")
	return traj
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	traj := sampleTrajectory(t)
	meta := RunMetadata{
		Name:       "argon/cold",
		Molecule:   "argon-2",
		Integrator: "verlet",
		Seed:       42,
		Timestep:   0.002,
		Duration:   0.5,
		Metrics:    map[string]float64{"energy_drift": 0.01},
	}
	runID, err := st.Save(meta, traj)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "argon-cold_") {
		t.Errorf("unexpected run id %q", runID)
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Seed != 42 || got.Integrator != "verlet" {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Frames != 2 || got.NumAtoms != 2 {
		t.Errorf("expected 2 frames of 2 atoms, got %d/%d", got.Frames, got.NumAtoms)
	}
	if got.Metrics["energy_drift"] != 0.01 {
		t.Errorf("expected drift 0.01, got %f", got.Metrics["energy_drift"])
	}

	e, err := st.LoadEnergies(runID)
	if err != nil {
		t.Fatalf("load energies failed: %v", err)
	}
	if len(e.Times) != 2 || e.Times[1] != 0.5 || e.Potential[1] != -1.25 {
		t.Errorf("energies mismatch: %+v", e)
	}
	if e.Kinetic[1] <= 0 || e.Temperature[1] <= 0 {
		t.Errorf("expected kinetic energy in second frame: %+v", e)
	}

	loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if loaded.Len() != 2 || loaded.Frames[1].Annotation != "Verlet dynamics" {
		t.Errorf("trajectory mismatch: %d frames", loaded.Len())
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(RunMetadata{Molecule: "argon-2"}, sampleTrajectory(t)); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids collide")
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Molecule: "argon-2"}, sampleTrajectory(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "energies.csv", "trajectory.json"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() = %v", err)
	}
	if _, err := st.LoadEnergies("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadEnergies() = %v", err)
	}
	if _, err := st.LoadTrajectory("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTrajectory() = %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	traj := sampleTrajectory(t)
	if err := ExportJSON(&buf, RunMetadata{ID: "r1"}, traj); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != "r1" || len(data.Times) != 2 || data.PotentialEnergies[1] != -1.25 {
		t.Errorf("export mismatch: %+v", data)
	}
}
