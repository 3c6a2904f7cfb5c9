package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

const (
	metadataFile   = "metadata.json"
	energiesFile   = "energies.csv"
	trajectoryFile = "trajectory.json"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Molecule      string             `json:"molecule"`
	NumAtoms      int                `json:"num_atoms"`
	Timestamp     time.Time          `json:"timestamp"`
	Integrator    string             `json:"integrator"`
	Executor      string             `json:"executor"`
	Seed          int64              `json:"seed"`
	Timestep      float64            `json:"timestep_ps"`
	Duration      float64            `json:"duration_ps"`
	Temperature   float64            `json:"temperature_k,omitempty"`
	CollisionRate float64            `json:"collision_rate_per_ps,omitempty"`
	Frames        int                `json:"frames"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes a new run directory holding the metadata, an energy table and
// the full trajectory. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, traj *trajectory.Trajectory) (string, error) {
	name := meta.Name
	if name == "" {
		name = meta.Molecule
	}
	name = strings.NewReplacer("/", "-", " ", "_").Replace(name)

	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", name, now.Unix(), uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = traj.Len()
	meta.NumAtoms = traj.Mol.NumAtoms()

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeEnergies(filepath.Join(runDir, energiesFile), traj); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := traj.Encode(f); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEnergies(path string, traj *trajectory.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "potential", "kinetic", "total", "temperature"}); err != nil {
		return err
	}
	temps := traj.Temperatures()
	for i, fr := range traj.Frames {
		row := []string{
			strconv.FormatFloat(float64(fr.Time), 'f', 6, 64),
			strconv.FormatFloat(fr.PotentialEnergy, 'f', 6, 64),
			strconv.FormatFloat(fr.KineticEnergy, 'f', 6, 64),
			strconv.FormatFloat(fr.TotalEnergy(), 'f', 6, 64),
			strconv.FormatFloat(temps[i], 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Energies are the columns of a run's energy table.
type Energies struct {
	Times       []float64
	Potential   []float64
	Kinetic     []float64
	Total       []float64
	Temperature []float64
}

func (s *Store) LoadEnergies(runID string) (*Energies, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	e := &Energies{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 5 {
			continue
		}
		var vals [5]float64
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		e.Times = append(e.Times, vals[0])
		e.Potential = append(e.Potential, vals[1])
		e.Kinetic = append(e.Kinetic, vals[2])
		e.Total = append(e.Total, vals[3])
		e.Temperature = append(e.Temperature, vals[4])
	}
	return e, nil
}

func (s *Store) LoadTrajectory(runID string) (*trajectory.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return trajectory.Decode(f)
}
