// Package trajectory records simulation frames for a molecule.
package trajectory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// Frame is one recorded state of the molecule.
type Frame struct {
	Time            units.Time    `json:"time"`
	Positions       []engine.Vec3 `json:"positions"`
	Velocities      []engine.Vec3 `json:"velocities,omitempty"`
	PotentialEnergy float64       `json:"potential_energy"`
	KineticEnergy   float64       `json:"kinetic_energy"`
	Annotation      string        `json:"annotation,omitempty"`
}

func (f Frame) TotalEnergy() float64 { return f.PotentialEnergy + f.KineticEnergy }

// Trajectory is an ordered list of frames of Mol.
type Trajectory struct {
	Mol    *mol.Molecule
	Frames []Frame
}

func New(m *mol.Molecule) *Trajectory {
	return &Trajectory{Mol: m}
}

func (t *Trajectory) Len() int { return len(t.Frames) }

// Last returns the most recent frame.
func (t *Trajectory) Last() (Frame, bool) {
	if len(t.Frames) == 0 {
		return Frame{}, false
	}
	return t.Frames[len(t.Frames)-1], true
}

// Append records the molecule's current state as a new frame.
func (t *Trajectory) Append(annotation string) Frame {
	m := t.Mol
	f := Frame{
		Time:            m.Time,
		Positions:       engine.CloneVecs(m.Positions),
		Velocities:      engine.CloneVecs(m.Velocities),
		PotentialEnergy: m.PotentialEnergy,
		KineticEnergy:   m.KineticEnergy(),
		Annotation:      annotation,
	}
	t.Frames = append(t.Frames, f)
	return f
}

func (t *Trajectory) Times() []float64 {
	out := make([]float64, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = float64(f.Time)
	}
	return out
}

func (t *Trajectory) PotentialEnergies() []float64 {
	out := make([]float64, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = f.PotentialEnergy
	}
	return out
}

func (t *Trajectory) TotalEnergies() []float64 {
	out := make([]float64, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = f.TotalEnergy()
	}
	return out
}

// Temperatures returns the kinetic temperature of every frame.
func (t *Trajectory) Temperatures() []float64 {
	out := make([]float64, len(t.Frames))
	dof := float64(3 * t.Mol.NumAtoms())
	if dof == 0 {
		return out
	}
	for i, f := range t.Frames {
		out[i] = 2 * f.KineticEnergy / (dof * units.BoltzmannKJ)
	}
	return out
}

// WriteXYZ writes every frame as a multi-frame XYZ file.
func (t *Trajectory) WriteXYZ(w io.Writer) error {
	for i, f := range t.Frames {
		comment := fmt.Sprintf("%s t=%s E=%.6f kJ/mol", t.Mol.Name, f.Time, f.TotalEnergy())
		if f.Annotation != "" {
			comment += " " + f.Annotation
		}
		if err := mol.WriteXYZFrame(w, t.Mol.Atoms, f.Positions, comment); err != nil {
			return fmt.Errorf("trajectory: write frame %d: %w", i, err)
		}
	}
	return nil
}

type document struct {
	Molecule mol.Snapshot `json:"molecule"`
	Frames   []Frame      `json:"frames"`
}

// Encode writes the trajectory, including a snapshot of its molecule, as JSON.
func (t *Trajectory) Encode(w io.Writer) error {
	snap, err := t.Mol.Snapshot()
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(document{Molecule: snap, Frames: t.Frames})
}

func Decode(r io.Reader) (*Trajectory, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("trajectory: decode: %w", err)
	}
	m, err := mol.FromSnapshot(doc.Molecule)
	if err != nil {
		return nil, err
	}
	for i, f := range doc.Frames {
		if len(f.Positions) != m.NumAtoms() {
			return nil, fmt.Errorf("trajectory: frame %d has %d positions for %d atoms", i, len(f.Positions), m.NumAtoms())
		}
	}
	return &Trajectory{Mol: m, Frames: doc.Frames}, nil
}
