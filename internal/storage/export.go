package storage

import (
	"encoding/json"
	"io"

	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

// ExportData is the flat JSON form of a run for external plotting tools.
type ExportData struct {
	Run               RunMetadata `json:"run"`
	Times             []float64   `json:"times"`
	PotentialEnergies []float64   `json:"potential_energies"`
	TotalEnergies     []float64   `json:"total_energies"`
	Temperatures      []float64   `json:"temperatures"`
}

func ExportJSON(w io.Writer, meta RunMetadata, traj *trajectory.Trajectory) error {
	data := ExportData{
		Run:               meta,
		Times:             traj.Times(),
		PotentialEnergies: traj.PotentialEnergies(),
		TotalEnergies:     traj.TotalEnergies(),
		Temperatures:      traj.Temperatures(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
