package metrics

import "github.com/shiva16/molecular-design-toolkit/internal/trajectory"

// Metric accumulates a scalar over the frames of a trajectory.
type Metric interface {
	Name() string
	Observe(f trajectory.Frame)
	Value() float64
	Reset()
}

// Evaluate resets every metric, feeds it all frames of traj and returns the
// values by name.
func Evaluate(traj *trajectory.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, f := range traj.Frames {
			m.Observe(f)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Standard returns the metrics reported for every stored run.
func Standard(numAtoms int) []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewMeanPotential(),
		NewMeanTemperature(numAtoms),
		NewMaxDisplacement(),
		NewStability(DefaultStabilityBound),
	}
}
