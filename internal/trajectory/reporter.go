package trajectory

import (
	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// Reporter is an engine.Reporter that copies the engine state into its
// molecule every interval steps and records a frame.
type Reporter struct {
	// Annotation is attached to every frame recorded after it is set.
	Annotation string

	mol      *mol.Molecule
	interval int
	traj     *Trajectory
}

// NewReporter returns a reporter for m. Intervals below one are raised to one.
func NewReporter(m *mol.Molecule, interval int) *Reporter {
	if interval < 1 {
		interval = 1
	}
	return &Reporter{mol: m, interval: interval, traj: New(m)}
}

func (r *Reporter) Interval() int           { return r.interval }
func (r *Reporter) Molecule() *mol.Molecule { return r.mol }
func (r *Reporter) Trajectory() *Trajectory { return r.traj }

func (r *Reporter) Report(_ *engine.Simulation, st engine.State) error {
	r.mol.Positions = engine.CloneVecs(st.Positions)
	r.mol.Velocities = engine.CloneVecs(st.Velocities)
	r.mol.Time = units.Time(st.Time)
	r.mol.PotentialEnergy = st.PotentialEnergy
	r.ReportFromMol()
	return nil
}

// ReportFromMol records the molecule's current state without touching the
// engine.
func (r *Reporter) ReportFromMol() {
	r.traj.Append(r.Annotation)
}

// LastReportTime returns the time of the most recent frame, or false when
// nothing has been recorded.
func (r *Reporter) LastReportTime() (units.Time, bool) {
	f, ok := r.traj.Last()
	return f.Time, ok
}

// Reset starts a fresh trajectory. Frames already handed out are kept by
// their holders.
func (r *Reporter) Reset() {
	r.traj = New(r.mol)
}
