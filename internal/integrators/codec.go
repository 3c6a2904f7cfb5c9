package integrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// JobName is the compute job that runs the step routine on a worker.
const JobName = "integrators.run"

func init() {
	compute.Register(JobName, RunJob)
}

// runRequest is everything a worker needs to rebuild the integrator and
// its molecule. Engine handles are never serialized; the worker prepares
// its own.
type runRequest struct {
	Kind       string       `json:"kind"`
	Params     Params       `json:"params"`
	Thermostat *Thermostat  `json:"thermostat,omitempty"`
	Seed       int64        `json:"seed"`
	Duration   units.Time   `json:"duration"`
	Molecule   mol.Snapshot `json:"molecule"`
}

// MarshalRun encodes a run of duration so that RunJob can execute it in
// another process.
func (b *Base) MarshalRun(duration units.Time) ([]byte, error) {
	snap, err := b.mol.Snapshot()
	if err != nil {
		return nil, err
	}
	req := runRequest{
		Kind:       b.scheme.Kind(),
		Params:     b.params,
		Thermostat: b.scheme.thermostat(),
		Seed:       b.seed + int64(b.runs),
		Duration:   duration,
		Molecule:   snap,
	}
	return json.Marshal(req)
}

// UnmarshalRun rebuilds the integrator encoded by MarshalRun around a new
// molecule. The returned integrator runs locally.
func UnmarshalRun(data []byte, opts ...Option) (Integrator, units.Time, error) {
	var req runRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, 0, fmt.Errorf("integrators: decode run: %w", err)
	}
	m, err := mol.FromSnapshot(req.Molecule)
	if err != nil {
		return nil, 0, err
	}
	t := DefaultThermostat()
	if req.Thermostat != nil {
		t = *req.Thermostat
	}
	opts = append([]Option{WithSeed(req.Seed)}, opts...)
	integ, err := New(req.Kind, m, req.Params, t, opts...)
	if err != nil {
		return nil, 0, err
	}
	return integ, req.Duration, nil
}

// RunJob is the compute.Handler for JobName. The result is the encoded
// trajectory of the replica molecule.
func RunJob(ctx context.Context, payload []byte) ([]byte, error) {
	integ, duration, err := UnmarshalRun(payload)
	if err != nil {
		return nil, err
	}
	traj, err := integ.base().run(ctx, duration)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := traj.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
