package integrators

import (
	"bytes"
	"context"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

// Job is a submitted run.
type Job struct {
	base   *Base
	future *compute.Future
	remote bool
	local  *trajectory.Trajectory
}

func (j *Job) ID() string             { return j.future.ID() }
func (j *Job) Status() compute.Status { return j.future.Status() }
func (j *Job) Done() <-chan struct{}  { return j.future.Done() }
func (j *Job) Remote() bool           { return j.remote }

// Wait blocks until the run finishes, copies the result into the original
// molecule and returns the trajectory bound to it.
func (j *Job) Wait(ctx context.Context) (*trajectory.Trajectory, error) {
	traj, err := j.result(ctx)
	if err != nil {
		return nil, err
	}
	if err := j.base.syncBack(traj); err != nil {
		return nil, err
	}
	return traj, nil
}

func (j *Job) result(ctx context.Context) (*trajectory.Trajectory, error) {
	out, err := j.future.Wait(ctx)
	if err != nil {
		return nil, remapFailure(err)
	}
	if !j.remote {
		return j.local, nil
	}
	return trajectory.Decode(bytes.NewReader(out))
}
