package engine

import (
	"context"
	"fmt"
)

// Reporter receives the simulation state at a fixed step interval.
type Reporter interface {
	// Interval is the number of steps between reports. Non-positive
	// intervals disable the reporter.
	Interval() int
	Report(s *Simulation, st State) error
}

// Simulation ties a System, an Integrator and a Context together.
type Simulation struct {
	system     *System
	integrator Integrator
	context    *Context
	reporters  []Reporter

	// CurrentStep counts steps taken since creation or the last reset.
	CurrentStep int
}

func NewSimulation(sys *System, integ Integrator, p Platform) (*Simulation, error) {
	ctx, err := NewContext(sys, p)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		system:     sys,
		integrator: integ,
		context:    ctx,
	}, nil
}

func (s *Simulation) System() *System        { return s.system }
func (s *Simulation) Integrator() Integrator { return s.integrator }
func (s *Simulation) Context() *Context      { return s.context }

// SetIntegrator replaces the integrator. The clock keeps its current value.
func (s *Simulation) SetIntegrator(i Integrator) {
	s.context.SetTime(s.context.Time())
	s.integrator = i
}

// SetReporters replaces every attached reporter with rs.
func (s *Simulation) SetReporters(rs ...Reporter) {
	s.reporters = append([]Reporter(nil), rs...)
}

func (s *Simulation) Reporters() []Reporter {
	return append([]Reporter(nil), s.reporters...)
}

// Step advances the simulation by n steps. Reporters fire whenever
// CurrentStep becomes a multiple of their interval.
func (s *Simulation) Step(ctx context.Context, n int) error {
	if s.integrator == nil {
		return ErrNoIntegrator
	}
	if n < 0 {
		return fmt.Errorf("%w: negative step count %d", ErrParameterBounds, n)
	}

	for k := 0; k < n; k++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.integrator.Step(s.context); err != nil {
			return &StepError{Step: s.CurrentStep, Time: s.context.Time(), Wrapped: err}
		}
		s.CurrentStep++

		if !s.context.valid() {
			return &StepError{Step: s.CurrentStep, Time: s.context.Time(), Wrapped: ErrNaNCoordinate}
		}

		if err := s.report(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) report() error {
	var st *State
	for _, r := range s.reporters {
		iv := r.Interval()
		if iv <= 0 || s.CurrentStep%iv != 0 {
			continue
		}
		if st == nil {
			snapshot := s.context.State()
			st = &snapshot
		}
		if err := r.Report(s, *st); err != nil {
			return fmt.Errorf("engine: reporter at step %d: %w", s.CurrentStep, err)
		}
	}
	return nil
}
