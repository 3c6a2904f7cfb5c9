package engine

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrNaNCoordinate indicates the integration produced a non-finite coordinate.
	ErrNaNCoordinate = errors.New("engine: particle coordinate is nan")

	// ErrDimensionMismatch indicates a vector whose length does not match the system.
	ErrDimensionMismatch = errors.New("engine: dimension mismatch between state and system")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("engine: parameter out of valid bounds")

	// ErrUnknownPlatform indicates a platform name that is not registered.
	ErrUnknownPlatform = errors.New("engine: unknown platform")

	// ErrNoIntegrator indicates a simulation was stepped without an integrator.
	ErrNoIntegrator = errors.New("engine: no integrator")
)

// StepError wraps an error with the step and time at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f ps): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
