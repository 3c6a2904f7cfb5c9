package integrators

import (
	"errors"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
)

var (
	ErrIncompatibleModel = errors.New("integrators: energy model is not engine compatible")
	ErrSilentCrash       = errors.New("integrators: engine crashed silently")
	ErrUnknownKind       = errors.New("integrators: unknown integrator kind")
	ErrThermostat        = errors.New("integrators: invalid thermostat")
)

const crashHint = "engine crashed silently. Please examine the output. " +
	"This may be due to large forces from, for example, " +
	"an insufficiently minimized starting geometry."

// CrashError replaces a program failure of the step routine. The message
// is the remediation hint; the original failure stays reachable through
// Unwrap.
type CrashError struct {
	Cause error
}

func (e *CrashError) Error() string        { return crashHint }
func (e *CrashError) Unwrap() error        { return e.Cause }
func (e *CrashError) Is(target error) bool { return target == ErrSilentCrash }

func remapFailure(err error) error {
	if errors.Is(err, compute.ErrProgramFailure) {
		return &CrashError{Cause: err}
	}
	return err
}
