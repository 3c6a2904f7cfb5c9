package compute

import (
	"errors"
	"fmt"
)

// ExitHandledError is the worker exit code for a failure the handler
// reported itself. Any other non-zero code is a program failure.
const ExitHandledError = 3

var (
	ErrProgramFailure  = errors.New("compute: program failure")
	ErrUnknownJob      = errors.New("compute: unknown job")
	ErrUnknownExecutor = errors.New("compute: unknown executor")
	ErrClosed          = errors.New("compute: executor closed")
)

// ProgramFailure reports a job that terminated abnormally rather than
// returning an error.
type ProgramFailure struct {
	Job      string
	ExitCode int
	Output   string
}

func (e *ProgramFailure) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("compute: job %s terminated abnormally (exit %d)", e.Job, e.ExitCode)
	}
	return fmt.Sprintf("compute: job %s terminated abnormally (exit %d): %s", e.Job, e.ExitCode, e.Output)
}

// Silent reports whether the job left no diagnostic output.
func (e *ProgramFailure) Silent() bool { return e.Output == "" }

func (e *ProgramFailure) Is(target error) bool { return target == ErrProgramFailure }

// RemoteError is a handler error that crossed a process or pool boundary.
// Only the message survives.
type RemoteError struct {
	Job     string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("compute: job %s: %s", e.Job, e.Message)
}
