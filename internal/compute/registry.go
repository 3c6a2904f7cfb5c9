package compute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"sync"
)

// Handler runs one job. Payload and result are opaque serialized bytes.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

var (
	handlersMu sync.RWMutex
	handlers   = make(map[string]Handler)
)

// Register makes a job runnable by every executor, including worker
// processes that import the registering package.
func Register(job string, h Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[job] = h
}

// Jobs lists the registered job names.
func Jobs() []string {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(job string) (Handler, error) {
	handlersMu.RLock()
	h, ok := handlers[job]
	handlersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	return h, nil
}

// Guard calls fn and turns a panic into a *ProgramFailure.
func Guard(job string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProgramFailure{Job: job, ExitCode: -1, Output: panicOutput(r)}
		}
	}()
	return fn()
}

func panicOutput(r any) string {
	return fmt.Sprintf("panic: %v\n%s", r, debug.Stack())
}

func run(ctx context.Context, job string, payload []byte) ([]byte, error) {
	h, err := lookup(job)
	if err != nil {
		return nil, err
	}
	var out []byte
	err = Guard(job, func() error {
		var herr error
		out, herr = h(ctx, payload)
		return herr
	})
	return out, err
}

// Serve is the worker side of Subprocess: it reads the payload from in,
// runs job and writes the result to out.
func Serve(ctx context.Context, job string, in io.Reader, out io.Writer) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("compute: read payload: %w", err)
	}
	result, err := run(ctx, job, payload)
	if err != nil {
		return err
	}
	_, err = out.Write(result)
	return err
}

// ServeMain runs Serve and returns the process exit code a worker should
// use: 0 on success, ExitHandledError for handler errors, 2 for program
// failures. Errors are written to errOut.
func ServeMain(ctx context.Context, job string, in io.Reader, out, errOut io.Writer) int {
	err := Serve(ctx, job, in, out)
	if err == nil {
		return 0
	}
	fmt.Fprintln(errOut, err)
	if errors.Is(err, ErrProgramFailure) {
		return 2
	}
	return ExitHandledError
}
