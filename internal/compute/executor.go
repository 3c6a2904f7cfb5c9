package compute

import (
	"context"
	"fmt"
	"log/slog"
)

// Executor runs registered jobs.
type Executor interface {
	Name() string
	// Remote reports whether jobs run against a copy of the caller's state.
	// Callers must sync results back when it is true.
	Remote() bool
	Submit(ctx context.Context, job string, payload []byte) *Future
	Close() error
}

// Names lists the executor strategies understood by New.
func Names() []string { return []string{"local", "pool", "subprocess"} }

// New builds an executor by strategy name. workers bounds concurrency for
// the pool and subprocess strategies; zero picks a default.
func New(name string, workers int, logger *slog.Logger) (Executor, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch name {
	case "", "local":
		return NewLocal(), nil
	case "pool":
		return NewWorkerPool(workers, logger), nil
	case "subprocess":
		return NewSubprocess("", workers, logger)
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownExecutor, name, Names())
}
