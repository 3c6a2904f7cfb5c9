package compute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Subprocess runs each job in a fresh worker process started as
// "<path> worker <job>". The worker must call Serve.
type Subprocess struct {
	path   string
	slots  chan struct{}
	logger *slog.Logger
}

// NewSubprocess uses the running executable when path is empty. workers
// bounds the number of concurrent processes; zero means runtime.NumCPU().
func NewSubprocess(path string, workers int, logger *slog.Logger) (*Subprocess, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("compute: locate executable: %w", err)
		}
		path = exe
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Subprocess{path: path, slots: make(chan struct{}, workers), logger: logger}, nil
}

func (s *Subprocess) Name() string { return "subprocess" }
func (s *Subprocess) Remote() bool { return true }
func (s *Subprocess) Close() error { return nil }

func (s *Subprocess) Submit(ctx context.Context, job string, payload []byte) *Future {
	f := newFuture(job)
	go func() {
		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			f.finish(nil, ctx.Err())
			return
		}
		defer func() { <-s.slots }()

		f.start()
		f.finish(s.exec(ctx, f.ID(), job, payload))
	}()
	return f
}

func (s *Subprocess) exec(ctx context.Context, id, job string, payload []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.path, "worker", job)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	s.logger.Debug("worker started", "job", job, "id", id, "path", s.path)
	err := cmd.Run()
	s.logger.Debug("worker exited", "job", job, "id", id, "elapsed", time.Since(start), "error", err)

	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("compute: start worker: %w", err)
	}
	output := strings.TrimSpace(stderr.String())
	if exitErr.ExitCode() == ExitHandledError {
		return nil, &RemoteError{Job: job, Message: output}
	}
	return nil, &ProgramFailure{Job: job, ExitCode: exitErr.ExitCode(), Output: output}
}
