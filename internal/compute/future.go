package compute

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

type Status int32

const (
	StatusQueued Status = iota
	StatusRunning
	StatusFinished
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Future is the handle for a submitted job.
type Future struct {
	id     string
	job    string
	status atomic.Int32
	done   chan struct{}

	result []byte
	err    error
}

func newFuture(job string) *Future {
	return &Future{
		id:   uuid.New().String(),
		job:  job,
		done: make(chan struct{}),
	}
}

// Completed returns a future that has already finished with result and err.
func Completed(job string, result []byte, err error) *Future {
	f := newFuture(job)
	f.finish(result, err)
	return f
}

func (f *Future) ID() string            { return f.id }
func (f *Future) Job() string           { return f.job }
func (f *Future) Status() Status        { return Status(f.status.Load()) }
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the job finishes or ctx is done.
func (f *Future) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) start() { f.status.Store(int32(StatusRunning)) }

func (f *Future) finish(result []byte, err error) {
	f.result, f.err = result, err
	if err != nil {
		f.status.Store(int32(StatusFailed))
	} else {
		f.status.Store(int32(StatusFinished))
	}
	close(f.done)
}
