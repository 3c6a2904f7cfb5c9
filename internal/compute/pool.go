package compute

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

type task struct {
	ctx     context.Context
	job     string
	payload []byte
	future  *Future
}

// WorkerPool runs jobs on a fixed set of goroutines. Payloads are copied on
// submit and handler errors are flattened to *RemoteError, so a job sees the
// same isolation it would get in a worker process.
type WorkerPool struct {
	workers int
	tasks   chan task
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool starts workers goroutines. Zero means runtime.NumCPU().
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &WorkerPool{
		workers: workers,
		tasks:   make(chan task, workers*4),
		logger:  logger,
	}
	for w := 0; w < workers; w++ {
		p.wg.Add(1)
		go p.work(w)
	}
	return p
}

func (p *WorkerPool) Name() string { return "pool" }
func (p *WorkerPool) Remote() bool { return true }
func (p *WorkerPool) Workers() int { return p.workers }

func (p *WorkerPool) Submit(ctx context.Context, job string, payload []byte) *Future {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return Completed(job, nil, ErrClosed)
	}

	f := newFuture(job)
	t := task{ctx: ctx, job: job, payload: append([]byte(nil), payload...), future: f}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		f.finish(nil, ctx.Err())
	}
	return f
}

func (p *WorkerPool) work(id int) {
	defer p.wg.Done()
	for t := range p.tasks {
		if err := t.ctx.Err(); err != nil {
			t.future.finish(nil, err)
			continue
		}
		t.future.start()
		p.logger.Debug("job started", "job", t.job, "id", t.future.ID(), "worker", id)

		out, err := run(t.ctx, t.job, t.payload)
		if err != nil {
			err = flatten(t.job, err)
			p.logger.Debug("job failed", "job", t.job, "id", t.future.ID(), "error", err)
		} else {
			p.logger.Debug("job finished", "job", t.job, "id", t.future.ID(), "bytes", len(out))
		}
		t.future.finish(out, err)
	}
}

// flatten keeps program failures and cancellation typed and reduces every
// other error to its message.
func flatten(job string, err error) error {
	var pf *ProgramFailure
	switch {
	case errors.As(err, &pf),
		errors.Is(err, ErrUnknownJob),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &RemoteError{Job: job, Message: err.Error()}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *WorkerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}
