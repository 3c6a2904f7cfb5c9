package compute

import "context"

// Local runs jobs synchronously in the submitting goroutine.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) Name() string { return "local" }
func (*Local) Remote() bool { return false }
func (*Local) Close() error { return nil }

func (*Local) Submit(ctx context.Context, job string, payload []byte) *Future {
	f := newFuture(job)
	f.start()
	f.finish(run(ctx, job, payload))
	return f
}
