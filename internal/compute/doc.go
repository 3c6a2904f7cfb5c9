// Package compute dispatches named jobs to an execution strategy.
//
// A job is a registered Handler that maps a serialized payload to a
// serialized result. Executors decide where the handler runs:
//
//   - Local: in the calling goroutine. Not remote.
//   - WorkerPool: a fixed set of goroutines that exchange only bytes with
//     the caller. Remote.
//   - Subprocess: the current binary re-executed as "<exe> worker <job>",
//     payload on stdin and result on stdout. Remote.
//
// # Failures
//
// A handler that returns an error on a remote executor surfaces as a
// *RemoteError carrying the message. A handler that panics, or a worker
// process that dies, surfaces as a *ProgramFailure, which matches
// ErrProgramFailure.
//
//	exec, _ := compute.New("pool", 4, logger)
//	defer exec.Close()
//	out, err := exec.Submit(ctx, "integrators.run", payload).Wait(ctx)
package compute
