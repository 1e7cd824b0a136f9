// Package scheduler provides the bounded-concurrency write scheduler
// and the run lifecycle shared by the pipeline and the signal handler.
// This file contains the per-run shared state.
package scheduler

import "sync/atomic"

// Phase is the lifecycle phase of a run.
type Phase int32

const (
	// Running means jobs may still be dispatched.
	Running Phase = iota
	// DrainRequested means no new jobs start; in-flight jobs finish.
	DrainRequested
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case Running:
		return "Running"
	case DrainRequested:
		return "DrainRequested"
	default:
		return "Unknown"
	}
}

// RunState is the process-wide mutable state of one generation run.
// It is created by the top-level driver and shared by handle with the
// scheduler and the signal handler; there is no ambient global.
//
// The phase transition is monotonic: Running -> DrainRequested, never
// back. Counters only grow.
type RunState struct {
	phase     atomic.Int32
	completed atomic.Int64
	total     atomic.Int64
	drained   chan struct{}
}

// NewRunState creates a RunState in the Running phase.
func NewRunState() *RunState {
	return &RunState{drained: make(chan struct{})}
}

// Phase returns the current lifecycle phase.
func (s *RunState) Phase() Phase {
	return Phase(s.phase.Load())
}

// RequestDrain transitions Running -> DrainRequested. It returns true
// on the first call (the transition happened) and false when a drain
// was already requested, which distinguishes a first interrupt from a
// second one.
func (s *RunState) RequestDrain() bool {
	if s.phase.CompareAndSwap(int32(Running), int32(DrainRequested)) {
		close(s.drained)
		return true
	}
	return false
}

// Draining reports whether a drain has been requested.
func (s *RunState) Draining() bool {
	return s.Phase() == DrainRequested
}

// DrainSignal returns a channel closed when a drain is requested.
// It lets blocked operations give up their wait on shutdown.
func (s *RunState) DrainSignal() <-chan struct{} {
	return s.drained
}

// AddTotal registers n planned jobs.
func (s *RunState) AddTotal(n int) {
	s.total.Add(int64(n))
}

// JobDone records one finished job and returns the updated counts.
// Called exactly once per dispatched job, on every outcome.
func (s *RunState) JobDone() (completed, total int64) {
	return s.completed.Add(1), s.total.Load()
}

// Counts returns the completed and total job counts.
func (s *RunState) Counts() (completed, total int64) {
	return s.completed.Load(), s.total.Load()
}
