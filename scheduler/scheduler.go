// Package scheduler provides the bounded-concurrency write scheduler
// and the run lifecycle shared by the pipeline and the signal handler.
// This file contains the capped-parallelism job runner.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"nordgen/common"
)

// Job is one unit of write work. Run returns the path it produced.
type Job struct {
	// Name identifies the job in logs and results.
	Name string
	// Run performs the work. It must be safe to call from any goroutine.
	Run func() (string, error)
}

// Result is the outcome of one dispatched job.
type Result struct {
	Name string
	Path string
	Err  error
}

// Progress is called after every finished job with the updated counts.
// It may be invoked from multiple goroutines.
type Progress func(completed, total int64)

// Config holds scheduler options.
type Config struct {
	// Limit caps simultaneous in-flight jobs. Defaults to
	// common.DefaultConcurrency.
	Limit int
	// JobTimeout bounds the wait for any single job during the final
	// drain. Defaults to common.WriteTimeout.
	JobTimeout time.Duration
	// OnProgress, when set, observes every finished job.
	OnProgress Progress
}

// Scheduler runs batches of jobs with a hard concurrency ceiling.
//
// The admission gate is a counting semaphore acquired before a job
// starts and released on every exit path, so a panic or early return
// inside one job can never leak a permit. Cancellation is level
// triggered and non-preemptive: a requested drain stops new dispatch
// but never interrupts a write already in progress.
type Scheduler struct {
	state      *RunState
	gate       *semaphore.Weighted
	limit      int
	jobTimeout time.Duration
	onProgress Progress
}

// New creates a Scheduler bound to the given run state.
func New(state *RunState, cfg Config) *Scheduler {
	if cfg.Limit <= 0 {
		cfg.Limit = common.DefaultConcurrency
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = common.WriteTimeout
	}
	return &Scheduler{
		state:      state,
		gate:       semaphore.NewWeighted(int64(cfg.Limit)),
		limit:      cfg.Limit,
		jobTimeout: cfg.JobTimeout,
		onProgress: cfg.OnProgress,
	}
}

type dispatched struct {
	name string
	done chan Result
	// counted latches the counter/progress advance so a job that is
	// recorded as timed out and later finishes cannot count twice.
	counted sync.Once
}

// Run dispatches the batch and waits for every dispatched job.
//
// Dispatch stops early when a drain is requested, including while
// blocked waiting for a permit, but jobs already in flight are always
// awaited. Each dispatched job gets at most JobTimeout during the wait
// phase; a job exceeding it is recorded as timed out rather than
// blocking the whole run. The returned slice holds one Result per
// dispatched job, in dispatch order.
func (s *Scheduler) Run(jobs []Job) []Result {
	s.state.AddTotal(len(jobs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.state.DrainSignal():
			cancel()
		case <-ctx.Done():
		}
	}()

	inFlight := make([]*dispatched, 0, len(jobs))

	for _, job := range jobs {
		if s.state.Draining() {
			common.LogWarn("Shutdown requested, stopping dispatch (%d of %d jobs started)",
				len(inFlight), len(jobs))
			break
		}

		// The gate bounds in-flight writes and queued goroutines alike.
		// A drain request cancels a blocked wait for a permit.
		if err := s.gate.Acquire(ctx, 1); err != nil {
			common.LogWarn("Shutdown requested, stopping dispatch (%d of %d jobs started)",
				len(inFlight), len(jobs))
			break
		}

		d := &dispatched{name: job.Name, done: make(chan Result, 1)}
		inFlight = append(inFlight, d)

		go s.execute(job, d)
	}

	results := make([]Result, 0, len(inFlight))
	timer := time.NewTimer(s.jobTimeout)
	defer timer.Stop()

	for _, d := range inFlight {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.jobTimeout)

		select {
		case res := <-d.done:
			results = append(results, res)
		case <-timer.C:
			common.LogWarn("Job %s exceeded %v, recording timeout", d.name, s.jobTimeout)
			// The hung job is counted here so completed still reaches
			// the dispatched count; the latch keeps a late finish from
			// counting it again.
			s.advance(d)
			results = append(results, Result{
				Name: d.name,
				Err:  common.WrapError(common.ErrTimeout, d.name),
			})
		}
	}

	return results
}

// advance records one finished (or abandoned) job exactly once.
func (s *Scheduler) advance(d *dispatched) {
	d.counted.Do(func() {
		completed, total := s.state.JobDone()
		if s.onProgress != nil {
			s.onProgress(completed, total)
		}
	})
}

// execute runs one job. Permit release and counter advancement are
// deferred so they happen on success, error, and panic alike.
func (s *Scheduler) execute(job Job, d *dispatched) {
	defer s.gate.Release(1)
	defer s.advance(d)

	path, err := job.Run()
	d.done <- Result{Name: job.Name, Path: path, Err: err}
}
