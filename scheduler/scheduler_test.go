package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nordgen/common"
)

func makeJobs(n int, run func(i int) (string, error)) []Job {
	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = Job{
			Name: fmt.Sprintf("job-%d", i),
			Run:  func() (string, error) { return run(i) },
		}
	}
	return jobs
}

func TestScheduler_RunsAllJobs(t *testing.T) {
	state := NewRunState()
	sched := New(state, Config{Limit: 8})

	var ran atomic.Int64
	jobs := makeJobs(50, func(i int) (string, error) {
		ran.Add(1)
		return fmt.Sprintf("path-%d", i), nil
	})

	results := sched.Run(jobs)

	if len(results) != 50 {
		t.Fatalf("len(results) = %d, want 50", len(results))
	}
	if ran.Load() != 50 {
		t.Errorf("ran = %d, want 50", ran.Load())
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("job %s failed: %v", r.Name, r.Err)
		}
	}
}

func TestScheduler_CountersMatchDispatched(t *testing.T) {
	state := NewRunState()

	var progressCalls atomic.Int64
	sched := New(state, Config{
		Limit: 4,
		OnProgress: func(completed, total int64) {
			progressCalls.Add(1)
		},
	})

	// Mix of successes and failures: counters advance exactly once each.
	jobs := makeJobs(30, func(i int) (string, error) {
		if i%3 == 0 {
			return "", common.WrapError(common.ErrWrite, "disk full")
		}
		return "ok", nil
	})

	results := sched.Run(jobs)

	completed, total := state.Counts()
	if completed != 30 {
		t.Errorf("completed = %d, want 30", completed)
	}
	if total != 30 {
		t.Errorf("total = %d, want 30", total)
	}
	if progressCalls.Load() != 30 {
		t.Errorf("progress calls = %d, want 30", progressCalls.Load())
	}

	var failures int
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	if failures != 10 {
		t.Errorf("failures = %d, want 10", failures)
	}
}

func TestScheduler_ConcurrencyCeiling(t *testing.T) {
	const limit = 5

	state := NewRunState()
	sched := New(state, Config{Limit: limit})

	var inFlight, peak atomic.Int64
	jobs := makeJobs(40, func(i int) (string, error) {
		now := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		return "ok", nil
	})

	sched.Run(jobs)

	if got := peak.Load(); got > limit {
		t.Errorf("observed %d simultaneous jobs, ceiling is %d", got, limit)
	}
}

func TestScheduler_FailuresDoNotAbortSiblings(t *testing.T) {
	state := NewRunState()
	sched := New(state, Config{Limit: 2})

	var succeeded atomic.Int64
	jobs := makeJobs(10, func(i int) (string, error) {
		if i == 0 {
			return "", errors.New("boom")
		}
		succeeded.Add(1)
		return "ok", nil
	})

	results := sched.Run(jobs)

	if len(results) != 10 {
		t.Fatalf("len(results) = %d, want 10", len(results))
	}
	if succeeded.Load() != 9 {
		t.Errorf("succeeded = %d, want 9 despite one failure", succeeded.Load())
	}
}

func TestScheduler_TimeoutRecordedNotFatal(t *testing.T) {
	state := NewRunState()
	sched := New(state, Config{Limit: 4, JobTimeout: 20 * time.Millisecond})

	release := make(chan struct{})
	jobs := []Job{
		{Name: "stuck", Run: func() (string, error) {
			<-release
			return "late", nil
		}},
		{Name: "fast", Run: func() (string, error) {
			return "ok", nil
		}},
	}

	results := sched.Run(jobs)
	close(release)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !errors.Is(results[0].Err, common.ErrTimeout) {
		t.Errorf("stuck job error = %v, want ErrTimeout", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("fast job should succeed after a sibling timeout, got %v", results[1].Err)
	}
}

func TestScheduler_TimeoutAdvancesCounters(t *testing.T) {
	state := NewRunState()

	var progressCalls atomic.Int64
	sched := New(state, Config{
		Limit:      2,
		JobTimeout: 20 * time.Millisecond,
		OnProgress: func(completed, total int64) {
			progressCalls.Add(1)
		},
	})

	release := make(chan struct{})
	jobs := []Job{
		{Name: "hung", Run: func() (string, error) {
			<-release
			return "late", nil
		}},
	}

	results := sched.Run(jobs)

	if len(results) != 1 || !errors.Is(results[0].Err, common.ErrTimeout) {
		t.Fatalf("results = %+v, want one ErrTimeout result", results)
	}

	// The hung job counts as done the moment it is abandoned.
	completed, total := state.Counts()
	if completed != 1 || total != 1 {
		t.Errorf("counts = %d/%d after a timed-out job, want 1/1", completed, total)
	}
	if progressCalls.Load() != 1 {
		t.Errorf("progress calls = %d, want 1", progressCalls.Load())
	}

	// A late finish must not count the job a second time.
	close(release)
	time.Sleep(50 * time.Millisecond)
	if completed, _ := state.Counts(); completed != 1 {
		t.Errorf("completed = %d after the late finish, want 1", completed)
	}
	if progressCalls.Load() != 1 {
		t.Errorf("progress calls = %d after the late finish, want 1", progressCalls.Load())
	}
}

func TestScheduler_DrainUnblocksPermitWait(t *testing.T) {
	state := NewRunState()
	sched := New(state, Config{Limit: 1, JobTimeout: time.Second})

	holding := make(chan struct{})
	release := make(chan struct{})
	var queuedRan atomic.Bool

	jobs := []Job{
		{Name: "holder", Run: func() (string, error) {
			close(holding)
			<-release
			return "ok", nil
		}},
		{Name: "queued", Run: func() (string, error) {
			queuedRan.Store(true)
			return "ok", nil
		}},
	}

	done := make(chan []Result, 1)
	go func() { done <- sched.Run(jobs) }()

	// The only permit is held; dispatch of the second job is blocked
	// waiting for it when the drain request lands.
	<-holding
	time.Sleep(10 * time.Millisecond)
	state.RequestDrain()
	close(release)

	results := <-done

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 (only the holder dispatched)", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("holder should drain cleanly, got %v", results[0].Err)
	}
	if queuedRan.Load() {
		t.Error("queued job ran after the drain request")
	}

	completed, total := state.Counts()
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestScheduler_DrainStopsDispatchButFinishesInFlight(t *testing.T) {
	state := NewRunState()

	const limit = 3
	started := make(chan int, 100)
	gate := make(chan struct{})
	var once sync.Once

	sched := New(state, Config{Limit: limit, JobTimeout: time.Second})

	jobs := makeJobs(100, func(i int) (string, error) {
		started <- i
		// First wave of jobs blocks until the drain request lands.
		once.Do(func() {
			state.RequestDrain()
			close(gate)
		})
		<-gate
		return "ok", nil
	})

	results := sched.Run(jobs)

	// Dispatch halts once the flag is observed; everything dispatched
	// before that still completes and is reported.
	if len(results) >= 100 {
		t.Errorf("dispatch was not stopped by the drain request (%d results)", len(results))
	}
	if len(results) == 0 {
		t.Fatal("no jobs dispatched")
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("in-flight job %s not drained cleanly: %v", r.Name, r.Err)
		}
	}

	completed, _ := state.Counts()
	if completed != int64(len(results)) {
		t.Errorf("completed = %d, want %d (one increment per dispatched job)",
			completed, len(results))
	}
}

func TestRunState_PhaseTransitions(t *testing.T) {
	state := NewRunState()

	if state.Phase() != Running {
		t.Errorf("initial phase = %v, want Running", state.Phase())
	}
	if state.Draining() {
		t.Error("new state should not be draining")
	}

	select {
	case <-state.DrainSignal():
		t.Error("DrainSignal() fired before any drain request")
	default:
	}

	if !state.RequestDrain() {
		t.Error("first RequestDrain() should report the transition")
	}
	if state.Phase() != DrainRequested {
		t.Errorf("phase = %v, want DrainRequested", state.Phase())
	}

	select {
	case <-state.DrainSignal():
	default:
		t.Error("DrainSignal() should fire once a drain is requested")
	}

	if state.RequestDrain() {
		t.Error("second RequestDrain() must not report a transition")
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{Running, "Running"},
		{DrainRequested, "DrainRequested"},
		{Phase(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.expected {
				t.Errorf("Phase.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
