// Package scheduler provides the bounded-concurrency write scheduler
// and the run lifecycle shared by the pipeline and the signal handler.
// This file contains the two-press interrupt coordinator.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"

	"nordgen/common"
)

// forcedExitCode is the exit status after a second interrupt.
const forcedExitCode = 130

// Coordinator turns interrupt signals into the run's drain protocol.
//
// The protocol is deliberately asymmetric: the first SIGINT/SIGTERM
// requests a cooperative drain (in-flight writes finish, partial
// summary output is still written), the second terminates the process
// immediately as an escape hatch for a hung write.
type Coordinator struct {
	state   *RunState
	signals chan os.Signal
	exit    func(int)
}

// NewCoordinator creates a Coordinator bound to the given run state.
func NewCoordinator(state *RunState) *Coordinator {
	return &Coordinator{
		state:   state,
		signals: make(chan os.Signal, 2),
		exit:    os.Exit,
	}
}

// Install registers the signal handler. Must be called before any
// stage that observes the run state starts.
func (c *Coordinator) Install() {
	signal.Notify(c.signals, os.Interrupt, syscall.SIGTERM)
	go c.watch()
}

// Stop unregisters the signal handler and ends the watch goroutine.
func (c *Coordinator) Stop() {
	signal.Stop(c.signals)
	close(c.signals)
}

func (c *Coordinator) watch() {
	for sig := range c.signals {
		if c.state.RequestDrain() {
			common.LogWarn("Received %v, finishing writes in progress...", sig)
			common.LogWarn("Press Ctrl+C again to force exit")
			continue
		}
		common.LogWarn("Force exiting")
		c.exit(forcedExitCode)
	}
}
