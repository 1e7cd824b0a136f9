// Package tui provides the terminal user interface for nordgen.
// This file contains the write-progress indicator.
package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

const progressBarWidth = 40

// Tracker renders a progress bar for the write scheduler. Advance is
// safe to call from multiple goroutines; it matches the scheduler's
// Progress callback signature.
type Tracker struct {
	mu  sync.Mutex
	bar progress.Model
	out io.Writer
}

// NewTracker creates a Tracker writing to out.
func NewTracker(out io.Writer) *Tracker {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressBarWidth),
		progress.WithoutPercentage(),
	)
	return &Tracker{bar: bar, out: out}
}

// Advance redraws the bar for the given counts.
func (t *Tracker) Advance(completed, total int64) {
	if total <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	frac := float64(completed) / float64(total)
	fmt.Fprintf(t.out, "\r%s %d/%d", t.bar.ViewAs(frac), completed, total)
}

// Finish terminates the progress line.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out)
}
