package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker renders engine steps as a progress bar on stderr
type Tracker struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	out     io.Writer
	visible bool
	start   time.Time
	steps   int
}

// NewTracker creates a tracker. A hidden tracker still counts steps.
func NewTracker(description string, visible bool) *Tracker {
	return newTracker(os.Stderr, description, visible)
}

func newTracker(out io.Writer, description string, visible bool) *Tracker {
	t := &Tracker{out: out, visible: visible, start: time.Now()}
	t.bar = progressbar.NewOptions(
		1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionClearOnFinish(),
	)
	return t
}

// Step records that step of total has completed
func (t *Tracker) Step(step, total int, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.steps++
	if t.bar.GetMax() != total {
		t.bar.ChangeMax(total)
	}
	t.bar.Describe(label)
	_ = t.bar.Set(step)
}

// Func adapts the tracker to an engine progress callback
func (t *Tracker) Func() func(step, total int, label string) {
	return t.Step
}

// Steps returns the number of steps observed
func (t *Tracker) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}

// Finish clears the bar and prints the elapsed time
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.bar.Finish()
	if t.visible {
		fmt.Fprintf(t.out, "Completed in %v\n", time.Since(t.start).Round(time.Millisecond))
	}
}
