package builder

import (
	"sync"
	"sync/atomic"
)

// Job is a running build.
type Job struct {
	RunID string

	events    chan Event
	done      chan struct{}
	cancelled atomic.Bool

	mu      sync.Mutex
	outcome Outcome
	err     error
}

func newJob(runID string) *Job {
	return &Job{
		RunID:  runID,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Events streams build events; closed when the build ends.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Cancel asks the build to stop after the current file.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// Done is closed once the outcome is available.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the build ends and returns its outcome.
func (j *Job) Wait() (Outcome, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcome, j.err
}

func (j *Job) emit(ev Event) {
	j.events <- ev
}

func (j *Job) finish(outcome Outcome, err error) {
	j.mu.Lock()
	j.outcome = outcome
	j.err = err
	j.mu.Unlock()
	close(j.events)
	close(j.done)
}
