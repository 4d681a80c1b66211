package builder

import (
	"time"

	"fivepack/internal/ensure"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
)

// EventKind identifies a build event.
type EventKind string

const (
	EventStarted       EventKind = "started"
	EventCleared       EventKind = "cleared"
	EventSourceScanned EventKind = "source_scanned"
	EventFilePlaced    EventKind = "file_placed"
	EventFileFailed    EventKind = "file_failed"
	EventManifest      EventKind = "manifest"
	EventEnsure        EventKind = "ensure"
	EventWarning       EventKind = "warning"
	EventAborted       EventKind = "aborted"
	EventFinished      EventKind = "finished"
)

// Event is one progress report from a running build.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Message string

	// Source and Count are set for EventSourceScanned.
	Source string
	Count  int

	// Done and Total track file progress.
	Done  int
	Total int

	Placement *packer.Placement
	Manifest  *manifest.Result
	Ensure    *ensure.Result
	Err       error
}

// Observer receives build events on the caller's goroutine.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }
