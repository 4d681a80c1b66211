package history

import "time"

// Status is the terminal state of a recorded build.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
	StatusFailed    Status = "failed"
	StatusEmpty     Status = "empty"
)

// Record is one build as stored in the history table.
type Record struct {
	ID             int64
	RunID          string
	Resource       string
	Destination    string
	Mode           string
	Move           bool
	Sources        []string
	Status         Status
	Total          int
	Processed      int
	Duplicates     int
	Errors         int
	Bytes          int64
	ManifestStatus string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration returns the wall time of the build.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
