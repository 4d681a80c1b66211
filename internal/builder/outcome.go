package builder

import (
	"time"

	"fivepack/internal/ensure"
	"fivepack/internal/history"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
)

// Outcome summarises a finished build.
type Outcome struct {
	RunID       string
	Resource    string
	Destination string
	Mode        string
	Move        bool
	Sources     []string

	Total      int
	Processed  int
	Duplicates int
	Errors     int
	Bytes      int64

	// Aborted is set when the build stopped on a cancel request.
	Aborted bool
	// NoFiles is set when the sources held no relevant file.
	NoFiles bool

	Placements []packer.Placement
	Manifest   manifest.Result
	Ensure     ensure.Result

	StartedAt  time.Time
	FinishedAt time.Time
}

// Status maps the outcome to its history status. err is the error returned
// alongside the outcome.
func (o Outcome) Status(err error) history.Status {
	switch {
	case err != nil:
		return history.StatusFailed
	case o.Aborted:
		return history.StatusAborted
	case o.NoFiles:
		return history.StatusEmpty
	default:
		return history.StatusCompleted
	}
}

// HistoryRecord converts the outcome into a history row.
func (o Outcome) HistoryRecord(err error) history.Record {
	rec := history.Record{
		RunID:          o.RunID,
		Resource:       o.Resource,
		Destination:    o.Destination,
		Mode:           o.Mode,
		Move:           o.Move,
		Sources:        o.Sources,
		Status:         o.Status(err),
		Total:          o.Total,
		Processed:      o.Processed,
		Duplicates:     o.Duplicates,
		Errors:         o.Errors,
		Bytes:          o.Bytes,
		ManifestStatus: string(o.Manifest.Status),
		StartedAt:      o.StartedAt,
		FinishedAt:     o.FinishedAt,
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	return rec
}
