package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"fivepack/internal/builder"
	"fivepack/internal/history"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
	"fivepack/internal/preview"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type placementJSON struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Step   string `json:"step"`
	Type   string `json:"data_type,omitempty"`
	Error  string `json:"error,omitempty"`
}

type mappingJSON struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type deltaJSON struct {
	Files        []string      `json:"files"`
	DataFiles    []mappingJSON `json:"data_files"`
	Unclassified []string      `json:"unclassified"`
}

type buildJSON struct {
	RunID       string          `json:"run_id"`
	Status      string          `json:"status"`
	Resource    string          `json:"resource"`
	Destination string          `json:"destination"`
	Mode        string          `json:"mode"`
	Move        bool            `json:"move"`
	Sources     []string        `json:"sources"`
	Total       int             `json:"total"`
	Processed   int             `json:"processed"`
	Duplicates  int             `json:"duplicates"`
	Errors      int             `json:"errors"`
	Bytes       int64           `json:"bytes"`
	Manifest    string          `json:"manifest_status,omitempty"`
	Added       deltaJSON       `json:"manifest_added"`
	Ensure      string          `json:"master_ensure,omitempty"`
	Placements  []placementJSON `json:"placements"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Error       string          `json:"error,omitempty"`
}

type previewJSON struct {
	Destination    string          `json:"destination"`
	Resource       string          `json:"resource"`
	Mode           string          `json:"mode"`
	Sources        []sourceJSON    `json:"sources"`
	Items          []placementJSON `json:"items"`
	Duplicates     int             `json:"duplicates"`
	Bytes          int64           `json:"bytes"`
	ManifestExists bool            `json:"manifest_exists"`
	Manifest       deltaJSON       `json:"manifest_delta"`
}

type sourceJSON struct {
	Path  string `json:"path"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
	Image string `json:"preview_image,omitempty"`
}

type historyJSON struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	Resource    string    `json:"resource"`
	Destination string    `json:"destination"`
	Mode        string    `json:"mode"`
	Move        bool      `json:"move"`
	Sources     []string  `json:"sources"`
	Total       int       `json:"total"`
	Processed   int       `json:"processed"`
	Duplicates  int       `json:"duplicates"`
	Errors      int       `json:"errors"`
	Bytes       int64     `json:"bytes"`
	Manifest    string    `json:"manifest_status,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

func placementView(p packer.Placement) placementJSON {
	return placementJSON{
		Source: p.File.Path,
		Kind:   string(p.File.Kind),
		Target: p.RelPath,
		Step:   p.Step.String(),
	}
}

func deltaView(d manifest.Delta) deltaJSON {
	out := deltaJSON{
		Files:        nonNil(d.Files),
		DataFiles:    make([]mappingJSON, 0, len(d.DataFiles)),
		Unclassified: nonNil(d.Unclassified),
	}
	for _, m := range d.DataFiles {
		out.DataFiles = append(out.DataFiles, mappingJSON{Type: string(m.Type), Path: m.Path})
	}
	return out
}

func buildView(outcome builder.Outcome, err error) buildJSON {
	view := buildJSON{
		RunID:       outcome.RunID,
		Status:      string(outcome.Status(err)),
		Resource:    outcome.Resource,
		Destination: outcome.Destination,
		Mode:        outcome.Mode,
		Move:        outcome.Move,
		Sources:     nonNil(outcome.Sources),
		Total:       outcome.Total,
		Processed:   outcome.Processed,
		Duplicates:  outcome.Duplicates,
		Errors:      outcome.Errors,
		Bytes:       outcome.Bytes,
		Manifest:    string(outcome.Manifest.Status),
		Added:       deltaView(outcome.Manifest.Delta),
		Ensure:      outcome.Ensure.Master,
		Placements:  make([]placementJSON, 0, len(outcome.Placements)),
		StartedAt:   outcome.StartedAt,
		FinishedAt:  outcome.FinishedAt,
	}
	for _, p := range outcome.Placements {
		view.Placements = append(view.Placements, placementView(p))
	}
	if err != nil {
		view.Error = err.Error()
	}
	return view
}

func previewView(plan preview.Plan) previewJSON {
	view := previewJSON{
		Destination:    plan.Request.Destination,
		Resource:       plan.Request.ResourceName,
		Mode:           plan.Request.Mode,
		Sources:        make([]sourceJSON, 0, len(plan.Sources)),
		Items:          make([]placementJSON, 0, len(plan.Items)),
		Duplicates:     plan.Duplicates,
		Bytes:          plan.Bytes,
		ManifestExists: plan.ManifestExists,
		Manifest:       deltaView(plan.Manifest),
	}
	for _, src := range plan.Sources {
		view.Sources = append(view.Sources, sourceJSON{Path: src.Path, Files: src.Files, Bytes: src.Bytes, Image: src.Image})
	}
	for _, item := range plan.Items {
		p := placementView(item.Placement)
		p.Type = string(item.DataType)
		if item.Err != nil {
			p.Error = item.Err.Error()
		}
		view.Items = append(view.Items, p)
	}
	return view
}

func historyView(rec history.Record) historyJSON {
	return historyJSON{
		RunID:       rec.RunID,
		Status:      string(rec.Status),
		Resource:    rec.Resource,
		Destination: rec.Destination,
		Mode:        rec.Mode,
		Move:        rec.Move,
		Sources:     nonNil(rec.Sources),
		Total:       rec.Total,
		Processed:   rec.Processed,
		Duplicates:  rec.Duplicates,
		Errors:      rec.Errors,
		Bytes:       rec.Bytes,
		Manifest:    rec.ManifestStatus,
		Error:       rec.ErrorMessage,
		StartedAt:   rec.StartedAt,
		FinishedAt:  rec.FinishedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
