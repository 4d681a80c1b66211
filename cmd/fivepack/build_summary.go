package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"fivepack/internal/builder"
	"fivepack/internal/history"
	"fivepack/internal/manifest"
)

func renderBuildSummary(out io.Writer, outcome builder.Outcome, err error) {
	status := outcome.Status(err)
	facts := [][2]string{
		{"Resource", outcome.Resource},
		{"Destination", outcome.Destination},
		{"Mode", modeLabel(outcome.Mode, outcome.Move)},
		{"Status", statusLabel(status)},
	}
	if status != history.StatusEmpty {
		facts = append(facts,
			[2]string{"Files", fmt.Sprintf("%d of %d", outcome.Processed, outcome.Total)},
			[2]string{"Duplicates", fmt.Sprintf("%d", outcome.Duplicates)},
			[2]string{"Errors", fmt.Sprintf("%d", outcome.Errors)},
			[2]string{"Transferred", formatBytes(outcome.Bytes)},
		)
	}
	if outcome.Manifest.Status != "" {
		facts = append(facts, [2]string{"Manifest", manifestSummary(outcome.Manifest)})
	}
	if outcome.Ensure.Master != "" {
		facts = append(facts, [2]string{"Ensure list", outcome.Ensure.Master})
	}
	if !outcome.StartedAt.IsZero() && !outcome.FinishedAt.IsZero() {
		facts = append(facts, [2]string{"Took", outcome.FinishedAt.Sub(outcome.StartedAt).Round(time.Millisecond).String()})
	}
	fmt.Fprintln(out, renderFacts("Build summary", facts))

	if outcome.Ensure.ResourceFile != "" {
		fmt.Fprintf(out, "Add to server.cfg: ensure %s\n", outcome.Resource)
	}
}

func statusLabel(status history.Status) string {
	switch status {
	case history.StatusCompleted:
		return "Completed"
	case history.StatusAborted:
		return "Aborted by user"
	case history.StatusEmpty:
		return "No relevant files found"
	case history.StatusFailed:
		return "Failed"
	default:
		return string(status)
	}
}

func modeLabel(mode string, move bool) string {
	action := "copy"
	if move {
		action = "move"
	}
	return fmt.Sprintf("%s (%s)", mode, action)
}

func manifestSummary(result manifest.Result) string {
	switch result.Status {
	case manifest.StatusNothingNew:
		return "nothing new"
	case manifest.StatusCreated, manifest.StatusAppended:
		parts := []string{string(result.Status)}
		parts = append(parts, fmt.Sprintf("+%d files", len(result.Delta.Files)))
		parts = append(parts, fmt.Sprintf("+%d data_file", len(result.Delta.DataFiles)))
		if n := len(result.Delta.Unclassified); n > 0 {
			parts = append(parts, fmt.Sprintf("%d unclassified", n))
		}
		return strings.Join(parts, ", ")
	default:
		return string(result.Status)
	}
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
