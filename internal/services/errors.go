package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrFilesystem      = errors.New("filesystem error")
	ErrBuildInProgress = errors.New("build already in progress")
	ErrTransient       = errors.New("transient failure")
)

// Severity classifies an error for reporting.
type Severity string

const (
	// SeverityValidation blocks a run before it starts.
	SeverityValidation Severity = "validation"
	// SeverityBusy means another build holds the destination.
	SeverityBusy Severity = "busy"
	// SeverityFatal aborts the remaining work of a running build.
	SeverityFatal Severity = "fatal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// SeverityOf maps an error to the severity the caller should surface.
func SeverityOf(err error) Severity {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return SeverityValidation
	case errors.Is(err, ErrBuildInProgress):
		return SeverityBusy
	default:
		return SeverityFatal
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "build failure"
	}
	return strings.Join(parts, ": ")
}
