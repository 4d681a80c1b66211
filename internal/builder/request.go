package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fivepack/internal/config"
	"fivepack/internal/services"
)

// Request is the complete input of one build.
type Request struct {
	// Sources are pack folders. A file is replaced by its parent folder.
	Sources      []string
	Destination  string
	ResourceName string
	// Mode is config.ModeMerge or config.ModeReplace.
	Mode string
	Move bool
	// ConfirmReplace must be set for replace mode.
	ConfirmReplace bool
	// ClassifyMaxBytes bounds .meta sniffing; <= 0 uses the default.
	ClassifyMaxBytes int
}

// RequestFromConfig seeds a request with the configured defaults.
func RequestFromConfig(cfg *config.Config, sources []string) Request {
	if cfg == nil {
		return Request{Sources: sources, Mode: config.ModeMerge}
	}
	return Request{
		Sources:          sources,
		Destination:      cfg.Paths.Destination,
		ResourceName:     cfg.Resource.Name,
		Mode:             cfg.Build.Mode,
		Move:             cfg.Build.Move,
		ClassifyMaxBytes: cfg.Build.ClassifyMaxBytes,
	}
}

// Normalize validates the request and returns a copy with resolved sources,
// an absolute destination and a lower-cased mode.
func (r Request) Normalize() (Request, error) {
	out := r
	out.ResourceName = strings.TrimSpace(r.ResourceName)
	out.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if out.Mode == "" {
		out.Mode = config.ModeMerge
	}

	sources, err := NormalizeSources(r.Sources)
	if err != nil {
		return r, err
	}
	if len(sources) == 0 {
		return r, services.Wrap(services.ErrValidation, "validate", "sources", "Add at least one source folder", nil)
	}
	out.Sources = sources

	dest := strings.TrimSpace(r.Destination)
	if dest == "" {
		return r, services.Wrap(services.ErrValidation, "validate", "destination", "Choose a destination resource folder", nil)
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return r, services.Wrap(services.ErrValidation, "validate", "destination", "Destination path cannot be resolved", err)
	}
	out.Destination = abs

	if err := config.ValidateResourceName(out.ResourceName); err != nil {
		return r, services.Wrap(services.ErrValidation, "validate", "resource name", "", err)
	}
	if err := config.ValidateMode(out.Mode); err != nil {
		return r, services.Wrap(services.ErrValidation, "validate", "mode", "", err)
	}
	if out.Mode == config.ModeReplace && !out.ConfirmReplace {
		return r, services.Wrap(
			services.ErrValidation,
			"validate",
			"confirm replace",
			"Replace mode deletes stream/ and data/ in the destination; confirm it explicitly",
			nil,
		)
	}
	return out, nil
}

// NormalizeSources resolves each path, replaces files by their parent folder
// and drops duplicates while keeping the first occurrence. Blank entries are
// ignored; missing paths are validation errors.
func NormalizeSources(paths []string) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	var missing []error

	for _, raw := range paths {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		resolved, err := resolveSource(raw)
		if err != nil {
			missing = append(missing, err)
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}

	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrValidation, "validate", "sources", "", errors.Join(missing...))
	}
	return out, nil
}

func resolveSource(raw string) (string, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("source %q: %w", raw, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("source %s does not exist", abs)
		}
		return "", fmt.Errorf("source %s: %w", abs, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", abs, err)
	}
	if !info.IsDir() {
		resolved = filepath.Dir(resolved)
	}
	return resolved, nil
}
