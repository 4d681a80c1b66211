package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Status describes what Merge did to the manifest.
type Status string

const (
	StatusCreated    Status = "created"
	StatusAppended   Status = "appended"
	StatusNothingNew Status = "nothing_new"
)

// Options carries the values rendered into a block.
type Options struct {
	Resource  string
	Generator string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result summarises a merge.
type Result struct {
	Path   string
	Status Status
	Delta  Delta
}

// Plan computes what Merge would write for entries without touching disk.
func Plan(root string, entries []Entry) (Delta, bool, error) {
	existing, exists, err := Read(filepath.Join(root, FileName))
	if err != nil {
		return Delta{}, false, err
	}
	return ComputeDelta(existing, entries), exists, nil
}

// Merge appends the entries not yet declared in root's manifest, creating the
// manifest when missing.
func Merge(root string, entries []Entry, opts Options) (Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	path := filepath.Join(root, FileName)
	result := Result{Path: path}

	text, exists, err := readText(path)
	if err != nil {
		return result, err
	}

	result.Delta = ComputeDelta(Parse(text), entries)
	stamp := now()

	if !exists {
		content := RenderHeader(opts.Generator, opts.Resource, stamp) +
			RenderBlock(opts.Generator, opts.Resource, result.Delta, stamp)
		if err := writeNew(path, content); err != nil {
			return result, err
		}
		result.Status = StatusCreated
		return result, nil
	}

	if result.Delta.Empty() {
		result.Status = StatusNothingNew
		return result, nil
	}

	block := RenderBlock(opts.Generator, opts.Resource, result.Delta, stamp)
	if text != "" && !strings.HasSuffix(text, "\n") {
		block = "\n" + block
	}
	if err := appendText(path, block); err != nil {
		return result, err
	}
	result.Status = StatusAppended
	return result, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	return f.Close()
}

func appendText(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("append manifest: %w", err)
	}
	return f.Close()
}
