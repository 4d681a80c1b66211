package ensure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fivepack/internal/assets"
	"fivepack/internal/fileutil"
	"fivepack/internal/textutil"
)

const (
	ResourceFileName = "_ADD_TO_SERVER_CFG.txt"
	MasterFileName   = "_ALL_ENSURES.txt"
)

// Line returns the server.cfg directive for resource.
func Line(resource string) string {
	return "ensure " + resource
}

// Result reports where the helper files ended up.
type Result struct {
	ResourceFile string
	Master       string
	// Added is false when the master list already contained the line.
	Added bool
	// Fallback is set when the preferred master location failed.
	Fallback error
}

// Write updates both helper files for the resource rooted at root. A failure
// of the preferred master location is recorded in Result.Fallback and the
// resource folder is tried instead.
func Write(root, resource, generator string) (Result, error) {
	result := Result{}

	resourceFile, err := WriteResourceFile(root, resource)
	if err != nil {
		return result, err
	}
	result.ResourceFile = resourceFile

	var errs []error
	for _, candidate := range MasterCandidates(root) {
		added, err := UpdateMaster(candidate, resource, generator)
		if err != nil {
			errs = append(errs, err)
			if result.Fallback == nil {
				result.Fallback = err
			}
			continue
		}
		result.Master = candidate
		result.Added = added
		return result, nil
	}
	return result, fmt.Errorf("update master ensure list: %w", errors.Join(errs...))
}

// WriteResourceFile replaces root/_ADD_TO_SERVER_CFG.txt with the ensure line.
func WriteResourceFile(root, resource string) (string, error) {
	path := filepath.Join(root, ResourceFileName)
	if err := fileutil.WriteFileAtomic(path, []byte(Line(resource)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", ResourceFileName, err)
	}
	return path, nil
}

// MasterCandidates lists master list locations in order of preference.
func MasterCandidates(root string) []string {
	return []string{
		filepath.Join(filepath.Dir(root), MasterFileName),
		filepath.Join(root, MasterFileName),
	}
}

// UpdateMaster appends the ensure line for resource to the list at path
// unless an equivalent line is already present. Comparison ignores case,
// blank lines and # comments. A new or empty list gets a header first.
func UpdateMaster(path, resource, generator string) (bool, error) {
	line := Line(resource)

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if Contains(string(existing), line) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}

	var content string
	if len(existing) == 0 {
		content = "# Generated by " + generator + "\n"
	} else if existing[len(existing)-1] != '\n' {
		content = "\n"
	}
	content += line + "\n"

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether list already holds a line equivalent to line.
func Contains(list, line string) bool {
	want := textutil.DirectiveKey(line)
	for _, existing := range strings.Split(assets.DecodeLoose([]byte(list)), "\n") {
		if key := textutil.DirectiveKey(existing); key != "" && key == want {
			return true
		}
	}
	return false
}
