package packer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fivepack/internal/assets"
	"fivepack/internal/textutil"
)

// Step records which collision rule produced a target name.
type Step int

const (
	// StepOriginal keeps the file's own name.
	StepOriginal Step = iota
	// StepPrefixed prepends the source folder name.
	StepPrefixed
	// StepTimestamped appends a timestamp to the prefixed name.
	StepTimestamped
	// StepNumbered appends a counter after the timestamp.
	StepNumbered
)

const (
	timestampLayout = "20060102_150405"
	maxNumbered     = 10000
)

func (s Step) String() string {
	switch s {
	case StepOriginal:
		return "original"
	case StepPrefixed:
		return "prefixed"
	case StepTimestamped:
		return "timestamped"
	case StepNumbered:
		return "numbered"
	default:
		return "unknown"
	}
}

// Duplicates is how much the step adds to a build's duplicate counter.
func (s Step) Duplicates() int {
	switch s {
	case StepPrefixed:
		return 1
	case StepTimestamped, StepNumbered:
		return 2
	default:
		return 0
	}
}

// Placement is a resolved destination for one source file.
type Placement struct {
	File assets.File
	// Target is the absolute destination path.
	Target string
	// RelPath is Target relative to the resource root, slash separated.
	RelPath string
	Step    Step
}

// Name returns the final base name.
func (p Placement) Name() string {
	return filepath.Base(p.Target)
}

// Resolver hands out collision-free target names for a single build.
// Not safe for concurrent use.
type Resolver struct {
	layout Layout
	used   map[assets.Kind]map[string]struct{}
	now    func() time.Time
	exists func(path string) (bool, error)
}

// NewResolver returns a resolver for layout. A nil now uses time.Now.
func NewResolver(layout Layout, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		layout: layout,
		used:   make(map[assets.Kind]map[string]struct{}),
		now:    now,
		exists: pathExists,
	}
}

// IgnoreDisk makes the resolver treat the buckets as empty, for planning a
// build that clears them first.
func (r *Resolver) IgnoreDisk() *Resolver {
	r.exists = func(string) (bool, error) { return false, nil }
	return r
}

// Resolve picks the target for file and reserves it for the rest of the
// build, whether or not the later copy succeeds.
func (r *Resolver) Resolve(file assets.File) (Placement, error) {
	dir := r.layout.DirFor(file.Kind)
	used := r.bucket(file.Kind)

	name := file.Name
	step := StepOriginal

	taken, err := r.taken(dir, used, name)
	if err != nil {
		return Placement{}, err
	}
	if taken {
		step = StepPrefixed
		name = textutil.SourcePrefix(filepath.Base(file.SourceRoot)) + "_" + name
		if taken, err = r.taken(dir, used, name); err != nil {
			return Placement{}, err
		}
	}
	if taken {
		step = StepTimestamped
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		stamped := stem + "_" + r.now().Format(timestampLayout)
		name = stamped + ext
		if taken, err = r.taken(dir, used, name); err != nil {
			return Placement{}, err
		}
		if taken {
			step = StepNumbered
			name, err = r.numbered(dir, used, stamped, ext)
			if err != nil {
				return Placement{}, err
			}
		}
	}

	used[strings.ToLower(name)] = struct{}{}
	target := filepath.Join(dir, name)
	return Placement{
		File:    file,
		Target:  target,
		RelPath: r.layout.Rel(target),
		Step:    step,
	}, nil
}

func (r *Resolver) numbered(dir string, used map[string]struct{}, stem, ext string) (string, error) {
	for n := 2; n <= maxNumbered; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		taken, err := r.taken(dir, used, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted collision suffixes for %s%s in %s", stem, ext, dir)
}

func (r *Resolver) bucket(kind assets.Kind) map[string]struct{} {
	set, ok := r.used[kind]
	if !ok {
		set = make(map[string]struct{})
		r.used[kind] = set
	}
	return set
}

func (r *Resolver) taken(dir string, used map[string]struct{}, name string) (bool, error) {
	if _, ok := used[strings.ToLower(name)]; ok {
		return true, nil
	}
	return r.exists(filepath.Join(dir, name))
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
