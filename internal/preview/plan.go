package preview

import (
	"time"

	"fivepack/internal/assets"
	"fivepack/internal/builder"
	"fivepack/internal/config"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
	"fivepack/internal/services"
)

// Item is one file as a build would place it.
type Item struct {
	Placement packer.Placement
	DataType  assets.DataType
	// Err is set when no target could be resolved.
	Err error
}

// Source summarises one source folder.
type Source struct {
	Path  string
	Files int
	Bytes int64
	// Image is a preview image inside the folder, or "".
	Image string
}

// Plan is the dry-run result for a request.
type Plan struct {
	Request        builder.Request
	Sources        []Source
	Items          []Item
	Duplicates     int
	Bytes          int64
	Manifest       manifest.Delta
	ManifestExists bool
}

// Build computes the plan for req. Replace mode needs no confirmation here
// because nothing is written.
func Build(req builder.Request, now func() time.Time) (Plan, error) {
	if now == nil {
		now = time.Now
	}
	req.ConfirmReplace = true
	normalized, err := req.Normalize()
	if err != nil {
		return Plan{}, err
	}
	layout, err := packer.NewLayout(normalized.Destination)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrValidation, "preview", "resolve destination", "", err)
	}

	plan := Plan{Request: normalized}
	resolver := packer.NewResolver(layout, now)
	if normalized.Mode == config.ModeReplace {
		resolver.IgnoreDisk()
	}

	var entries []manifest.Entry
	for _, src := range normalized.Sources {
		files, err := assets.Collect(src)
		if err != nil {
			return Plan{}, services.Wrap(services.ErrFilesystem, "preview", "collect files", "", err)
		}
		summary := Source{Path: src, Files: len(files)}
		if image, ok := FindImage(src); ok {
			summary.Image = image
		}

		for _, f := range files {
			summary.Bytes += f.Size
			item := Item{}
			placement, err := resolver.Resolve(f)
			if err != nil {
				item.Placement = packer.Placement{File: f}
				item.Err = err
				plan.Items = append(plan.Items, item)
				continue
			}
			item.Placement = placement
			plan.Duplicates += placement.Step.Duplicates()
			if f.Kind == assets.KindData {
				if assets.Classifiable(f.Ext) {
					item.DataType = assets.DetectDataType(f.Path, normalized.ClassifyMaxBytes)
				}
				entries = append(entries, manifest.Entry{RelPath: placement.RelPath, Type: item.DataType})
			}
			plan.Items = append(plan.Items, item)
		}
		plan.Bytes += summary.Bytes
		plan.Sources = append(plan.Sources, summary)
	}

	delta, exists, err := manifest.Plan(layout.Root, entries)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrFilesystem, "preview", "read manifest", "", err)
	}
	plan.Manifest = delta
	plan.ManifestExists = exists
	return plan, nil
}

// Total returns the number of planned files.
func (p Plan) Total() int {
	return len(p.Items)
}
