package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fivepack/internal/assets"
	"fivepack/internal/config"
	"fivepack/internal/ensure"
	"fivepack/internal/logging"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
	"fivepack/internal/runlog"
	"fivepack/internal/services"
)

type worker struct {
	builder *Builder
	job     *Job
	req     Request
	layout  packer.Layout
	logger  *slog.Logger
}

type collected struct {
	source string
	file   assets.File
}

func (w *worker) emit(ev Event) {
	ev.Time = w.builder.now()
	w.job.emit(ev)
}

func (w *worker) run(ctx context.Context) (Outcome, error) {
	req := w.req
	outcome := Outcome{
		RunID:       w.job.RunID,
		Resource:    req.ResourceName,
		Destination: w.layout.Root,
		Mode:        req.Mode,
		Move:        req.Move,
		Sources:     req.Sources,
		StartedAt:   w.builder.now(),
	}
	finish := func(err error) (Outcome, error) {
		outcome.FinishedAt = w.builder.now()
		return outcome, err
	}

	w.logger.Info("build started",
		logging.String(logging.FieldEventType, "build_started"),
		logging.String("destination", w.layout.Root),
		logging.String("mode", req.Mode),
		logging.Bool("move", req.Move),
		logging.Int("sources", len(req.Sources)),
	)
	w.emit(Event{Kind: EventStarted, Message: "Build started"})

	wipe := req.Mode == config.ModeReplace
	if err := w.layout.Prepare(wipe); err != nil {
		return finish(services.Wrap(services.ErrFilesystem, "prepare", "prepare destination", "", err))
	}
	if wipe {
		w.emit(Event{Kind: EventCleared, Message: "Cleared stream/ and data/"})
	}

	jobs, err := w.collect(ctx)
	if err != nil {
		return finish(err)
	}
	outcome.Total = len(jobs)
	if outcome.Total == 0 {
		outcome.NoFiles = true
		w.logger.Info("no relevant files found", logging.String(logging.FieldEventType, "build_empty"))
		w.emit(Event{Kind: EventFinished, Message: "No relevant files found"})
		return finish(nil)
	}

	log := w.openRunLog()
	defer func() {
		if err := log.Close(); err != nil {
			w.logger.Warn("run log close failed", logging.Error(err))
		}
	}()
	log.Start(runlog.Header{
		Resource:    req.ResourceName,
		Destination: w.layout.Root,
		Mode:        req.Mode,
		Move:        req.Move,
		Sources:     req.Sources,
	})

	dataRelPaths, aborted := w.place(ctx, jobs, log, &outcome)
	if aborted {
		outcome.Aborted = true
		log.Aborted()
		w.logger.Info("build aborted",
			logging.String(logging.FieldEventType, "build_aborted"),
			logging.Int("processed", outcome.Processed),
			logging.Int("total", outcome.Total),
		)
		w.emit(Event{Kind: EventAborted, Message: "Aborted by user", Done: outcome.Processed, Total: outcome.Total})
		return finish(nil)
	}

	mctx := services.WithStage(ctx, "manifest")
	entries := manifest.Classify(w.layout.Root, dataRelPaths, req.ClassifyMaxBytes)
	result, err := manifest.Merge(w.layout.Root, entries, manifest.Options{
		Resource:  req.ResourceName,
		Generator: w.builder.generator,
		Now:       w.builder.now,
	})
	outcome.Manifest = result
	if err != nil {
		log.Warning("fxmanifest.lua could not be updated", err)
		return finish(services.Wrap(services.ErrFilesystem, "manifest", "merge manifest", "", err))
	}
	logging.WithContext(mctx, w.logger).Info("manifest merged",
		logging.String(logging.FieldEventType, "manifest_merged"),
		logging.String("status", string(result.Status)),
		logging.Int("files", len(result.Delta.Files)),
		logging.Int("data_files", len(result.Delta.DataFiles)),
		logging.Int("unclassified", len(result.Delta.Unclassified)),
	)
	w.emit(Event{Kind: EventManifest, Message: manifestMessage(result), Manifest: &result})

	w.writeEnsure(ctx, log, &outcome)

	log.Finish(runlog.Summary{Total: outcome.Total, Duplicates: outcome.Duplicates, Errors: outcome.Errors})
	if err := log.Err(); err != nil {
		w.logger.Warn("run log write failed", logging.Error(err))
	}

	w.logger.Info("build finished",
		logging.String(logging.FieldEventType, "build_finished"),
		logging.Int("total", outcome.Total),
		logging.Int("duplicates", outcome.Duplicates),
		logging.Int("errors", outcome.Errors),
		logging.Int64("bytes", outcome.Bytes),
	)
	w.emit(Event{Kind: EventFinished, Message: "Build finished", Done: outcome.Processed, Total: outcome.Total})
	return finish(nil)
}

func (w *worker) collect(ctx context.Context) ([]collected, error) {
	logger := logging.WithContext(services.WithStage(ctx, "scan"), w.logger)
	var jobs []collected
	for _, src := range w.req.Sources {
		files, err := assets.Collect(src)
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "scan", "collect files", "", err)
		}
		logger.Debug("source scanned", logging.String("source", src), logging.Int("files", len(files)))
		w.emit(Event{
			Kind:    EventSourceScanned,
			Message: fmt.Sprintf("%s -> %d relevant files", src, len(files)),
			Source:  src,
			Count:   len(files),
		})
		for _, f := range files {
			jobs = append(jobs, collected{source: src, file: f})
		}
	}
	return jobs, nil
}

// place transfers every collected file. It returns the data paths placed and
// whether the build was cancelled.
func (w *worker) place(ctx context.Context, jobs []collected, log *runlog.Log, outcome *Outcome) ([]string, bool) {
	logger := logging.WithContext(services.WithStage(ctx, "place"), w.logger)
	resolver := packer.NewResolver(w.layout, w.builder.now)
	action := packer.ActionFor(w.req.Move)
	var dataRelPaths []string

	for i, job := range jobs {
		if w.builder.beforeFile != nil {
			w.builder.beforeFile(i)
		}
		if w.job.Cancelled() || ctx.Err() != nil {
			return dataRelPaths, true
		}

		placement, err := resolver.Resolve(job.file)
		if err != nil {
			w.fail(logger, log, outcome, job.file, err)
			continue
		}
		outcome.Duplicates += placement.Step.Duplicates()

		log.Transfer(string(action), job.file.Name, filepath.Base(job.source), placement.RelPath)
		n, err := packer.Place(action, placement)
		if err != nil {
			w.fail(logger, log, outcome, job.file, err)
			continue
		}

		outcome.Processed++
		outcome.Bytes += n
		outcome.Placements = append(outcome.Placements, placement)
		if job.file.Kind == assets.KindData {
			dataRelPaths = append(dataRelPaths, placement.RelPath)
		}
		p := placement
		w.emit(Event{
			Kind:      EventFilePlaced,
			Message:   runlog.TransferLine(string(action), job.file.Name, filepath.Base(job.source), placement.RelPath),
			Done:      outcome.Processed,
			Total:     outcome.Total,
			Placement: &p,
		})
	}
	return dataRelPaths, false
}

func (w *worker) fail(logger *slog.Logger, log *runlog.Log, outcome *Outcome, file assets.File, err error) {
	outcome.Errors++
	outcome.Processed++
	log.Failure(file.Path, err)
	logging.WarnWithContext(logger, "file not placed", "file_failed",
		logging.String("source_file", file.Path),
		logging.String(logging.FieldImpact, "file skipped, build continues"),
		logging.Error(err),
	)
	w.emit(Event{
		Kind:    EventFileFailed,
		Message: fmt.Sprintf("%s: %v", file.Path, err),
		Done:    outcome.Processed,
		Total:   outcome.Total,
		Err:     err,
	})
}

func (w *worker) writeEnsure(ctx context.Context, log *runlog.Log, outcome *Outcome) {
	logger := logging.WithContext(services.WithStage(ctx, "ensure"), w.logger)
	result, err := ensure.Write(w.layout.Root, w.req.ResourceName, w.builder.generator)
	outcome.Ensure = result
	if result.Fallback != nil && result.Master != "" {
		logging.WarnWithContext(logger, "master ensure list written to fallback location", "ensure_fallback",
			logging.String("master", result.Master),
			logging.Error(result.Fallback),
		)
		w.emit(Event{Kind: EventWarning, Message: "Master ensure list written inside the resource", Err: result.Fallback})
	}
	if err != nil {
		log.Warning("Ensure files could not be written", err)
		logging.WarnWithContext(logger, "ensure files not written", "ensure_failed",
			logging.String(logging.FieldImpact, "server.cfg helpers missing, build result unaffected"),
			logging.Error(err),
		)
		w.emit(Event{Kind: EventWarning, Message: "Ensure files could not be written", Err: err})
		return
	}
	log.Line("ensure files written.")
	w.emit(Event{Kind: EventEnsure, Message: "ensure " + w.req.ResourceName, Ensure: &result})
}

func (w *worker) openRunLog() *runlog.Log {
	log, err := runlog.Open(w.layout.RunLogPath())
	if err != nil {
		w.logger.Warn("run log unavailable", logging.Error(err))
		return runlog.Discard()
	}
	return log.WithClock(w.builder.now)
}

func manifestMessage(result manifest.Result) string {
	switch result.Status {
	case manifest.StatusCreated:
		return "fxmanifest.lua created"
	case manifest.StatusAppended:
		return fmt.Sprintf("fxmanifest.lua extended (%d files, %d mappings)", len(result.Delta.Files), len(result.Delta.DataFiles))
	default:
		return "fxmanifest.lua: nothing new to add"
	}
}
