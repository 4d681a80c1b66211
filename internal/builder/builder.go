package builder

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"fivepack/internal/history"
	"fivepack/internal/logging"
	"fivepack/internal/packer"
	"fivepack/internal/services"
)

const (
	defaultGenerator = "fivepack"
	eventBuffer      = 64
)

// Recorder persists finished builds.
type Recorder interface {
	Record(ctx context.Context, rec history.Record) (int64, error)
}

// Builder starts builds, at most one at a time.
type Builder struct {
	logger    *slog.Logger
	generator string
	now       func() time.Time
	recorder  Recorder
	running   atomic.Bool

	// beforeFile runs at every file boundary before the cancel check.
	beforeFile func(done int)
}

// Option customises a Builder.
type Option func(*Builder)

// WithGenerator sets the tool name and version written into generated files.
func WithGenerator(generator string) Option {
	return func(b *Builder) {
		if generator != "" {
			b.generator = generator
		}
	}
}

// WithClock overrides the clock used for timestamps and collision names.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRecorder records every finished build, for example in a history.Store.
func WithRecorder(recorder Recorder) Option {
	return func(b *Builder) {
		b.recorder = recorder
	}
}

// New constructs a Builder.
func New(logger *slog.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &Builder{
		logger:    logging.NewComponentLogger(logger, "builder"),
		generator: defaultGenerator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// InProgress reports whether a build is currently running.
func (b *Builder) InProgress() bool {
	return b.running.Load()
}

// Start validates req and launches the build on a worker goroutine. The
// caller must drain Job.Events until it is closed.
func (b *Builder) Start(ctx context.Context, req Request) (*Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	normalized, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	if !b.running.CompareAndSwap(false, true) {
		return nil, services.Wrap(services.ErrBuildInProgress, "start", "acquire builder", "A build is already running", nil)
	}

	layout, err := packer.NewLayout(normalized.Destination)
	if err != nil {
		b.running.Store(false)
		return nil, services.Wrap(services.ErrValidation, "start", "resolve destination", "", err)
	}
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		b.running.Store(false)
		return nil, services.Wrap(services.ErrFilesystem, "start", "create destination", "Destination folder cannot be created", err)
	}

	lock := flock.New(layout.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		b.running.Store(false)
		return nil, services.Wrap(services.ErrFilesystem, "start", "acquire lock", "", err)
	}
	if !ok {
		b.running.Store(false)
		return nil, services.Wrap(
			services.ErrBuildInProgress,
			"start",
			"acquire lock",
			"Another fivepack process is building into "+layout.Root,
			nil,
		)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithResource(ctx, normalized.ResourceName)

	job := newJob(runID)
	w := &worker{
		builder: b,
		job:     job,
		req:     normalized,
		layout:  layout,
		logger:  logging.WithContext(ctx, b.logger),
	}

	go func() {
		outcome, err := w.run(ctx)
		b.record(ctx, outcome, err)
		if unlockErr := lock.Unlock(); unlockErr != nil {
			b.logger.Warn("failed to release build lock", logging.Error(unlockErr))
		}
		b.running.Store(false)
		job.finish(outcome, err)
	}()

	return job, nil
}

// Run starts a build and forwards its events to obs until it finishes.
func (b *Builder) Run(ctx context.Context, req Request, obs Observer) (Outcome, error) {
	job, err := b.Start(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	for ev := range job.Events() {
		if obs != nil {
			obs.OnEvent(ev)
		}
	}
	return job.Wait()
}

func (b *Builder) record(ctx context.Context, outcome Outcome, err error) {
	if b.recorder == nil || outcome.RunID == "" {
		return
	}
	recordCtx := context.WithoutCancel(ctx)
	if _, recErr := b.recorder.Record(recordCtx, outcome.HistoryRecord(err)); recErr != nil {
		logging.WarnWithContext(b.logger, "build history not recorded", "history_record_failed",
			logging.String("run_id", outcome.RunID),
			logging.Error(recErr),
		)
	}
}
