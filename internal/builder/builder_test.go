package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"fivepack/internal/config"
	"fivepack/internal/history"
	"fivepack/internal/manifest"
	"fivepack/internal/services"
	"fivepack/internal/testsupport"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local) }

type buildEnv struct {
	base string
	dest string
}

func newEnv(t *testing.T) buildEnv {
	t.Helper()
	base := t.TempDir()
	return buildEnv{base: base, dest: filepath.Join(base, "resources", "my_pack")}
}

func (e buildEnv) source(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(e.base, "packs", name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteTree(t, root, files)
	return root
}

func (e buildEnv) request(sources ...string) Request {
	return Request{
		Sources:      sources,
		Destination:  e.dest,
		ResourceName: "my_pack",
		Mode:         config.ModeMerge,
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) OnEvent(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, k := range l.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestBuildFlattensIntoStreamAndData(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "clothes", map[string]string{
		"male/jbib/jbib_000_u.ydd": "",
		"male/jbib/jbib_diff.ytd":  "",
		"meta/mp_m_freemode.ymt":   "",
		"meta/shop_apparel.meta":   "<ShopPedApparel/>",
		"readme.txt":               "not relevant",
	})

	events := &eventLog{}
	b := New(nil, WithClock(fixedNow), WithGenerator("fivepack test"))
	outcome, err := b.Run(context.Background(), env.request(src), events)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.Total != 4 || outcome.Processed != 4 || outcome.Errors != 0 || outcome.Duplicates != 0 {
		t.Fatalf("unexpected counters %+v", outcome)
	}
	if outcome.RunID == "" {
		t.Fatal("expected run id")
	}
	if got := strings.Join(listDir(t, filepath.Join(env.dest, "stream")), ","); got != "jbib_000_u.ydd,jbib_diff.ytd" {
		t.Fatalf("stream = %s", got)
	}
	if got := strings.Join(listDir(t, filepath.Join(env.dest, "data")), ","); got != "mp_m_freemode.ymt,shop_apparel.meta" {
		t.Fatalf("data = %s", got)
	}
	if outcome.Manifest.Status != manifest.StatusCreated {
		t.Fatalf("manifest status = %s", outcome.Manifest.Status)
	}

	fx := testsupport.ReadText(t, filepath.Join(env.dest, "fxmanifest.lua"))
	for _, want := range []string{
		"  'data/mp_m_freemode.ymt',\n",
		"  'data/shop_apparel.meta',\n",
		"data_file 'SHOP_PED_APPAREL_META_FILE' 'data/shop_apparel.meta'\n",
		"--   data/mp_m_freemode.ymt\n",
	} {
		if !strings.Contains(fx, want) {
			t.Fatalf("manifest missing %q:\n%s", want, fx)
		}
	}
	if strings.Contains(fx, "stream/") {
		t.Fatalf("stream files must not be declared:\n%s", fx)
	}

	if got := testsupport.ReadText(t, filepath.Join(env.dest, "_ADD_TO_SERVER_CFG.txt")); got != "ensure my_pack\n" {
		t.Fatalf("ensure file = %q", got)
	}
	master := testsupport.ReadText(t, filepath.Join(env.base, "resources", "_ALL_ENSURES.txt"))
	if master != "# Generated by fivepack test\nensure my_pack\n" {
		t.Fatalf("master = %q", master)
	}

	runLog := testsupport.ReadText(t, filepath.Join(env.dest, "builder.log"))
	for _, want := range []string{
		"=== Build start 2024-03-09T14:05:07 ===\n",
		"Resource: my_pack\n",
		"Mode: merge | Move: false\n",
		" - " + src + "\n",
		"[COPY] jbib_diff.ytd  (from: clothes) -> stream/jbib_diff.ytd\n",
		"ensure files written.\n",
		"Summary: total=4, duplicates=0, errors=0\n",
		"=== Build done 2024-03-09T14:05:07 ===\n",
	} {
		if !strings.Contains(runLog, want) {
			t.Fatalf("run log missing %q:\n%s", want, runLog)
		}
	}

	if events.count(EventFilePlaced) != 4 || events.count(EventSourceScanned) != 1 {
		t.Fatalf("unexpected events %v", events.kinds())
	}
	kinds := events.kinds()
	if kinds[0] != EventStarted || kinds[len(kinds)-1] != EventFinished {
		t.Fatalf("events should start and finish the stream: %v", kinds)
	}
	if _, err := os.Stat(filepath.Join(src, "male", "jbib", "jbib_diff.ytd")); err != nil {
		t.Fatalf("copy mode must keep sources: %v", err)
	}
}

func TestBuildResolvesCollisionsAcrossSources(t *testing.T) {
	env := newEnv(t)
	first := env.source(t, "Pack A", map[string]string{"skin.ytd": ""})
	second := env.source(t, "Pack B", map[string]string{"skin.ytd": ""})

	b := New(nil, WithClock(fixedNow))
	outcome, err := b.Run(context.Background(), env.request(first, second), nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Duplicates != 1 {
		t.Fatalf("duplicates = %d, want 1", outcome.Duplicates)
	}
	if got := strings.Join(listDir(t, filepath.Join(env.dest, "stream")), ","); got != "Pack_B_skin.ytd,skin.ytd" {
		t.Fatalf("stream = %s", got)
	}

	// A second identical build keeps every earlier file and only adds new names.
	again, err := b.Run(context.Background(), env.request(first, second), nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Errors != 0 || again.Duplicates != 3 {
		t.Fatalf("unexpected rerun counters %+v", again)
	}
	names := listDir(t, filepath.Join(env.dest, "stream"))
	want := []string{"Pack_A_skin.ytd", "Pack_B_skin.ytd", "Pack_B_skin_20240309_140507.ytd", "skin.ytd"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("stream after rerun = %v", names)
	}
}

func TestBuildManifestMergeIsIdempotentForSameDataFile(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"apparel.meta": "<ShopPedApparel/>"})

	b := New(nil, WithClock(fixedNow))
	if _, err := b.Run(context.Background(), env.request(src), nil); err != nil {
		t.Fatal(err)
	}
	fx := filepath.Join(env.dest, "fxmanifest.lua")
	first := testsupport.ReadText(t, fx)
	if !strings.Contains(first, "data_file 'SHOP_PED_APPAREL_META_FILE' 'data/apparel.meta'") {
		t.Fatalf("apparel mapping missing:\n%s", first)
	}

	// Replace mode clears data/, so the file keeps its name and nothing new
	// reaches the manifest.
	req := env.request(src)
	req.Mode = config.ModeReplace
	req.ConfirmReplace = true
	outcome, err := b.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Manifest.Status != manifest.StatusNothingNew {
		t.Fatalf("manifest status = %s", outcome.Manifest.Status)
	}
	if got := testsupport.ReadText(t, fx); got != first {
		t.Fatalf("manifest changed:\n%s", got)
	}
}

func TestBuildCancelStopsAtFileBoundary(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{
		"a.ytd":  "",
		"b.ytd":  "",
		"c.ytd":  "",
		"d.meta": "<PedOverlays/>",
	})

	b := New(nil, WithClock(fixedNow))
	var job *Job
	ready := make(chan struct{})
	b.beforeFile = func(done int) {
		<-ready
		if done == 2 {
			job.Cancel()
		}
	}

	started, err := b.Start(context.Background(), env.request(src))
	if err != nil {
		t.Fatal(err)
	}
	job = started
	close(ready)

	events := &eventLog{}
	for ev := range job.Events() {
		events.OnEvent(ev)
	}
	outcome, err := job.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if !outcome.Aborted || outcome.Processed != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := listDir(t, filepath.Join(env.dest, "stream")); len(got) != 2 {
		t.Fatalf("expected 2 placed files, got %v", got)
	}
	if _, err := os.Stat(filepath.Join(env.dest, "fxmanifest.lua")); !os.IsNotExist(err) {
		t.Fatalf("cancelled build must not merge the manifest, stat err=%v", err)
	}
	runLog := testsupport.ReadText(t, filepath.Join(env.dest, "builder.log"))
	if !strings.HasSuffix(runLog, "ABORTED by user.\n") {
		t.Fatalf("run log should end with abort marker:\n%s", runLog)
	}
	if strings.Contains(runLog, "Summary:") {
		t.Fatalf("aborted build must not write a summary:\n%s", runLog)
	}
	if events.count(EventAborted) != 1 {
		t.Fatalf("expected aborted event, got %v", events.kinds())
	}
}

func TestBuildContextCancelAborts(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": "", "b.ytd": ""})

	ctx, cancel := context.WithCancel(context.Background())
	b := New(nil)
	b.beforeFile = func(done int) {
		if done == 1 {
			cancel()
		}
	}
	outcome, err := b.Run(ctx, env.request(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Aborted || outcome.Processed != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestBuildWithoutRelevantFiles(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "empty", map[string]string{"readme.txt": "hello"})

	events := &eventLog{}
	outcome, err := New(nil).Run(context.Background(), env.request(src), events)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.NoFiles || outcome.Total != 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	for _, name := range []string{"builder.log", "fxmanifest.lua", "_ADD_TO_SERVER_CFG.txt"} {
		if _, err := os.Stat(filepath.Join(env.dest, name)); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist, stat err=%v", name, err)
		}
	}
	if events.count(EventFinished) != 1 {
		t.Fatalf("expected finished event, got %v", events.kinds())
	}
}

func TestBuildReplaceModeClearsBuckets(t *testing.T) {
	env := newEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.dest, "stream", "old.ytd"), 1)
	testsupport.WriteText(t, filepath.Join(env.dest, "notes.txt"), "keep")
	src := env.source(t, "pack", map[string]string{"new.ytd": ""})

	req := env.request(src)
	req.Mode = config.ModeReplace
	req.ConfirmReplace = true
	events := &eventLog{}
	if _, err := New(nil).Run(context.Background(), req, events); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(listDir(t, filepath.Join(env.dest, "stream")), ","); got != "new.ytd" {
		t.Fatalf("stream = %s", got)
	}
	if _, err := os.Stat(filepath.Join(env.dest, "notes.txt")); err != nil {
		t.Fatalf("files outside the buckets must survive: %v", err)
	}
	if events.count(EventCleared) != 1 {
		t.Fatalf("expected cleared event, got %v", events.kinds())
	}
}

func TestBuildMoveRemovesSources(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"deep/x.ydr": ""})

	req := env.request(src)
	req.Move = true
	if _, err := New(nil).Run(context.Background(), req, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(src, "deep", "x.ydr")); !os.IsNotExist(err) {
		t.Fatalf("source file should be moved, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dest, "stream", "x.ydr")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	runLog := testsupport.ReadText(t, filepath.Join(env.dest, "builder.log"))
	if !strings.Contains(runLog, "[MOVE] x.ydr  (from: pack) -> stream/x.ydr") {
		t.Fatalf("run log missing move line:\n%s", runLog)
	}
}

func TestBuildContinuesAfterFileFailure(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{
		"a.ydd":  "",
		"z.meta": "<ShopPedApparel/>",
	})
	if err := os.Symlink(filepath.Join(src, "missing.ydd"), filepath.Join(src, "m.ydd")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	events := &eventLog{}
	b := New(nil, WithClock(fixedNow), WithGenerator("fivepack test"))
	outcome, err := b.Run(context.Background(), env.request(src), events)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Total != 3 || outcome.Processed != 3 || outcome.Errors != 1 {
		t.Fatalf("unexpected counters %+v", outcome)
	}
	if got := strings.Join(listDir(t, filepath.Join(env.dest, "stream")), ","); !strings.Contains(got, "a.ydd") {
		t.Fatalf("stream = %s", got)
	}
	if _, err := os.Stat(filepath.Join(env.dest, "data", "z.meta")); err != nil {
		t.Fatalf("files after the failure must still be placed: %v", err)
	}
	if outcome.Manifest.Status != manifest.StatusCreated {
		t.Fatalf("manifest status = %s", outcome.Manifest.Status)
	}
	if events.count(EventFileFailed) != 1 {
		t.Fatalf("expected one failed event, got %v", events.kinds())
	}

	runLog := testsupport.ReadText(t, filepath.Join(env.dest, "builder.log"))
	if !strings.Contains(runLog, "Summary: total=3, duplicates=0, errors=1\n") {
		t.Fatalf("run log missing summary:\n%s", runLog)
	}
}

func TestStartValidation(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": ""})

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"no sources", func(r *Request) { r.Sources = nil }},
		{"blank sources", func(r *Request) { r.Sources = []string{"  "} }},
		{"missing source", func(r *Request) { r.Sources = append(r.Sources, filepath.Join(env.base, "nope")) }},
		{"missing destination", func(r *Request) { r.Destination = " " }},
		{"empty name", func(r *Request) { r.ResourceName = "" }},
		{"name with space", func(r *Request) { r.ResourceName = "my pack" }},
		{"unknown mode", func(r *Request) { r.Mode = "overwrite" }},
		{"unconfirmed replace", func(r *Request) { r.Mode = config.ModeReplace }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := env.request(src)
			tt.mutate(&req)
			job, err := New(nil).Start(context.Background(), req)
			if job != nil {
				t.Fatal("expected no job")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if services.SeverityOf(err) != services.SeverityValidation {
				t.Fatalf("severity = %s", services.SeverityOf(err))
			}
		})
	}
	if _, err := os.Stat(env.dest); !os.IsNotExist(err) {
		t.Fatalf("validation failures must not touch the destination, stat err=%v", err)
	}
}

func TestStartRejectsConcurrentBuild(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": ""})

	b := New(nil)
	release := make(chan struct{})
	b.beforeFile = func(int) { <-release }

	job, err := b.Start(context.Background(), env.request(src))
	if err != nil {
		t.Fatal(err)
	}
	if !b.InProgress() {
		t.Fatal("expected build in progress")
	}

	if _, err := b.Start(context.Background(), env.request(src)); !errors.Is(err, services.ErrBuildInProgress) {
		t.Fatalf("expected ErrBuildInProgress, got %v", err)
	}

	close(release)
	for range job.Events() {
	}
	if _, err := job.Wait(); err != nil {
		t.Fatal(err)
	}
	if b.InProgress() {
		t.Fatal("flag should be cleared after the build")
	}
}

func TestStartRejectsLockedDestination(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": ""})
	if err := os.MkdirAll(env.dest, 0o755); err != nil {
		t.Fatal(err)
	}

	other := flock.New(filepath.Join(env.dest, ".fivepack.lock"))
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer other.Unlock()

	_, err = New(nil).Start(context.Background(), env.request(src))
	if !errors.Is(err, services.ErrBuildInProgress) {
		t.Fatalf("expected ErrBuildInProgress, got %v", err)
	}
}

type recordingStore struct {
	mu      sync.Mutex
	records []history.Record
}

func (r *recordingStore) Record(_ context.Context, rec history.Record) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return int64(len(r.records)), nil
}

func TestBuildRecordsHistory(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": "", "b.meta": "<PedComponents/>"})

	store := &recordingStore{}
	outcome, err := New(nil, WithRecorder(store)).Run(context.Background(), env.request(src), nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected one record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.RunID != outcome.RunID || rec.Status != history.StatusCompleted || rec.Total != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ManifestStatus != string(manifest.StatusCreated) {
		t.Fatalf("manifest status = %q", rec.ManifestStatus)
	}
	if rec.Bytes != 16+int64(len("<PedComponents/>")) {
		t.Fatalf("bytes = %d", rec.Bytes)
	}
}

func TestNormalizeSources(t *testing.T) {
	env := newEnv(t)
	src := env.source(t, "pack", map[string]string{"a.ytd": ""})

	got, err := NormalizeSources([]string{src, filepath.Join(src, "a.ytd"), src + string(os.PathSeparator), ""})
	if err != nil {
		t.Fatal(err)
	}
	resolved, _ := filepath.EvalSymlinks(src)
	if len(got) != 1 || got[0] != resolved {
		t.Fatalf("NormalizeSources = %v, want [%s]", got, resolved)
	}
}

func TestOutcomeStatus(t *testing.T) {
	if (Outcome{}).Status(errors.New("x")) != history.StatusFailed {
		t.Fatal("error should map to failed")
	}
	if (Outcome{Aborted: true}).Status(nil) != history.StatusAborted {
		t.Fatal("aborted should map to aborted")
	}
	if (Outcome{NoFiles: true}).Status(nil) != history.StatusEmpty {
		t.Fatal("no files should map to empty")
	}
	if (Outcome{}).Status(nil) != history.StatusCompleted {
		t.Fatal("default should map to completed")
	}
}
