package runlog

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fivepack/internal/testsupport"
)

func TestLogWritesBuildTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builder.log")
	stamp := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	log.WithClock(func() time.Time { return stamp })

	log.Start(Header{
		Resource:    "my_pack",
		Destination: "/srv/resources/my_pack",
		Mode:        "merge",
		Move:        false,
		Sources:     []string{"/packs/a", "/packs/b"},
	})
	log.Transfer("COPY", "skin.ytd", "b", "stream/b_skin.ytd")
	log.Failure("/packs/a/bad.ytd", errors.New("permission denied"))
	log.Finish(Summary{Total: 2, Duplicates: 1, Errors: 1})
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"=== Build start 2024-03-09T14:05:07 ===",
		"Resource: my_pack",
		"Destination: /srv/resources/my_pack",
		"Mode: merge | Move: false",
		"Sources:",
		" - /packs/a",
		" - /packs/b",
		"",
		"[COPY] skin.ytd  (from: b) -> stream/b_skin.ytd",
		"❌ Error at /packs/a/bad.ytd: permission denied",
		"",
		"Summary: total=2, duplicates=1, errors=1",
		"=== Build done 2024-03-09T14:05:07 ===",
		"",
	}, "\n")
	if got := testsupport.ReadText(t, path); got != want {
		t.Fatalf("log mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestLogAppendsAcrossBuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builder.log")
	testsupport.WriteText(t, path, "previous build\n")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	log.Aborted()
	_ = log.Close()

	if got := testsupport.ReadText(t, path); got != "previous build\nABORTED by user.\n" {
		t.Fatalf("log = %q", got)
	}
}

func TestLogIgnoresWritesAfterClose(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), "builder.log"))
	if err != nil {
		t.Fatal(err)
	}
	_ = log.Close()
	log.Line("late")
	if log.Err() != nil {
		t.Fatalf("unexpected error %v", log.Err())
	}
	if err := log.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenFailsForMissingDirectory(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "builder.log")); err == nil {
		t.Fatal("expected error")
	}
}
