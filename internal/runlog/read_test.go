package runlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builder.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("expected offset 6, got %d", offset)
	}

	lines, _, err = Last(path, 10)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if strings.Join(lines, ",") != "a,b,c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := Last(filepath.Join(t.TempDir(), "builder.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %#v %d %v", lines, offset, err)
	}
}

func TestLastBuildStartsAtLatestBanner(t *testing.T) {
	path := writeLog(t, strings.Join([]string{
		"=== Build start 2024-03-09T14:05:07 ===",
		"[COPY] a.ydd  (from: one) -> stream/a.ydd",
		"=== Build done 2024-03-09T14:05:08 ===",
		"",
		"=== Build start 2024-03-10T09:00:00 ===",
		"[MOVE] b.ydd  (from: two) -> stream/b.ydd",
		"ABORTED by user.",
	}, "\n")+"\n")

	lines, _, err := LastBuild(path)
	if err != nil {
		t.Fatalf("LastBuild: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %#v", lines)
	}
	if !strings.Contains(lines[0], "2024-03-10T09:00:00") || lines[2] != "ABORTED by user." {
		t.Fatalf("unexpected last build: %#v", lines)
	}
}

func TestSinceKeepsPartialLine(t *testing.T) {
	path := writeLog(t, "one\ntw")

	lines, offset, err := Since(path, 0)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(lines) != 1 || lines[0] != "one" || offset != 4 {
		t.Fatalf("unexpected result: %#v offset=%d", lines, offset)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("o\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	lines, offset, err = Since(path, offset)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(lines) != 1 || lines[0] != "two" || offset != 8 {
		t.Fatalf("unexpected result: %#v offset=%d", lines, offset)
	}
}

func TestFollowDeliversAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, 10*time.Millisecond, func(line string) { got <- line })
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("next\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case line := <-got:
		if line != "next" {
			t.Fatalf("expected appended line, got %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for appended line")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}
}

func TestOffsetsStopAtLastCompleteLine(t *testing.T) {
	path := writeLog(t, "one\ntwo\npart")

	lines, offset, err := Last(path, 5)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if strings.Join(lines, ",") != "one,two" || offset != 8 {
		t.Fatalf("unexpected result: %#v offset=%d", lines, offset)
	}

	_, offset, err = Last(path, 0)
	if err != nil || offset != 8 {
		t.Fatalf("Last without lines: offset=%d err=%v", offset, err)
	}

	build, offset, err := LastBuild(path)
	if err != nil || offset != 8 || len(build) != 2 {
		t.Fatalf("LastBuild: %#v offset=%d err=%v", build, offset, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("ial\nthree\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	lines, _, err = Since(path, offset)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if strings.Join(lines, ",") != "partial,three" {
		t.Fatalf("lines after offset = %#v", lines)
	}
}
