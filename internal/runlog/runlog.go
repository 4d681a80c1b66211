// Package runlog writes the human-readable builder.log inside a resource.
//
// The file is append-only and shared by every build of the resource. Write
// failures never interrupt a build; the first one is kept and exposed through
// Err so callers can surface it once.
package runlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// TimestampLayout is used for the start and done banners.
const TimestampLayout = "2006-01-02T15:04:05"

const startBannerPrefix = "=== Build start "

// Header describes a build at its start banner.
type Header struct {
	Resource    string
	Destination string
	Mode        string
	Move        bool
	Sources     []string
}

// Summary holds the closing counters of a build.
type Summary struct {
	Total      int
	Duplicates int
	Errors     int
}

// Log appends lines to a builder.log file.
type Log struct {
	mu   sync.Mutex
	file *os.File
	err  error
	now  func() time.Time
}

// Open opens path for appending, creating it when missing.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &Log{file: f, now: time.Now}, nil
}

// WithClock overrides the banner clock.
func (l *Log) WithClock(now func() time.Time) *Log {
	if now != nil {
		l.now = now
	}
	return l
}

// Start writes the build banner and header lines.
func (l *Log) Start(h Header) {
	l.Line(fmt.Sprintf("%s%s ===", startBannerPrefix, l.now().Format(TimestampLayout)))
	l.Line("Resource: " + h.Resource)
	l.Line("Destination: " + h.Destination)
	l.Line(fmt.Sprintf("Mode: %s | Move: %t", h.Mode, h.Move))
	l.Line("Sources:")
	for _, s := range h.Sources {
		l.Line(" - " + s)
	}
	l.Line("")
}

// Transfer records one placed file.
func (l *Log) Transfer(action, name, sourceName, relTarget string) {
	l.Line(TransferLine(action, name, sourceName, relTarget))
}

// TransferLine formats a placed file the way Transfer writes it.
func TransferLine(action, name, sourceName, relTarget string) string {
	return fmt.Sprintf("[%s] %s  (from: %s) -> %s", action, name, sourceName, relTarget)
}

// Failure records a per-file error.
func (l *Log) Failure(path string, err error) {
	l.Line(fmt.Sprintf("❌ Error at %s: %v", path, err))
}

// Warning records a non-fatal problem.
func (l *Log) Warning(message string, err error) {
	l.Line(fmt.Sprintf("⚠️ %s: %v", message, err))
}

// Aborted writes the cancellation marker.
func (l *Log) Aborted() {
	l.Line("ABORTED by user.")
}

// Finish writes the summary and the done banner.
func (l *Log) Finish(s Summary) {
	l.Line("")
	l.Line(fmt.Sprintf("Summary: total=%d, duplicates=%d, errors=%d", s.Total, s.Duplicates, s.Errors))
	l.Line(fmt.Sprintf("=== Build done %s ===", l.now().Format(TimestampLayout)))
}

// Line appends a raw line.
func (l *Log) Line(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if _, err := l.file.WriteString(text + "\n"); err != nil && l.err == nil {
		l.err = err
	}
}

// Err returns the first write failure, if any.
func (l *Log) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Discard returns a Log that drops every line.
func Discard() *Log {
	return &Log{now: time.Now}
}
