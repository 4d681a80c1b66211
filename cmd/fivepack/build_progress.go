package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"fivepack/internal/builder"
)

// buildRenderer turns builder events into terminal output.
type buildRenderer interface {
	builder.Observer
	// Close flushes any pending terminal state.
	Close()
	// Interrupted reports a cancel request to the user.
	Interrupted()
}

func newBuildRenderer(out io.Writer, interactive, quiet bool) buildRenderer {
	switch {
	case quiet:
		return quietRenderer{}
	case interactive:
		return &barRenderer{out: out}
	default:
		return &lineRenderer{out: out}
	}
}

type quietRenderer struct{}

func (quietRenderer) OnEvent(builder.Event) {}
func (quietRenderer) Close()                {}
func (quietRenderer) Interrupted()          {}

// lineRenderer prints one line per event, for pipes and log capture.
type lineRenderer struct {
	out io.Writer
}

func (r *lineRenderer) OnEvent(ev builder.Event) {
	switch ev.Kind {
	case builder.EventSourceScanned:
		fmt.Fprintf(r.out, "%s: %d relevant files\n", ev.Source, ev.Count)
	case builder.EventFilePlaced:
		fmt.Fprintf(r.out, "[%d/%d] %s\n", ev.Done, ev.Total, ev.Message)
	case builder.EventFileFailed:
		fmt.Fprintf(r.out, "[%d/%d] error: %s\n", ev.Done, ev.Total, ev.Message)
	case builder.EventWarning:
		fmt.Fprintf(r.out, "warning: %s\n", eventText(ev))
	default:
		if ev.Message != "" {
			fmt.Fprintln(r.out, ev.Message)
		}
	}
}

func (r *lineRenderer) Close() {}

func (r *lineRenderer) Interrupted() {
	fmt.Fprintln(r.out, "Cancelling after the current file...")
}

// barRenderer draws a progress bar and prints only notable events above it.
type barRenderer struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *barRenderer) OnEvent(ev builder.Event) {
	switch ev.Kind {
	case builder.EventFilePlaced:
		r.ensureBar(ev.Total)
		_ = r.bar.Set(ev.Done)
		if ev.Placement != nil {
			r.bar.Describe(ev.Placement.Name())
		}
	case builder.EventFileFailed:
		r.ensureBar(ev.Total)
		_ = r.bar.Set(ev.Done)
		r.println("error: " + ev.Message)
	case builder.EventSourceScanned:
		r.println(fmt.Sprintf("%s: %d relevant files", ev.Source, ev.Count))
	case builder.EventWarning:
		r.println("warning: " + eventText(ev))
	case builder.EventFinished, builder.EventAborted:
		r.Close()
		if ev.Message != "" {
			fmt.Fprintln(r.out, ev.Message)
		}
	default:
		if ev.Message != "" {
			r.println(ev.Message)
		}
	}
}

func (r *barRenderer) ensureBar(total int) {
	if r.bar != nil {
		return
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription("placing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// println writes a line without tearing the bar.
func (r *barRenderer) println(line string) {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
	fmt.Fprintln(r.out, line)
	if r.bar != nil {
		_ = r.bar.RenderBlank()
	}
}

func (r *barRenderer) Close() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}

func (r *barRenderer) Interrupted() {
	r.println("Cancelling after the current file...")
}

func eventText(ev builder.Event) string {
	if ev.Err == nil {
		return ev.Message
	}
	return fmt.Sprintf("%s: %v", ev.Message, ev.Err)
}
