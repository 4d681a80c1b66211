package manifest

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches ISO-8601 with second precision and no zone.
const TimestampLayout = "2006-01-02T15:04:05"

// RenderHeader returns the preamble of a freshly created manifest.
func RenderHeader(generator, resource string, now time.Time) string {
	var b strings.Builder
	b.WriteString("fx_version 'cerulean'\n")
	b.WriteString("game 'gta5'\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "-- Auto-generated by %s\n", generator)
	fmt.Fprintf(&b, "-- Resource: %s\n", resource)
	fmt.Fprintf(&b, "-- Generated: %s\n", now.Format(TimestampLayout))
	return b.String()
}

// RenderBlock returns the appended block for delta. The block starts with a
// blank line and ends with a newline.
func RenderBlock(generator, resource string, delta Delta, now time.Time) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "-- === Auto-added by %s at %s ===\n", generator, now.Format(TimestampLayout))
	fmt.Fprintf(&b, "-- Resource: %s\n", resource)
	b.WriteString("\n")

	if len(delta.Files) > 0 {
		b.WriteString("files {\n")
		for _, p := range delta.Files {
			fmt.Fprintf(&b, "  '%s',\n", p)
		}
		b.WriteString("}\n\n")
	}

	if len(delta.DataFiles) > 0 {
		b.WriteString("-- Detected meta mapping (best effort):\n")
		for _, m := range delta.DataFiles {
			fmt.Fprintf(&b, "data_file '%s' '%s'\n", m.Type, m.Path)
		}
		b.WriteString("\n")
	}

	if len(delta.Unclassified) > 0 {
		b.WriteString("-- Unclassified data files (loaded via files{}, may still need manual data_file mapping for some packs):\n")
		for _, p := range delta.Unclassified {
			fmt.Fprintf(&b, "--   %s\n", p)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "-- Add to server.cfg: ensure %s\n", resource)
	b.WriteString("-- === End auto-added block ===\n")
	return b.String()
}
