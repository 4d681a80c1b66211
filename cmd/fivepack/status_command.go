package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fivepack/internal/builder"
	"fivepack/internal/config"
	"fivepack/internal/history"
	"fivepack/internal/manifest"
	"fivepack/internal/packer"
	"fivepack/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "status [SOURCE...]",
		Short: "Run preflight checks against the configured destination and sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := *cfg
			if destination != "" {
				if view.Paths.Destination, err = config.ExpandPath(destination); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			if ctx.configExists {
				lines = append(lines, renderStatusLine("Config file", statusOK, ctx.configPath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Config file", statusInfo, ctx.configPath+" (defaults in use)", colorize))
			}
			lines = append(lines, renderStatusLine("Mode", statusInfo, modeLabel(view.Build.Mode, view.Build.Move), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			results := preflight.RunAll(&view, statusSources(args))
			lines = append(lines, preflightLines(results, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Resource", colorize)...)
			lines = append(lines, resourceStatusLines(view.Paths.Destination, colorize)...)
			lines = append(lines, ctx.lastBuildLine(cmd.Context(), colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if blocking := preflight.Blocking(results); len(blocking) > 0 {
				return preflightError(blocking)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", "", "Destination resource folder (default from config)")
	return cmd
}

// statusSources resolves each argument on its own so one missing source is
// reported by its check instead of failing the whole command.
func statusSources(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		resolved, err := builder.NormalizeSources([]string{arg})
		if err != nil || len(resolved) == 0 {
			abs, absErr := filepath.Abs(arg)
			if absErr != nil {
				abs = arg
			}
			out = append(out, abs)
			continue
		}
		out = append(out, resolved[0])
	}
	return out
}

func resourceStatusLines(root string, colorize bool) []string {
	if strings.TrimSpace(root) == "" {
		return []string{renderStatusLine("Manifest", statusInfo, "No destination configured", colorize)}
	}
	layout, err := packer.NewLayout(root)
	if err != nil {
		return []string{renderStatusLine("Manifest", statusError, err.Error(), colorize)}
	}

	var lines []string
	decl, exists, err := manifest.Read(layout.ManifestPath())
	switch {
	case err != nil:
		lines = append(lines, renderStatusLine("Manifest", statusError, err.Error(), colorize))
	case !exists:
		lines = append(lines, renderStatusLine("Manifest", statusInfo, "Not created yet", colorize))
	default:
		lines = append(lines, renderStatusLine("Manifest", statusOK,
			fmt.Sprintf("%d paths, %d data_file mappings", len(decl.Files), len(decl.DataFiles)), colorize))
	}

	for _, dir := range []string{layout.StreamDir(), layout.DataDir()} {
		label := filepath.Base(dir) + "/"
		count, size, err := dirUsage(dir)
		switch {
		case os.IsNotExist(err):
			lines = append(lines, renderStatusLine(label, statusInfo, "Empty", colorize))
		case err != nil:
			lines = append(lines, renderStatusLine(label, statusWarn, err.Error(), colorize))
		default:
			lines = append(lines, renderStatusLine(label, statusInfo,
				fmt.Sprintf("%d files, %s", count, formatBytes(size)), colorize))
		}
	}
	return lines
}

// dirUsage counts the regular files directly inside dir.
func dirUsage(dir string) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, err
	}
	var count int
	var size int64
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	return count, size, nil
}

func (c *commandContext) lastBuildLine(ctx context.Context, colorize bool) string {
	store, err := c.openHistory()
	if err != nil {
		return renderStatusLine("Last build", statusWarn, err.Error(), colorize)
	}
	if store == nil {
		return renderStatusLine("Last build", statusInfo, "History disabled", colorize)
	}
	defer store.Close()

	records, err := store.List(ctx, 1)
	if err != nil {
		return renderStatusLine("Last build", statusWarn, err.Error(), colorize)
	}
	if len(records) == 0 {
		return renderStatusLine("Last build", statusInfo, "None recorded", colorize)
	}
	rec := records[0]
	kind := statusOK
	if rec.Errors > 0 || rec.Status != history.StatusCompleted {
		kind = statusWarn
	}
	message := fmt.Sprintf("%s %s (%s, %d files)", rec.Resource, rec.Status, humanize.Time(rec.FinishedAt), rec.Processed)
	return renderStatusLine("Last build", kind, message, colorize)
}
