package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"fivepack/internal/manifest"
	"fivepack/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preview SOURCE...",
		Short: "Show what a build would place and declare, without writing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			plan, err := preview.Build(flags.request(cmd, cfg, args), nil)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, previewView(plan))
			}
			renderPreview(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	return cmd
}

func renderPreview(out io.Writer, plan preview.Plan) {
	req := plan.Request
	fmt.Fprintln(out, renderFacts("Preview", [][2]string{
		{"Resource", req.ResourceName},
		{"Destination", req.Destination},
		{"Mode", modeLabel(req.Mode, req.Move)},
		{"Files", fmt.Sprintf("%d (%s)", plan.Total(), formatBytes(plan.Bytes))},
		{"Duplicates", fmt.Sprintf("%d", plan.Duplicates)},
	}))

	sourceRows := make([][]string, 0, len(plan.Sources))
	for _, src := range plan.Sources {
		image := src.Image
		if image == "" {
			image = "-"
		}
		sourceRows = append(sourceRows, []string{
			src.Path,
			fmt.Sprintf("%d", src.Files),
			formatBytes(src.Bytes),
			image,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Source", "Files", "Size", "Preview image"},
		sourceRows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	))

	if plan.Total() == 0 {
		fmt.Fprintln(out, "No relevant files found.")
		return
	}

	rows := make([][]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		f := item.Placement.File
		target := item.Placement.RelPath
		step := item.Placement.Step.String()
		if item.Err != nil {
			target = "error: " + item.Err.Error()
			step = "-"
		}
		dataType := string(item.DataType)
		if dataType == "" {
			dataType = "-"
		}
		rows = append(rows, []string{
			filepath.Join(filepath.Base(f.SourceRoot), f.RelPath),
			string(f.Kind),
			target,
			dataType,
			step,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"File", "Kind", "Target", "Data type", "Name"},
		rows,
		nil,
	))

	renderDelta(out, plan.Manifest, plan.ManifestExists)
}

func renderDelta(out io.Writer, delta manifest.Delta, exists bool) {
	if delta.Empty() {
		fmt.Fprintln(out, "fxmanifest.lua: nothing new to add")
		return
	}
	if exists {
		fmt.Fprintln(out, "fxmanifest.lua would be extended with:")
	} else {
		fmt.Fprintln(out, "fxmanifest.lua would be created with:")
	}
	for _, f := range delta.Files {
		fmt.Fprintf(out, "  file       %s\n", f)
	}
	for _, m := range delta.DataFiles {
		fmt.Fprintf(out, "  data_file  %s %s\n", m.Type, m.Path)
	}
	for _, u := range delta.Unclassified {
		fmt.Fprintf(out, "  unknown    %s (left as comment)\n", u)
	}
}
