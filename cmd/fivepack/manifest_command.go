package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fivepack/internal/config"
	"fivepack/internal/manifest"
	"fivepack/internal/services"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect the destination fxmanifest.lua",
	}
	manifestCmd.AddCommand(newManifestShowCommand(ctx))
	return manifestCmd
}

func newManifestShowCommand(ctx *commandContext) *cobra.Command {
	var destination string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the file and data_file declarations the manifest already holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.Destination
			if destination != "" {
				if root, err = config.ExpandPath(destination); err != nil {
					return err
				}
			}
			if root == "" {
				return services.Wrap(services.ErrValidation, "cli", "manifest show", "Choose a destination resource folder", nil)
			}

			path := filepath.Join(root, manifest.FileName)
			decl, exists, err := manifest.Read(path)
			if err != nil {
				return err
			}
			files := decl.SortedFiles()
			mappings := decl.SortedDataFiles()

			if jsonOutput {
				view := deltaView(manifest.Delta{Files: files, DataFiles: mappings})
				return writeJSON(cmd, struct {
					Path   string `json:"path"`
					Exists bool   `json:"exists"`
					deltaJSON
				}{Path: path, Exists: exists, deltaJSON: view})
			}

			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "%s does not exist yet\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s\n", path)
			fmt.Fprintf(out, "Declared paths: %d\n", len(files))
			rows := make([][]string, 0, len(mappings))
			for _, m := range mappings {
				rows = append(rows, []string{string(m.Type), m.Path})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"data_file type", "Path"}, rows, nil))
			}
			for _, f := range files {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", "", "Destination resource folder (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print declarations as JSON")
	return cmd
}
