package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fivepack/internal/config"
	"fivepack/internal/packer"
	"fivepack/internal/runlog"
	"fivepack/internal/services"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var destination string
	var lines int
	var lastBuild bool
	var follow bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the destination builder.log",
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
				return services.Wrap(services.ErrValidation, "cli", "log", "Choose a destination resource folder", nil)
			}
			layout, err := packer.NewLayout(root)
			if err != nil {
				return err
			}
			path := layout.RunLogPath()
			out := cmd.OutOrStdout()

			var shown []string
			var offset int64
			if lastBuild {
				shown, offset, err = runlog.LastBuild(path)
			} else {
				shown, offset, err = runlog.Last(path, lines)
			}
			if err != nil {
				return err
			}
			if len(shown) == 0 && !follow {
				fmt.Fprintf(out, "No build log at %s\n", path)
				return nil
			}
			for _, line := range shown {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runlog.Follow(followCtx, path, offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", "", "Destination resource folder (default from config)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVar(&lastBuild, "last-build", false, "Show only the most recent build")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as builds append them")
	return cmd
}
