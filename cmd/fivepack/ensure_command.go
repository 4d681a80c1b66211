package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fivepack/internal/config"
	"fivepack/internal/ensure"
	"fivepack/internal/services"
)

func newEnsureCommand(ctx *commandContext) *cobra.Command {
	var destination string
	var name string

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Write the server.cfg ensure helpers without building",
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
				return services.Wrap(services.ErrValidation, "cli", "ensure", "Choose a destination resource folder", nil)
			}
			resource := cfg.Resource.Name
			if name != "" {
				resource = name
			}
			if err := config.ValidateResourceName(resource); err != nil {
				return services.Wrap(services.ErrValidation, "cli", "ensure", "", err)
			}

			result, err := ensure.Write(root, resource, versionString())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", result.ResourceFile)
			if result.Fallback != nil {
				fmt.Fprintf(out, "warning: preferred master list not writable (%v)\n", result.Fallback)
			}
			if result.Added {
				fmt.Fprintf(out, "Added %q to %s\n", ensure.Line(resource), result.Master)
			} else {
				fmt.Fprintf(out, "%s already lists %q\n", result.Master, ensure.Line(resource))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "d", "", "Destination resource folder (default from config)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Resource name (default from config)")
	return cmd
}
