package main

import (
	"github.com/spf13/cobra"

	"fivepack/internal/builder"
	"fivepack/internal/config"
)

// requestFlags are the build inputs shared by build and preview. Unset flags
// fall back to the settings file.
type requestFlags struct {
	destination string
	name        string
	mode        string
	move        bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.destination, "dest", "d", "", "Destination resource folder (default from config)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Resource name used for ensure (default from config)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Destination mode: merge or replace (default from config)")
	cmd.Flags().BoolVar(&f.move, "move", false, "Move files instead of copying them")
}

func (f *requestFlags) request(cmd *cobra.Command, cfg *config.Config, sources []string) builder.Request {
	req := builder.RequestFromConfig(cfg, sources)
	if f.destination != "" {
		req.Destination = f.destination
	}
	if f.name != "" {
		req.ResourceName = f.name
	}
	if f.mode != "" {
		req.Mode = f.mode
	}
	if cmd.Flags().Changed("move") {
		req.Move = f.move
	}
	return req
}
