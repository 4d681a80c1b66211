package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fivepack/internal/builder"
	"fivepack/internal/config"
	"fivepack/internal/logging"
	"fivepack/internal/preflight"
	"fivepack/internal/services"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var assumeYes bool
	var jsonOutput bool
	var remember bool

	cmd := &cobra.Command{
		Use:   "build SOURCE...",
		Short: "Flatten source packs into the destination resource",
		Long: "Copies (or moves) every stream and data file found under the given source\n" +
			"folders into stream/ and data/ of the destination resource, resolves name\n" +
			"collisions, appends new declarations to fxmanifest.lua and writes the\n" +
			"server.cfg ensure helpers.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req := flags.request(cmd, cfg, args)
			out := cmd.OutOrStdout()

			sources, err := builder.NormalizeSources(args)
			if err != nil {
				return err
			}
			req.Sources = sources
			if blocking := preflight.Blocking(preflight.RunAll(overlayConfig(cfg, req), sources)); len(blocking) > 0 {
				return preflightError(blocking)
			}

			if strings.EqualFold(strings.TrimSpace(req.Mode), config.ModeReplace) {
				switch {
				case assumeYes:
				case jsonOutput:
					return services.Wrap(services.ErrValidation, "cli", "confirm replace", "replace mode needs --yes together with --json", nil)
				default:
					ok, err := confirmReplace(cmd.InOrStdin(), out, req.Destination)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Build cancelled; nothing was changed.")
						return nil
					}
				}
				req.ConfirmReplace = true
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts := []builder.Option{builder.WithGenerator(versionString())}
			store, err := ctx.openHistory()
			if err != nil {
				logger.Warn("build history unavailable", logging.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			} else if store != nil {
				defer store.Close()
				opts = append(opts, builder.WithRecorder(store))
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := builder.New(logger, opts...)
			job, err := b.Start(signalCtx, req)
			if err != nil {
				return err
			}

			renderer := newBuildRenderer(out, shouldColorize(out), jsonOutput)
			drainJob(signalCtx, stop, job, renderer)
			renderer.Close()

			outcome, err := job.Wait()
			if jsonOutput {
				if encErr := writeJSON(cmd, buildView(outcome, err)); encErr != nil {
					return encErr
				}
			} else {
				renderBuildSummary(out, outcome, err)
			}
			if err != nil {
				return err
			}

			if remember && !outcome.Aborted {
				if err := rememberRequest(ctx, outcome); err != nil {
					return err
				}
				if !jsonOutput {
					fmt.Fprintf(out, "Saved destination and resource name to %s\n", ctx.configPath)
				}
			}
			if outcome.Aborted {
				return context.Canceled
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Confirm replace mode without prompting")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the build outcome as JSON")
	cmd.Flags().BoolVar(&remember, "remember", false, "Save the destination and resource name to the config file")
	return cmd
}

// drainJob forwards events to the renderer until the job closes its stream.
// The first interrupt requests a cooperative cancel and restores default
// signal handling so a second one terminates the process.
func drainJob(signalCtx context.Context, stop context.CancelFunc, job *builder.Job, renderer buildRenderer) {
	events := job.Events()
	interrupted := signalCtx.Done()
	for events != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			renderer.OnEvent(ev)
		case <-interrupted:
			interrupted = nil
			stop()
			job.Cancel()
			renderer.Interrupted()
		}
	}
}

// overlayConfig applies request overrides to a copy of cfg for preflight.
func overlayConfig(cfg *config.Config, req builder.Request) *config.Config {
	cp := *cfg
	if req.Destination != "" {
		cp.Paths.Destination = req.Destination
	}
	cp.Resource.Name = req.ResourceName
	return &cp
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrValidation, "cli", "preflight", strings.Join(parts, "; "), nil)
}

func confirmReplace(in io.Reader, out io.Writer, destination string) (bool, error) {
	target := strings.TrimSpace(destination)
	if target == "" {
		target = "the destination"
	}
	fmt.Fprintf(out, "Replace mode deletes stream/ and data/ in %s. Continue? [y/N]: ", target)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func rememberRequest(ctx *commandContext, outcome builder.Outcome) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set("paths.destination", outcome.Destination); err != nil {
		return fmt.Errorf("remember destination: %w", err)
	}
	if err := cfg.Set("resource.name", outcome.Resource); err != nil {
		return fmt.Errorf("remember resource name: %w", err)
	}
	if err := cfg.Save(ctx.configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
