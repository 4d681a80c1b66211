package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fivepack/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "Build history is disabled (history.enabled = false)")
				return nil
			}
			defer store.Close()

			if limit <= 0 {
				limit = defaultHistoryLimit
			}
			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]historyJSON, 0, len(records))
				for _, rec := range records {
					views = append(views, historyView(rec))
				}
				return writeJSON(cmd, views)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No builds recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Resource", "Status", "Mode", "Files", "Dup", "Err", "Size", "Took"},
				historyRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", defaultHistoryLimit, "Number of builds to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print builds as JSON")
	return cmd
}

func historyRows(records []history.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Resource,
			string(rec.Status),
			modeLabel(rec.Mode, rec.Move),
			fmt.Sprintf("%d/%d", rec.Processed, rec.Total),
			fmt.Sprintf("%d", rec.Duplicates),
			fmt.Sprintf("%d", rec.Errors),
			formatBytes(rec.Bytes),
			rec.Duration().Round(time.Millisecond).String(),
		})
	}
	return rows
}
