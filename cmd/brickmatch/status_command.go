package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"brickmatch/internal/resolution"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show resolution progress across the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("load summary: %w", err)
			}

			out := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Status", "Records"})
			for _, status := range resolution.AllStatuses() {
				t.AppendRow(table.Row{string(status), summary.Counts[status]})
			}
			t.AppendFooter(table.Row{"total", summary.Total})
			t.Render()

			if summary.Counts[resolution.StatusFound] > 0 {
				fmt.Fprintf(out, "Average confidence of found matches: %.1f\n", summary.AvgConfidence)
			}
			if summary.LastAttemptAt != nil {
				fmt.Fprintf(out, "Last attempt: %s\n", summary.LastAttemptAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newExcludeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <set-number>...",
		Short: "Mark catalog records as out of scope for resolution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			updated, err := store.MarkExcluded(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("mark excluded: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Excluded %d records\n", updated)
			return nil
		},
	}
}
