package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show verification, review and queue counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.service.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if !asTable {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCounts("Verification status", stats.ByVerificationStatus))
			fmt.Fprintln(out, renderCounts("Risk level", stats.ByRiskLevel))
			fmt.Fprintln(out, renderCounts("Admin decision", stats.ByAdminDecision))
			fmt.Fprintln(out, renderCounts("Queue", stats.ByQueueStatus))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "Render tables instead of JSON")
	return cmd
}
