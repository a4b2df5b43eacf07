package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [check]",
	Short: "Show recent check runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		check := ""
		if len(args) == 1 {
			check = args[0]
		}

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		d, cleanup, err := openHistory(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := d.RecentRuns(cmd.Context(), check, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-20s %-16s %-12s %-5s %-9s %-4s %s\n",
			"TIMESTAMP", "CHECK", "STATUS", "EXIT", "DURATION", "CATS", "DIAGNOSTIC")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 90))
		for _, r := range runs {
			diag := r.Diagnostic
			if len(diag) > 40 {
				diag = diag[:37] + "..."
			}
			fmt.Fprintf(w, "%-20s %-16s %-12s %-5d %-9s %-4d %s\n",
				r.Timestamp, r.Check, r.Status, r.ExitCode,
				fmt.Sprintf("%dms", r.DurationMs), r.Categories, diag)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Trim history to the newest runs per check",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		d, cleanup, err := openHistory(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer cleanup()

		deleted, err := d.Prune(cmd.Context(), keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s).\n", deleted)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "max runs to show")
	historyPruneCmd.Flags().Int("keep", 100, "runs to retain per check")
	historyCmd.AddCommand(historyPruneCmd)
}
