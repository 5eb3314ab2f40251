package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafeprep/internal/core"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals per date and item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		rows, err := e.svc.Summary(cmd.Context())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No data yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryTable(rows))
		return nil
	},
}

var dailyDate string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show per-item totals for one day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		rows, total, err := e.svc.Daily(cmd.Context(), dailyDate)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No entries for %s.\n", dailyDate)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Totals for "+dailyDate))
		fmt.Fprintln(cmd.OutOrStdout(), dailyTable(rows, total))
		return nil
	},
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", core.Today(), "day to report (YYYY-MM-DD)")
}
