package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafeprep/internal/core"
	"cafeprep/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full summary to an Excel workbook",
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
		if err := export.SaveSummary(exportOut, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows to %s\n", okStyle.Render("Exported"), len(rows), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "cafeprep-summary-"+core.Today()+".xlsx", "output file")
}
