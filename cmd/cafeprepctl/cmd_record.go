package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafeprep/internal/cli"
	"cafeprep/internal/config"
	"cafeprep/internal/core"
)

var recordFlags struct {
	date, item                 string
	prepared, remaining, waste string
	force                      bool
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append one entry and send the configured notification",
	Example: `  cafeprepctl record --item "Croissant Plain" --prepared 12 --remaining 2 --waste 1
  cafeprepctl record --date 2024-01-01 --item Brownie --prepared 6`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entry, err := parseRecordFlags()
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		if !recordFlags.force {
			products, err := cli.LoadCatalog(e.cfg)
			if err != nil {
				return err
			}
			if !products.Contains(entry.Item) {
				return fmt.Errorf("item %q is not on the product list (use --force to record it anyway)", entry.Item)
			}
		}

		out, err := e.svc.Record(cmd.Context(), entry)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s (ref %s): sold %s\n", okStyle.Render("Saved"), entry.Item, out.Ref, entry.Sold())
		if out.LoadErr != nil {
			fmt.Fprintln(w, warnStyle.Render("Could not reload the log: "+out.LoadErr.Error()))
		}
		if out.NotifyErr != nil {
			fmt.Fprintln(w, warnStyle.Render("Notification failed: "+out.NotifyErr.Error()))
		}
		if len(out.Daily) > 0 {
			fmt.Fprintln(w, dailyTable(out.Daily, core.Totals(out.Daily)))
		}
		return nil
	},
}

func parseRecordFlags() (core.Entry, error) {
	date, err := core.NormalizeDate(recordFlags.date)
	if err != nil {
		return core.Entry{}, fmt.Errorf("--date: %w", err)
	}
	e := core.Entry{Date: date, Item: recordFlags.item}
	for _, q := range []struct {
		flag  string
		value string
		dst   *core.Quantity
	}{
		{"--prepared", recordFlags.prepared, &e.Prepared},
		{"--remaining", recordFlags.remaining, &e.Remanence},
		{"--waste", recordFlags.waste, &e.Waste},
	} {
		v, err := core.ParseQuantity(q.value)
		if err != nil {
			return core.Entry{}, fmt.Errorf("%s: %w", q.flag, err)
		}
		*q.dst = v
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
	}
	return e, nil
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the products offered in the entry form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli.LoadEnvFile()
		products, err := cli.LoadCatalog(config.Load())
		if err != nil {
			return err
		}
		for _, p := range products.Products() {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	f := recordCmd.Flags()
	f.StringVar(&recordFlags.date, "date", core.Today(), "entry date (YYYY-MM-DD)")
	f.StringVar(&recordFlags.item, "item", "", "product name")
	f.StringVar(&recordFlags.prepared, "prepared", "0", "pieces prepared")
	f.StringVar(&recordFlags.remaining, "remaining", "0", "pieces left at end of day")
	f.StringVar(&recordFlags.waste, "waste", "0", "pieces thrown away")
	f.BoolVar(&recordFlags.force, "force", false, "accept items missing from the catalog")
	_ = recordCmd.MarkFlagRequired("item")
}
