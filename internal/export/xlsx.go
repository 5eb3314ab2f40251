// Package export renders summaries as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cafeprep/internal/core"
)

const (
	SummarySheet = "Summary"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var summaryHeadings = []string{"Date", "Item", "Prepared", "Remanence", "Waste", "Sold"}

// SummaryWorkbook builds a workbook with one row per (date, item) and a
// final grand-total row. Quantities are written as numbers.
func SummaryWorkbook(rows []core.DateItemTotals) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, 1, headingCells()); err != nil {
		f.Close()
		return nil, err
	}

	items := make([]core.ItemTotals, 0, len(rows))
	for i, r := range rows {
		if err := writeRow(f, i+2, []any{r.Date, r.Item, r.Prepared.Float64(), r.Remanence.Float64(), r.Waste.Float64(), r.Sold.Float64()}); err != nil {
			f.Close()
			return nil, err
		}
		items = append(items, r.ItemTotals)
	}

	total := core.Totals(items)
	last := len(rows) + 2
	if err := writeRow(f, last, []any{"Total", "", total.Prepared.Float64(), total.Remanence.Float64(), total.Waste.Float64(), total.Sold.Float64()}); err != nil {
		f.Close()
		return nil, err
	}

	for _, row := range []int{1, last} {
		end, _ := excelize.CoordinatesToCellName(len(summaryHeadings), row)
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStyle(SummarySheet, start, end, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("style row %d: %w", row, err)
		}
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}
	return f, nil
}

func headingCells() []any {
	out := make([]any, len(summaryHeadings))
	for i, h := range summaryHeadings {
		out[i] = h
	}
	return out
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// WriteSummary streams the summary workbook to w.
func WriteSummary(w io.Writer, rows []core.DateItemTotals) error {
	f, err := SummaryWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveSummary writes the summary workbook to path.
func SaveSummary(path string, rows []core.DateItemTotals) error {
	f, err := SummaryWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
