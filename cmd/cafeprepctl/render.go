package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cafeprep/internal/core"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1b7f3b"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a86400"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
)

func newTable(headers []string, numericFrom int) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= numericFrom:
				return numStyle
			default:
				return cellStyle
			}
		})
}

func quantities(t core.ItemTotals) []string {
	return []string{t.Prepared.String(), t.Remanence.String(), t.Waste.String(), t.Sold.String()}
}

func summaryTable(rows []core.DateItemTotals) string {
	t := newTable([]string{"date", "item", "prepared", "remanence", "waste", "sold"}, 2)
	for _, r := range rows {
		t.Row(append([]string{r.Date, r.Item}, quantities(r.ItemTotals)...)...)
	}
	return t.String()
}

func dailyTable(rows []core.ItemTotals, total core.ItemTotals) string {
	t := newTable([]string{"item", "prepared", "remanence", "waste", "sold"}, 1)
	for _, r := range rows {
		t.Row(append([]string{r.Item}, quantities(r)...)...)
	}
	t.Row(append([]string{"Total"}, quantities(total)...)...)
	return t.String()
}
