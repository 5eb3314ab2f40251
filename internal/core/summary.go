package core

import (
	"cmp"
	"slices"
)

// ItemTotals holds the four sums for one item.
type ItemTotals struct {
	Item      string
	Prepared  Quantity
	Remanence Quantity
	Waste     Quantity
	Sold      Quantity
}

// DateItemTotals holds the sums for one (date, item) pair.
type DateItemTotals struct {
	Date string
	ItemTotals
}

func (t *ItemTotals) add(e Entry) {
	t.Prepared = t.Prepared.Add(e.Prepared)
	t.Remanence = t.Remanence.Add(e.Remanence)
	t.Waste = t.Waste.Add(e.Waste)
	t.Sold = t.Sold.Add(e.Sold())
}

// ComputeSold returns prepared - (remanence + waste). Negative results pass
// through unchanged; they signal inconsistent input, not an error.
func ComputeSold(e Entry) Quantity {
	return e.Prepared.Sub(e.Remanence.Add(e.Waste))
}

// DailyTotals filters entries to the given date and sums them per item.
// Rows keep the order in which each item first appears.
func DailyTotals(entries []Entry, date string) []ItemTotals {
	out := make([]ItemTotals, 0)
	idx := map[string]int{}
	for _, e := range entries {
		if e.Date != date {
			continue
		}
		i, ok := idx[e.Item]
		if !ok {
			i = len(out)
			idx[e.Item] = i
			out = append(out, ItemTotals{Item: e.Item})
		}
		out[i].add(e)
	}
	return out
}

type dateItem struct{ date, item string }

// FullSummary sums the whole log per (date, item) pair, in first-seen order.
func FullSummary(entries []Entry) []DateItemTotals {
	out := make([]DateItemTotals, 0)
	idx := map[dateItem]int{}
	for _, e := range entries {
		k := dateItem{e.Date, e.Item}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, DateItemTotals{Date: e.Date, ItemTotals: ItemTotals{Item: e.Item}})
		}
		out[i].add(e)
	}
	return out
}

// Totals sums a set of per-item rows into a single grand-total row.
func Totals(rows []ItemTotals) ItemTotals {
	var t ItemTotals
	for _, r := range rows {
		t.Prepared = t.Prepared.Add(r.Prepared)
		t.Remanence = t.Remanence.Add(r.Remanence)
		t.Waste = t.Waste.Add(r.Waste)
		t.Sold = t.Sold.Add(r.Sold)
	}
	return t
}

// SortSummary orders rows by date, then item, for tabular display.
func SortSummary(rows []DateItemTotals) {
	slices.SortStableFunc(rows, func(a, b DateItemTotals) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Item, b.Item)
	})
}
