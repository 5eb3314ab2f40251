package core

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var qtyEqual = cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) })

func entry(date, item string, prepared, remanence, waste int64) Entry {
	return Entry{Date: date, Item: item, Prepared: Qty(prepared), Remanence: Qty(remanence), Waste: Qty(waste)}
}

func TestComputeSold(t *testing.T) {
	cases := []struct {
		e    Entry
		want string
	}{
		{entry("2024-01-01", "Brownie", 10, 2, 1), "7"},
		{entry("2024-01-01", "Brownie", 0, 0, 0), "0"},
		{entry("2024-01-01", "Brownie", 3, 4, 2), "-3"}, // inconsistent input is not clamped
		{Entry{Date: "2024-01-01", Item: "Pizza", Prepared: MustQty("5.5"), Remanence: MustQty("1,5"), Waste: Qty(1)}, "3"},
	}
	for i, tc := range cases {
		got := ComputeSold(tc.e)
		if !got.Equal(MustQty(tc.want)) {
			t.Fatalf("case %d: sold=%s want %s", i, got, tc.want)
		}
		if !tc.e.Sold().Equal(got) {
			t.Fatalf("case %d: Entry.Sold disagrees with ComputeSold", i)
		}
	}
}

func TestDailyTotalsGroupsPerItem(t *testing.T) {
	entries := []Entry{
		entry("2024-01-01", "Croissant", 10, 2, 1),
		entry("2024-01-01", "Croissant", 5, 1, 0),
	}
	got := DailyTotals(entries, "2024-01-01")
	want := []ItemTotals{{Item: "Croissant", Prepared: Qty(15), Remanence: Qty(3), Waste: Qty(1), Sold: Qty(11)}}
	if diff := cmp.Diff(want, got, qtyEqual); diff != "" {
		t.Fatalf("daily totals mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyTotalsFiltersByDate(t *testing.T) {
	entries := []Entry{
		entry("2024-01-01", "Croissant", 10, 2, 1),
		entry("2024-01-02", "Tiramisu", 4, 0, 0),
		entry("2024-01-02", "Croissant", 9, 9, 9),
	}
	got := DailyTotals(entries, "2024-01-01")
	if len(got) != 1 || got[0].Item != "Croissant" || !got[0].Prepared.Equal(Qty(10)) {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got := DailyTotals(entries, "2023-12-31"); len(got) != 0 {
		t.Fatalf("expected no rows for a date without entries, got %+v", got)
	}
}

func TestFullSummary(t *testing.T) {
	entries := []Entry{
		entry("2024-01-01", "Croissant", 10, 2, 1),
		entry("2024-01-02", "Croissant", 8, 1, 1),
		entry("2024-01-01", "Croissant", 5, 1, 0),
		entry("2024-01-01", "Pizza", 3, 4, 0),
	}
	got := FullSummary(entries)
	want := []DateItemTotals{
		{Date: "2024-01-01", ItemTotals: ItemTotals{Item: "Croissant", Prepared: Qty(15), Remanence: Qty(3), Waste: Qty(1), Sold: Qty(11)}},
		{Date: "2024-01-02", ItemTotals: ItemTotals{Item: "Croissant", Prepared: Qty(8), Remanence: Qty(1), Waste: Qty(1), Sold: Qty(6)}},
		{Date: "2024-01-01", ItemTotals: ItemTotals{Item: "Pizza", Prepared: Qty(3), Remanence: Qty(4), Waste: Qty(0), Sold: Qty(-1)}},
	}
	if diff := cmp.Diff(want, got, qtyEqual); diff != "" {
		t.Fatalf("full summary mismatch (-want +got):\n%s", diff)
	}
}

func TestFullSummaryEmpty(t *testing.T) {
	got := FullSummary(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil summary, got %#v", got)
	}
}

func TestAggregationIgnoresInputOrder(t *testing.T) {
	entries := []Entry{
		entry("2024-01-01", "Croissant Plain", 10, 2, 1),
		entry("2024-01-01", "Brownie", 6, 1, 0),
		entry("2024-01-02", "Croissant Plain", 12, 3, 2),
		entry("2024-01-01", "Croissant Plain", 5, 1, 0),
		entry("2024-01-02", "Maritozzo", 8, 0, 1),
		entry("2024-01-01", "Brownie", 2, 3, 0),
	}
	sortDaily := cmpopts.SortSlices(func(a, b ItemTotals) bool { return a.Item < b.Item })
	sortFull := cmpopts.SortSlices(func(a, b DateItemTotals) bool {
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Item < b.Item
	})

	baseDaily := DailyTotals(entries, "2024-01-01")
	baseFull := FullSummary(entries)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Entry(nil), entries...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if diff := cmp.Diff(baseDaily, DailyTotals(shuffled, "2024-01-01"), qtyEqual, sortDaily); diff != "" {
			t.Fatalf("daily totals depend on order (-base +shuffled):\n%s", diff)
		}
		if diff := cmp.Diff(baseFull, FullSummary(shuffled), qtyEqual, sortFull); diff != "" {
			t.Fatalf("full summary depends on order (-base +shuffled):\n%s", diff)
		}
	}
}

func TestAggregationIsDeterministic(t *testing.T) {
	entries := []Entry{
		{Date: "2024-03-01", Item: "Pizza", Prepared: MustQty("0.1"), Remanence: MustQty("0.2"), Waste: MustQty("0.3")},
		{Date: "2024-03-01", Item: "Pizza", Prepared: MustQty("0.7"), Remanence: MustQty("0"), Waste: MustQty("0")},
	}
	first := FullSummary(entries)
	second := FullSummary(entries)
	if len(first) != 1 || first[0].Sold.String() != second[0].Sold.String() {
		t.Fatalf("non deterministic results: %+v vs %+v", first, second)
	}
	if first[0].Sold.String() != "0.3" {
		t.Fatalf("expected exact decimal sum 0.3, got %s", first[0].Sold)
	}
}

func TestTotals(t *testing.T) {
	rows := []ItemTotals{
		{Item: "A", Prepared: Qty(10), Remanence: Qty(2), Waste: Qty(1), Sold: Qty(7)},
		{Item: "B", Prepared: Qty(4), Remanence: Qty(0), Waste: Qty(5), Sold: Qty(-1)},
	}
	got := Totals(rows)
	if !got.Prepared.Equal(Qty(14)) || !got.Remanence.Equal(Qty(2)) || !got.Waste.Equal(Qty(6)) || !got.Sold.Equal(Qty(6)) {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestSortSummary(t *testing.T) {
	rows := []DateItemTotals{
		{Date: "2024-01-02", ItemTotals: ItemTotals{Item: "A"}},
		{Date: "2024-01-01", ItemTotals: ItemTotals{Item: "B"}},
		{Date: "2024-01-01", ItemTotals: ItemTotals{Item: "A"}},
	}
	SortSummary(rows)
	got := []string{rows[0].Date + "/" + rows[0].Item, rows[1].Date + "/" + rows[1].Item, rows[2].Date + "/" + rows[2].Item}
	want := []string{"2024-01-01/A", "2024-01-01/B", "2024-01-02/A"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
}
