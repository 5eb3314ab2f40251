package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cafeprep/internal/core"
	"cafeprep/internal/store"
)

// Sheets counts dates as days since this epoch when values are read
// unformatted.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func serialDate(f float64) string {
	return serialEpoch.AddDate(0, 0, int(math.Floor(f))).Format(core.DateLayout)
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// toRows converts an unformatted values matrix into string rows. Numeric
// cells in the date column are serial dates and are rendered as ISO dates.
func toRows(values [][]any) [][]string {
	if len(values) == 0 {
		return nil
	}
	header := make([]string, len(values[0]))
	dateCol := -1
	for i, v := range values[0] {
		header[i] = cellString(v)
		if dateCol < 0 && core.CanonicalColumn(header[i]) == core.ColDate {
			dateCol = i
		}
	}
	rows := make([][]string, 0, len(values))
	rows = append(rows, header)
	for _, vr := range values[1:] {
		row := make([]string, len(vr))
		for i, v := range vr {
			if f, ok := v.(float64); ok && i == dateCol {
				row[i] = serialDate(f)
				continue
			}
			row[i] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows
}

// toCells lays out an entry for a RAW append: the date and item stay text,
// quantities are written as numbers.
func toCells(h store.Header, e core.Entry) []any {
	row := h.Encode(e)
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	cells[h[core.ColPrepared]] = e.Prepared.Float64()
	cells[h[core.ColRemanence]] = e.Remanence.Float64()
	cells[h[core.ColWaste]] = e.Waste.Float64()
	return cells
}

// a1 builds an A1 range, quoting the sheet name when it needs it.
func a1(sheet, rng string) string {
	plain := true
	for _, r := range sheet {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if !plain {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + rng
}
