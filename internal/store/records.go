package store

import (
	"errors"
	"fmt"
	"strings"

	"cafeprep/internal/core"
)

var ErrMissingColumns = errors.New("missing columns")

// Header maps canonical column names to their position in a header row.
type Header map[string]int

// ParseHeader locates the canonical columns in a header row. Unknown
// columns (for example a "sold" column added by hand) are ignored.
func ParseHeader(row []string) (Header, error) {
	h := Header{}
	for i, cell := range row {
		col := core.CanonicalColumn(cell)
		if col == "" {
			continue
		}
		if _, dup := h[col]; !dup {
			h[col] = i
		}
	}
	var missing []string
	for _, col := range core.Columns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (header=%v)", ErrMissingColumns, strings.Join(missing, ","), row)
	}
	return h, nil
}

// CanonicalHeader returns a Header laid out in core.Columns order.
func CanonicalHeader() Header {
	h := Header{}
	for i, col := range core.Columns {
		h[col] = i
	}
	return h
}

// Width is the number of cells a row needs to hold every mapped column.
func (h Header) Width() int {
	w := 0
	for _, i := range h {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// Encode lays out an entry following the header's column positions.
func (h Header) Encode(e core.Entry) []string {
	row := make([]string, h.Width())
	vals := e.Values()
	for i, col := range core.Columns {
		row[h[col]] = vals[i]
	}
	return row
}

// Decode reads one data row. Blank rows return ok=false and no error.
func (h Header) Decode(row []string) (e core.Entry, ok bool, err error) {
	get := func(col string) string {
		i := h[col]
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	blank := true
	for _, col := range core.Columns {
		if get(col) != "" {
			blank = false
			break
		}
	}
	if blank {
		return core.Entry{}, false, nil
	}

	date, err := core.NormalizeDate(get(core.ColDate))
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("date %q: %w", get(core.ColDate), err)
	}
	e = core.Entry{Date: date, Item: get(core.ColItem)}
	for col, dst := range map[string]*core.Quantity{
		core.ColPrepared:  &e.Prepared,
		core.ColRemanence: &e.Remanence,
		core.ColWaste:     &e.Waste,
	} {
		q, err := core.ParseQuantity(get(col))
		if err != nil {
			return core.Entry{}, false, fmt.Errorf("%s %q: %w", col, get(col), err)
		}
		*dst = q
	}
	return e, true, nil
}

// DecodeRows converts a table whose first row is a header into entries.
// Malformed data rows are skipped and reported through skipped; an empty
// table is an empty log.
func DecodeRows(rows [][]string) (entries []core.Entry, skipped []error, err error) {
	entries = make([]core.Entry, 0, len(rows))
	if len(rows) == 0 {
		return entries, nil, nil
	}
	h, err := ParseHeader(rows[0])
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows[1:] {
		e, ok, derr := h.Decode(row)
		if derr != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", i+2, derr))
			continue
		}
		if ok {
			entries = append(entries, e)
		}
	}
	return entries, skipped, nil
}
