package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical string form of an entry date.
const DateLayout = "2006-01-02"

// Canonical column names, in storage order.
const (
	ColDate      = "date"
	ColItem      = "item"
	ColPrepared  = "prepared"
	ColRemanence = "remanence"
	ColWaste     = "waste"
)

// Columns lists the canonical columns in the order rows are written.
var Columns = []string{ColDate, ColItem, ColPrepared, ColRemanence, ColWaste}

type (
	// Entry is one submitted daily record for one product.
	Entry struct {
		Date      string // YYYY-MM-DD
		Item      string
		Prepared  Quantity
		Remanence Quantity // left over at end of day
		Waste     Quantity
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyItem        = errors.New("empty item")
	ErrNegativeQuantity = errors.New("negative quantity")
)

// Sold returns prepared - (remanence + waste). The result is not clamped.
func (e Entry) Sold() Quantity {
	return ComputeSold(e)
}

// Validate checks the entry shape. Catalog membership is not checked here.
func (e Entry) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	for _, q := range []Quantity{e.Prepared, e.Remanence, e.Waste} {
		if q.IsNegative() {
			return ErrNegativeQuantity
		}
	}
	return nil
}

// Values returns the entry as an ordered tuple matching Columns.
func (e Entry) Values() []string {
	return []string{e.Date, e.Item, e.Prepared.String(), e.Remanence.String(), e.Waste.String()}
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// NormalizeDate converts a date or timestamp string into YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// Today returns the current local date in canonical form.
func Today() string {
	return time.Now().Format(DateLayout)
}

// CanonicalColumn maps a header cell to its canonical column name.
// Matching ignores case and surrounding space; "remaining" is accepted for remanence.
// It returns "" for unknown headers.
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	switch h {
	case ColDate, ColItem, ColPrepared, ColRemanence, ColWaste:
		return h
	case "remaining":
		return ColRemanence
	}
	return ""
}
