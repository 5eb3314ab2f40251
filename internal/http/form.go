package http

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"cafeprep/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Quantities validate as plain numbers so gte/lte tags apply.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if q, ok := field.Interface().(core.Quantity); ok {
			return q.Float64()
		}
		return nil
	}, core.Quantity{})
}

// entryForm is the submitted entry form. Field names in messages use the form's labels.
type entryForm struct {
	Date      string        `form:"date" validate:"required,datetime=2006-01-02"`
	Item      string        `form:"item" validate:"required,max=120"`
	Prepared  core.Quantity `form:"prepared" validate:"gte=0"`
	Remanence core.Quantity `form:"remaining" validate:"gte=0"`
	Waste     core.Quantity `form:"waste" validate:"gte=0"`
}

// formError lists every problem found in a submitted form.
type formError struct {
	Problems []string
}

func (e *formError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// decodeEntryForm reads and validates the entry form. Blank quantities count
// as zero and a decimal comma is accepted.
func decodeEntryForm(form url.Values) (entryForm, error) {
	f := entryForm{
		Date: strings.TrimSpace(form.Get("date")),
		Item: sanitizeInput(form.Get("item")),
	}

	var problems []string
	for _, q := range []struct {
		name  string
		key   string
		value *core.Quantity
	}{
		{"prepared", "prepared", &f.Prepared},
		{"remaining", "remanence", &f.Remanence},
		{"waste", "waste", &f.Waste},
	} {
		v, err := core.ParseQuantity(form.Get(q.key))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a number", q.name))
			continue
		}
		*q.value = v
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return f, err
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if len(problems) > 0 {
		return f, &formError{Problems: problems}
	}
	return f, nil
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	if sf, ok := reflect.TypeOf(entryForm{}).FieldByName(fe.StructField()); ok {
		name = sf.Tag.Get("form")
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "datetime":
		return name + " must be a date in YYYY-MM-DD format"
	case "gte":
		return name + " cannot be negative"
	case "max":
		return name + " is too long"
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

func (f entryForm) entry() core.Entry {
	return core.Entry{
		Date:      f.Date,
		Item:      f.Item,
		Prepared:  f.Prepared,
		Remanence: f.Remanence,
		Waste:     f.Waste,
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
