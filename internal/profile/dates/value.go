// Package dates turns free-text date expressions into a calendar date paired
// with the precision it is meaningful at.
package dates

import (
	"time"
)

// Precision is the granularity at which a date is meaningful.
type Precision string

const (
	PrecisionNone  Precision = ""
	PrecisionYear  Precision = "year"
	PrecisionMonth Precision = "month"
	PrecisionDay   Precision = "day"
)

// Valid reports whether p is one of the stored precisions.
func (p Precision) Valid() bool {
	switch p {
	case PrecisionYear, PrecisionMonth, PrecisionDay:
		return true
	}
	return false
}

// Value is a (date, precision) pair. The zero Value means "absent": no date
// and no precision. Dates are kept at midnight UTC.
type Value struct {
	Date      time.Time
	Precision Precision
}

// Of builds a Value for the given calendar day.
func Of(year int, month time.Month, day int, p Precision) Value {
	return Value{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Precision: p}
}

// FromTime truncates t to its calendar day in UTC.
func FromTime(t time.Time, p Precision) Value {
	if t.IsZero() {
		return Value{}
	}
	return Of(t.Year(), t.Month(), t.Day(), p)
}

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool {
	return v.Date.IsZero()
}

// Equal compares both the date and the precision.
func (v Value) Equal(o Value) bool {
	return v.Date.Equal(o.Date) && v.Precision == o.Precision
}

// SameDate compares only the calendar date.
func (v Value) SameDate(o Value) bool {
	return v.Date.Equal(o.Date)
}

// Rounded returns the date rounded down to its precision. An unknown
// precision is treated as day precision.
func (v Value) Rounded() time.Time {
	return Round(v.Date, v.Precision)
}

// Round rounds t down to the start of its year or month for the coarser
// precisions and returns t unchanged otherwise.
func Round(t time.Time, p Precision) time.Time {
	if t.IsZero() {
		return t
	}
	switch p {
	case PrecisionYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case PrecisionMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders the date at its precision: dd/mm/yyyy, mm/yyyy or yyyy.
// Absent values render as "".
func (v Value) Format() string {
	if v.IsZero() {
		return ""
	}
	switch v.Precision {
	case PrecisionYear:
		return v.Date.Format("2006")
	case PrecisionMonth:
		return v.Date.Format("01/2006")
	case PrecisionDay:
		return v.Date.Format("02/01/2006")
	}
	return ""
}

// Before orders two values by date; absent values sort after present ones.
func (v Value) Before(o Value) bool {
	switch {
	case v.IsZero():
		return false
	case o.IsZero():
		return true
	}
	return v.Date.Before(o.Date)
}
