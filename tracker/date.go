package tracker

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date, the partition key for every query
// =============================================================================

// DateLayout is the canonical ISO form used at the storage boundary.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone.
// Always held as midnight UTC so values compare with == and work as map keys.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a canonical YYYY-MM-DD string.
// Non-canonical spellings and impossible days (2024-02-30) are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Reason: "expected YYYY-MM-DD"}
	}
	d := DateOf(t)
	if d.String() != s {
		return Date{}, &ValidationError{Field: "date", Value: s, Reason: "not a canonical calendar date"}
	}
	return d, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// DaysUntil returns the number of days from d to other (negative if other is earlier).
// Both are UTC midnights, so the Unix difference is a whole number of days.
func (d Date) DaysUntil(other Date) int { return int((other.t.Unix() - d.t.Unix()) / secondsPerDay) }

const secondsPerDay = 24 * 60 * 60

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }

// Format renders the date with a time layout, e.g. "Monday, January 02, 2006".
func (d Date) Format(layout string) string { return d.t.Format(layout) }

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("marshal zero date")
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// WEEK - Monday through Sunday window
// =============================================================================

// Week is the seven-day window starting on a Monday.
type Week struct {
	Start Date
	End   Date
}

// WeekOf returns the Monday-Sunday window containing d.
// Go numbers Sunday as 0, so the offset back to Monday is (weekday+6) mod 7.
func WeekOf(d Date) Week {
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDays(-offset)
	return Week{Start: start, End: start.AddDays(6)}
}

// Days returns the seven dates of the week, Monday first.
func (w Week) Days() []Date {
	days := make([]Date, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, w.Start.AddDays(i))
	}
	return days
}

// Contains returns true if d falls within [Start, End].
func (w Week) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

func (w Week) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// DaysBetween returns every date in the inclusive range [start, end].
// Empty if end is before start.
func DaysBetween(start, end Date) []Date {
	n := start.DaysUntil(end) + 1
	if n <= 0 {
		return nil
	}
	days := make([]Date, 0, n)
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
