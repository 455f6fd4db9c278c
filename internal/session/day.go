package session

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day, independent of any zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Boundary is the local clock time at which one reporting day ends and the
// next begins. The zero value is midnight in the local zone.
type Boundary struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseBoundary parses an "HH:MM" clock time; empty means midnight.
func ParseBoundary(hhmm string, loc *time.Location) (Boundary, error) {
	b := Boundary{Location: loc}
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return b, nil
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return Boundary{}, fmt.Errorf("invalid day boundary %q (want HH:MM): %w", hhmm, err)
	}
	b.Hour, b.Minute = t.Hour(), t.Minute()
	return b, nil
}

func (b Boundary) String() string { return fmt.Sprintf("%02d:%02d", b.Hour, b.Minute) }

func (b Boundary) loc() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

// Start returns the instant day d begins.
func (b Boundary) Start(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, b.Hour, b.Minute, 0, 0, b.loc())
}

// DayOf returns the reporting day containing t.
func (b Boundary) DayOf(t time.Time) Date {
	t = t.In(b.loc())
	d := DateOf(t)
	if t.Before(b.Start(d)) {
		d = d.AddDays(-1)
	}
	return d
}

// Split cuts [start, end] at every day boundary and calls fn for each piece
// in order. A zero-length span yields one zero-length piece.
func (b Boundary) Split(start, end time.Time, fn func(d Date, from, to time.Time)) {
	from := start
	for {
		d := b.DayOf(from)
		next := b.Start(d.AddDays(1))
		if !end.After(next) {
			fn(d, from, end)
			return
		}
		fn(d, from, next)
		from = next
	}
}
