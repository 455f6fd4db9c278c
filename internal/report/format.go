package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/session"
)

const dayLayout = "2006-01-02 (Mon)"

// Clock formats d as H:MM:SS, rounded to the second.
func Clock(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	out := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	if neg {
		out = "-" + out
	}
	return out
}

// DayLabel formats a date with its weekday, e.g. "2024-03-04 (Mon)".
func DayLabel(d session.Date) string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dayLayout)
}

// NewWeek reports whether days[i] starts a new week: it is a Monday, or it
// falls in a later ISO week than the day listed before it.
func NewWeek(days []session.DaySummary, i int) bool {
	d := days[i].Date
	if d.Weekday() == time.Monday {
		return true
	}
	if i == 0 {
		return false
	}
	return isoWeek(d) != isoWeek(days[i-1].Date)
}

func isoWeek(d session.Date) [2]int {
	y, w := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).ISOWeek()
	return [2]int{y, w}
}

// DayLine is the one-line summary of a day used by the plain renderers.
func DayLine(s session.DaySummary) string {
	return fmt.Sprintf("Day: %s Times: %s %s Duration: %s logged-in=%s logged-out=%s",
		DayLabel(s.Date),
		s.First.Format("15:04"),
		s.Last.Format("15:04"),
		Clock(s.Span),
		Clock(s.Active),
		Clock(s.Break),
	)
}

// Title is the heading shared by the document renderers.
func Title(r *Report) string {
	var sb strings.Builder
	sb.WriteString("Work time report")
	if n := len(r.Days); n > 0 {
		first, last := r.Days[0].Date, r.Days[n-1].Date
		if first == last {
			fmt.Fprintf(&sb, ": %s", first)
		} else {
			fmt.Fprintf(&sb, ": %s to %s", first, last)
		}
	}
	return sb.String()
}
