package session

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// DailyTotal is the active time credited to one reporting day.
type DailyTotal struct {
	Date     Date          `json:"date"`
	Duration time.Duration `json:"duration"`
}

// Aggregate apportions each interval to the days it overlaps and returns the
// totals in ascending date order.
func Aggregate(intervals []Interval, b Boundary) []DailyTotal {
	sums := make(map[Date]time.Duration)
	for _, iv := range intervals {
		b.Split(iv.Start, iv.End, func(d Date, from, to time.Time) {
			sums[d] += to.Sub(from)
		})
	}
	days := slices.SortedFunc(maps.Keys(sums), Date.Compare)
	totals := make([]DailyTotal, len(days))
	for i, d := range days {
		totals[i] = DailyTotal{Date: d, Duration: sums[d]}
	}
	return totals
}

// Thresholds drive the per-day warnings. A zero value disables a check.
type Thresholds struct {
	MinActive time.Duration
	MaxBreak  time.Duration
}

// DaySummary extends a DailyTotal with the shape of the day: the first and
// last active instants, the span between them and the time spent away.
type DaySummary struct {
	Date         Date          `json:"date"`
	First        time.Time     `json:"first"`
	Last         time.Time     `json:"last"`
	Active       time.Duration `json:"active"`
	Span         time.Duration `json:"span"`
	Break        time.Duration `json:"break"`
	Intervals    int           `json:"intervals"`
	Unterminated bool          `json:"unterminated,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Total converts the summary back to its DailyTotal.
func (s DaySummary) Total() DailyTotal { return DailyTotal{Date: s.Date, Duration: s.Active} }

// Summarize builds one DaySummary per day any interval touches, ascending.
// First and Last are expressed in the boundary's location.
func Summarize(intervals []Interval, b Boundary, th Thresholds) []DaySummary {
	byDay := make(map[Date]*DaySummary)
	for _, iv := range intervals {
		b.Split(iv.Start, iv.End, func(d Date, from, to time.Time) {
			from, to = from.In(b.loc()), to.In(b.loc())
			s, ok := byDay[d]
			if !ok {
				s = &DaySummary{Date: d, First: from, Last: to}
				byDay[d] = s
			}
			if from.Before(s.First) {
				s.First = from
			}
			if to.After(s.Last) {
				s.Last = to
			}
			s.Active += to.Sub(from)
			s.Intervals++
			s.Unterminated = s.Unterminated || iv.Unterminated
		})
	}

	days := slices.SortedFunc(maps.Keys(byDay), Date.Compare)
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		s := byDay[d]
		s.Span = s.Last.Sub(s.First)
		s.Break = max(s.Span-s.Active, 0)
		s.Warnings = dayWarnings(*s, th)
		out = append(out, *s)
	}
	return out
}

func dayWarnings(s DaySummary, th Thresholds) []string {
	var w []string
	if th.MinActive > 0 && s.Active < th.MinActive {
		w = append(w, fmt.Sprintf("logged-in duration %s is below %s", s.Active.Round(time.Second), th.MinActive))
	}
	if th.MaxBreak > 0 && s.Break > th.MaxBreak {
		w = append(w, fmt.Sprintf("logged-out duration %s exceeds %s", s.Break.Round(time.Second), th.MaxBreak))
	}
	if s.Unterminated {
		w = append(w, "includes an unterminated session; active time is an estimate")
	}
	return w
}

// Totals returns the DailyTotal of each summary.
func Totals(days []DaySummary) []DailyTotal {
	out := make([]DailyTotal, len(days))
	for i, s := range days {
		out[i] = s.Total()
	}
	return out
}
