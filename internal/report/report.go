// Package report holds the output of one analysis run and knows how to
// render it for people and parse it back.
package report

import (
	"time"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/session"
)

// Version is bumped when the serialized layout changes incompatibly.
const Version = 1

// Report is the complete, renderable result of a run.
type Report struct {
	Version     int                  `json:"version"`
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Source      SourceMeta           `json:"source"`
	Location    string               `json:"location"`
	DayBoundary string               `json:"day_boundary"`
	Author      string               `json:"author,omitempty"`
	Since       session.Date         `json:"since,omitzero"`
	Until       session.Date         `json:"until,omitzero"`
	Days        []session.DaySummary `json:"days"`
	Totals      []session.DailyTotal `json:"totals"`
	Intervals   []session.Interval   `json:"intervals"`
	Diagnostics []event.Diagnostic   `json:"diagnostics"`
	Total       time.Duration        `json:"total"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// SourceMeta describes the log a report was built from.
type SourceMeta struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Records int    `json:"records"`
	Events  int    `json:"events"`
}

// Boundary rebuilds the day boundary the report was split with. An unknown
// location falls back to UTC.
func (r *Report) Boundary() session.Boundary {
	loc, err := time.LoadLocation(r.Location)
	if err != nil || r.Location == "" {
		loc = time.UTC
	}
	b, err := session.ParseBoundary(r.DayBoundary, loc)
	if err != nil {
		return session.Boundary{Location: loc}
	}
	return b
}

// Open returns the trailing unterminated interval, if the log ended inside
// a session.
func (r *Report) Open() (session.Interval, bool) {
	return session.Result{Intervals: r.Intervals}.Open()
}

// DayCount returns the number of reported days.
func (r *Report) DayCount() int { return len(r.Days) }
