// Package session reconstructs active work intervals from an ordered event
// sequence and aggregates them into per-day totals.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/event"
)

// Interval is a closed span of active time. Start never lies after End.
// Unterminated intervals were cut off by the end of the log; ClosedBy is
// empty for them.
type Interval struct {
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	OpenedBy     event.Kind `json:"opened_by"`
	ClosedBy     event.Kind `json:"closed_by,omitempty"`
	Unterminated bool       `json:"unterminated,omitempty"`
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

func (iv Interval) String() string {
	s := fmt.Sprintf("%s .. %s (%s)", iv.Start.Format("2006-01-02 15:04:05"),
		iv.End.Format("2006-01-02 15:04:05"), iv.Duration().Round(time.Second))
	if iv.Unterminated {
		s += " unterminated"
	}
	return s
}

// UnterminatedPolicy decides where a session still open at the end of the
// log is cut.
type UnterminatedPolicy string

const (
	// TruncateAtLastEvent ends the session at the last event of the log.
	TruncateAtLastEvent UnterminatedPolicy = "last"
	// TruncateAtNow ends the session at the current time.
	TruncateAtNow UnterminatedPolicy = "now"
)

// ParseUnterminatedPolicy accepts "last" or "now"; empty means "last".
func ParseUnterminatedPolicy(s string) (UnterminatedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TruncateAtLastEvent):
		return TruncateAtLastEvent, nil
	case string(TruncateAtNow):
		return TruncateAtNow, nil
	}
	return "", fmt.Errorf("unknown unterminated-session policy %q (want last or now)", s)
}

// Options tune reconstruction.
type Options struct {
	Unterminated UnterminatedPolicy
	Now          func() time.Time // defaults to time.Now
	Logger       *slog.Logger     // defaults to slog.Default()
}

// Result holds the reconstructed intervals, in event order, and every
// anomaly found on the way.
type Result struct {
	Intervals   []Interval
	Diagnostics []event.Diagnostic
}

// Total sums the duration of all intervals.
func (r Result) Total() time.Duration {
	var d time.Duration
	for _, iv := range r.Intervals {
		d += iv.Duration()
	}
	return d
}

// Open returns the trailing unterminated interval, if any.
func (r Result) Open() (Interval, bool) {
	if n := len(r.Intervals); n > 0 && r.Intervals[n-1].Unterminated {
		return r.Intervals[n-1], true
	}
	return Interval{}, false
}
