package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fakeyudi/worktime/internal/event"
)

type state int

const (
	idle state = iota
	active
)

type action int

const (
	actOpen    action = iota // start a session
	actOrphan                // close with nothing open
	actClose                 // end the open session
	actReopen                // open while already open
)

type transition struct {
	act  action
	next state
}

// transitions is keyed by the current state and whether the incoming event
// opens a session.
var transitions = map[state]map[bool]transition{
	idle: {
		true:  {actOpen, active},
		false: {actOrphan, idle},
	},
	active: {
		true:  {actReopen, active},
		false: {actClose, idle},
	},
}

type reconstructor struct {
	logger *slog.Logger
	open   event.Event
	res    Result
}

// Reconstruct walks events once, pairing each Connect/Unlock with the next
// Disconnect/Lock. Anomalies are recorded as diagnostics and never stop the
// walk. events should be sorted (see event.Normalizer); intervals that would
// run backwards are discarded. An empty sequence fails with event.ErrEmptyLog.
func Reconstruct(events []event.Event, opts Options) (Result, error) {
	if len(events) == 0 {
		return Result{}, fmt.Errorf("%w: nothing to reconstruct", event.ErrEmptyLog)
	}
	r := &reconstructor{logger: opts.Logger}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	st := idle
	for _, ev := range events {
		if !ev.Kind.Valid() {
			continue
		}
		tr := transitions[st][ev.Kind.Opens()]
		switch tr.act {
		case actOpen:
			r.open = ev
		case actOrphan:
			r.anomaly(event.AnomalousTransition, event.CodeOrphanClose, ev,
				fmt.Sprintf("%s without an open session; ignored", ev.Kind))
		case actClose:
			r.emit(r.open, ev.Time, ev.Kind, false)
		case actReopen:
			r.anomaly(event.AnomalousTransition, event.CodeDuplicateOpen, ev,
				fmt.Sprintf("%s while the session opened at %s was still active; closing it here",
					ev.Kind, r.open.Time.Format("2006-01-02 15:04:05")))
			r.emit(r.open, ev.Time, ev.Kind, false)
			r.open = ev
		}
		st = tr.next
	}

	if st == active {
		end := events[len(events)-1].Time
		if opts.Unterminated == TruncateAtNow {
			now := time.Now
			if opts.Now != nil {
				now = opts.Now
			}
			end = now()
			if end.Before(r.open.Time) {
				end = r.open.Time
			}
		}
		r.anomaly(event.UnterminatedSession, event.CodeUnterminatedSession, r.open,
			fmt.Sprintf("session opened at %s has no closing event; truncated at %s",
				r.open.Time.Format("2006-01-02 15:04:05"), end.Format("2006-01-02 15:04:05")))
		r.emit(r.open, end, "", true)
	}
	return r.res, nil
}

// emit appends [open, end] unless it would have negative length.
func (r *reconstructor) emit(open event.Event, end time.Time, closedBy event.Kind, unterminated bool) {
	if end.Before(open.Time) {
		r.anomaly(event.AnomalousTransition, event.CodeNegativeInterval, open,
			fmt.Sprintf("interval %s .. %s ends before it starts; discarded",
				open.Time.Format("2006-01-02 15:04:05"), end.Format("2006-01-02 15:04:05")))
		return
	}
	r.res.Intervals = append(r.res.Intervals, Interval{
		Start:        open.Time,
		End:          end,
		OpenedBy:     open.Kind,
		ClosedBy:     closedBy,
		Unterminated: unterminated,
	})
}

func (r *reconstructor) anomaly(cat event.Category, code event.Code, ev event.Event, msg string) {
	r.res.Diagnostics = append(r.res.Diagnostics, event.Diagnostic{
		Category: cat,
		Code:     code,
		Message:  msg,
		Line:     ev.Line,
		Time:     ev.Time,
	})
	r.logger.Warn("session anomaly", "code", code, "line", ev.Line, "time", ev.Time, "reason", msg)
}
