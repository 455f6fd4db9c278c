package event

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Normalizer validates raw records and orders them into an Event sequence.
// The zero value uses the default vocabulary, layouts and the local zone.
type Normalizer struct {
	Vocabulary Vocabulary
	Location   *time.Location
	Layouts    []string
	Logger     *slog.Logger
}

// Normalized is the output of a normalization pass.
type Normalized struct {
	Events      []Event
	Diagnostics []Diagnostic
}

// Normalize drops malformed records with a diagnostic each and returns the
// rest sorted by time. Records with equal timestamps keep their input order.
// It fails only with ErrEmptyLog, and still returns the diagnostics then.
func (n *Normalizer) Normalize(records []RawRecord) (Normalized, error) {
	vocab := n.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out Normalized
	out.Events = make([]Event, 0, len(records))

	drop := func(rec RawRecord, line int, code Code, msg string) {
		r := rec
		d := Diagnostic{
			Category: MalformedRecord,
			Code:     code,
			Message:  msg,
			Line:     line,
			Record:   &r,
		}
		out.Diagnostics = append(out.Diagnostics, d)
		logger.Warn("dropping log record", "code", code, "line", line, "reason", msg)
	}

	for i, rec := range records {
		line := rec.Line
		if line <= 0 {
			line = i + 1
		}
		ts := strings.TrimSpace(rec.Timestamp)
		label := strings.TrimSpace(rec.Label)
		switch {
		case ts == "":
			drop(rec, line, CodeMissingField, "record has no timestamp")
			continue
		case label == "":
			drop(rec, line, CodeMissingField, "record has no event label")
			continue
		}

		t, err := ParseTimestamp(ts, n.Layouts, n.Location)
		if err != nil {
			drop(rec, line, CodeUnparseableTimestamp, err.Error())
			continue
		}
		kind, ok := vocab.Lookup(label)
		if !ok {
			drop(rec, line, CodeUnknownLabel, fmt.Sprintf("unrecognized event label %q", label))
			continue
		}
		out.Events = append(out.Events, Event{Time: t, Kind: kind, Seq: i, Line: line, Label: label})
	}

	slices.SortStableFunc(out.Events, func(a, b Event) int {
		return a.Time.Compare(b.Time)
	})

	if len(out.Events) == 0 {
		return out, fmt.Errorf("%w: no valid events (%d records dropped)", ErrEmptyLog, len(records))
	}
	return out, nil
}
