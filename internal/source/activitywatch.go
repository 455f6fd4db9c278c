package source

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/valyala/fastjson"

	"github.com/fakeyudi/worktime/internal/event"
)

// ActivityWatchExport reads an ActivityWatch export. Both the full export
// ({"buckets": {"<id>": {"events": [...]}}}) and a bare event array are
// accepted. "not-afk" events are merged into non-overlapping active spans,
// each emitted as an unlock at its start and a lock at its end; "afk" events
// are skipped.
type ActivityWatchExport struct{}

const (
	awStatusActive = "not-afk"
	awLabelOpen    = "unlock"
	awLabelClose   = "lock"
)

func (*ActivityWatchExport) Name() string { return FormatActivityWatch }

func (a *ActivityWatchExport) Read(ctx context.Context, r io.Reader) ([]event.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid ActivityWatch export: %w", err)
	}

	var (
		spans []awSpan
		recs  []event.RawRecord
	)
	n := 0
	visit := func(events []*fastjson.Value) error {
		for _, ev := range events {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
			sp, rec, ok := afkSpan(ev, n)
			switch {
			case ok:
				spans = append(spans, sp)
			case rec != nil:
				recs = append(recs, *rec)
			}
		}
		return nil
	}

	switch root.Type() {
	case fastjson.TypeArray:
		err = visit(root.GetArray())
	case fastjson.TypeObject:
		if buckets := root.GetObject("buckets"); buckets != nil {
			buckets.Visit(func(_ []byte, b *fastjson.Value) {
				if err == nil {
					err = visit(b.GetArray("events"))
				}
			})
		} else {
			err = visit(root.GetArray("events"))
		}
	default:
		return nil, fmt.Errorf("invalid ActivityWatch export: unexpected %s at top level", root.Type())
	}
	if err != nil {
		return nil, err
	}
	for _, sp := range mergeSpans(spans) {
		recs = append(recs, sp.records()...)
	}
	return recs, nil
}

// awSpan is one active period reported by the afk watcher.
type awSpan struct {
	start, end time.Time
	line       int
}

// afkSpan extracts the active period of one afk-watcher event. Events that
// are not "not-afk" yield nothing; a "not-afk" event with an unparseable
// timestamp yields a lone open record so the normalizer reports it.
func afkSpan(ev *fastjson.Value, line int) (awSpan, *event.RawRecord, bool) {
	status := string(ev.GetStringBytes("data", "status"))
	if status != awStatusActive {
		return awSpan{}, nil, false
	}
	ts := string(ev.GetStringBytes("timestamp"))
	start, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return awSpan{}, &event.RawRecord{Timestamp: ts, Label: awLabelOpen, Line: line, Source: FormatActivityWatch}, false
	}
	dur := time.Duration(ev.GetFloat64("duration") * float64(time.Second))
	if dur < 0 {
		dur = 0
	}
	return awSpan{start: start, end: start.Add(dur), line: line}, nil, true
}

// mergeSpans sorts spans by start and unions the ones that overlap or touch.
// Exports list events newest first and neighbouring spans share endpoints.
func mergeSpans(spans []awSpan) []awSpan {
	if len(spans) == 0 {
		return nil
	}
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, func(a, b awSpan) int { return a.start.Compare(b.start) })

	merged := []awSpan{sorted[0]}
	for _, sp := range sorted[1:] {
		last := &merged[len(merged)-1]
		if sp.start.After(last.end) {
			merged = append(merged, sp)
			continue
		}
		if sp.end.After(last.end) {
			last.end = sp.end
		}
	}
	return merged
}

func (sp awSpan) records() []event.RawRecord {
	return []event.RawRecord{
		{Timestamp: sp.start.Format(time.RFC3339Nano), Label: awLabelOpen, Line: sp.line, Source: FormatActivityWatch},
		{Timestamp: sp.end.Format(time.RFC3339Nano), Label: awLabelClose, Line: sp.line, Source: FormatActivityWatch},
	}
}
