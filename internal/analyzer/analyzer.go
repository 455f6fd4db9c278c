// Package analyzer runs the full pipeline over one log file: read, normalize,
// reconstruct sessions, aggregate per day and assemble a report.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/report"
	"github.com/fakeyudi/worktime/internal/session"
	"github.com/fakeyudi/worktime/internal/source"
)

// Options configure one run. The zero value reads nothing; LogPath is
// required by Analyze.
type Options struct {
	LogPath string
	// Format names a source adapter; empty detects it from LogPath.
	Format       string
	Synonyms     map[string]string
	Location     *time.Location
	DayBoundary  string
	Thresholds   session.Thresholds
	Unterminated session.UnterminatedPolicy
	// Since and Until restrict the reported days, inclusive. Zero means
	// unbounded.
	Since  session.Date
	Until  session.Date
	Author string
	Now    func() time.Time
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Analyze reads opts.LogPath and builds its report. A log without a single
// valid event fails with an error matching event.ErrEmptyLog.
func Analyze(ctx context.Context, opts Options) (*report.Report, error) {
	var src source.Source
	if opts.Format != "" {
		s, err := source.Lookup(opts.Format)
		if err != nil {
			return nil, err
		}
		src = s
	}

	records, src, err := source.ReadFile(ctx, opts.LogPath, src)
	if err != nil {
		return nil, err
	}
	opts.logger().Debug("read event log", "path", opts.LogPath, "format", src.Name(), "records", len(records))

	r, err := Build(records, opts)
	if err != nil {
		if errors.Is(err, event.ErrEmptyLog) {
			return nil, fmt.Errorf("%w: no valid events in %s", event.ErrEmptyLog, opts.LogPath)
		}
		return nil, err
	}
	r.Source.Path = opts.LogPath
	r.Source.Format = src.Name()
	return r, nil
}

// Build runs the pipeline over records already read from a source.
func Build(records []event.RawRecord, opts Options) (*report.Report, error) {
	logger := opts.logger()
	loc := opts.location()

	vocab := event.DefaultVocabulary()
	if len(opts.Synonyms) > 0 {
		v, err := event.NewVocabulary(opts.Synonyms)
		if err != nil {
			return nil, err
		}
		vocab = v
	}
	boundary, err := session.ParseBoundary(opts.DayBoundary, loc)
	if err != nil {
		return nil, err
	}

	norm := event.Normalizer{Vocabulary: vocab, Location: loc, Logger: logger}
	normalized, err := norm.Normalize(records)
	if err != nil {
		return nil, err
	}

	res, err := session.Reconstruct(normalized.Events, session.Options{
		Unterminated: opts.Unterminated,
		Now:          opts.Now,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	diags := make([]event.Diagnostic, 0, len(normalized.Diagnostics)+len(res.Diagnostics))
	diags = append(diags, normalized.Diagnostics...)
	diags = append(diags, res.Diagnostics...)

	days := filterDays(session.Summarize(res.Intervals, boundary, opts.Thresholds), opts.Since, opts.Until)
	intervals := filterIntervals(res.Intervals, boundary, opts.Since, opts.Until)

	r := &report.Report{
		Version:     report.Version,
		RunID:       uuid.NewString(),
		GeneratedAt: opts.now(),
		Source: report.SourceMeta{
			Records: len(records),
			Events:  len(normalized.Events),
		},
		Location:    loc.String(),
		DayBoundary: boundary.String(),
		Author:      opts.Author,
		Since:       opts.Since,
		Until:       opts.Until,
		Days:        days,
		Totals:      session.Totals(days),
		Intervals:   intervals,
		Diagnostics: diags,
		Warnings:    globalWarnings(diags, res),
	}
	for _, d := range days {
		r.Total += d.Active
	}

	logger.Info("analysis complete",
		"run_id", r.RunID,
		"events", len(normalized.Events),
		"intervals", len(res.Intervals),
		"days", len(days),
		"diagnostics", len(diags),
		"total", r.Total.String(),
	)
	return r, nil
}

func inRange(d, since, until session.Date) bool {
	if !since.IsZero() && d.Compare(since) < 0 {
		return false
	}
	if !until.IsZero() && d.Compare(until) > 0 {
		return false
	}
	return true
}

func filterDays(days []session.DaySummary, since, until session.Date) []session.DaySummary {
	if since.IsZero() && until.IsZero() {
		return days
	}
	out := days[:0:0]
	for _, d := range days {
		if inRange(d.Date, since, until) {
			out = append(out, d)
		}
	}
	return out
}

// filterIntervals keeps the intervals that overlap any day in range.
func filterIntervals(ivs []session.Interval, b session.Boundary, since, until session.Date) []session.Interval {
	if since.IsZero() && until.IsZero() {
		return ivs
	}
	var out []session.Interval
	for _, iv := range ivs {
		keep := false
		b.Split(iv.Start, iv.End, func(d session.Date, _, _ time.Time) {
			keep = keep || inRange(d, since, until)
		})
		if keep {
			out = append(out, iv)
		}
	}
	return out
}
