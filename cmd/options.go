package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fakeyudi/worktime/internal/analyzer"
	"github.com/fakeyudi/worktime/internal/session"
)

// runFlags are the analysis flags shared by report and status.
type runFlags struct {
	source      string
	since       string
	until       string
	dayBoundary string
	tz          string
	untilNow    bool
}

// options merges the config with flag overrides into analyzer options.
func (f runFlags) options(logPath string) (analyzer.Options, error) {
	c := GetConfig()
	if f.tz != "" {
		c.Timezone = f.tz
	}
	if f.dayBoundary != "" {
		c.DayBoundary = f.dayBoundary
	}
	if f.untilNow {
		c.Unterminated = string(session.TruncateAtNow)
	}

	loc, err := c.Location()
	if err != nil {
		return analyzer.Options{}, err
	}
	th, err := c.Thresholds()
	if err != nil {
		return analyzer.Options{}, err
	}
	policy, err := c.Policy()
	if err != nil {
		return analyzer.Options{}, err
	}

	opts := analyzer.Options{
		LogPath:      logPath,
		Format:       c.SourceFormat,
		Synonyms:     c.Synonyms,
		Location:     loc,
		DayBoundary:  c.DayBoundary,
		Thresholds:   th,
		Unterminated: policy,
		Author:       c.Author,
		Now:          time.Now,
		Logger:       slog.Default(),
	}
	if f.source != "" {
		opts.Format = f.source
	}
	if f.since != "" {
		if opts.Since, err = session.ParseDate(f.since); err != nil {
			return analyzer.Options{}, fmt.Errorf("--since: %w", err)
		}
	}
	if f.until != "" {
		if opts.Until, err = session.ParseDate(f.until); err != nil {
			return analyzer.Options{}, fmt.Errorf("--until: %w", err)
		}
	}
	if !opts.Since.IsZero() && !opts.Until.IsZero() && opts.Until.Compare(opts.Since) < 0 {
		return analyzer.Options{}, fmt.Errorf("--until %s is before --since %s", opts.Until, opts.Since)
	}
	return opts, nil
}
