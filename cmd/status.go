package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/analyzer"
	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/report"
	"github.com/fakeyudi/worktime/internal/session"
)

var statusFlags runFlags

var statusCmd = &cobra.Command{
	Use:   "status [log]",
	Short: "Show whether a session is open and today's active time",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, err := logPathFor(args)
		if err != nil {
			return err
		}
		if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
			cmd.Printf("No events recorded yet (%s)\n", logPath)
			return nil
		}

		// An open session is counted until now.
		statusFlags.untilNow = true
		opts, err := statusFlags.options(logPath)
		if err != nil {
			return err
		}
		now := opts.Now()
		opts.Now = func() time.Time { return now }

		r, err := analyzer.Analyze(cmd.Context(), opts)
		if errors.Is(err, event.ErrEmptyLog) {
			cmd.Printf("No events recorded yet (%s)\n", logPath)
			return nil
		}
		if err != nil {
			return err
		}

		if iv, ok := r.Open(); ok {
			cmd.Printf("Active since %s (%s)\n", iv.Start.Format("2006-01-02 15:04"), report.Clock(now.Sub(iv.Start)))
		} else if n := len(r.Intervals); n > 0 {
			cmd.Printf("Idle since %s\n", r.Intervals[n-1].End.Format("2006-01-02 15:04"))
		} else {
			cmd.Println("Idle")
		}

		today := r.Boundary().DayOf(now)
		cmd.Printf("Today (%s): %s\n", today, report.Clock(activeOn(r.Days, today)))
		return nil
	},
}

func activeOn(days []session.DaySummary, d session.Date) time.Duration {
	for _, s := range days {
		if s.Date == d {
			return s.Active
		}
	}
	return 0
}

func init() {
	addRunFlags(statusCmd, &statusFlags)
	rootCmd.AddCommand(statusCmd)
}
