package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/analyzer"
	"github.com/fakeyudi/worktime/internal/archive"
	"github.com/fakeyudi/worktime/internal/report"
)

var (
	reportFlags   runFlags
	reportFormat  string
	reportOut     string
	reportArchive bool
)

var reportCmd = &cobra.Command{
	Use:   "report [log]",
	Short: "Reconstruct work time from an event log and print a per-day report",
	Long: `Reads the event log (argument, log_path from the config, or the default
location), rebuilds active sessions and reports the time per day.

Records that cannot be used and out-of-order transitions are logged as
warnings on stderr and summarized at the top of the report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, err := logPathFor(args)
		if err != nil {
			return err
		}
		opts, err := reportFlags.options(logPath)
		if err != nil {
			return err
		}

		format := reportFormat
		if format == "" {
			format = GetConfig().DefaultFormat
		}
		renderer, err := report.RendererFor(format)
		if err != nil {
			return err
		}

		r, err := analyzer.Analyze(cmd.Context(), opts)
		if err != nil {
			return err
		}

		data, err := renderer.Render(r)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}

		if reportArchive {
			if err := archiveReport(cmd, r); err != nil {
				return err
			}
		}

		if reportOut == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		outPath := reportOut
		if filepath.Ext(outPath) == "" {
			outPath += report.Extension(format)
		}
		if !filepath.IsAbs(outPath) && GetConfig().OutputDir != "" {
			outPath = filepath.Join(GetConfig().OutputDir, outPath)
		}
		if err := report.WriteFile(outPath, data); err != nil {
			return err
		}
		cmd.Printf("Report written to %s\n", outPath)
		return nil
	},
}

func archiveReport(cmd *cobra.Command, r *report.Report) error {
	path, err := archivePath()
	if err != nil {
		return err
	}
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(cmd.Context(), r); err != nil {
		return fmt.Errorf("archiving report: %w", err)
	}
	cmd.PrintErrf("Archived run %s\n", r.RunID)
	return nil
}

// addRunFlags registers the analysis flags shared by report and status.
func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.source, "source", "", "log format: text, eventviewer, activitywatch (default: detect from extension)")
	cmd.Flags().StringVar(&f.dayBoundary, "day-boundary", "", "local time at which a day starts, HH:MM")
	cmd.Flags().StringVar(&f.tz, "tz", "", "IANA time zone for parsing and day splitting")
	cmd.Flags().BoolVar(&f.untilNow, "until-now", false, "count a session still open at the end of the log until now")
}

func init() {
	addRunFlags(reportCmd, &reportFlags)
	reportCmd.Flags().StringVar(&reportFlags.since, "since", "", "first day to report, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportFlags.until, "until", "", "last day to report, YYYY-MM-DD")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "output format: text, markdown, json, html (default from config)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to this file instead of stdout (extension added from the format when missing)")
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "also store the run in the local archive")
	rootCmd.AddCommand(reportCmd)
}
