package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/source"
)

var (
	recordAt  string
	recordLog string
)

var recordCmd = &cobra.Command{
	Use:   "record <event>",
	Short: "Append an event (connect, disconnect, lock, unlock) to the text log",
	Long: `Appends one event to the plain text log. Intended to be wired to the
operating system's session hooks, for example a Windows scheduled task on
workstation lock, or a systemd-logind / screensaver hook on Linux.

Any label known to the vocabulary is accepted, including configured synonyms
and Windows event IDs; the canonical event name is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		if c.SourceFormat != "" && c.SourceFormat != source.FormatText {
			return fmt.Errorf("record writes text logs, but source_format is %q", c.SourceFormat)
		}

		vocab, err := event.NewVocabulary(c.Synonyms)
		if err != nil {
			return err
		}
		kind, ok := vocab.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown event %q (want one of connect, disconnect, lock, unlock)", args[0])
		}

		loc, err := c.Location()
		if err != nil {
			return err
		}
		at := time.Now().In(loc)
		if recordAt != "" {
			if at, err = event.ParseTimestamp(recordAt, nil, loc); err != nil {
				return fmt.Errorf("--at: %w", err)
			}
		}

		path := recordLog
		if path == "" {
			if path, err = logPathFor(nil); err != nil {
				return err
			}
		}
		if err := source.Append(path, at, kind.String()); err != nil {
			return err
		}
		cmd.Printf("Recorded %s at %s in %s\n", kind, at.Format(time.RFC3339), path)
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordAt, "at", "", "event time (default now), e.g. 2024-03-04T09:00:00+01:00")
	recordCmd.Flags().StringVar(&recordLog, "log", "", "text log to append to (default log_path)")
	rootCmd.AddCommand(recordCmd)
}
