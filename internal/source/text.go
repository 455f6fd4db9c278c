package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/event"
)

// TextLog reads the plain lifecycle log written by scheduled tasks: one
// event per line as "<timestamp><TAB><label>", or whitespace separated when
// no tab is present. Blank lines and lines starting with '#' are skipped.
type TextLog struct{}

func (*TextLog) Name() string { return FormatText }

func (*TextLog) Read(ctx context.Context, r io.Reader) ([]event.RawRecord, error) {
	var recs []event.RawRecord
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ts, label := splitTextLine(text)
		recs = append(recs, event.RawRecord{
			Timestamp: ts,
			Label:     label,
			Line:      line,
			Source:    FormatText,
		})
	}
	return recs, scanner.Err()
}

// splitTextLine separates the timestamp from the label. Without a tab the
// timestamp is the first field, joined with the next one when that looks
// like a clock time, and with a trailing AM/PM marker.
func splitTextLine(text string) (ts, label string) {
	if i := strings.IndexByte(text, '\t'); i >= 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	}
	fields := strings.Fields(text)
	n := 1
	if len(fields) > 1 && strings.Contains(fields[1], ":") {
		n = 2
		if len(fields) > 2 && isMeridiem(fields[2]) {
			n = 3
		}
	}
	if n > len(fields) {
		n = len(fields)
	}
	return strings.Join(fields[:n], " "), strings.Join(fields[n:], " ")
}

func isMeridiem(s string) bool {
	return strings.EqualFold(s, "AM") || strings.EqualFold(s, "PM")
}

// DefaultLogPath returns the text log location:
// $XDG_DATA_HOME/worktime/events.log or ~/.local/share/worktime/events.log.
func DefaultLogPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "worktime", "events.log"), nil
}

// WriteRecord writes one text-log line for label at t.
func WriteRecord(w io.Writer, t time.Time, label string) error {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return fmt.Errorf("empty event label")
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", t.Format(time.RFC3339), label)
	return err
}

// Append adds one line to the text log at path, creating it if needed.
func Append(path string, t time.Time, label string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	if err := WriteRecord(f, t, label); err != nil {
		f.Close()
		return fmt.Errorf("appending to event log: %w", err)
	}
	return f.Close()
}
