package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/fakeyudi/worktime/internal/event"
)

// EventViewerExport reads a tab-separated export from the Windows Event
// Viewer ("Save All Events As" > Text). Columns:
//
//	Level  Date and Time  Source  Event ID  Task Category
//
// The event ID becomes the label; the vocabulary maps IDs such as 4800/4801
// to Lock/Unlock.
type EventViewerExport struct{}

const (
	evColTime = 1
	evColID   = 3
)

func (*EventViewerExport) Name() string { return FormatEventViewer }

func (*EventViewerExport) Read(ctx context.Context, r io.Reader) ([]event.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var recs []event.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				// Keep the line so it is reported as malformed.
				recs = append(recs, event.RawRecord{Line: pe.StartLine, Source: FormatEventViewer})
				continue
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], "\ufeff")
		}
		if isEventViewerHeader(row) {
			continue
		}
		rec := event.RawRecord{Line: line, Source: FormatEventViewer}
		if len(row) > evColTime {
			rec.Timestamp = strings.TrimSpace(row[evColTime])
		}
		if len(row) > evColID {
			rec.Label = strings.TrimSpace(row[evColID])
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func isEventViewerHeader(row []string) bool {
	return len(row) > evColID && strings.EqualFold(strings.TrimSpace(row[evColID]), "Event ID")
}
