// Package source reads workstation event logs in the shapes they have been
// recorded in over time and turns each into raw event records. Adapters know
// nothing about event semantics beyond locating a timestamp and a label.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fakeyudi/worktime/internal/event"
)

// Source reads one log format.
type Source interface {
	Name() string
	// Read returns every record found in r, in source order. Unusable lines
	// are still returned (with empty fields) so the normalizer can report them.
	Read(ctx context.Context, r io.Reader) ([]event.RawRecord, error)
}

const (
	FormatText          = "text"
	FormatEventViewer   = "eventviewer"
	FormatActivityWatch = "activitywatch"
)

var registry = map[string]Source{
	FormatText:          &TextLog{},
	FormatEventViewer:   &EventViewerExport{},
	FormatActivityWatch: &ActivityWatchExport{},
}

// Lookup returns the adapter registered under name.
func Lookup(name string) (Source, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered formats alphabetically.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Detect picks an adapter from the file extension: .tsv and .csv are Event
// Viewer exports, .json is an ActivityWatch export, anything else is a plain
// text log.
func Detect(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".csv":
		return registry[FormatEventViewer]
	case ".json":
		return registry[FormatActivityWatch]
	default:
		return registry[FormatText]
	}
}

// sniffSize bounds how much of a file Sniff looks at.
const sniffSize = 4096

// Sniff refines an extension-based guess of text by looking at the first
// content line of head. Event Viewer's "Save as Text" writes tab-separated
// .txt files, recognised by their header row or by five or more tab-separated
// columns.
func Sniff(guess Source, head []byte) Source {
	if guess.Name() != FormatText {
		return guess
	}
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimPrefix(strings.TrimRight(line, "\r"), "\ufeff")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if strings.HasPrefix(line, "Level\tDate and Time") || len(strings.Split(line, "\t")) >= 5 {
			return registry[FormatEventViewer]
		}
		break
	}
	return guess
}

// ReadFile opens path and reads it with src, or with the detected adapter
// when src is nil. The adapter actually used is returned with the records.
func ReadFile(ctx context.Context, path string, src Source) ([]event.RawRecord, Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("log file not found: %s", path)
		}
		return nil, nil, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniffSize)
	if src == nil {
		head, _ := br.Peek(sniffSize)
		src = Sniff(Detect(path), head)
	}

	recs, err := src.Read(ctx, br)
	if err != nil {
		return nil, src, fmt.Errorf("reading %s log %s: %w", src.Name(), path, err)
	}
	return recs, src, nil
}
