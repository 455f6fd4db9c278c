package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLayouts are tried in order when parsing a record timestamp. Layouts
// without a zone are interpreted in the normalizer's location.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"1/2/2006 3:04:05 PM", // Event Viewer export
	"01/02/2006 15:04:05",
}

// ParseTimestamp parses s against layouts in loc. An all-digit value is read
// as Unix seconds.
func ParseTimestamp(s string, layouts []string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	if isDigits(s) {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch timestamp %q: %w", s, err)
		}
		return time.Unix(sec, 0).In(loc), nil
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
