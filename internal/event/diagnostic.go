package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyLog is returned when no valid event survives normalization. It is
// the only fatal condition of a run.
var ErrEmptyLog = errors.New("empty log")

// Category groups diagnostics by how the run recovered from them.
type Category string

const (
	// MalformedRecord: a record was dropped.
	MalformedRecord Category = "MalformedRecord"
	// AnomalousTransition: an event broke open/close alternation.
	AnomalousTransition Category = "AnomalousTransition"
	// UnterminatedSession: the log ended inside an open session.
	UnterminatedSession Category = "UnterminatedSession"
)

// Code is the machine-readable reason for a diagnostic.
type Code string

const (
	CodeMissingField         Code = "missing_field"
	CodeUnparseableTimestamp Code = "unparseable_timestamp"
	CodeUnknownLabel         Code = "unknown_label"
	CodeOrphanClose          Code = "orphan_close"
	CodeDuplicateOpen        Code = "duplicate_open"
	CodeNegativeInterval     Code = "negative_interval"
	CodeUnterminatedSession  Code = "unterminated_session"
)

// Diagnostic is a non-fatal warning raised while processing a log.
type Diagnostic struct {
	Category Category   `json:"category"`
	Code     Code       `json:"code"`
	Message  string     `json:"message"`
	Line     int        `json:"line,omitempty"`
	Time     time.Time  `json:"time,omitzero"`
	Record   *RawRecord `json:"record,omitempty"`
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Code))
	if d.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", d.Line)
	}
	if !d.Time.IsZero() {
		fmt.Fprintf(&sb, " at %s", d.Time.Format("2006-01-02 15:04:05"))
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// CountByCode tallies diagnostics per code.
func CountByCode(diags []Diagnostic) map[Code]int {
	counts := make(map[Code]int, len(diags))
	for _, d := range diags {
		counts[d.Code]++
	}
	return counts
}
