// Package event defines the canonical lifecycle events a workstation log
// yields and the normalizer that turns raw log records into them.
package event

import (
	"fmt"
	"strings"
	"time"
)

// Kind is one of the four workstation lifecycle signals.
type Kind string

const (
	Connect    Kind = "Connect"
	Disconnect Kind = "Disconnect"
	Lock       Kind = "Lock"
	Unlock     Kind = "Unlock"
)

// Kinds lists every canonical kind in a stable order.
var Kinds = []Kind{Connect, Disconnect, Lock, Unlock}

// Opens reports whether the kind starts an active session.
func (k Kind) Opens() bool { return k == Connect || k == Unlock }

// Closes reports whether the kind ends an active session.
func (k Kind) Closes() bool { return k == Disconnect || k == Lock }

// Valid reports whether k is one of the canonical kinds.
func (k Kind) Valid() bool { return k.Opens() || k.Closes() }

func (k Kind) String() string { return string(k) }

// ParseKind matches a canonical kind name, ignoring case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q (want one of Connect, Disconnect, Lock, Unlock)", s)
}

// RawRecord is a single entry as read from an external log, before any
// validation. Line is the 1-based position in the source.
type RawRecord struct {
	Timestamp string `json:"timestamp"`
	Label     string `json:"label"`
	Line      int    `json:"line,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Event is a validated, timestamped lifecycle signal. Seq is the record's
// position in the input and breaks ties between equal timestamps; Line is
// the source line it came from.
type Event struct {
	Time  time.Time `json:"time"`
	Kind  Kind      `json:"kind"`
	Seq   int       `json:"seq"`
	Line  int       `json:"line,omitempty"`
	Label string    `json:"label,omitempty"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Time.Format(time.RFC3339), e.Kind)
}
