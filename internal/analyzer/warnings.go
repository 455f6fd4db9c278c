package analyzer

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/session"
)

// globalWarnings condenses the run's diagnostics into the lines printed at
// the top of every report.
func globalWarnings(diags []event.Diagnostic, res session.Result) []string {
	var out []string

	var dropped []string
	droppedTotal := 0
	counts := event.CountByCode(diags)
	for _, code := range []event.Code{event.CodeMissingField, event.CodeUnparseableTimestamp, event.CodeUnknownLabel} {
		if n := counts[code]; n > 0 {
			dropped = append(dropped, fmt.Sprintf("%s=%d", code, n))
			droppedTotal += n
		}
	}
	if droppedTotal > 0 {
		out = append(out, fmt.Sprintf("%d malformed record(s) dropped (%s)", droppedTotal, strings.Join(dropped, ", ")))
	}

	if n := counts[event.CodeOrphanClose]; n > 0 {
		out = append(out, fmt.Sprintf("%d close event(s) outside a session ignored", n))
	}
	if n := counts[event.CodeDuplicateOpen]; n > 0 {
		out = append(out, fmt.Sprintf("%d open event(s) inside an active session closed it early", n))
	}
	if n := counts[event.CodeNegativeInterval]; n > 0 {
		out = append(out, fmt.Sprintf("%d interval(s) ending before they start dropped", n))
	}
	if iv, ok := res.Open(); ok {
		out = append(out, fmt.Sprintf("log ends inside a session opened at %s; counted until %s",
			iv.Start.Format("2006-01-02 15:04"), iv.End.Format("2006-01-02 15:04")))
	}
	return out
}
