package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatHTML     = "html"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatHTML}

// RendererFor returns the renderer for format. "md" is accepted for
// markdown.
func RendererFor(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return &TextRenderer{}, nil
	case FormatMarkdown, "md":
		return &MarkdownRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatHTML:
		return &HTMLRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Extension returns the usual file extension for format.
func Extension(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "md":
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	}
	return ".txt"
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (*JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// TextRenderer renders the console layout: global warnings first, then one
// line per day with a separator before each new week.
type TextRenderer struct{}

func (*TextRenderer) Render(r *Report) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("Global warnings:\n")
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "  - %s\n", w)
	}
	sb.WriteString("\n")

	for i, day := range r.Days {
		if NewWeek(r.Days, i) {
			sb.WriteString("------- NEW WEEK -------\n")
		}
		sb.WriteString(DayLine(day))
		sb.WriteString("\n")
		if len(day.Warnings) > 0 {
			sb.WriteString("  Warnings:\n")
			for _, w := range day.Warnings {
				fmt.Fprintf(&sb, "    - %s\n", w)
			}
		}
	}
	if len(r.Days) > 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total: %s over %d day(s)\n", Clock(r.Total), r.DayCount())
	return []byte(sb.String()), nil
}

const (
	markdownSentinel = "<!-- worktime-report-version: 1 -->"
	markdownDataOpen = "<!-- worktime-data: "
	markdownDataEnd  = " -->"
)

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload so it can be parsed back losslessly.
type MarkdownRenderer struct{}

func (*MarkdownRenderer) Render(r *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(markdownSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", markdownDataOpen, encoded, markdownDataEnd)

	fmt.Fprintf(&sb, "# %s\n\n", Title(r))

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Total active: %s\n", Clock(r.Total))
	fmt.Fprintf(&sb, "- Days: %d\n", len(r.Days))
	fmt.Fprintf(&sb, "- Source: %s (%s, %d records)\n", r.Source.Path, r.Source.Format, r.Source.Records)
	fmt.Fprintf(&sb, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if r.Author != "" {
		fmt.Fprintf(&sb, "- Author: %s\n", r.Author)
	}
	sb.WriteString("\n")

	// ## Warnings
	sb.WriteString("## Warnings\n\n")
	if len(r.Warnings) == 0 {
		sb.WriteString("_No warnings._\n")
	} else {
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	sb.WriteString("\n")

	// ## Days
	sb.WriteString("## Days\n\n")
	if len(r.Days) == 0 {
		sb.WriteString("_No active time in range._\n")
	} else {
		sb.WriteString("| Day | First | Last | Span | Active | Break | Notes |\n")
		sb.WriteString("|-----|-------|------|------|--------|-------|-------|\n")
		for _, d := range r.Days {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
				DayLabel(d.Date),
				d.First.Format("15:04"),
				d.Last.Format("15:04"),
				Clock(d.Span),
				Clock(d.Active),
				Clock(d.Break),
				escapeCell(strings.Join(d.Warnings, "; ")),
			)
		}
	}
	sb.WriteString("\n")

	// ## Diagnostics
	sb.WriteString("## Diagnostics\n\n")
	if len(r.Diagnostics) == 0 {
		sb.WriteString("_No diagnostics._\n")
	} else {
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&sb, "- [%s] %s\n", d.Category, d.String())
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
