package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Parser deserializes a rendered report back into a Report.
type Parser interface {
	Parse(data []byte) (*Report, error)
}

// ParserFor picks a parser from the file extension. Only the JSON and
// Markdown renderings carry the full report.
func ParserFor(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	}
	return nil, fmt.Errorf("cannot read %s: only .md and .json reports can be viewed", filepath.Base(path))
}

// JSONParser parses a JSON-encoded Report.
type JSONParser struct{}

func (*JSONParser) Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	return &r, nil
}

// MarkdownParser parses a Markdown-rendered Report by extracting the
// embedded base64 JSON payload from the sentinel comments.
type MarkdownParser struct{}

func (*MarkdownParser) Parse(data []byte) (*Report, error) {
	content := string(data)

	if !strings.Contains(content, markdownSentinel) {
		return nil, fmt.Errorf("not a valid worktime report: missing version sentinel")
	}

	start := strings.Index(content, markdownDataOpen)
	if start == -1 {
		return nil, fmt.Errorf("not a valid worktime report: missing data payload")
	}
	start += len(markdownDataOpen)
	end := strings.Index(content[start:], markdownDataEnd)
	if end == -1 {
		return nil, fmt.Errorf("not a valid worktime report: malformed data payload")
	}
	encoded := content[start : start+end]

	jsonBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("not a valid worktime report: corrupted base64 payload: %w", err)
	}

	var r Report
	if err := json.Unmarshal(jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("not a valid worktime report: failed to parse embedded JSON: %w", err)
	}
	return &r, nil
}
