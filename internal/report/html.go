package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/fakeyudi/worktime/internal/session"
)

// HTMLRenderer renders a standalone page with one timeline bar per day.
// Active spans are drawn green over the day's full width, unterminated ones
// yellow. Hovering a span shows its times.
type HTMLRenderer struct{}

type htmlDay struct {
	Summary  session.DaySummary
	Line     string
	NewWeek  bool
	Segments []htmlSegment
}

type htmlSegment struct {
	Left  float64
	Width float64
	Title string
	Open  bool
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"clock": Clock,
	"pct":   func(f float64) string { return fmt.Sprintf("%.3f", f) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; margin: 2em; }
  .warning { color: red; }
  .day { margin: 0.6em 0; }
  .bar { position: relative; height: 20px; background-color: lightgray; border: 1px solid gray; box-sizing: border-box; }
  .span { position: absolute; top: 0; height: 100%; background-color: lightgreen; box-sizing: border-box; border: 1px solid gray; }
  .span:hover { border: 2px solid red; }
  .span.open { background-color: yellow; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div>
  <h2>Global warnings</h2>
  <ul>
  {{- range .Report.Warnings}}
    <li class="warning">{{.}}</li>
  {{- end}}
  </ul>
</div>
<div>
  <h2>Report</h2>
  {{- range .Days}}
  {{- if .NewWeek}}
  <h2>NEW WEEK</h2>
  {{- end}}
  <div class="day">
    <div>{{.Line}}</div>
    <div class="bar">
    {{- range .Segments}}
      <div class="span{{if .Open}} open{{end}}" style="left: {{pct .Left}}%; width: {{pct .Width}}%" title="{{.Title}}"></div>
    {{- end}}
    </div>
    {{- if .Summary.Warnings}}
    <ul>
    {{- range .Summary.Warnings}}
      <li class="warning">{{.}}</li>
    {{- end}}
    </ul>
    {{- end}}
  </div>
  {{- end}}
  <p>Total: {{clock .Report.Total}} over {{len .Days}} day(s)</p>
</div>
</body>
</html>
`))

func (*HTMLRenderer) Render(r *Report) ([]byte, error) {
	b := r.Boundary()
	days := make([]htmlDay, len(r.Days))
	for i, d := range r.Days {
		days[i] = htmlDay{
			Summary: d,
			Line:    DayLine(d),
			NewWeek: NewWeek(r.Days, i),
		}
	}
	index := make(map[session.Date]int, len(days))
	for i, d := range days {
		index[d.Summary.Date] = i
	}
	for _, iv := range r.Intervals {
		b.Split(iv.Start, iv.End, func(d session.Date, from, to time.Time) {
			i, ok := index[d]
			if !ok {
				return
			}
			seg := segment(b, d, from, to)
			seg.Open = iv.Unterminated
			days[i].Segments = append(days[i].Segments, seg)
		})
	}

	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Title  string
		Report *Report
		Days   []htmlDay
	}{Title(r), r, days})
	if err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

// segment places [from, to] on day d's bar as percentages of the day's
// length, which is not always 24h across DST changes.
func segment(b session.Boundary, d session.Date, from, to time.Time) htmlSegment {
	dayStart := b.Start(d)
	dayLen := b.Start(d.AddDays(1)).Sub(dayStart)
	if dayLen <= 0 {
		dayLen = 24 * time.Hour
	}
	pos := func(t time.Time) float64 { return 100 * float64(t.Sub(dayStart)) / float64(dayLen) }
	loc := dayStart.Location()
	return htmlSegment{
		Left:  pos(from),
		Width: pos(to) - pos(from),
		Title: fmt.Sprintf("Duration: %s\nStart time: %s\nEnd time: %s",
			Clock(to.Sub(from)), from.In(loc).Format("15:04:05"), to.In(loc).Format("15:04:05")),
	}
}
