// Package tui provides a Bubble Tea TUI for browsing work time reports.
package tui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/report"
	"github.com/fakeyudi/worktime/internal/session"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	weekStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Bold(true)

	kindMalformedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	kindAnomalyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	kindOpenStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)

	activeBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	openBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	idleBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	// Selected row in the Days list
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabDays
	tabIntervals
	tabDiagnostics
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{
	"Summary", "Days", "Intervals", "Diagnostics", "Timeline",
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	report    *report.Report
	boundary  session.Boundary
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	// Days tab: cursor position and expanded set
	dayCursor    int
	expandedDays map[int]bool
}

// New creates a new TUI model for the given report and source filename.
func New(r *report.Report, filename string) Model {
	return Model{
		report:       r,
		boundary:     r.Boundary(),
		filename:     filepath.Base(filename),
		sortAsc:      true,
		expandedDays: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabIntervals {
				m.sortAsc = !m.sortAsc
				m.rebuild(tabIntervals)
				m.viewports[tabIntervals].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabDays && m.dayCursor > 0 {
				m.dayCursor--
				m.rebuild(tabDays)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabDays && m.dayCursor < len(m.report.Days)-1 {
				m.dayCursor++
				m.rebuild(tabDays)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabDays && len(m.report.Days) > 0 {
				if m.expandedDays[m.dayCursor] {
					delete(m.expandedDays, m.dayCursor)
				} else {
					m.expandedDays[m.dayCursor] = true
				}
				m.rebuild(tabDays)
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  worktime  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-5 jump  q quit"
	switch m.activeTab {
	case tabIntervals:
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  s sort (" + dir + ")"
	case tabDays:
		hint += "  ↑/↓ select  enter expand/collapse"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := max(m.width-lipgloss.Width(hint)-len(pct)-2, 1)
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := max(m.height-3, 1)
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuild(t tabID) {
	m.viewports[t].SetContent(m.renderTab(t))
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabDays:
		return m.renderDays()
	case tabIntervals:
		return m.renderIntervals()
	case tabDiagnostics:
		return m.renderDiagnostics()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func (m *Model) renderSummary() string {
	r := m.report
	var sb strings.Builder
	sb.WriteString(heading(report.Title(r)))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Total active:", report.Clock(r.Total))
	row("Days:", fmt.Sprintf("%d", len(r.Days)))
	if n := len(r.Days); n > 0 {
		row("Average/day:", report.Clock(r.Total/time.Duration(n)))
	}
	row("Source:", fmt.Sprintf("%s (%s)", r.Source.Path, r.Source.Format))
	row("Records:", fmt.Sprintf("%d read, %d valid events", r.Source.Records, r.Source.Events))
	row("Day starts:", r.DayBoundary+" "+r.Location)
	row("Generated:", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if r.Author != "" {
		row("Author:", r.Author)
	}
	if iv, ok := r.Open(); ok {
		row("Open session:", kindOpenStyle.Render("since "+iv.Start.Format("2006-01-02 15:04")))
	}

	sb.WriteString(heading("Warnings"))
	if len(r.Warnings) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, w := range r.Warnings {
		sb.WriteString(bullet(warningStyle.Render(w)))
	}
	return sb.String()
}

func (m *Model) renderDays() string {
	days := m.report.Days
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Days (%d)", len(days))))
	if len(days) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, d := range days {
		if report.NewWeek(days, i) {
			sb.WriteString(weekStyle.Render("  ── new week ──") + "\n")
		}
		toggle := dimStyle.Render("  ▶ ")
		if m.expandedDays[i] {
			toggle = dimStyle.Render("  ▼ ")
		}
		marker := "  "
		if len(d.Warnings) > 0 {
			marker = warningStyle.Render("! ")
		}
		row := fmt.Sprintf("%s%s%s  %s-%s  active %s  break %s",
			toggle, marker,
			report.DayLabel(d.Date),
			timeStyle.Render(d.First.Format("15:04")),
			timeStyle.Render(d.Last.Format("15:04")),
			report.Clock(d.Active),
			report.Clock(d.Break),
		)
		if i == m.dayCursor {
			row = selectedRowStyle.Width(max(m.width-2, 1)).Render(row)
		}
		sb.WriteString(row + "\n")

		if m.expandedDays[i] {
			sb.WriteString(m.renderDayDetail(d))
		}
	}
	return sb.String()
}

// renderDayDetail lists the pieces of intervals that fall on d, then its
// warnings.
func (m *Model) renderDayDetail(d session.DaySummary) string {
	var sb strings.Builder
	for _, iv := range m.report.Intervals {
		m.boundary.Split(iv.Start, iv.End, func(day session.Date, from, to time.Time) {
			if day != d.Date {
				return
			}
			loc := m.boundary.Start(day).Location()
			line := fmt.Sprintf("%s → %s  %s", from.In(loc).Format("15:04:05"), to.In(loc).Format("15:04:05"), report.Clock(to.Sub(from)))
			if iv.Unterminated {
				line += "  " + kindOpenStyle.Render("open")
			}
			sb.WriteString("        " + dimStyle.Render(line) + "\n")
		})
	}
	for _, w := range d.Warnings {
		sb.WriteString("        " + warningStyle.Render("! "+w) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m *Model) renderIntervals() string {
	var sb strings.Builder
	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Intervals (%d, %s)", len(m.report.Intervals), dir)))
	if len(m.report.Intervals) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}

	ivs := slices.Clone(m.report.Intervals)
	slices.SortStableFunc(ivs, func(a, b session.Interval) int {
		if m.sortAsc {
			return a.Start.Compare(b.Start)
		}
		return b.Start.Compare(a.Start)
	})
	for _, iv := range ivs {
		closed := string(iv.ClosedBy)
		if iv.Unterminated {
			closed = kindOpenStyle.Render("open")
		}
		sb.WriteString(fmt.Sprintf("  %s → %s  %9s  %s/%s\n",
			timeStyle.Render(iv.Start.Format("2006-01-02 15:04:05")),
			timeStyle.Render(iv.End.Format("15:04:05")),
			report.Clock(iv.Duration()),
			iv.OpenedBy, closed,
		))
	}
	return sb.String()
}

func (m *Model) renderDiagnostics() string {
	diags := m.report.Diagnostics
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Diagnostics (%d)", len(diags))))
	if len(diags) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, d := range diags {
		style := kindAnomalyStyle
		switch d.Category {
		case event.MalformedRecord:
			style = kindMalformedStyle
		case event.UnterminatedSession:
			style = kindOpenStyle
		}
		badge := style.Render(fmt.Sprintf("%-22s", d.Code))
		where := ""
		if d.Line > 0 {
			where = dimStyle.Render(fmt.Sprintf("line %d ", d.Line))
		}
		if !d.Time.IsZero() {
			where += timeStyle.Render(d.Time.Format("2006-01-02 15:04:05") + " ")
		}
		sb.WriteString("  " + badge + "  " + where + d.Message + "\n\n")
	}
	return sb.String()
}

// renderTimeline draws one bar per day, one cell per slice of the day.
func (m *Model) renderTimeline() string {
	var sb strings.Builder
	sb.WriteString(heading("Timeline"))
	days := m.report.Days
	if len(days) == 0 {
		sb.WriteString(dimStyle.Render("  (no active time)") + "\n")
		return sb.String()
	}

	cells := max(m.width-32, 24)
	for i, d := range days {
		if report.NewWeek(days, i) && i > 0 {
			sb.WriteString("\n")
		}
		bar := timelineCells(m.report.Intervals, m.boundary, d.Date, cells)
		var line strings.Builder
		for _, c := range bar {
			switch c {
			case cellActive:
				line.WriteString(activeBarStyle.Render("█"))
			case cellOpen:
				line.WriteString(openBarStyle.Render("█"))
			default:
				line.WriteString(idleBarStyle.Render("░"))
			}
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", report.DayLabel(d.Date), line.String(), report.Clock(d.Active)))
	}
	sb.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  each cell ≈ %s starting %s", (24*time.Hour/time.Duration(cells)).Round(time.Minute), m.boundary)) + "\n")
	return sb.String()
}

type cell int

const (
	cellIdle cell = iota
	cellActive
	cellOpen
)

// timelineCells marks each of n equal slices of day d that overlaps an
// interval.
func timelineCells(ivs []session.Interval, b session.Boundary, d session.Date, n int) []cell {
	out := make([]cell, n)
	start := b.Start(d)
	length := b.Start(d.AddDays(1)).Sub(start)
	if length <= 0 || n <= 0 {
		return out
	}
	for _, iv := range ivs {
		b.Split(iv.Start, iv.End, func(day session.Date, from, to time.Time) {
			if day != d {
				return
			}
			lo := int(int64(from.Sub(start)) * int64(n) / int64(length))
			hi := int((int64(to.Sub(start))*int64(n) + int64(length) - 1) / int64(length))
			lo, hi = max(lo, 0), min(max(hi, lo+1), n)
			c := cellActive
			if iv.Unterminated {
				c = cellOpen
			}
			for i := lo; i < hi; i++ {
				out[i] = c
			}
		})
	}
	return out
}

// Run starts the TUI for the given report.
func Run(r *report.Report, filename string) error {
	p := tea.NewProgram(New(r, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
