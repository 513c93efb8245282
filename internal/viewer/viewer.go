// Package viewer implements the exported snapshot browser TUI with record
// scrubbing, snapshot navigation, and per-field sparkline windows.
package viewer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/linemon/internal/chart"
	"github.com/luki/linemon/internal/export"
	"github.com/luki/linemon/internal/history"
	"github.com/luki/linemon/internal/layout"
	"github.com/luki/linemon/internal/sensor"
	"github.com/luki/linemon/internal/summary"
	"github.com/luki/linemon/internal/table"
)

const skip = 10

// Run launches the snapshot browser for the CSV exports in dir.
func Run(dir string) {
	files, err := export.ListFiles(dir)
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No exported snapshots found in %s\n", dir)
		os.Exit(1)
	}

	p := tea.NewProgram(
		initModel(files),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorHeading  = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCursor   = lipgloss.Color("214")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

type model struct {
	files   []string // snapshot paths, newest first
	fileIdx int
	records []sensor.Record
	metrics []summary.Metric
	cursor  int // selected record
	scroll  int
	width   int
	height  int
	err     error
}

func initModel(files []string) model {
	m := model{files: files}
	m.loadFile()
	return m
}

func (m *model) loadFile() {
	records, err := export.LoadFile(m.files[m.fileIdx])
	m.scroll = 0
	if err != nil {
		m.err = err
		m.records = nil
		m.metrics = nil
		m.cursor = 0
		return
	}
	m.err = nil
	m.records = records
	m.metrics = summary.Compute(records)
	m.seek(len(records) - 1)
}

// seek moves the record cursor to i, clamped to the snapshot.
func (m *model) seek(i int) {
	m.cursor = max(min(i, len(m.records)-1), 0)
}

// open switches to snapshot i if it exists.
func (m *model) open(i int) {
	if i < 0 || i >= len(m.files) || i == m.fileIdx {
		return
	}
	m.fileIdx = i
	m.loadFile()
}

// ── Init / Update ────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "left", "h":
			m.seek(m.cursor - 1)
		case "right", "l":
			m.seek(m.cursor + 1)
		case "shift+left", "H":
			m.seek(m.cursor - skip)
		case "shift+right", "L":
			m.seek(m.cursor + skip)
		case "home":
			m.seek(0)
		case "end":
			m.seek(len(m.records) - 1)

		case "[":
			m.open(m.fileIdx + 1)
		case "]":
			m.open(m.fileIdx - 1)

		case "up", "k":
			m.scroll = max(m.scroll-1, 0)
		case "down", "j":
			m.scroll++
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitle(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if len(m.records) == 0 {
		sections = append(sections, layout.Placeholder("No records in this snapshot.", contentWidth))
	} else {
		sections = append(sections, m.renderCursorInfo(contentWidth))
		sections = append(sections, m.renderPanel(contentWidth))
		sections = append(sections, table.Render(m.records[m.cursor:m.cursor+1], contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return layout.Window(content, m.scroll, m.height)
}

func (m model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("SNAPSHOT BROWSER")

	name := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(filepath.Base(m.files[m.fileIdx]))

	nav := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  [ %d/%d ]", m.fileIdx+1, len(m.files)))

	dataInfo := ""
	if len(m.records) > 0 {
		dataInfo = lipgloss.NewStyle().
			Foreground(colorDim).
			Render(fmt.Sprintf("  (%d records, %d anomalies)",
				len(m.records), summary.CountAnomalies(m.records)))
	}

	return layout.Bar(logo, name+nav+dataInfo, width, colorTitleBg)
}

func (m model) renderCursorInfo(width int) string {
	id := lipgloss.NewStyle().
		Foreground(colorCursor).
		Bold(true).
		Render(layout.Truncate(m.records[m.cursor].ID, 36))

	pos := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.records)))

	barWidth := width - 50
	if barWidth < 10 {
		barWidth = 10
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render("  " + id + pos + "  " + m.renderScrubber(barWidth))
}

// renderScrubber draws the cursor position over the snapshot, with a tick
// wherever an anomaly record falls.
func (m model) renderScrubber(width int) string {
	n := len(m.records)
	if n == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if n > 1 && width > 1 {
		pos = m.cursor * (width - 1) / (n - 1)
	}
	if pos >= width {
		pos = width - 1
	}

	var sb strings.Builder
	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	curS := lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	tickS := lipgloss.NewStyle().Foreground(colorCrit)

	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
			continue
		}
		idx := 0
		if n > 1 && width > 1 {
			idx = i * (n - 1) / (width - 1)
		}
		if m.records[idx].IsAnomaly() {
			sb.WriteString(tickS.Render("│"))
			continue
		}
		sb.WriteString(dimS.Render("─"))
	}

	return sb.String()
}

func (m model) renderPanel(totalWidth int) string {
	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	labelW := 14
	valW := 12
	chartWidth := innerWidth - labelW - valW - 40
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorHeading).Render("Fields")}

	cur := m.records[m.cursor]
	for _, mt := range m.metrics {
		f := mt.Field
		window := buildSparkWindow(m.records, f, m.cursor, chartWidth)
		lo, hi := chart.Range(window)
		spark := chart.RenderSparkline(window, chartWidth, lo, hi)

		frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
		frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

		label := lipgloss.NewStyle().
			Foreground(colorLabel).
			Bold(true).
			Width(labelW).
			Render(f.Title())

		value := lipgloss.NewStyle().
			Width(valW).
			Align(lipgloss.Right).
			Render(fmt.Sprintf("%.2f%s", f.Value(cur), unitSuffix(f)))

		stats := dimS.Render("avg") + valS.Render(fmt.Sprintf("%8.2f", mt.Avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%8.2f", lowest(m.records, f))) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%8.2f", mt.Max))

		rows = append(rows, label+" "+value+" "+frameL+spark+frameR+" "+stats)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m model) renderFooter(width int) string {
	keys := layout.Keys("q", "quit", "h/l", "scrub", "H/L", fmt.Sprintf("skip %d", skip),
		"home/end", "jump", "[/]", "snapshot", "j/k", "scroll")
	return layout.Bar(keys, "", width, colorFooterBg)
}

// ── Helpers ──────────────────────────────────────────────────────────

// buildSparkWindow returns the values of f for up to width records ending
// at the cursor.
func buildSparkWindow(records []sensor.Record, f sensor.Field, cursor, width int) []history.Point {
	if len(records) == 0 || width <= 0 {
		return nil
	}
	start := cursor - width + 1
	if start < 0 {
		start = 0
	}
	pts := make([]history.Point, 0, cursor-start+1)
	for _, r := range records[start : cursor+1] {
		pts = append(pts, history.Point{Value: f.Value(r)})
	}
	return pts
}

func lowest(records []sensor.Record, f sensor.Field) float64 {
	lo := math.Inf(1)
	for _, r := range records {
		lo = math.Min(lo, f.Value(r))
	}
	return lo
}

func unitSuffix(f sensor.Field) string {
	if f.Unit() == "" {
		return ""
	}
	return " " + f.Unit()
}
