package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/linemon/internal/chart"
	"github.com/luki/linemon/internal/layout"
	"github.com/luki/linemon/internal/sensor"
	"github.com/luki/linemon/internal/summary"
	"github.com/luki/linemon/internal/table"
)

const sidebarWidth = 30

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorFocus    = lipgloss.Color("51")
	colorHeading  = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorInfo     = lipgloss.Color("117")
	colorCrit     = lipgloss.Color("196")
	colorBusy     = lipgloss.Color("220")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 60 {
		contentWidth = 60
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))
	sections = append(sections, lipgloss.NewStyle().
		Foreground(colorDim).
		Padding(0, 1).
		Render("Real-time monitoring of robotic arm sensors"))

	for _, n := range m.notices {
		sections = append(sections, renderNotice(n, contentWidth))
	}

	mainWidth := contentWidth - sidebarWidth - 1
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		" ",
		m.renderMain(mainWidth),
	)
	sections = append(sections, body)

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return layout.Window(content, m.scroll, m.height)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("IOT ASSEMBLY LINE MONITOR")

	dimS := lipgloss.NewStyle().Foreground(colorDim)

	var statusParts []string

	if m.fetched {
		statusParts = append(statusParts, dimS.Render(fmt.Sprintf("%d records", len(m.records))))
	}
	if !m.lastFetch.IsZero() {
		statusParts = append(statusParts, dimS.Render(m.lastFetch.Format("15:04:05")))
	}
	if m.cfg.RefreshInterval > 0 {
		statusParts = append(statusParts, dimS.Render("every "+m.cfg.RefreshInterval.String()))
	}
	if m.inflight > 0 {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorBusy).
			Bold(true).
			Render("SYNC"))
	}

	right := strings.Join(statusParts, dimS.Render(" │ "))
	return layout.Bar(logo, right, width, colorTitleBg)
}

func renderNotice(n notice, width int) string {
	style := lipgloss.NewStyle().Width(width).Padding(0, 1)
	switch n.kind {
	case noticeError:
		return style.Foreground(colorCrit).Bold(true).Render(" ERROR: " + n.text)
	case noticeInfo:
		return style.Foreground(colorInfo).Render(" " + n.text)
	default:
		return style.Foreground(colorOk).Render(" ✔ " + n.text)
	}
}

func (m Model) renderSidebar() string {
	border := colorBorder
	if m.form.Focused() {
		border = colorFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(sidebarWidth - 2).
		Render(m.form.View())
}

func (m Model) renderMain(width int) string {
	if !m.fetched {
		return layout.Placeholder("Waiting for sensor data...", width)
	}
	if len(m.records) == 0 {
		return layout.Placeholder("No data available.", width)
	}

	headingS := lipgloss.NewStyle().Bold(true).Foreground(colorHeading)

	var rows []string
	rows = append(rows, headingS.Render("Summary"))
	rows = append(rows, m.renderCards(width))
	rows = append(rows, "")
	rows = append(rows, headingS.Render("Sensor Data Table"))
	rows = append(rows, table.Render(m.records, width))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCards(width int) string {
	cardWidth := width / len(sensor.Fields())
	if cardWidth < 16 {
		cardWidth = 16
	}
	innerWidth := cardWidth - 4

	cards := make([]string, 0, len(m.metrics))
	for _, mt := range m.metrics {
		cards = append(cards, m.renderCard(mt, cardWidth, innerWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderCard(mt summary.Metric, cardWidth, innerWidth int) string {
	titleS := lipgloss.NewStyle().Foreground(colorDim)
	valueS := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)

	delta := chart.RenderDelta(mt.Delta(), mt.HasAnomalies && mt.Anomalies > 0, mt.HasAnomalies && mt.Anomalies == 0)

	spark := chart.RenderSparkline(nil, innerWidth, 0, 1)
	trend := ""
	if buf := m.trend.Get(mt.Field); buf != nil && len(buf.Points) > 0 {
		pts := buf.LastNPoints(innerWidth)
		lo, hi := chart.Range(pts)
		spark = chart.RenderSparkline(pts, innerWidth, lo, hi)
		trend = fmt.Sprintf("avg %.2f lo %.2f pk %.2f", buf.Avg(), buf.Min, buf.Peak)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleS.Render(layout.Truncate(mt.Title(), innerWidth)),
		valueS.Render(layout.Truncate(mt.Value(), innerWidth)),
		delta,
		spark,
		titleS.Render(layout.Truncate(trend, innerWidth)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(cardWidth - 2).
		Render(content)
}

func (m Model) renderFooter(width int) string {
	keys := layout.Keys("q", "quit", "a", "add data", "r", "refresh", "e", "export csv", "j/k", "scroll")
	if m.form.Focused() {
		keys = layout.Keys("tab", "next field", "↑/↓", "step", "enter", "add data", "esc", "leave form")
	}

	var since string
	if !m.lastFetch.IsZero() {
		since = lipgloss.NewStyle().
			Foreground(colorDim).
			Render("fetched " + fmtAgo(m.now().Sub(m.lastFetch)))
	}

	return layout.Bar(keys, since, width, colorFooterBg)
}

// ── Helpers ──────────────────────────────────────────────────────────

func fmtAgo(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		return "just now"
	}
	h := d / time.Hour
	d -= h * time.Hour
	mins := d / time.Minute
	d -= mins * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm ago", h, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm%02ds ago", mins, s)
	}
	return fmt.Sprintf("%ds ago", s)
}
