// Package chart renders compact trend sparklines and colored metric deltas
// for the dashboard cards.
package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/linemon/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// LevelColor returns the color for a value normalized into [0, 1] of its
// observed range.
func LevelColor(norm float64) lipgloss.Color {
	switch {
	case norm >= 0.9:
		return lipgloss.Color("208") // orange
	case norm >= 0.7:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// Range returns the min and max values of points, widened so a flat
// series still has a non-zero span.
func Range(points []history.Point) (float64, float64) {
	if len(points) == 0 {
		return 0, 1
	}
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi-lo < 1e-9 {
		pad := math.Max(math.Abs(hi)*0.05, 0.5)
		return lo - pad, hi + pad
	}
	return lo, hi
}

// RenderSparkline renders the last width points as color-coded blocks,
// left-padded with a dim dashed line when there are fewer points.
func RenderSparkline(points []history.Point, width int, rangeMin, rangeMax float64) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	if padLen > 0 {
		sb.WriteString(dim.Render(strings.Repeat("╌", padLen)))
	}

	for _, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		style := lipgloss.NewStyle().Foreground(LevelColor(norm))
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// RenderDelta renders a metric's secondary line. Alerting deltas are drawn
// red, calm ones green, plain ones dim.
func RenderDelta(s string, alert, calm bool) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	switch {
	case alert:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case calm:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	}
	return style.Render(s)
}
