// Package layout holds the screen helpers shared by the live dashboard and
// the snapshot browser.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minHeight = 5

var (
	colorKey   = lipgloss.Color("240")
	colorLabel = lipgloss.Color("252")
)

// Window returns the lines of content visible at the given scroll offset.
// The offset is clamped so the last page stays full.
func Window(content string, scroll, height int) string {
	lines := strings.Split(content, "\n")
	if height < minHeight {
		height = minHeight
	}
	scroll = min(max(scroll, 0), max(len(lines)-height, 0))
	end := min(scroll+height, len(lines))
	return strings.Join(lines[scroll:end], "\n")
}

// Bar renders left and right on one padded line of the given width, with
// the space between them filled.
func Bar(left, right string, width int, bg lipgloss.Color) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-4, 1)
	return lipgloss.NewStyle().
		Background(bg).
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}

// Keys renders key help from key/description pairs, e.g.
// Keys("q", "quit", "r", "refresh") gives "q:quit  r:refresh".
func Keys(pairs ...string) string {
	keyS := lipgloss.NewStyle().Foreground(colorKey)
	descS := lipgloss.NewStyle().Foreground(colorLabel)

	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		k := pairs[i]
		if i > 0 {
			k = "  " + k
		}
		sb.WriteString(keyS.Render(k) + descS.Render(":"+pairs[i+1]))
	}
	return sb.String()
}

// Placeholder renders a dim centered notice for an empty area.
func Placeholder(text string, width int) string {
	return lipgloss.NewStyle().
		Foreground(colorKey).
		Width(width).
		Align(lipgloss.Center).
		Padding(2, 0).
		Render(text)
}

// Truncate shortens s to w runes, marking the cut with an ellipsis.
func Truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
