// Package table renders the sensor data table: every record, every field,
// with the label shown as text.
package table

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/luki/linemon/internal/sensor"
)

var (
	colorBorder  = lipgloss.Color("62")
	colorHeader  = lipgloss.Color("147")
	colorCell    = lipgloss.Color("252")
	colorAnomaly = lipgloss.Color("196")
)

// Headers returns the column names in display order.
func Headers() []string {
	h := []string{"id"}
	for _, f := range sensor.Fields() {
		h = append(h, f.Name())
	}
	return append(h, "label")
}

// Row converts a record into its display cells. Numbers are shown as
// received; only the label is transformed.
func Row(r sensor.Record) []string {
	row := []string{r.ID}
	for _, f := range sensor.Fields() {
		row = append(row, strconv.FormatFloat(f.Value(r), 'f', -1, 64))
	}
	return append(row, sensor.LabelText(r.Label))
}

// Rows converts all records, keeping their order.
func Rows(records []sensor.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row(r))
	}
	return rows
}

// Render draws the table at the given width. Anomaly rows are highlighted.
func Render(records []sensor.Record, width int) string {
	headerS := lipgloss.NewStyle().Foreground(colorHeader).Bold(true).Padding(0, 1)
	cellS := lipgloss.NewStyle().Foreground(colorCell).Padding(0, 1)
	anomalyS := cellS.Foreground(colorAnomaly)

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(Headers()...).
		Rows(Rows(records)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerS
			case row >= 0 && row < len(records) && records[row].IsAnomaly():
				return anomalyS
			default:
				return cellS
			}
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}
