// Package form implements the "Add Sensor Data" side panel: five numeric
// inputs and a submit action.
package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/luki/linemon/internal/sensor"
)

const (
	step     = 0.01
	numChars = "0123456789.-+eE"
)

// SubmitMsg is emitted when the operator submits a valid form.
type SubmitMsg struct {
	Values sensor.Values
}

var (
	colorHeader = lipgloss.Color("147")
	colorLabel  = lipgloss.Color("252")
	colorDim    = lipgloss.Color("240")
	colorFocus  = lipgloss.Color("51")
	colorButton = lipgloss.Color("17")
	colorErr    = lipgloss.Color("196")
)

// Model is the form state.
type Model struct {
	fields  []sensor.Field
	inputs  []textinput.Model
	cursor  int
	focused bool
	err     error
}

// New creates a form with every input set to 0.00.
func New() Model {
	m := Model{fields: sensor.Fields()}
	for range m.fields {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 16
		ti.Width = 12
		ti.SetValue(format(0))
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Focused reports whether the form receives key input.
func (m Model) Focused() bool {
	return m.focused
}

// Focus gives the form keyboard focus on the current input.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m, m.inputs[m.cursor].Focus()
}

// Blur releases keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	m.inputs[m.cursor].Blur()
	m.normalize(m.cursor)
	return m
}

// Values parses all inputs, rounded to two decimals. The error names the
// first field that is not a number.
func (m Model) Values() (sensor.Values, error) {
	var vals sensor.Values
	for i, f := range m.fields {
		v, err := parse(m.inputs[i].Value())
		if err != nil {
			return sensor.Values{}, errors.Errorf("%s: not a number", f.InputLabel())
		}
		f.Set(&vals, v)
	}
	return vals, nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.cursor], cmd = m.inputs[m.cursor].Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "tab":
		return m.move(1)
	case "shift+tab":
		return m.move(-1)
	case "up":
		m.step(step)
		return m, nil
	case "down":
		m.step(-step)
		return m, nil
	case "enter":
		m.normalize(m.cursor)
		vals, err := m.Values()
		m.err = err
		if err != nil {
			return m, nil
		}
		return m, func() tea.Msg { return SubmitMsg{Values: vals} }
	}

	if key.Type == tea.KeyRunes && !numeric(key.Runes) {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.cursor], cmd = m.inputs[m.cursor].Update(msg)
	return m, cmd
}

func (m Model) move(delta int) (Model, tea.Cmd) {
	m.inputs[m.cursor].Blur()
	m.normalize(m.cursor)
	m.cursor = (m.cursor + delta + len(m.inputs)) % len(m.inputs)
	return m, m.inputs[m.cursor].Focus()
}

func (m *Model) step(delta float64) {
	v, err := parse(m.inputs[m.cursor].Value())
	if err != nil {
		v = 0
	}
	m.inputs[m.cursor].SetValue(format(round2(v + delta)))
	m.inputs[m.cursor].CursorEnd()
}

// normalize reformats a valid input to two decimals; invalid text is left
// for the operator to fix.
func (m *Model) normalize(i int) {
	if v, err := parse(m.inputs[i].Value()); err == nil {
		m.inputs[i].SetValue(format(v))
	}
}

func (m Model) View() string {
	headerS := lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	rows := []string{headerS.Render("Add Sensor Data"), ""}
	for i, f := range m.fields {
		ls := labelS
		if m.focused && i == m.cursor {
			ls = ls.Foreground(colorFocus).Bold(true)
		}
		rows = append(rows, ls.Render(f.InputLabel()), m.inputs[i].View())
	}

	button := lipgloss.NewStyle().
		Background(colorButton).
		Foreground(colorFocus).
		Padding(0, 2).
		Render("Add Data")
	rows = append(rows, "", button)

	if m.err != nil {
		rows = append(rows, lipgloss.NewStyle().Foreground(colorErr).Render(m.err.Error()))
	}

	if m.focused {
		rows = append(rows, "", dimS.Render("tab:next  ↑/↓:±0.01"), dimS.Render("enter:add  esc:back"))
	} else {
		rows = append(rows, "", dimS.Render("a:edit form"))
	}

	return strings.Join(rows, "\n")
}

// ── Helpers ──────────────────────────────────────────────────────────

func parse(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("%q is not finite", s)
	}
	return round2(v), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func format(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func numeric(rs []rune) bool {
	for _, r := range rs {
		if !strings.ContainsRune(numChars, r) {
			return false
		}
	}
	return true
}
