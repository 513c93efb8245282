package sensor

import "strings"

// Field identifies one of the five measured quantities.
type Field int

const (
	Vibration Field = iota
	Temperature
	Torque
	Current
	Noise
)

// fieldMeta maps each field to its wire name and display unit.
var fieldMeta = []struct {
	name string
	unit string
}{
	{"vibration", ""},
	{"temperature", "°C"},
	{"torque", ""},
	{"current", "A"},
	{"noise", "dB"},
}

// Fields returns all fields in display order.
func Fields() []Field {
	return []Field{Vibration, Temperature, Torque, Current, Noise}
}

// Name returns the JSON/column name, e.g. "temperature".
func (f Field) Name() string {
	if f < 0 || int(f) >= len(fieldMeta) {
		return "unknown"
	}
	return fieldMeta[f].name
}

// Unit returns the display unit, or "" for unitless fields.
func (f Field) Unit() string {
	if f < 0 || int(f) >= len(fieldMeta) {
		return ""
	}
	return fieldMeta[f].unit
}

// Title returns the capitalized name, e.g. "Temperature".
func (f Field) Title() string {
	n := f.Name()
	return strings.ToUpper(n[:1]) + n[1:]
}

// InputLabel returns the form label, with the unit in parentheses when set.
func (f Field) InputLabel() string {
	if u := f.Unit(); u != "" {
		return f.Title() + " (" + u + ")"
	}
	return f.Title()
}

func (f Field) String() string { return f.Name() }

// Value extracts the field from a record.
func (f Field) Value(r Record) float64 {
	switch f {
	case Vibration:
		return r.Vibration
	case Temperature:
		return r.Temperature
	case Torque:
		return r.Torque
	case Current:
		return r.Current
	case Noise:
		return r.Noise
	}
	return 0
}

// Set stores v into the field of vals.
func (f Field) Set(vals *Values, v float64) {
	switch f {
	case Vibration:
		vals.Vibration = v
	case Temperature:
		vals.Temperature = v
	case Torque:
		vals.Torque = v
	case Current:
		vals.Current = v
	case Noise:
		vals.Noise = v
	}
}
