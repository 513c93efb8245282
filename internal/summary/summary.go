// Package summary computes the per-field aggregate statistics shown in the
// dashboard's metric cards.
package summary

import (
	"fmt"

	"github.com/luki/linemon/internal/sensor"
)

// Metric is the aggregate of one field across a record set.
type Metric struct {
	Field sensor.Field
	Avg   float64
	Max   float64
	// Anomalies counts records labelled as anomalies. Only set for the
	// vibration field, whose card shows it in place of the maximum.
	Anomalies    int
	HasAnomalies bool
}

// Compute returns one metric per field in display order, or nil when
// records is empty.
func Compute(records []sensor.Record) []Metric {
	if len(records) == 0 {
		return nil
	}

	metrics := make([]Metric, 0, len(sensor.Fields()))
	for _, f := range sensor.Fields() {
		m := Metric{Field: f, Max: f.Value(records[0])}
		sum := 0.0
		for _, r := range records {
			v := f.Value(r)
			sum += v
			if v > m.Max {
				m.Max = v
			}
		}
		m.Avg = sum / float64(len(records))

		if f == sensor.Vibration {
			m.Anomalies = CountAnomalies(records)
			m.HasAnomalies = true
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// CountAnomalies returns the number of records labelled as anomalies.
func CountAnomalies(records []sensor.Record) int {
	n := 0
	for _, r := range records {
		if r.IsAnomaly() {
			n++
		}
	}
	return n
}

// Title returns the card heading, e.g. "Torque (Avg)".
func (m Metric) Title() string {
	return m.Field.Title() + " (Avg)"
}

// Value returns the formatted average with its unit.
func (m Metric) Value() string {
	return withUnit(fmt.Sprintf("%.2f", m.Avg), m.Field.Unit())
}

// Delta returns the card's secondary line: the anomaly count for
// vibration, the maximum for every other field.
func (m Metric) Delta() string {
	if m.HasAnomalies {
		return fmt.Sprintf("%d anomalies", m.Anomalies)
	}
	return withUnit(fmt.Sprintf("Max: %.2f", m.Max), m.Field.Unit())
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}
