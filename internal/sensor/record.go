// Package sensor defines the assembly line sensor record exchanged with the
// remote data service, its classification label and the five measured
// fields shown on the dashboard.
package sensor

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Classification labels. Only LabelNormal is ever produced locally;
// LabelAnomaly arrives from the service side.
const (
	LabelNormal  = 0
	LabelAnomaly = 1
)

// Record is a single reading event from a robotic arm.
type Record struct {
	ID          string  `json:"id"`
	Vibration   float64 `json:"vibration"`
	Temperature float64 `json:"temperature"`
	Torque      float64 `json:"torque"`
	Current     float64 `json:"current"`
	Noise       float64 `json:"noise"`
	Label       int     `json:"label"`
}

// UnmarshalJSON accepts the label as any integral JSON number, so services
// that serialize it as 1.0 decode the same as 1.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var aux struct {
		plain
		Label *float64 `json:"label"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Record(aux.plain)
	r.Label = LabelNormal
	if aux.Label != nil {
		l := *aux.Label
		if l != math.Trunc(l) || math.IsInf(l, 0) {
			return errors.Errorf("label %v is not an integer", l)
		}
		r.Label = int(l)
	}
	return nil
}

// IsAnomaly reports whether the record was flagged as an anomaly.
func (r Record) IsAnomaly() bool {
	return r.Label == LabelAnomaly
}

// Values holds the five operator-entered measurements.
type Values struct {
	Vibration   float64
	Temperature float64
	Torque      float64
	Current     float64
	Noise       float64
}

// NewManual builds a record for a manual submission: a fresh random
// identifier and the normal label.
func NewManual(v Values) Record {
	return Record{
		ID:          uuid.NewString(),
		Vibration:   v.Vibration,
		Temperature: v.Temperature,
		Torque:      v.Torque,
		Current:     v.Current,
		Noise:       v.Noise,
		Label:       LabelNormal,
	}
}

// LabelText returns the display form of a label.
func LabelText(label int) string {
	if label == LabelAnomaly {
		return "Anomaly"
	}
	return "Normal"
}
