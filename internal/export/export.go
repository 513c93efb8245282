// Package export writes operator-requested CSV snapshots of the sensor
// data table. Files are named records-YYYY-MM-DDTHHMMSS.csv and hold
// exactly what the table shows:
//
//	id,vibration,temperature,torque,current,noise,label
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/linemon/internal/sensor"
	"github.com/luki/linemon/internal/table"
)

const (
	fileLayout = "2006-01-02T150405"
	maxSuffix  = 99
)

// FileName returns the snapshot file name for time t.
func FileName(t time.Time) string {
	return "records-" + t.Format(fileLayout) + ".csv"
}

// WriteFile writes records to a new snapshot in dir, creating dir if
// needed, and returns the file path. An existing snapshot is never
// overwritten: later exports within the same second get a _02, _03, ...
// suffix, which sorts after the plain name.
func WriteFile(dir string, records []sensor.Record, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "cannot create export dir")
	}

	f, path, err := create(dir, t)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Headers()); err != nil {
		return "", errors.Wrap(err, "write header")
	}
	if err := w.WriteAll(table.Rows(records)); err != nil {
		return "", errors.Wrap(err, "write rows")
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func create(dir string, t time.Time) (*os.File, string, error) {
	base := FileName(t)
	for n := 1; n <= maxSuffix; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s_%02d.csv", strings.TrimSuffix(base, ".csv"), n)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
	return nil, "", errors.Errorf("too many snapshots for %s", base)
}

// ListFiles returns the snapshot files in dir, newest first.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		if strings.HasPrefix(name, "records-") && strings.HasSuffix(name, ".csv") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// LoadFile reads a snapshot back into records. The header row is skipped
// and short rows are ignored.
func LoadFile(path string) ([]sensor.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []sensor.Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "id" {
			continue
		}
		if len(row) < 7 {
			continue
		}

		r := sensor.Record{ID: row[0], Label: sensor.LabelNormal}
		var vals sensor.Values
		for j, fld := range sensor.Fields() {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d %s", i+1, fld)
			}
			fld.Set(&vals, v)
		}
		r.Vibration, r.Temperature, r.Torque = vals.Vibration, vals.Temperature, vals.Torque
		r.Current, r.Noise = vals.Current, vals.Noise
		if row[6] == sensor.LabelText(sensor.LabelAnomaly) {
			r.Label = sensor.LabelAnomaly
		}
		records = append(records, r)
	}

	return records, nil
}
