package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/linemon/internal/client"
	"github.com/luki/linemon/internal/config"
	"github.com/luki/linemon/internal/form"
	"github.com/luki/linemon/internal/sensor"
)

type fakeService struct {
	records   []sensor.Record
	fetchErr  error
	submitErr error
	submitted []sensor.Record
	fetches   int
}

func (f *fakeService) Fetch(context.Context) ([]sensor.Record, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeService) Submit(_ context.Context, r sensor.Record) error {
	f.submitted = append(f.submitted, r)
	return f.submitErr
}

var fixedNow = time.Date(2026, 3, 2, 9, 15, 0, 0, time.Local)

func newTestModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	cfg := config.Default()
	cfg.ExportDir = t.TempDir()
	m := New(svc, cfg)
	m.now = func() time.Time { return fixedNow }
	return update(t, m, tea.WindowSizeMsg{Width: 200, Height: 500})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// drive feeds msg to the model and then runs every returned command,
// feeding its result back, until no command is left.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for i := 0; msg != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		msg = nil
		if cmd != nil {
			msg = cmd()
		}
	}
	return m
}

// start completes the initial fetch that Init schedules.
func start(t *testing.T, m Model) Model {
	t.Helper()
	return drive(t, m, m.fetchCmd()())
}

func TestInit(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := newTestModel(t, svc)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should fetch")
	}
	if _, ok := cmd().(recordsMsg); !ok {
		t.Error("without a refresh interval Init only fetches")
	}

	m.cfg.RefreshInterval = time.Second
	if _, ok := m.Init()().(tea.BatchMsg); !ok {
		t.Error("with a refresh interval Init batches fetch and tick")
	}
	if m.inflight != 1 {
		t.Errorf("inflight: got %d, want 1", m.inflight)
	}
}

func TestEmptyDataset(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := newTestModel(t, svc)

	if !strings.Contains(m.View(), "Waiting for sensor data...") {
		t.Error("expected the waiting notice before the first fetch")
	}

	m = start(t, m)
	out := m.View()

	if !strings.Contains(out, "No data available.") {
		t.Error("expected the empty-state notice")
	}
	if strings.Contains(out, "Summary") || strings.Contains(out, "Sensor Data Table") {
		t.Error("summary and table should not render for an empty dataset")
	}
	if svc.fetches != 1 {
		t.Errorf("fetches: got %d, want 1", svc.fetches)
	}
}

func TestSingleRecord(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{
		{ID: "rec-1", Vibration: 1.0, Temperature: 20.0, Torque: 5.0, Current: 2.0, Noise: 30.0, Label: 0},
	}}
	m := start(t, newTestModel(t, svc))
	out := m.View()

	for _, s := range []string{
		"Summary",
		"Vibration (Avg)", "1.00", "0 anomalies",
		"Temperature (Avg)", "20.00 °C", "Max: 20.00 °C",
		"Torque (Avg)", "5.00", "Max: 5.00",
		"Current (Avg)", "2.00 A", "Max: 2.00 A",
		"Noise (Avg)", "30.00 dB", "Max: 30.00 dB",
		"Sensor Data Table", "rec-1", "Normal",
		"1 records",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("view missing %q", s)
		}
	}
	if strings.Contains(out, "No data available.") {
		t.Error("empty-state notice should not render")
	}
}

func TestAnomalyCount(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{
		{ID: "a", Vibration: 1.0, Label: 0},
		{ID: "b", Vibration: 3.0, Label: 1},
	}}
	m := start(t, newTestModel(t, svc))
	out := m.View()

	if !strings.Contains(out, "1 anomalies") {
		t.Error("vibration card should show one anomaly")
	}
	if !strings.Contains(out, "Anomaly") {
		t.Error("table should show the anomaly label")
	}
	if !strings.Contains(out, "2.00") {
		t.Error("vibration average should be 2.00")
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status", &client.StatusError{Code: 503}, "Failed to fetch data: 503"},
		{"transport", errors.New("dial tcp: connection refused"), "Error fetching data: dial tcp: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{fetchErr: tt.err}
			m := start(t, newTestModel(t, svc))
			out := m.View()

			if !strings.Contains(out, tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
			if !strings.Contains(out, "No data available.") {
				t.Error("a failed fetch should leave the dashboard empty")
			}
		})
	}
}

func TestFetchErrorClearsPreviousData(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{{ID: "old", Vibration: 4}}}
	m := start(t, newTestModel(t, svc))

	svc.fetchErr = &client.StatusError{Code: 500}
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if len(m.records) != 0 || m.metrics != nil {
		t.Errorf("expected empty dataset, got %d records", len(m.records))
	}
	if !strings.Contains(m.View(), "Failed to fetch data: 500") {
		t.Error("expected the fetch error")
	}
}

func TestSubmitSuccess(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	vals := sensor.Values{Vibration: 1.5, Temperature: 40.25, Torque: 8, Current: 3.1, Noise: 70}
	svc.records = []sensor.Record{{ID: "new", Vibration: 1.5, Temperature: 40.25, Torque: 8, Current: 3.1, Noise: 70}}
	m = drive(t, m, form.SubmitMsg{Values: vals})

	if len(svc.submitted) != 1 {
		t.Fatalf("submitted: got %d, want 1", len(svc.submitted))
	}
	rec := svc.submitted[0]
	if rec.ID == "" || rec.Label != sensor.LabelNormal {
		t.Errorf("submitted record: %+v", rec)
	}
	if rec.Vibration != 1.5 || rec.Temperature != 40.25 || rec.Torque != 8 || rec.Current != 3.1 || rec.Noise != 70 {
		t.Errorf("submitted values: %+v", rec)
	}

	if svc.fetches != 2 {
		t.Errorf("a submission should be followed by a fetch, got %d fetches", svc.fetches)
	}

	out := m.View()
	if !strings.Contains(out, "Sensor data submitted successfully.") {
		t.Error("expected the success message")
	}
	if strings.Contains(out, "ERROR") {
		t.Error("no error expected")
	}
	if !strings.Contains(out, "40.25 °C") {
		t.Error("the refetched dataset should be shown")
	}
	if m.inflight != 0 {
		t.Errorf("inflight: got %d, want 0", m.inflight)
	}
}

func TestSubmitStatus500(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}, submitErr: &client.StatusError{Code: 500}}
	m := start(t, newTestModel(t, svc))

	m = drive(t, m, form.SubmitMsg{Values: sensor.Values{Vibration: 1}})
	out := m.View()

	if !strings.Contains(out, "Submission failed: 500") {
		t.Error("expected an error containing the status code")
	}
	if strings.Contains(out, "submitted successfully") {
		t.Error("no success message expected")
	}
}

func TestSubmitTransportError(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}, submitErr: errors.New("timeout")}
	m := start(t, newTestModel(t, svc))

	m = drive(t, m, form.SubmitMsg{})
	if !strings.Contains(m.View(), "Error submitting data: timeout") {
		t.Error("expected the transport error")
	}
}

func TestSubmitIdentifiersAreUnique(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	m = drive(t, m, form.SubmitMsg{})
	drive(t, m, form.SubmitMsg{})

	if len(svc.submitted) != 2 {
		t.Fatalf("submitted: got %d, want 2", len(svc.submitted))
	}
	if svc.submitted[0].ID == svc.submitted[1].ID {
		t.Error("each submission needs a fresh identifier")
	}
}

func TestFormFocusKeys(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if !m.form.Focused() {
		t.Fatal("a should focus the form")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("q must not quit while typing in the form")
		}
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.form.Focused() {
		t.Error("esc should leave the form")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("q should quit outside the form")
	}
}

func TestFormEnterSubmits(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(svc.submitted) != 1 {
		t.Fatalf("submitted: got %d, want 1", len(svc.submitted))
	}
	if svc.submitted[0].Vibration != 0.01 {
		t.Errorf("vibration: got %f, want 0.01", svc.submitted[0].Vibration)
	}
}

func TestExport(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{
		{ID: "a", Vibration: 1, Label: 0},
		{ID: "b", Vibration: 2, Label: 1},
	}}
	m := start(t, newTestModel(t, svc))

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})

	path := filepath.Join(m.cfg.ExportDir, "records-2026-03-02T091500.csv")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file: %v", err)
	}
	if !strings.Contains(m.View(), "Exported 2 records") {
		t.Error("expected the export notice")
	}
}

func TestExportNothing(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if !strings.Contains(m.View(), "Nothing to export.") {
		t.Error("expected the nothing-to-export notice")
	}
}

func TestTimedRefresh(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{{ID: "a", Vibration: 2}}}
	m := newTestModel(t, svc)
	m.cfg.RefreshInterval = time.Minute
	m = start(t, m)

	next, cmd := m.Update(tickMsg(fixedNow))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("tick should schedule a fetch and the next tick")
	}
	if m.inflight != 1 {
		t.Errorf("inflight: got %d, want 1", m.inflight)
	}

	// A tick while a fetch is outstanding only reschedules.
	next, _ = m.Update(tickMsg(fixedNow))
	if next.(Model).inflight != 1 {
		t.Error("overlapping tick should not start another fetch")
	}

	m = update(t, m, recordsMsg{seq: m.fetchSeq, records: svc.records, time: fixedNow.Add(time.Minute)})
	if buf := m.trend.Get(sensor.Vibration); buf == nil || len(buf.Points) != 2 {
		t.Errorf("trend should hold one point per fetch, got %+v", buf)
	}
	if !strings.Contains(m.View(), "every 1m0s") {
		t.Error("title bar should show the refresh interval")
	}
}

func TestRefreshIgnoredWhileInflight(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	if cmd == nil || m.inflight != 1 {
		t.Fatalf("r should start a fetch, inflight %d", m.inflight)
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd != nil || next.(Model).inflight != 1 {
		t.Error("r should be ignored while a fetch is outstanding")
	}
}

func TestStaleFetchReplyDropped(t *testing.T) {
	older := []sensor.Record{{ID: "old", Temperature: 10}}
	newer := []sensor.Record{{ID: "new", Temperature: 90}}
	svc := &fakeService{records: []sensor.Record{}}
	m := start(t, newTestModel(t, svc))

	// A tick fetch is outstanding when a submission triggers a second one.
	m.cfg.RefreshInterval = time.Minute
	m = update(t, m, tickMsg(fixedNow))
	firstSeq := m.fetchSeq
	m = update(t, m, form.SubmitMsg{})
	m = update(t, m, submittedMsg{})
	if m.fetchSeq == firstSeq || m.inflight != 2 {
		t.Fatalf("expected two outstanding fetches, seq %d inflight %d", m.fetchSeq, m.inflight)
	}

	m = update(t, m, recordsMsg{seq: m.fetchSeq, records: newer, time: fixedNow})
	m = update(t, m, recordsMsg{seq: firstSeq, records: older, time: fixedNow})

	if len(m.records) != 1 || m.records[0].ID != "new" {
		t.Errorf("older reply overwrote newer dataset: %+v", m.records)
	}
	if m.inflight != 0 {
		t.Errorf("inflight: got %d, want 0", m.inflight)
	}
}

func TestCardTrendStats(t *testing.T) {
	svc := &fakeService{records: []sensor.Record{{ID: "a", Noise: 40}}}
	m := start(t, newTestModel(t, svc))

	svc.records = []sensor.Record{{ID: "a", Noise: 40}, {ID: "b", Noise: 80}}
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	// Trend holds the averages 40 and 60.
	if !strings.Contains(m.View(), "avg 50.00 lo 40.00 pk 60.00") {
		t.Error("noise card should show the session trend stats")
	}
}
