// Package dashboard implements the assembly line monitor TUI: it fetches
// every sensor record from the remote service, shows summary metric cards
// and the data table, and forwards manual readings from the side form.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/linemon/internal/client"
	"github.com/luki/linemon/internal/config"
	"github.com/luki/linemon/internal/export"
	"github.com/luki/linemon/internal/form"
	"github.com/luki/linemon/internal/history"
	"github.com/luki/linemon/internal/sensor"
	"github.com/luki/linemon/internal/summary"
)

const trendSize = 120

// Service is the remote data service.
type Service interface {
	Fetch(ctx context.Context) ([]sensor.Record, error)
	Submit(ctx context.Context, r sensor.Record) error
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type recordsMsg struct {
	seq     int
	records []sensor.Record
	err     error
	time    time.Time
}

type submittedMsg struct {
	record sensor.Record
	err    error
}

type exportedMsg struct {
	path  string
	count int
	err   error
}

type noticeKind int

const (
	noticeSuccess noticeKind = iota
	noticeInfo
	noticeError
)

type notice struct {
	kind noticeKind
	text string
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the dashboard.
type Model struct {
	svc       Service
	cfg       config.Config
	form      form.Model
	records   []sensor.Record
	metrics   []summary.Metric
	trend     *history.Store
	notices   []notice
	fetched   bool
	inflight  int
	fetchSeq  int // sequence of the latest fetch; older replies are dropped
	lastFetch time.Time
	width     int
	height    int
	scroll    int
	now       func() time.Time
}

// New creates the dashboard model.
func New(svc Service, cfg config.Config) Model {
	return Model{
		svc:      svc,
		cfg:      cfg,
		form:     form.New(),
		trend:    history.NewStore(trendSize),
		inflight: 1, // fetch issued by Init
		now:      time.Now,
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	svc, now, seq := m.svc, m.now, m.fetchSeq
	return func() tea.Msg {
		records, err := svc.Fetch(context.Background())
		return recordsMsg{seq: seq, records: records, err: err, time: now()}
	}
}

func (m Model) submitCmd(r sensor.Record) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return submittedMsg{record: r, err: svc.Submit(context.Background(), r)}
	}
}

func exportCmd(dir string, records []sensor.Record, t time.Time) tea.Cmd {
	return func() tea.Msg {
		path, err := export.WriteFile(dir, records, t)
		return exportedMsg{path: path, count: len(records), err: err}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	if m.cfg.RefreshInterval > 0 {
		return tea.Batch(m.fetchCmd(), tickCmd(m.cfg.RefreshInterval))
	}
	return m.fetchCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.form.Focused() {
			if msg.String() == "esc" {
				m.form = m.form.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "a", "tab":
			var cmd tea.Cmd
			m.form, cmd = m.form.Focus()
			return m, cmd
		case "r":
			if m.inflight > 0 {
				return m, nil
			}
			m.notices = nil
			return m.startFetch()
		case "e":
			if len(m.records) == 0 {
				m.notices = []notice{{noticeInfo, "Nothing to export."}}
				return m, nil
			}
			snapshot := append([]sensor.Record(nil), m.records...)
			return m, exportCmd(m.cfg.ExportDir, snapshot, m.now())
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		next := tickCmd(m.cfg.RefreshInterval)
		if m.inflight > 0 {
			return m, next
		}
		m.notices = nil
		var fetch tea.Cmd
		m, fetch = m.startFetch()
		return m, tea.Batch(fetch, next)

	case form.SubmitMsg:
		rec := sensor.NewManual(msg.Values)
		m.notices = nil
		m.inflight++
		log.Printf("[submit] sending record %s", rec.ID)
		return m, m.submitCmd(rec)

	case submittedMsg:
		m.inflight--
		m.notices = append(m.notices, submitNotice(msg.err))
		if msg.err != nil {
			log.Printf("[submit] record %s failed: %v", msg.record.ID, msg.err)
		} else {
			log.Printf("[submit] record %s accepted", msg.record.ID)
		}
		return m.startFetch()

	case recordsMsg:
		m.inflight--
		if msg.seq != m.fetchSeq {
			log.Printf("[fetch] dropping stale reply %d, latest is %d", msg.seq, m.fetchSeq)
			break
		}
		m.applyRecords(msg)

	case exportedMsg:
		if msg.err != nil {
			log.Printf("[export] %v", msg.err)
			m.notices = []notice{{noticeError, fmt.Sprintf("Export failed: %v", msg.err)}}
		} else {
			log.Printf("[export] wrote %d records to %s", msg.count, msg.path)
			m.notices = []notice{{noticeSuccess, fmt.Sprintf("Exported %d records to %s", msg.count, msg.path)}}
		}

	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) startFetch() (Model, tea.Cmd) {
	m.inflight++
	m.fetchSeq++
	return m, m.fetchCmd()
}

// applyRecords replaces the displayed dataset. A failed fetch leaves the
// dashboard empty, as if the service had returned no records.
func (m *Model) applyRecords(msg recordsMsg) {
	m.fetched = true
	m.lastFetch = msg.time

	if msg.err != nil {
		log.Printf("[fetch] %v", msg.err)
		m.notices = append(m.notices, fetchNotice(msg.err))
		m.records = nil
		m.metrics = nil
		return
	}

	m.records = msg.records
	m.metrics = summary.Compute(msg.records)
	for _, mt := range m.metrics {
		m.trend.Record(mt.Field, mt.Avg, msg.time)
	}
	log.Printf("[fetch] %d records", len(msg.records))
}

func fetchNotice(err error) notice {
	if code, ok := client.IsStatus(err); ok {
		return notice{noticeError, fmt.Sprintf("Failed to fetch data: %d", code)}
	}
	return notice{noticeError, fmt.Sprintf("Error fetching data: %v", err)}
}

func submitNotice(err error) notice {
	if err == nil {
		return notice{noticeSuccess, "Sensor data submitted successfully."}
	}
	if code, ok := client.IsStatus(err); ok {
		return notice{noticeError, fmt.Sprintf("Submission failed: %d", code)}
	}
	return notice{noticeError, fmt.Sprintf("Error submitting data: %v", err)}
}
