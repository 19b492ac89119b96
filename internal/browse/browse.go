// Package browse is a terminal browser over experiment records and their shaped views.
package browse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"energest-report/internal/energest"
	"energest-report/internal/shape"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// recordMsg delivers one analyzed record to the model.
type recordMsg struct{ rec energest.ExperimentRecord }

// Writer streams records into a running browser. It implements report.RecordWriter.
type Writer struct {
	program teaProgram
	done    chan struct{}
	err     error
}

// NewWriter starts the browser on the alternate screen.
func NewWriter(labels map[string]string) *Writer {
	p := tea.NewProgram(newModel(labels), tea.WithAltScreen())
	w := &Writer{program: p, done: make(chan struct{})}
	go func() {
		_, w.err = p.Run()
		close(w.done)
	}()
	return w
}

// Write implements report.RecordWriter.
func (w *Writer) Write(rec energest.ExperimentRecord) error {
	w.program.Send(recordMsg{rec: rec})
	return nil
}

// Quit stops the browser and waits for it to restore the terminal.
func (w *Writer) Quit() {
	w.program.Send(tea.Quit())
	_ = w.Wait()
}

// Wait blocks until the user quits the browser.
func (w *Writer) Wait() error {
	if w.done != nil {
		<-w.done
	}
	return w.err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const recordsPane = -1

type model struct {
	labels  map[string]string
	recs    []energest.ExperimentRecord
	table   table.Model
	vp      viewport.Model
	width   int
	height  int
	wrap    bool
	help    bool
	view    int
	content string
}

func newModel(labels map[string]string) model {
	cols := []table.Column{
		{Title: "File", Width: 28},
		{Title: "Type", Width: 18},
		{Title: "Hops", Width: 5},
		{Title: "Bytes", Width: 6},
		{Title: "Energy mJ", Width: 11},
		{Title: "Telemetry B", Width: 11},
		{Title: "mJ/B", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(8))
	return model{
		labels: labels,
		table:  t,
		vp:     viewport.New(0, 0),
		view:   recordsPane,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()
	case recordMsg:
		m.recs = append(m.recs, msg.rec)
		m.table.SetRows(m.rows())
		m.refresh()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.help = true
			return m, nil
		case "w":
			m.wrap = !m.wrap
			m.refresh()
			return m, nil
		case "v":
			m.view = (m.view + 1) % len(shape.Names())
			m.refresh()
			return m, nil
		case "r", "esc":
			m.view = recordsPane
			m.refresh()
			return m, nil
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *model) resize() {
	tableHeight := m.height / 2
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.table.SetWidth(m.width)
	m.vp.Width = m.width
	h := m.height - tableHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
}

func (m model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.recs))
	for _, r := range m.recs {
		perByte := "-"
		if v, err := r.EnergyPerByte(); err == nil {
			perByte = fmt.Sprintf("%.4f", v)
		}
		rows = append(rows, table.Row{
			r.File,
			shape.Label(m.labels, r.Type),
			fmt.Sprint(r.Hops),
			fmt.Sprint(r.Bytes),
			fmt.Sprintf("%.2f", r.TotalEnergyMJ),
			fmt.Sprint(r.TelemetryBytes),
			perByte,
		})
	}
	return rows
}

func (m *model) refresh() {
	if m.view == recordsPane {
		m.content = m.detail()
	} else {
		m.content = m.shaped(shape.Names()[m.view])
	}
	content := m.content
	if m.wrap && m.vp.Width > 0 {
		content = wordwrap.String(content, m.vp.Width)
	}
	m.vp.SetContent(content)
	m.vp.GotoTop()
}

func (m model) selected() (energest.ExperimentRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.recs) {
		return energest.ExperimentRecord{}, false
	}
	return m.recs[i], true
}

func (m model) detail() string {
	r, ok := m.selected()
	if !ok {
		return "waiting for records..."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  run %s  variant %s  sim time %.1fs  skipped lines %d\n",
		r.File, r.RunID, r.Variant, r.SimTime, r.SkippedLines)
	for _, id := range r.NodeIDs() {
		e := r.Nodes[id]
		fmt.Fprintf(&b, "node %d: %.2f mJ, %.2f mC (%.3f mAh) over %.2fs", id, e.EnergyMJ, e.ChargeMC, e.ChargeMAh(), e.PeriodSeconds)
		if n, ok := r.BytesPerNode[id]; ok {
			fmt.Fprintf(&b, ", sourced %d B", n)
		}
		if r.TxOps != nil {
			fmt.Fprintf(&b, ", tx %d ops/%d B, rx %d ops/%d B", r.TxOps[id], r.TxBytes[id], r.RxOps[id], r.RxBytes[id])
		}
		b.WriteString("\n")
	}
	if r.Variant.TracksOps() {
		fmt.Fprintf(&b, "appended packets: %d\n", r.Appended)
	}
	return b.String()
}

func (m model) shaped(name string) string {
	data, err := shape.Build(name, m.recs)
	if err != nil {
		return name + "\n" + errStyle.Render(err.Error())
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return name + "\n" + errStyle.Render(err.Error())
	}
	return name + "\n" + string(out)
}

func (m model) View() string {
	if m.help {
		return strings.Join([]string{
			titleStyle.Render("Keys"),
			"up/down  select record",
			"v        cycle shaped views",
			"r        back to record details",
			"w        toggle word wrap",
			"pgup/dn  scroll details",
			"q        quit",
		}, "\n")
	}
	pane := "record"
	if m.view != recordsPane {
		pane = shape.Names()[m.view]
	}
	header := titleStyle.Render(fmt.Sprintf("energest-report  %d experiments  [%s]", len(m.recs), pane))
	footer := footerStyle.Render("? help  v views  w wrap  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.table.View(), m.vp.View(), footer)
}
