// ColorStdoutWriter prints human-friendly, colorized summaries to STDOUT.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"energest-report/internal/energest"
	"energest-report/internal/shape"
)

var (
	fileStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	energyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	chargeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	bytesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	typePalette = []lipgloss.Color{"9", "10", "11", "12", "13", "14"}
)

// Settings describes the analysis run printed once before the first record.
type Settings struct {
	DataDir string
	Variant energest.Variant
	Cutoff  float64
	RunID   string
	Labels  map[string]string
}

// ColorStdoutWriter prints records using lipgloss styles.
type ColorStdoutWriter struct {
	settings   *Settings
	out        io.Writer
	once       sync.Once
	typeStyles map[string]lipgloss.Style
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(s *Settings) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		settings:   s,
		out:        os.Stdout,
		typeStyles: make(map[string]lipgloss.Style),
	}
}

func (w *ColorStdoutWriter) typeStyle(typ string) lipgloss.Style {
	if s, ok := w.typeStyles[typ]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(typePalette[len(w.typeStyles)%len(typePalette)])
	w.typeStyles[typ] = s
	return s
}

func (w *ColorStdoutWriter) printOverview() {
	if w.settings == nil {
		return
	}
	fmt.Fprintln(w.out, "Analysis Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Data Directory:\t%s\n", w.settings.DataDir)
	fmt.Fprintf(tw, "Variant:\t%s\n", w.settings.Variant)
	fmt.Fprintf(tw, "Execution Time (s):\t%.0f\n", w.settings.Cutoff)
	fmt.Fprintf(tw, "Run ID:\t%s\n", w.settings.RunID)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a record in colorized format.
func (w *ColorStdoutWriter) Write(rec energest.ExperimentRecord) error {
	w.once.Do(w.printOverview)

	var labels map[string]string
	if w.settings != nil {
		labels = w.settings.Labels
	}
	fmt.Fprintf(w.out, "%s %s %s\n",
		fileStyle.Render(rec.File),
		w.typeStyle(rec.Type).Render(shape.Label(labels, rec.Type)),
		dimStyle.Render(fmt.Sprintf("hops=%d bytes=%d nodes=%d sim=%.1fs", rec.Hops, rec.Bytes, rec.NumberNodes, rec.SimTime)))

	for _, id := range rec.NodeIDs() {
		e := rec.Nodes[id]
		if !scanned(e) {
			fmt.Fprintf(w.out, "  node %-3d %s\n", id, dimStyle.Render("no samples"))
			continue
		}
		fmt.Fprintf(w.out, "  node %-3d %s %s %s\n", id,
			energyStyle.Render(fmt.Sprintf("%10.2f mJ", e.EnergyMJ)),
			chargeStyle.Render(fmt.Sprintf("%9.2f mC (%.3f mAh)", e.ChargeMC, e.ChargeMAh())),
			dimStyle.Render(fmt.Sprintf("%.2fs", e.PeriodSeconds)))
	}
	fmt.Fprintf(w.out, "  total %s %s\n",
		energyStyle.Render(fmt.Sprintf("%.2f mJ", rec.TotalEnergyMJ)),
		bytesStyle.Render(fmt.Sprintf("%d telemetry bytes", rec.TelemetryBytes)))
	if rec.SkippedLines > 0 {
		fmt.Fprintf(w.out, "  %s\n", warnStyle.Render(fmt.Sprintf("%d lines skipped", rec.SkippedLines)))
	}
	return nil
}
