// Writer implementation printing the per-file energy summary to STDOUT
package report

import (
	"fmt"
	"io"
	"os"

	"energest-report/internal/energest"
)

// StdoutWriter prints the plain per-file summary.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

// Write prints the file name, one line per scanned node and the telemetry total.
func (w *StdoutWriter) Write(rec energest.ExperimentRecord) error {
	fmt.Fprintln(w.out, rec.File)
	for _, id := range rec.NodeIDs() {
		e := rec.Nodes[id]
		if !scanned(e) {
			continue
		}
		fmt.Fprintf(w.out, "Node %d: %.2f mC (%.3f mAh) charge consumption, %.2f mJ energy consumption in %.2f seconds\n",
			id, e.ChargeMC, e.ChargeMAh(), e.EnergyMJ, e.PeriodSeconds)
	}
	_, err := fmt.Fprintf(w.out, "Total telemetry bytes transmitted: %d\n", rec.TelemetryBytes)
	return err
}
