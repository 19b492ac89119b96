// Package metrics exposes scan activity and analysis results as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"energest-report/internal/energest"
)

// ScanMetrics implements energest.Observer and energest.FileObserver.
type ScanMetrics struct {
	lines       *prometheus.CounterVec
	skipped     prometheus.Counter
	files       *prometheus.CounterVec
	scanLatency prometheus.Histogram
	energy      *prometheus.GaugeVec
	telemetry   *prometheus.GaugeVec
}

// NewScanMetrics creates the collectors and registers them with reg.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	m := &ScanMetrics{
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "energest_lines_total",
			Help: "Log lines read, by classification.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "energest_lines_skipped_total",
			Help: "Log lines that failed to parse and were skipped.",
		}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "energest_files_total",
			Help: "Log files analyzed, by result.",
		}, []string{"result"}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "energest_file_scan_seconds",
			Help:    "Wall time spent analyzing one log file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "energest_total_energy_mj",
			Help: "Total energy of an experiment in millijoules.",
		}, []string{"file", "type"}),
		telemetry: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "energest_telemetry_bytes",
			Help: "Telemetry bytes consumed by the sink in an experiment.",
		}, []string{"file", "type"}),
	}
	reg.MustRegister(m.lines, m.skipped, m.files, m.scanLatency, m.energy, m.telemetry)
	return m
}

func (m *ScanMetrics) ObserveLine(kind energest.Kind) {
	m.lines.WithLabelValues(kind.String()).Inc()
}

func (m *ScanMetrics) ObserveSkip() { m.skipped.Inc() }

func (m *ScanMetrics) ObserveFile(d time.Duration, err error) {
	m.scanLatency.Observe(d.Seconds())
	if err != nil {
		m.files.WithLabelValues("error").Inc()
		return
	}
	m.files.WithLabelValues("ok").Inc()
}

// ObserveRecords publishes per-experiment results.
func (m *ScanMetrics) ObserveRecords(recs []energest.ExperimentRecord) {
	for _, r := range recs {
		m.energy.WithLabelValues(r.File, r.Type).Set(r.TotalEnergyMJ)
		m.telemetry.WithLabelValues(r.File, r.Type).Set(float64(r.TelemetryBytes))
	}
}
