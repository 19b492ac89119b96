package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"energest-report/internal/energest"
)

func sampleRecord() energest.ExperimentRecord {
	return energest.ExperimentRecord{
		RunID:    "run-1",
		File:     "int_1_x_64_a.log",
		Metadata: energest.Metadata{Type: "int", Hops: 1, Bytes: 64, NumberNodes: 3},
		Variant:  energest.VariantPiggybacking,
		Nodes: map[int]energest.NodeEnergy{
			1: {},
			2: {EnergyMJ: 54.3, ChargeMC: 18.1, PeriodSeconds: 1},
			3: {EnergyMJ: 10.5, ChargeMC: 3.5, PeriodSeconds: 1},
		},
		TotalEnergyMJ:  64.8,
		SimTime:        42,
		TelemetryBytes: 128,
		BytesPerNode:   map[int]int{1: 0, 2: 128},
	}
}

func TestStdoutWriterSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &StdoutWriter{out: buf}
	if err := w.Write(sampleRecord()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := strings.Join([]string{
		"int_1_x_64_a.log",
		"Node 2: 18.10 mC (0.005 mAh) charge consumption, 54.30 mJ energy consumption in 1.00 seconds",
		"Node 3: 3.50 mC (0.001 mAh) charge consumption, 10.50 mJ energy consumption in 1.00 seconds",
		"Total telemetry bytes transmitted: 128",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestColorStdoutWriterOverviewOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewColorStdoutWriter(&Settings{DataDir: "logs", Variant: energest.VariantFull, Cutoff: 1200, RunID: "run-1"})
	w.out = buf
	rec := sampleRecord()
	rec.SkippedLines = 2
	if err := w.Write(rec); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	for _, s := range []string{"Analysis Configuration:", "run-1", "int_1_x_64_a.log", "In-Band Network", "no samples", "2 lines skipped"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}

	buf.Reset()
	if err := w.Write(rec); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Analysis Configuration:") {
		t.Fatalf("overview printed more than once")
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.Write(sampleRecord()); err != nil {
		t.Fatal(err)
	}
	var got energest.ExperimentRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.File != "int_1_x_64_a.log" || got.Hops != 1 || got.Nodes[2].EnergyMJ != 54.3 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "records.jsonl")
	viewPath := filepath.Join(dir, "views.jsonl")
	fw, err := NewFileWriter(recPath, viewPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteBatch([]energest.ExperimentRecord{sampleRecord(), sampleRecord()}); err != nil {
		t.Fatal(err)
	}
	if err := fw.WriteView("total-energy-vs-hops", map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(recPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 record lines, got %d", len(lines))
	}
	var got energest.ExperimentRecord
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatal(err)
	}
	if got.BytesPerNode[2] != 128 {
		t.Errorf("BytesPerNode = %v", got.BytesPerNode)
	}

	data, err = os.ReadFile(viewPath)
	if err != nil {
		t.Fatal(err)
	}
	var view ViewLine
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Name != "total-energy-vs-hops" {
		t.Errorf("view name = %q", view.Name)
	}
}

func TestFileWriterWithoutViews(t *testing.T) {
	fw, err := NewFileWriter(filepath.Join(t.TempDir(), "records.jsonl"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()
	if err := fw.WriteView("x", nil); err != nil {
		t.Fatalf("disabled view export should be a no-op: %v", err)
	}
}

type recorder struct {
	single  int
	batches int
	fail    error
}

func (r *recorder) Write(energest.ExperimentRecord) error {
	r.single++
	return r.fail
}

type batchRecorder struct{ recorder }

func (b *batchRecorder) WriteBatch(recs []energest.ExperimentRecord) error {
	b.batches++
	return b.fail
}

func TestMultiWriterUsesBatchWhenAvailable(t *testing.T) {
	plain := &recorder{}
	batch := &batchRecorder{}
	mw := NewMultiWriter(plain, batch)
	recs := []energest.ExperimentRecord{sampleRecord(), sampleRecord(), sampleRecord()}
	if err := WriteAll(mw, recs); err != nil {
		t.Fatal(err)
	}
	if plain.single != 3 {
		t.Errorf("plain writer got %d writes, want 3", plain.single)
	}
	if batch.batches != 1 || batch.single != 0 {
		t.Errorf("batch writer got %d batches and %d writes", batch.batches, batch.single)
	}
}

func TestMultiWriterStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	first := &recorder{fail: boom}
	second := &recorder{}
	mw := NewMultiWriter(first, second)
	if err := mw.Write(sampleRecord()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if second.single != 0 {
		t.Errorf("second writer should not be called after an error")
	}
}
