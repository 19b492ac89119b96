package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"energest-report/internal/config"
	"energest-report/internal/energest"
	"energest-report/internal/report"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	return config.Default()
}

func TestNewWritersPlainWithoutTerminal(t *testing.T) {
	ws, err := newWriters(testConfig(t), nil, false, false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer ws.cleanup()
	if _, ok := ws.console.(*report.StdoutWriter); !ok {
		t.Fatalf("expected *report.StdoutWriter, got %T", ws.console)
	}
	if ws.export != nil {
		t.Fatalf("no export expected, got %T", ws.export)
	}
	if ws.file != nil {
		t.Fatalf("no file writer expected without a log file")
	}
}

func TestNewWritersColorOnTerminal(t *testing.T) {
	ws, err := newWriters(testConfig(t), &report.Settings{}, true, true)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := ws.console.(*report.ColorStdoutWriter); !ok {
		t.Fatalf("expected *report.ColorStdoutWriter, got %T", ws.console)
	}
}

func TestNewWritersJSON(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.JSON = true
	ws, err := newWriters(cfg, nil, true, true)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := ws.console.(*report.JSONStdoutWriter); !ok {
		t.Fatalf("expected *report.JSONStdoutWriter, got %T", ws.console)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.JSON = true
	path := filepath.Join(t.TempDir(), "records.jsonl")
	cfg.Output.LogFile = path

	ws, err := newWriters(cfg, nil, true, false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if _, ok := ws.console.(*report.JSONStdoutWriter); !ok {
		t.Fatalf("expected *report.JSONStdoutWriter console, got %T", ws.console)
	}
	if ws.export != report.RecordWriter(ws.file) {
		t.Fatalf("expected the file writer as the only export, got %T", ws.export)
	}
	if ws.file == nil {
		t.Fatalf("expected file writer")
	}
	recs := []energest.ExperimentRecord{
		{File: "am_1_x_64_a.log", Metadata: energest.Metadata{Type: "am"}},
		{File: "int_1_x_64_a.log", Metadata: energest.Metadata{Type: "int"}},
	}
	if err := report.WriteAll(ws.export, recs); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ws.cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"file":"am_1_x_64_a.log"`) || !strings.Contains(string(data), `"file":"int_1_x_64_a.log"`) {
		t.Errorf("record not exported: %s", data)
	}
	if _, err := os.Stat(path + ".views"); err != nil {
		t.Errorf("views file not created: %v", err)
	}
}
