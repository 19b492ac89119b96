package config

import (
	"os"
	"path/filepath"
	"testing"

	"energest-report/internal/energest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
data_dir: logs
variant: piggybacking
execution_time_s: 900
labels:
  pb: Piggyback
markers:
  append: 'ID:(\d+)\s.*APPENDED'
greptime:
  endpoint: localhost:4001
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.DataDir != "logs" || cfg.Variant != "piggybacking" || cfg.ExecutionTimeS != 900 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Labels["pb"] != "Piggyback" {
		t.Errorf("labels = %v", cfg.Labels)
	}
	if cfg.Greptime.Database != "public" || cfg.Greptime.TablePrefix != "energest" {
		t.Errorf("greptime defaults not applied: %+v", cfg.Greptime)
	}

	a, err := cfg.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	if a.Variant != energest.VariantPiggybacking || a.Cutoff != 900 {
		t.Errorf("analyzer = %+v", a)
	}
}

func TestLoadConfig_RejectsUnknownVariant(t *testing.T) {
	path := writeConfig(t, "variant: everything\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadConfig_RejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "cutoff: 10\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected validation error for unknown field")
	}
}

func TestLoadConfig_RejectsNegativeCutoff(t *testing.T) {
	path := writeConfig(t, "execution_time_s: -1\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected validation error for negative cutoff")
	}
}

func TestLoadConfig_CustomSchema(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "strict.cue")
	if err := os.WriteFile(schema, []byte("#Config: {variant: \"data\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(writeConfig(t, "variant: data\n"), schema); err != nil {
		t.Fatalf("Load with custom schema: %v", err)
	}
	if _, err := Load(writeConfig(t, "variant: full\n"), schema); err == nil {
		t.Fatalf("expected custom schema to reject variant full")
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Variant != "full" || cfg.DataDir != "datafiles" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestDefaultReadsEnvironment(t *testing.T) {
	t.Setenv("ENERGEST_DATA_DIR", "/tmp/logs")
	t.Setenv("GREPTIMEDB_ENDPOINT", "db:4001")
	t.Setenv("GREPTIMEDB_DATABASE", "wsn")
	cfg := Default()
	if cfg.DataDir != "/tmp/logs" || cfg.Greptime.Endpoint != "db:4001" || cfg.Greptime.Database != "wsn" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestNewAnalyzerRejectsBadMarker(t *testing.T) {
	cfg := Default()
	cfg.Markers.Tx = `EXPERIMENT: Sent`
	if _, err := cfg.NewAnalyzer(); err == nil {
		t.Fatalf("expected error for pattern without capture groups")
	}
}
