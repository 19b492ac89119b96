package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = "00:01.000\tID:3\t### Joined the network ###\n" +
	"01:00.000\tID:2\t[INFO: Energest  ] Total time  :  1000000\n" +
	"01:00.000\tID:2\t[INFO: Energest  ] Radio Rx   :     500000/   1000000 (500 permil)\n" +
	"01:00.000\tID:2\t[INFO: Energest  ] Radio Tx   :     500000/   1000000 (500 permil)\n" +
	"01:01.000\tID:1\tEXPERIMENT: Consumed 64 Bytes of telemetry 2\n"

func TestAnalyzeCommandExportsRecordsAndViews(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	dir := t.TempDir()
	for _, name := range []string{"am_1_x_64_a.log", "int_1_x_64_a.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sampleLog), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(t.TempDir(), "records.jsonl")

	rootCmd.SetArgs([]string{"analyze", "--data-dir", dir, "--variant", "piggybacking", "--print-only", "--log-file", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"file":"am_1_x_64_a.log"`) || !strings.Contains(lines[0], `"telemetry_bytes":64`) {
		t.Errorf("unexpected first record: %s", lines[0])
	}

	views, err := os.ReadFile(out + ".views")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"energy-per-hop", "byte-cost-by-nodes"} {
		if !strings.Contains(string(views), `"name":"`+v+`"`) {
			t.Errorf("views export missing %s", v)
		}
	}
}
