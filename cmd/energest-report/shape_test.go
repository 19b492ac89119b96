package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"energest-report/internal/shape"
)

func runShape(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		shapeList = false
	})
	rootCmd.SetArgs(append([]string{"shape"}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("shape: %v", err)
	}
	return out.String()
}

func TestShapeCommandEnergyPerHop(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"am_1_x_64_a.log", "int_1_x_64_a.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sampleLog), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := runShape(t, "--data-dir", dir, "--variant", "piggybacking", "--view", "energy-per-hop")

	var topologies []shape.Topology
	if err := json.Unmarshal([]byte(out), &topologies); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(topologies) != 1 || topologies[0].Key != "1_64" || topologies[0].Nodes != 3 {
		t.Fatalf("unexpected topologies %+v", topologies)
	}
	for _, typ := range []string{"am", "int"} {
		s, ok := topologies[0].Lookup(typ)
		if !ok {
			t.Fatalf("missing type %s", typ)
		}
		if want := []string{"1", "2", "3"}; !reflect.DeepEqual(s.Labels, want) {
			t.Errorf("%s labels = %v, want %v", typ, s.Labels, want)
		}
		if s.Values[1] <= 0 || s.Values[0] != 0 {
			t.Errorf("%s values = %v, want energy only on node 2", typ, s.Values)
		}
	}
}

func TestShapeCommandList(t *testing.T) {
	out := runShape(t, "--list")
	if got := strings.Fields(out); !reflect.DeepEqual(got, shape.Names()) {
		t.Errorf("listed %v, want %v", got, shape.Names())
	}
}

func TestShapeCommandUnknownView(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"shape", "--data-dir", dir, "--view", "pie"})
	t.Cleanup(func() { shapeView = "total-energy-vs-hops" })
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected unknown view error")
	}
}
