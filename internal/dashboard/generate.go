// Package dashboard renders Grafana dashboards over the GreptimeDB export tables.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"energest-report/internal/report"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Tables names the exported tables the dashboards query.
type Tables struct {
	ExperimentTable string
	NodeTable       string
}

// TablesFor returns the table names a GreptimeDB writer with prefix produces.
func TablesFor(prefix string) Tables {
	return Tables{ExperimentTable: report.ExperimentTable(prefix), NodeTable: report.NodeTable(prefix)}
}

// Render executes every dashboard template and writes the results to outDir.
// Datasource identifiers come from the environment.
func Render(outDir string, tables Tables) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, e := range names {
		t, err := template.New(e.Name()).Funcs(funcMap).ParseFS(templates, "templates/"+e.Name())
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(e.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
