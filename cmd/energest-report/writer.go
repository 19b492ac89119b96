package main

import (
	"log"
	"os"

	"golang.org/x/term"

	"energest-report/internal/config"
	"energest-report/internal/report"
)

// writers splits output into the console, which streams one summary per file,
// and exports, which receive the whole run as a single batch.
type writers struct {
	console report.RecordWriter
	export  report.RecordWriter
	file    *report.FileWriter
	cleanup func()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newWriters builds the console writer, then adds GreptimeDB and JSONL exports
// when they are configured. export is nil when nothing is exported.
func newWriters(cfg *config.Config, settings *report.Settings, printOnly, tty bool) (*writers, error) {
	ws := &writers{console: consoleWriter(cfg, settings, tty), cleanup: func() {}}
	var exports []report.RecordWriter

	if !printOnly && cfg.Greptime.Endpoint != "" {
		gw, err := report.NewGreptimeDBWriter(cfg.Greptime.Endpoint, cfg.Greptime.Database, cfg.Greptime.TablePrefix)
		if err != nil {
			return nil, err
		}
		exports = append(exports, gw)
	} else {
		log.Println("[Main] Print-only mode: records will not be exported to GreptimeDB")
	}

	if cfg.Output.LogFile != "" {
		fw, err := report.NewFileWriter(cfg.Output.LogFile, cfg.Output.LogFile+".views")
		if err != nil {
			return nil, err
		}
		ws.file = fw
		ws.cleanup = func() { fw.Close() }
		exports = append(exports, fw)
	}

	switch len(exports) {
	case 0:
	case 1:
		ws.export = exports[0]
	default:
		ws.export = report.NewMultiWriter(exports...)
	}
	return ws, nil
}

func consoleWriter(cfg *config.Config, settings *report.Settings, tty bool) report.RecordWriter {
	switch {
	case cfg.Output.JSON:
		return report.NewJSONStdoutWriter()
	case tty:
		return report.NewColorStdoutWriter(settings)
	default:
		return report.NewStdoutWriter()
	}
}
