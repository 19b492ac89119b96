package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"energest-report/internal/energest"
	"energest-report/internal/report"
	"energest-report/internal/shape"
)

var (
	anPrintOnly bool
	anJSON      bool
	anLogFile   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze every log in the data directory",
	Long:  "analyze scans each log file in name order, prints a per-node energy summary and exports records to the configured writers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Output.LogFile = anLogFile
		}
		if cmd.Flags().Changed("json") {
			cfg.Output.JSON = anJSON
		}
		a, err := cfg.NewAnalyzer()
		if err != nil {
			return err
		}

		settings := &report.Settings{
			DataDir: cfg.DataDir,
			Variant: a.Variant,
			Cutoff:  cfg.ExecutionTimeS,
			RunID:   a.RunID,
			Labels:  cfg.Labels,
		}
		if settings.Cutoff == 0 {
			settings.Cutoff = a.Variant.DefaultCutoff()
		}
		ws, err := newWriters(cfg, settings, anPrintOnly, isTerminal(os.Stdout))
		if err != nil {
			return err
		}
		defer ws.cleanup()

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var recs []energest.ExperimentRecord
		err = a.Walk(ctx, cfg.DataDir, func(rec energest.ExperimentRecord) error {
			recs = append(recs, rec)
			return ws.console.Write(rec)
		})
		if err != nil {
			return err
		}
		if ws.export != nil {
			if err := report.WriteAll(ws.export, recs); err != nil {
				return err
			}
		}

		if ws.file != nil {
			for _, name := range shape.Names() {
				data, err := shape.Build(name, recs)
				if err != nil {
					log.Printf("[Main] view %s skipped: %v", name, err)
					continue
				}
				if err := ws.file.WriteView(name, data); err != nil {
					return err
				}
			}
		}
		log.Printf("[Main] analyzed %d files (run %s)", len(recs), a.RunID)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&anPrintOnly, "print-only", false, "Print summaries to STDOUT instead of writing to GreptimeDB")
	analyzeCmd.Flags().BoolVar(&anJSON, "json", false, "Print records as JSON lines")
	analyzeCmd.Flags().StringVar(&anLogFile, "log-file", "", "Path to export records (JSONL); views go to <path>.views")
}
