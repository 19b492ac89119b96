package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"energest-report/internal/browse"
	"energest-report/internal/logging"
)

var browseLog string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse records and views in a terminal UI",
	Long:  "browse streams records into a terminal table as files are analyzed. Log output goes to --debug-log while the UI owns the screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := cfg.NewAnalyzer()
		if err != nil {
			return err
		}

		f, err := os.OpenFile(browseLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
		ctx := logging.NewContext(baseContext(cmd), logging.NewWithLevel(f, logLevel()))

		w := browse.NewWriter(cfg.Labels)
		if err := a.Walk(ctx, cfg.DataDir, w.Write); err != nil {
			w.Quit()
			return err
		}
		return w.Wait()
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseLog, "debug-log", "energest-browse.log", "File receiving log output while the UI runs")
}
