package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"energest-report/internal/config"
	"energest-report/internal/logging"
)

var (
	cfgPath       string
	schemaPath    string
	dataDir       string
	variant       string
	executionTime float64
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "energest-report",
	Short: "Energy reports for WSN simulator logs",
	Long:  "energest-report scans Contiki energest simulator logs and reports per-node energy, charge and telemetry byte counts.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Path to analysis configuration YAML")
	pf.StringVar(&schemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	pf.StringVar(&dataDir, "data-dir", "", "Directory containing simulator logs")
	pf.StringVar(&variant, "variant", "", "Analysis variant: data, piggybacking or full")
	pf.Float64Var(&executionTime, "execution-time", 0, "Simulated seconds to analyze after the join marker (0 uses the variant default)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log per-line parse failures and debug output")

	rootCmd.AddCommand(analyzeCmd, shapeCmd, browseCmd, serveCmd, dashboardCmd)
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath, schemaPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("variant") {
		cfg.Variant = variant
	}
	if flags.Changed("execution-time") {
		cfg.ExecutionTimeS = executionTime
	}
	return cfg, nil
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// commandContext attaches the CLI logger, writing to STDERR, to the command's context.
func commandContext(cmd *cobra.Command) context.Context {
	return logging.NewContext(baseContext(cmd), logging.NewWithLevel(os.Stderr, logLevel()))
}
