package main

import (
	"log"

	"github.com/spf13/cobra"

	"energest-report/internal/dashboard"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the GreptimeDB export",
	Long:  "dashboard writes Grafana dashboard JSON querying the configured table prefix. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := dashboard.Render(dashboardOut, dashboard.TablesFor(cfg.Greptime.TablePrefix)); err != nil {
			return err
		}
		log.Printf("[Main] dashboards written to %s", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
}
