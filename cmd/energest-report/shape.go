package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"energest-report/internal/shape"
)

var (
	shapeView string
	shapeList bool
)

var shapeCmd = &cobra.Command{
	Use:   "shape",
	Short: "Print a comparison view as JSON",
	Long:  "shape analyzes the data directory and prints the series behind one comparison view.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if shapeList {
			for _, n := range shape.Names() {
				fmt.Fprintln(out, n)
			}
			return nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := cfg.NewAnalyzer()
		if err != nil {
			return err
		}
		recs, err := a.AnalyzeDir(commandContext(cmd), cfg.DataDir)
		if err != nil {
			return err
		}
		data, err := shape.Build(shapeView, recs)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	},
}

func init() {
	shapeCmd.Flags().StringVar(&shapeView, "view", "total-energy-vs-hops", "View to print (see --list)")
	shapeCmd.Flags().BoolVar(&shapeList, "list", false, "List available views")
}
