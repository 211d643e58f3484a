package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantifiedwork/ohtidy/internal/config"
	"github.com/quantifiedwork/ohtidy/internal/ohops"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		variance   bool
		missing    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run a job and print outcome descriptives instead of the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			table, err := runJob(cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			switch {
			case variance:
				return enc.Encode(ohops.CheckVariance(table, nil))
			case missing:
				return enc.Encode(ohops.Missingness(table, nil))
			default:
				return enc.Encode(ohops.SummarizeOutcomes(table, nil))
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "ohtidy.yaml", "job config file")
	cmd.Flags().BoolVar(&variance, "variance", false, "report degenerate-variance checks")
	cmd.Flags().BoolVar(&missing, "missing", false, "report per-outcome missingness")
	return cmd
}
