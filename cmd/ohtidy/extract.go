package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantifiedwork/ohtidy/internal/config"
	"github.com/quantifiedwork/ohtidy/internal/loader"
	"github.com/quantifiedwork/ohtidy/internal/ohops"
	"github.com/quantifiedwork/ohtidy/internal/types"
)

func newExtractCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the extraction job described by a YAML config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			table, err := runJob(cfg)
			if err != nil {
				return err
			}
			return writeOutput(table, cfg.Output.CSV)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "ohtidy.yaml", "job config file")
	return cmd
}

// runJob executes a full job: load, filter, extract each spec, merge the
// results, then derive and fill per the compose section.
func runJob(cfg *config.JobConfig) (types.TidyTable, error) {
	profiles, report, err := loader.LoadProfiles(cfg.Profiles.Dir, nil)
	if err != nil {
		return types.TidyTable{}, err
	}
	log.Printf("loaded %d profiles (%d failed)", report.Loaded, report.Failed)
	for _, e := range report.Errors {
		log.Printf("  %s", e)
	}

	profiles = ohops.ApplyFilters(profiles, cfg.Profiles.FilterSpec())
	log.Printf("%d subjects after filtering", profiles.Len())

	var merged types.TidyTable
	for _, e := range cfg.Extracts {
		spec := e.Spec()
		spec.DateRange = cfg.Profiles.DateRange
		table, summary, err := ohops.ExtractNested(profiles, spec)
		if err != nil {
			return types.TidyTable{}, fmt.Errorf("extract %q: %w", e.Name, err)
		}
		log.Printf("extract %q: %d rows, %d columns, %d subjects (%dms)",
			e.Name, summary.Rows, summary.Columns, summary.Subjects, summary.DurationMS)
		if summary.Dropped > 0 {
			log.Printf("extract %q: %d branches outside the date range", e.Name, summary.Dropped)
		}
		merged, err = ohops.OuterMerge(merged, table, cfg.Compose.MergeOn)
		if err != nil {
			return types.TidyTable{}, fmt.Errorf("merge %q: %w", e.Name, err)
		}
	}

	c := cfg.Compose
	if c.Side != "" {
		res, err := ohops.HandleSides(merged, ohops.SideMode(c.Side), c.DateCol())
		if err != nil {
			return types.TidyTable{}, err
		}
		if res.Dropped > 0 {
			log.Printf("side handling dropped %d rows", res.Dropped)
		}
		merged = res.Table
	}
	if c.AddWeekday {
		merged = ohops.AddWeekday(merged, c.DateCol())
	}
	if c.AddSessionNumber {
		merged = ohops.AddSessionNumber(merged, c.DateCol(), c.SessionCol())
	}
	if c.AddDayIndex {
		merged = ohops.AddDayIndex(merged, c.DateCol())
	}
	if c.Autofill != nil {
		merged = ohops.AutofillGroups(merged, *c.Autofill)
	}

	log.Printf("composed table: %d rows, %d columns", len(merged.Rows), len(merged.Columns))
	return merged, nil
}

func writeOutput(t types.TidyTable, path string) error {
	if path == "" || path == "-" {
		return writeCSV(os.Stdout, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := writeCSV(f, t); err != nil {
		return err
	}
	log.Printf("wrote %s", path)
	return nil
}

// writeCSV renders a tidy table; missing cells render as empty fields.
func writeCSV(w io.Writer, t types.TidyTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j, col := range t.Columns {
			record[j] = t.Cell(i, col).Text()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
