package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/export"
	"github.com/eunbi/vaxsight/internal/query"
	"github.com/eunbi/vaxsight/internal/shell"
)

var (
	exportOut         string
	exportCountries   []string
	exportYearStart   int
	exportYearEnd     int
	exportRegions     []string
	exportCoverageMin float64
)

// exportCmd writes the stored record set (optionally filtered) to CSV
// without entering the shell.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to CSV",
	Long: `Loads the stored record set, applies any filter flags, and writes the
result as UTF-8 CSV (with BOM). The destination directory must exist.

Examples:
  vaxsight export --out exports/mcv2.csv
  vaxsight export --country CHN --country USA --year-start 2010 --out exports/asia.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "destination CSV path (default <export-dir>/mcv2_records.csv)")
	exportCmd.Flags().StringArrayVar(&exportCountries, "country", nil, "country code filter (repeatable)")
	exportCmd.Flags().IntVar(&exportYearStart, "year-start", 0, "inclusive start year")
	exportCmd.Flags().IntVar(&exportYearEnd, "year-end", 0, "inclusive end year")
	exportCmd.Flags().StringArrayVar(&exportRegions, "region", nil, "region filter (repeatable)")
	exportCmd.Flags().Float64Var(&exportCoverageMin, "coverage-min", -1, "inclusive minimum coverage rate")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, repo, err := openRepo(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	records, found, err := repo.LoadAll(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no stored data; run 'vaxsight ingest' first")
	}

	criteria := query.Criteria{}
	for _, code := range exportCountries {
		criteria.Countries = append(criteria.Countries, shell.SplitCodes(code)...)
	}
	if cmd.Flags().Changed("year-start") {
		criteria.YearStart = &exportYearStart
	}
	if cmd.Flags().Changed("year-end") {
		criteria.YearEnd = &exportYearEnd
	}
	for _, region := range exportRegions {
		criteria.Regions = append(criteria.Regions, shell.TitleRegion(region))
	}
	if cmd.Flags().Changed("coverage-min") {
		criteria.CoverageMin = &exportCoverageMin
	}

	if !criteria.IsZero() {
		records = query.New(log).Filter(records, criteria)
	}
	if len(records) == 0 {
		return fmt.Errorf("nothing to export: no records match the filters")
	}

	out := exportOut
	if out == "" {
		out = filepath.Join(cfg.ExportDir, "mcv2_records.csv")
	}
	if err := export.New(log).Records(records, out); err != nil {
		return err
	}

	fmt.Printf("Exported %d records to %s\n", len(records), out)
	return nil
}
