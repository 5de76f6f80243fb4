package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/clean"
	"github.com/eunbi/vaxsight/internal/ingest"
)

// ingestCmd runs the cleaning pipeline once: read the local extract,
// normalize it, and replace the stored record set.
var ingestCmd = &cobra.Command{
	Use:   "ingest [csv-path]",
	Short: "Clean the local extract and replace the stored data",
	Long: `Reads the MCV2 CSV extract, runs the cleaning pipeline (field mapping,
country/year/coverage validation, formatting, deduplication), and
atomically replaces the stored record set.

The path defaults to VAXSIGHT_CSV_PATH.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	csvPath := cfg.CSVPath
	if len(args) == 1 {
		csvPath = args[0]
	}

	db, repo, err := openRepo(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline := ingest.NewPipeline(ingest.NewReader(log), clean.New(log), repo, log)
	records, report, err := pipeline.Run(cmd.Context(), csvPath)
	if err != nil {
		return err
	}

	fmt.Printf("Ingestion complete: %d raw rows -> %d records (validity %.1f%%)\n",
		report.Input, len(records), report.ValidityRate()*100)
	printReport(report)
	return nil
}

func printReport(report clean.Report) {
	fmt.Printf("  dropped: %d null country, %d bad year, %d bad coverage, %d duplicates\n",
		report.DroppedCountry, report.DroppedYear, report.DroppedCoverage, report.Duplicates)
	if report.Output > 0 {
		fmt.Printf("  coverage: avg %.1f%%, range [%.1f%%, %.1f%%]\n",
			report.CoverageMean, report.CoverageMin, report.CoverageMax)
	}
}
