package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/analyze"
	"github.com/eunbi/vaxsight/internal/chart"
	"github.com/eunbi/vaxsight/internal/dataset"
)

var (
	chartCountry string
	chartGroupBy string
	chartMetric  string
	chartTopN    int
	chartOut     string
)

// chartCmd renders charts from the stored record set without entering the
// shell.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render coverage charts",
}

var chartTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Render the annual coverage trend for one country",
	RunE:  runChartTrend,
}

var chartBarsCmd = &cobra.Command{
	Use:   "bars",
	Short: "Render a top-N group comparison bar chart",
	RunE:  runChartBars,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartTrendCmd)
	chartCmd.AddCommand(chartBarsCmd)

	chartTrendCmd.Flags().StringVar(&chartCountry, "country", "", "country code (required)")
	chartTrendCmd.Flags().StringVar(&chartOut, "out", "", "destination PNG path (default <export-dir>/trend_plot.png)")
	_ = chartTrendCmd.MarkFlagRequired("country")

	chartBarsCmd.Flags().StringVar(&chartGroupBy, "group-by", "country", "grouping key (country or region)")
	chartBarsCmd.Flags().StringVar(&chartMetric, "metric", chart.MetricMean, "metric: mean, max, min, or count")
	chartBarsCmd.Flags().IntVar(&chartTopN, "top", 10, "number of groups to show")
	chartBarsCmd.Flags().StringVar(&chartOut, "out", "", "destination PNG path (default <export-dir>/grouped_plot.png)")
}

func runChartTrend(cmd *cobra.Command, args []string) error {
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

	code := strings.ToUpper(strings.TrimSpace(chartCountry))
	points := analyze.New(log).Trend(records, code)

	out := chartOut
	if out == "" {
		if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		out = filepath.Join(cfg.ExportDir, "trend_plot.png")
	}

	if err := chart.New(log).Trend(points, code, out); err != nil {
		return err
	}
	fmt.Printf("Trend chart saved to %s\n", out)
	return nil
}

func runChartBars(cmd *cobra.Command, args []string) error {
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

	summary := analyze.New(log).Summarize(records, dataset.GroupKey(strings.ToLower(chartGroupBy)))

	out := chartOut
	if out == "" {
		if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		out = filepath.Join(cfg.ExportDir, "grouped_plot.png")
	}

	if err := chart.New(log).GroupedBars(summary, strings.ToLower(chartMetric), chartTopN, out); err != nil {
		return err
	}
	fmt.Printf("Comparison chart saved to %s\n", out)
	return nil
}
