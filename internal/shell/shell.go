package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/eunbi/vaxsight/internal/analyze"
	"github.com/eunbi/vaxsight/internal/chart"
	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/internal/export"
	"github.com/eunbi/vaxsight/internal/ingest"
	"github.com/eunbi/vaxsight/internal/query"
	"github.com/eunbi/vaxsight/internal/store"
	"github.com/eunbi/vaxsight/pkg/config"
	"github.com/eunbi/vaxsight/pkg/logger"
)

const previewRows = 5

// Shell is the interactive menu over the cleaned record set. It owns no
// analysis logic: every operation is delegated to the pipeline, query
// engine, analyzer, exporter, or renderer, and every recoverable failure
// is printed and survived so the session never dies on bad input.
type Shell struct {
	cfg      *config.Config
	log      *logger.Logger
	repo     *store.Repository
	pipeline *ingest.Pipeline
	engine   *query.Engine
	analyzer *analyze.Analyzer
	exporter *export.Exporter
	renderer *chart.Renderer

	in  *bufio.Scanner
	out io.Writer

	records   []dataset.Record // full cleaned set for this session
	current   []dataset.Record // latest filter result
	summary   *dataset.Summary // latest grouped summary
	trend     []dataset.TrendPoint
	trendCode string
	codes     []string
}

// New creates a Shell reading from in and writing to out.
func New(
	cfg *config.Config,
	log *logger.Logger,
	repo *store.Repository,
	pipeline *ingest.Pipeline,
	engine *query.Engine,
	analyzer *analyze.Analyzer,
	exporter *export.Exporter,
	renderer *chart.Renderer,
	in io.Reader,
	out io.Writer,
) *Shell {
	return &Shell{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		pipeline: pipeline,
		engine:   engine,
		analyzer: analyzer,
		exporter: exporter,
		renderer: renderer,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run loads the record set (ingesting the local extract on first run) and
// serves the menu until the analyst exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintln(s.out, "          MCV2 Vaccine Coverage Data Insight Dashboard")
	fmt.Fprintln(s.out, "          (filter by country code, e.g. CHN, USA)")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))

	if err := s.ensureData(ctx); err != nil {
		return err
	}
	s.current = s.records

	fmt.Fprintf(s.out, "Data ready: %d records, %d country codes.\n", len(s.records), len(s.codes))

	for {
		s.printMenu()
		choice, ok := s.prompt("Enter function number (1-7): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			s.doFilter()
		case "2":
			s.doSummarize()
		case "3":
			s.doTrend()
		case "4":
			s.doVisualize()
		case "5":
			s.doExport()
		case "6":
			s.doCodes()
		case "7":
			fmt.Fprintln(s.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice, please enter a number from 1 to 7.")
		}
	}
}

// ensureData loads stored records, running a full ingestion from the local
// extract when the store is absent or empty.
func (s *Shell) ensureData(ctx context.Context) error {
	records, found, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load stored records: %w", err)
	}

	if !found {
		fmt.Fprintf(s.out, "No stored data found, ingesting %s...\n", s.cfg.CSVPath)
		if _, _, err := s.pipeline.Run(ctx, s.cfg.CSVPath); err != nil {
			return fmt.Errorf("ingest extract: %w", err)
		}
		records, found, err = s.repo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("reload stored records: %w", err)
		}
		if !found {
			return fmt.Errorf("store is still empty after ingestion")
		}
	}

	s.records = records
	s.codes, err = s.repo.CountryCodes(ctx)
	if err != nil {
		return fmt.Errorf("list country codes: %w", err)
	}
	return nil
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "\n"+strings.Repeat("-", 60))
	fmt.Fprintln(s.out, "Please select a function:")
	fmt.Fprintln(s.out, "1. Filter data (country code / year / region / coverage threshold)")
	fmt.Fprintln(s.out, "2. Summarize data (group by country code or region)")
	fmt.Fprintln(s.out, "3. Trend analysis (annual coverage by country code)")
	fmt.Fprintln(s.out, "4. Visualize (trend chart / group comparison chart)")
	fmt.Fprintln(s.out, "5. Export data (CSV)")
	fmt.Fprintln(s.out, "6. View all available country codes")
	fmt.Fprintln(s.out, "7. Exit")
	fmt.Fprintln(s.out, strings.Repeat("-", 60))
}

func (s *Shell) doFilter() {
	fmt.Fprintln(s.out, "\n=== Filter data ===")
	if len(s.codes) > 0 {
		sample := s.codes
		if len(sample) > 5 {
			sample = sample[:5]
		}
		fmt.Fprintf(s.out, "Tip: example country codes: %s (total %d)\n",
			strings.Join(sample, ", "), len(s.codes))
	}

	var criteria query.Criteria

	if input, ok := s.prompt("1. Country codes (comma separated, e.g. CHN,USA; Enter for all): "); ok && input != "" {
		codes := SplitCodes(input)
		valid, invalid := partitionCodes(codes, s.codes)
		if len(invalid) > 0 {
			fmt.Fprintf(s.out, "Warning: unknown country codes ignored: %s\n", strings.Join(invalid, ", "))
		}
		if len(valid) > 0 {
			criteria.Countries = valid
		} else if len(codes) > 0 {
			fmt.Fprintln(s.out, "Warning: no valid country codes, not filtering by country.")
		}
	}

	if input, ok := s.prompt("2. Start year (e.g. 2010; Enter for no limit): "); ok && input != "" {
		year, err := ParseYearInput(input)
		if err != nil {
			fmt.Fprintf(s.out, "Warning: %v, ignoring start year.\n", err)
		} else {
			criteria.YearStart = year
		}
	}
	if input, ok := s.prompt("3. End year (e.g. 2020; Enter for no limit): "); ok && input != "" {
		year, err := ParseYearInput(input)
		if err != nil {
			fmt.Fprintf(s.out, "Warning: %v, ignoring end year.\n", err)
		} else {
			criteria.YearEnd = year
		}
	}

	if input, ok := s.prompt("4. Region (e.g. Africa; Enter for all): "); ok && input != "" {
		criteria.Regions = []string{TitleRegion(input)}
	}

	if input, ok := s.prompt("5. Minimum coverage rate (e.g. 50; Enter for no limit): "); ok && input != "" {
		min, err := ParseCoverageInput(input)
		if err != nil {
			fmt.Fprintf(s.out, "Warning: %v, ignoring coverage threshold.\n", err)
		} else {
			criteria.CoverageMin = min
		}
	}

	s.current = s.engine.Filter(s.records, criteria)
	fmt.Fprintf(s.out, "\nFiltering complete: %d records found.\n", len(s.current))
	s.printPreview(s.current)
}

func (s *Shell) doSummarize() {
	fmt.Fprintln(s.out, "\n=== Summarize data ===")
	input, ok := s.prompt("Group by (country/region, default country): ")
	if !ok {
		return
	}
	key := dataset.GroupKey(strings.ToLower(strings.TrimSpace(input)))
	if key == "" {
		key = dataset.GroupByCountry
	}

	summary := s.analyzer.Summarize(s.current, key)
	s.summary = &summary

	fmt.Fprintf(s.out, "Summary complete (grouped by %s): %d groups.\n", summary.Key, len(summary.Rows))
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tAVG (%)\tMAX (%)\tMIN (%)\tCOUNT")
	for _, row := range summary.Rows {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%d\n", row.Group, row.Mean, row.Max, row.Min, row.Count)
	}
	w.Flush()
}

func (s *Shell) doTrend() {
	fmt.Fprintln(s.out, "\n=== Trend analysis ===")
	input, ok := s.prompt("Country code (e.g. CHN): ")
	if !ok || strings.TrimSpace(input) == "" {
		fmt.Fprintln(s.out, "A country code is required.")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(input))

	s.trend = s.analyzer.Trend(s.current, code)
	s.trendCode = code

	if len(s.trend) == 0 {
		fmt.Fprintf(s.out, "No data for country code %s in the current selection.\n", code)
		return
	}

	fmt.Fprintf(s.out, "Trend for %s: %d annual records.\n", code, len(s.trend))
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tCOVERAGE (%)")
	for _, p := range s.trend {
		fmt.Fprintf(w, "%d\t%.1f\n", p.Year, p.Coverage)
	}
	w.Flush()
}

func (s *Shell) doVisualize() {
	fmt.Fprintln(s.out, "\n=== Visualize ===")
	choice, ok := s.prompt("1. Trend chart  2. Group comparison chart: ")
	if !ok {
		return
	}

	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		fmt.Fprintf(s.out, "Error: cannot create chart directory: %v\n", err)
		return
	}

	switch choice {
	case "1":
		if len(s.trend) == 0 {
			fmt.Fprintln(s.out, "Run a trend analysis (option 3) with data first.")
			return
		}
		path := filepath.Join(s.cfg.ExportDir, "trend_plot.png")
		if err := s.renderer.Trend(s.trend, s.trendCode, path); err != nil {
			fmt.Fprintf(s.out, "Error: trend chart failed: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "Trend chart saved: %s\n", path)
	case "2":
		if s.summary == nil || len(s.summary.Rows) == 0 {
			fmt.Fprintln(s.out, "Run a summary (option 2) with data first.")
			return
		}
		metric, ok := s.prompt("Metric (mean/max/min/count, default mean): ")
		if !ok {
			return
		}
		metric = strings.ToLower(strings.TrimSpace(metric))
		if metric == "" {
			metric = chart.MetricMean
		}
		topN := 10
		if input, ok := s.prompt("Top N groups (default 10): "); ok && input != "" {
			n, err := ParseIntInput(input)
			if err != nil || *n <= 0 {
				fmt.Fprintln(s.out, "Warning: invalid N, using 10.")
			} else {
				topN = *n
			}
		}
		path := filepath.Join(s.cfg.ExportDir, "grouped_plot.png")
		if err := s.renderer.GroupedBars(*s.summary, metric, topN, path); err != nil {
			fmt.Fprintf(s.out, "Error: comparison chart failed: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "Comparison chart saved: %s\n", path)
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
	}
}

func (s *Shell) doExport() {
	fmt.Fprintln(s.out, "\n=== Export data (CSV) ===")
	choice, ok := s.prompt("1. Filtered records  2. Summary  3. Trend: ")
	if !ok {
		return
	}

	var defaultName string
	switch choice {
	case "1":
		defaultName = "mcv2_filtered.csv"
	case "2":
		defaultName = "mcv2_summary.csv"
	case "3":
		defaultName = "mcv2_trend.csv"
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
		return
	}

	path := filepath.Join(s.cfg.ExportDir, defaultName)
	if input, ok := s.prompt(fmt.Sprintf("Output path (default %s): ", path)); ok && input != "" {
		path = input
	}

	var err error
	switch choice {
	case "1":
		if len(s.current) == 0 {
			fmt.Fprintln(s.out, "Nothing to export: current selection is empty.")
			return
		}
		err = s.exporter.Records(s.current, path)
	case "2":
		if s.summary == nil || len(s.summary.Rows) == 0 {
			fmt.Fprintln(s.out, "Nothing to export: run a summary (option 2) first.")
			return
		}
		err = s.exporter.Summary(*s.summary, path)
	case "3":
		if len(s.trend) == 0 {
			fmt.Fprintln(s.out, "Nothing to export: run a trend analysis (option 3) first.")
			return
		}
		err = s.exporter.Trend(s.trend, path)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: export failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Export complete: %s\n", path)
}

func (s *Shell) doCodes() {
	fmt.Fprintf(s.out, "\nAvailable country codes (%d):\n", len(s.codes))
	for i := 0; i < len(s.codes); i += 10 {
		end := i + 10
		if end > len(s.codes) {
			end = len(s.codes)
		}
		fmt.Fprintln(s.out, strings.Join(s.codes[i:end], "  "))
	}
}

func (s *Shell) printPreview(records []dataset.Record) {
	if len(records) == 0 {
		return
	}
	n := len(records)
	if n > previewRows {
		n = previewRows
	}
	fmt.Fprintf(s.out, "Preview (first %d rows):\n", n)
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tYEAR\tCOVERAGE (%)\tREGION")
	for _, rec := range records[:n] {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%s\n", rec.Country, rec.Year, rec.Coverage, rec.Region)
	}
	w.Flush()
}

// prompt prints label and reads one trimmed line. ok is false once input
// is exhausted.
func (s *Shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}
