package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// ErrMissingDir is returned when the destination's parent directory does
// not exist. The exporter never creates directories on the caller's
// behalf.
var ErrMissingDir = errors.New("export directory does not exist")

// utf8BOM is prepended to every export so spreadsheet tools detect the
// encoding and non-ASCII country names survive a round trip.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Exporter writes derived data sets to CSV files. A file is either written
// completely or not at all: output goes to a temp file that is renamed
// into place only on success.
type Exporter struct {
	log *logger.Logger
}

// New creates an Exporter.
func New(log *logger.Logger) *Exporter {
	return &Exporter{log: log}
}

// Records exports cleaned records.
func (e *Exporter) Records(records []dataset.Record, path string) error {
	header := []string{"country", "country_name", "year", "mcv2_coverage", "region"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Country,
			rec.CountryName,
			strconv.Itoa(rec.Year),
			strconv.FormatFloat(rec.Coverage, 'f', -1, 64),
			rec.Region,
		})
	}
	return e.write(path, header, rows)
}

// Summary exports a grouped summary. Column labels match the analyst-facing
// names used in charts.
func (e *Exporter) Summary(s dataset.Summary, path string) error {
	groupLabel := "country"
	if s.Key == dataset.GroupByRegion {
		groupLabel = "Region"
	}
	header := []string{
		groupLabel,
		"MCV2 Coverage Avg (%)",
		"MCV2 Coverage Max (%)",
		"MCV2 Coverage Min (%)",
		"Record Count",
	}
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, []string{
			row.Group,
			formatStat(row.Mean),
			formatStat(row.Max),
			formatStat(row.Min),
			strconv.Itoa(row.Count),
		})
	}
	return e.write(path, header, rows)
}

// Trend exports a single-country yearly series.
func (e *Exporter) Trend(points []dataset.TrendPoint, path string) error {
	header := []string{"Year", "MCV2 Coverage Rate (%)"}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.FormatFloat(p.Coverage, 'f', -1, 64),
		})
	}
	return e.write(path, header, rows)
}

func (e *Exporter) write(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDir, dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(utf8BOM); err != nil {
		tmp.Close()
		return fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("finalize export: %w", err)
	}

	e.log.Infof("exported %d rows to %s", len(rows), path)
	return nil
}

// formatStat prints a one-decimal statistic the way the charts label it.
func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
