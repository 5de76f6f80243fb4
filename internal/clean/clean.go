package clean

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Source columns recognized in the WHO extract. The country code column is
// the identity field; the free-text spatial dimension is kept as a label
// only.
const (
	ColCountryCode = "SpatialDimensionValueCode"
	ColCountryName = "SpatialDimension"
	ColYear        = "TimeDimensionValue"
	ColCoverage    = "NumericValue"
	ColRegion      = "ParentLocation"
)

// Bounds enforced on cleaned records.
const (
	MinYear     = 1980
	MaxYear     = 2025
	MinCoverage = 0.0
	MaxCoverage = 100.0
)

// SchemaError reports that the raw extract is missing source columns
// required to resolve country, year, and coverage. It is fatal to the
// whole cleaning call; no partial record set is produced.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("raw extract is missing required columns: %s",
		strings.Join(e.Missing, ", "))
}

// Report holds per-stage row counts for one cleaning run. Rows removed by
// validation are not errors; the counts here are the diagnostic record of
// what was dropped and why.
type Report struct {
	Input           int
	DroppedCountry  int // null or blank country code
	DroppedYear     int // non-numeric or out-of-range year
	DroppedCoverage int // non-numeric or out-of-range coverage
	Duplicates      int // repeated (country, year) pairs
	Output          int

	CoverageMean float64
	CoverageMin  float64
	CoverageMax  float64
}

// ValidityRate returns the fraction of input rows that survived cleaning.
func (r Report) ValidityRate() float64 {
	if r.Input == 0 {
		return 0
	}
	return float64(r.Output) / float64(r.Input)
}

// Normalizer turns loosely-structured raw rows into the canonical record
// set. The stages run in a fixed order, each over the survivors of the
// previous one.
type Normalizer struct {
	log    *logger.Logger
	titler cases.Caser
}

// New creates a Normalizer.
func New(log *logger.Logger) *Normalizer {
	return &Normalizer{
		log:    log,
		titler: cases.Title(language.Und),
	}
}

// Clean maps, validates, formats, and deduplicates the raw rows.
// It returns a SchemaError if the extract cannot resolve all of country,
// year, and coverage; validation failures on individual rows only shrink
// the result.
func (n *Normalizer) Clean(raw []dataset.Raw) ([]dataset.Record, Report, error) {
	report := Report{Input: len(raw)}

	// Stage 1: field mapping. Column presence is a property of the whole
	// extract, so one missing required column fails the run.
	cols := columnSet(raw)
	var missing []string
	for _, col := range []string{ColCountryCode, ColYear, ColCoverage} {
		if !cols[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, report, &SchemaError{Missing: missing}
	}
	hasName := cols[ColCountryName]
	hasRegion := cols[ColRegion]

	records := make([]dataset.Record, 0, len(raw))
	for _, row := range raw {
		// Stage 2: country code must be present and non-blank.
		country := strings.TrimSpace(row[ColCountryCode])
		if country == "" {
			report.DroppedCountry++
			continue
		}

		// Stage 3: year must coerce to an integer in range.
		year, ok := parseYear(row[ColYear])
		if !ok || year < MinYear || year > MaxYear {
			report.DroppedYear++
			continue
		}

		// Stage 4: coverage must coerce to a float in range.
		coverage, ok := parseFloat(row[ColCoverage])
		if !ok || coverage < MinCoverage || coverage > MaxCoverage {
			report.DroppedCoverage++
			continue
		}

		// Stage 5: formatting.
		rec := dataset.Record{
			Country:  strings.ToUpper(country),
			Year:     year,
			Coverage: coverage,
		}
		if hasName {
			rec.CountryName = n.titleCase(row[ColCountryName])
		}
		if hasRegion {
			rec.Region = n.titleCase(row[ColRegion])
		}
		records = append(records, rec)
	}

	n.log.Infof("country validation: dropped %d rows with null or blank codes", report.DroppedCountry)
	n.log.Infof("year validation: dropped %d rows outside [%d, %d] or non-numeric", report.DroppedYear, MinYear, MaxYear)
	n.log.Infof("coverage validation: dropped %d rows outside [%.0f, %.0f] or non-numeric", report.DroppedCoverage, MinCoverage, MaxCoverage)

	// Stage 6: deduplicate on (country, year), keeping the first
	// occurrence under input order.
	records, report.Duplicates = dedupe(records)
	n.log.Infof("deduplication: removed %d duplicate (country, year) records", report.Duplicates)

	report.Output = len(records)
	summarizeCoverage(&report, records)

	n.log.WithFields(map[string]interface{}{
		"input":         report.Input,
		"output":        report.Output,
		"validity_rate": fmt.Sprintf("%.1f%%", report.ValidityRate()*100),
	}).Info("cleaning completed")

	return records, report, nil
}

// columnSet returns the union of column names across all rows.
func columnSet(raw []dataset.Raw) map[string]bool {
	cols := make(map[string]bool)
	for _, row := range raw {
		for k := range row {
			cols[k] = true
		}
	}
	return cols
}

type recordKey struct {
	country string
	year    int
}

func dedupe(records []dataset.Record) ([]dataset.Record, int) {
	seen := make(map[recordKey]bool, len(records))
	out := records[:0]
	removed := 0
	for _, rec := range records {
		key := recordKey{rec.Country, rec.Year}
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out, removed
}

// parseYear coerces a cell to an integer year. Fractional values are
// rejected rather than truncated.
func parseYear(s string) (int, bool) {
	f, ok := parseFloat(s)
	if !ok {
		return 0, false
	}
	year := int(f)
	if float64(year) != f {
		return 0, false
	}
	return year, true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (n *Normalizer) titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return n.titler.String(s)
}

func summarizeCoverage(report *Report, records []dataset.Record) {
	if len(records) == 0 {
		return
	}
	sum := 0.0
	report.CoverageMin = records[0].Coverage
	report.CoverageMax = records[0].Coverage
	for _, rec := range records {
		sum += rec.Coverage
		if rec.Coverage < report.CoverageMin {
			report.CoverageMin = rec.Coverage
		}
		if rec.Coverage > report.CoverageMax {
			report.CoverageMax = rec.Coverage
		}
	}
	report.CoverageMean = sum / float64(len(records))
}
