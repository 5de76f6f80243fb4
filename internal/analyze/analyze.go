package analyze

import (
	"math"
	"sort"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Analyzer computes derived views over a cleaned record set: grouped
// coverage summaries and single-country time series. Inputs are never
// mutated.
type Analyzer struct {
	log *logger.Logger
}

// New creates an Analyzer.
func New(log *logger.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Summarize groups records by the requested key and computes mean, max,
// min (rounded to one decimal place) and count of coverage per group.
// An unknown group key falls back to grouping by country; that is a
// logged policy choice, not an error. Rows are ordered by group value.
func (a *Analyzer) Summarize(records []dataset.Record, key dataset.GroupKey) dataset.Summary {
	if key != dataset.GroupByCountry && key != dataset.GroupByRegion {
		a.log.Warnf("grouping field %q does not exist, defaulting to %q", key, dataset.GroupByCountry)
		key = dataset.GroupByCountry
	}

	type acc struct {
		sum   float64
		max   float64
		min   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, rec := range records {
		g := rec.Country
		if key == dataset.GroupByRegion {
			g = rec.Region
		}
		cur, ok := groups[g]
		if !ok {
			groups[g] = &acc{sum: rec.Coverage, max: rec.Coverage, min: rec.Coverage, count: 1}
			continue
		}
		cur.sum += rec.Coverage
		cur.count++
		if rec.Coverage > cur.max {
			cur.max = rec.Coverage
		}
		if rec.Coverage < cur.min {
			cur.min = rec.Coverage
		}
	}

	rows := make([]dataset.SummaryRow, 0, len(groups))
	for g, cur := range groups {
		rows = append(rows, dataset.SummaryRow{
			Group: g,
			Mean:  round1(cur.sum / float64(cur.count)),
			Max:   round1(cur.max),
			Min:   round1(cur.min),
			Count: cur.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Group < rows[j].Group })

	a.log.Infof("summarization completed (grouped by %s): %d groups", key, len(rows))
	return dataset.Summary{Key: key, Rows: rows}
}

// Trend extracts the yearly coverage series for one country code,
// ascending by year. The match is exact and case-sensitive; callers
// uppercase codes first, matching the normalizer's convention. An unknown
// code yields an empty series, never an error.
func (a *Analyzer) Trend(records []dataset.Record, country string) []dataset.TrendPoint {
	points := make([]dataset.TrendPoint, 0)
	for _, rec := range records {
		if rec.Country == country {
			points = append(points, dataset.TrendPoint{Year: rec.Year, Coverage: rec.Coverage})
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	a.log.Infof("trend analysis completed for %s: %d annual records", country, len(points))
	return points
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
