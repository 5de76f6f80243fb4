package dataset

// Raw is a single row of the source extract as delivered: column name to
// cell value, with no schema guarantees beyond what the header declared.
type Raw map[string]string

// Record is a validated, normalized vaccination-coverage observation.
// (Country, Year) is the natural key; the cleaned set holds at most one
// record per key.
type Record struct {
	Country     string  // country code (uppercase, never empty)
	CountryName string  // free-text label, descriptive only (optional)
	Year        int     // within [1980, 2025]
	Coverage    float64 // MCV2 coverage percentage, within [0, 100]
	Region      string  // parent region, descriptive grouping label (optional)
}

// GroupKey selects the attribute summaries are grouped by.
type GroupKey string

const (
	GroupByCountry GroupKey = "country"
	GroupByRegion  GroupKey = "region"
)

// SummaryRow holds the coverage statistics for one group value.
// Mean, Max and Min are rounded to one decimal place.
type SummaryRow struct {
	Group string
	Mean  float64
	Max   float64
	Min   float64
	Count int
}

// Summary is the result of grouping records and aggregating coverage.
// Key is the key actually used, which may differ from the requested one
// when the analyzer fell back to grouping by country.
type Summary struct {
	Key  GroupKey
	Rows []SummaryRow
}

// TrendPoint is one year of coverage for a single country.
type TrendPoint struct {
	Year     int
	Coverage float64
}
