package query

import (
	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Criteria is a set of independently-optional filters over the cleaned
// record set. Absent criteria are no-ops; present criteria compose with
// logical AND.
type Criteria struct {
	Countries   []string // keep records whose country code is a member
	YearStart   *int     // inclusive lower bound on year
	YearEnd     *int     // inclusive upper bound on year
	Regions     []string // keep records whose region is a member
	CoverageMin *float64 // inclusive lower bound on coverage
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return len(c.Countries) == 0 && c.YearStart == nil && c.YearEnd == nil &&
		len(c.Regions) == 0 && c.CoverageMin == nil
}

// Engine filters cleaned record sets. It never mutates its input and
// never fails: criteria that match nothing simply yield fewer rows.
type Engine struct {
	log *logger.Logger
}

// New creates an Engine.
func New(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// Filter returns the records satisfying every present criterion, in input
// order. The result may be empty.
func (e *Engine) Filter(records []dataset.Record, c Criteria) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}

	if len(c.Countries) > 0 {
		out = keep(out, func(r dataset.Record) bool {
			return contains(c.Countries, r.Country)
		})
		e.log.Infof("filtered by country codes %v: %d rows remain", c.Countries, len(out))
	}

	if c.YearStart != nil {
		out = keep(out, func(r dataset.Record) bool {
			return r.Year >= *c.YearStart
		})
		e.log.Infof("filtered by start year %d: %d rows remain", *c.YearStart, len(out))
	}
	if c.YearEnd != nil {
		out = keep(out, func(r dataset.Record) bool {
			return r.Year <= *c.YearEnd
		})
		e.log.Infof("filtered by end year %d: %d rows remain", *c.YearEnd, len(out))
	}

	if len(c.Regions) > 0 {
		out = keep(out, func(r dataset.Record) bool {
			return contains(c.Regions, r.Region)
		})
		e.log.Infof("filtered by regions %v: %d rows remain", c.Regions, len(out))
	}

	if c.CoverageMin != nil {
		out = keep(out, func(r dataset.Record) bool {
			return r.Coverage >= *c.CoverageMin
		})
		e.log.Infof("filtered by minimum coverage %.1f%%: %d rows remain", *c.CoverageMin, len(out))
	}

	return out
}

func keep(records []dataset.Record, pred func(dataset.Record) bool) []dataset.Record {
	out := records[:0]
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
