package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{Country: "CHN", Year: 2010, Coverage: 90, Region: "Western Pacific"},
		{Country: "CHN", Year: 2015, Coverage: 95, Region: "Western Pacific"},
		{Country: "USA", Year: 2015, Coverage: 88, Region: "Americas"},
		{Country: "NGA", Year: 2015, Coverage: 45, Region: "Africa"},
		{Country: "FRA", Year: 2020, Coverage: 92, Region: "Europe"},
	}
}

func TestFilter(t *testing.T) {
	e := New(logger.Nop())

	tests := []struct {
		name     string
		criteria Criteria
		want     []string // expected country codes in order
	}{
		{
			name:     "no criteria keeps everything",
			criteria: Criteria{},
			want:     []string{"CHN", "CHN", "USA", "NGA", "FRA"},
		},
		{
			name:     "by country codes",
			criteria: Criteria{Countries: []string{"CHN", "USA"}},
			want:     []string{"CHN", "CHN", "USA"},
		},
		{
			name:     "by year range",
			criteria: Criteria{YearStart: intPtr(2015), YearEnd: intPtr(2015)},
			want:     []string{"CHN", "USA", "NGA"},
		},
		{
			name:     "by region",
			criteria: Criteria{Regions: []string{"Africa"}},
			want:     []string{"NGA"},
		},
		{
			name:     "by minimum coverage",
			criteria: Criteria{CoverageMin: floatPtr(90)},
			want:     []string{"CHN", "CHN", "FRA"},
		},
		{
			name: "criteria compose with AND",
			criteria: Criteria{
				Countries:   []string{"CHN", "USA", "NGA"},
				YearStart:   intPtr(2012),
				CoverageMin: floatPtr(80),
			},
			want: []string{"CHN", "USA"},
		},
		{
			name:     "unmatched country yields empty, not error",
			criteria: Criteria{Countries: []string{"ZZZ"}},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Filter(sampleRecords(), tt.criteria)
			codes := make([]string, 0, len(got))
			for _, rec := range got {
				codes = append(codes, rec.Country)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	e := New(logger.Nop())

	records := sampleRecords()
	_ = e.Filter(records, Criteria{Countries: []string{"USA"}})
	assert.Equal(t, sampleRecords(), records)
}

func TestFilter_Monotonic(t *testing.T) {
	e := New(logger.Nop())
	records := sampleRecords()

	loose := Criteria{YearStart: intPtr(2010)}
	tight := Criteria{YearStart: intPtr(2010), Regions: []string{"Americas"}}
	tighter := Criteria{YearStart: intPtr(2010), Regions: []string{"Americas"}, CoverageMin: floatPtr(99)}

	a := e.Filter(records, loose)
	b := e.Filter(records, tight)
	c := e.Filter(records, tighter)

	require.GreaterOrEqual(t, len(a), len(b))
	require.GreaterOrEqual(t, len(b), len(c))
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.False(t, Criteria{Countries: []string{"CHN"}}.IsZero())
	assert.False(t, Criteria{YearEnd: intPtr(2020)}.IsZero())
}
