package analyze

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

func TestSummarize_ByCountry(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "CHN", Year: 2014, Coverage: 90},
		{Country: "CHN", Year: 2015, Coverage: 100},
	}

	summary := a.Summarize(records, dataset.GroupByCountry)
	require.Equal(t, dataset.GroupByCountry, summary.Key)
	require.Len(t, summary.Rows, 1)

	row := summary.Rows[0]
	assert.Equal(t, "CHN", row.Group)
	assert.Equal(t, 95.0, row.Mean)
	assert.Equal(t, 100.0, row.Max)
	assert.Equal(t, 90.0, row.Min)
	assert.Equal(t, 2, row.Count)
}

func TestSummarize_RoundsToOneDecimal(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "USA", Year: 2014, Coverage: 91.24},
		{Country: "USA", Year: 2015, Coverage: 92.42},
	}

	summary := a.Summarize(records, dataset.GroupByCountry)
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, 91.8, summary.Rows[0].Mean)
	assert.Equal(t, 92.4, summary.Rows[0].Max)
	assert.Equal(t, 91.2, summary.Rows[0].Min)
}

func TestSummarize_ByRegion(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "NGA", Year: 2015, Coverage: 40, Region: "Africa"},
		{Country: "KEN", Year: 2015, Coverage: 60, Region: "Africa"},
		{Country: "FRA", Year: 2015, Coverage: 95, Region: "Europe"},
	}

	summary := a.Summarize(records, dataset.GroupByRegion)
	require.Equal(t, dataset.GroupByRegion, summary.Key)
	require.Len(t, summary.Rows, 2)

	assert.Equal(t, "Africa", summary.Rows[0].Group)
	assert.Equal(t, 50.0, summary.Rows[0].Mean)
	assert.Equal(t, 2, summary.Rows[0].Count)
	assert.Equal(t, "Europe", summary.Rows[1].Group)
}

func TestSummarize_UnknownKeyFallsBackToCountry(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "CHN", Year: 2015, Coverage: 95, Region: "Western Pacific"},
	}

	summary := a.Summarize(records, dataset.GroupKey("continent"))
	assert.Equal(t, dataset.GroupByCountry, summary.Key, "unknown keys fall back, they do not fail")
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, "CHN", summary.Rows[0].Group)
}

func TestSummarize_Empty(t *testing.T) {
	a := New(logger.Nop())

	summary := a.Summarize(nil, dataset.GroupByCountry)
	assert.Empty(t, summary.Rows)
}

func TestSummarize_StableOrder(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "USA", Year: 2015, Coverage: 88},
		{Country: "CHN", Year: 2015, Coverage: 95},
		{Country: "FRA", Year: 2015, Coverage: 92},
	}

	first := a.Summarize(records, dataset.GroupByCountry)
	second := a.Summarize(records, dataset.GroupByCountry)
	assert.Equal(t, first, second)
	assert.True(t, sort.SliceIsSorted(first.Rows, func(i, j int) bool {
		return first.Rows[i].Group < first.Rows[j].Group
	}))
}

func TestTrend(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "CHN", Year: 2020, Coverage: 99},
		{Country: "USA", Year: 2015, Coverage: 88},
		{Country: "CHN", Year: 2010, Coverage: 90},
		{Country: "CHN", Year: 2015, Coverage: 95},
	}

	points := a.Trend(records, "CHN")
	require.Len(t, points, 3)

	years := []int{points[0].Year, points[1].Year, points[2].Year}
	assert.Equal(t, []int{2010, 2015, 2020}, years, "trend is ascending by year")
	assert.Equal(t, 90.0, points[0].Coverage)
}

func TestTrend_UnknownCountryIsEmptyNotError(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "CHN", Year: 2015, Coverage: 95},
	}

	points := a.Trend(records, "ZZZ")
	assert.Empty(t, points)
}

func TestTrend_MatchIsCaseSensitive(t *testing.T) {
	a := New(logger.Nop())

	records := []dataset.Record{
		{Country: "CHN", Year: 2015, Coverage: 95},
	}

	assert.Empty(t, a.Trend(records, "chn"), "callers uppercase before calling")
}
