package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "exports carry a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExporter_Records(t *testing.T) {
	e := New(logger.Nop())
	path := filepath.Join(t.TempDir(), "records.csv")

	records := []dataset.Record{
		{Country: "CIV", CountryName: "Côte D'Ivoire", Year: 2015, Coverage: 71.5, Region: "Africa"},
		{Country: "NGA", Year: 2016, Coverage: 45},
	}
	require.NoError(t, e.Records(records, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"country", "country_name", "year", "mcv2_coverage", "region"}, rows[0])
	assert.Equal(t, []string{"CIV", "Côte D'Ivoire", "2015", "71.5", "Africa"}, rows[1], "non-ASCII text survives")
	assert.Equal(t, []string{"NGA", "", "2016", "45", ""}, rows[2])
}

func TestExporter_Summary(t *testing.T) {
	e := New(logger.Nop())
	path := filepath.Join(t.TempDir(), "summary.csv")

	summary := dataset.Summary{
		Key: dataset.GroupByRegion,
		Rows: []dataset.SummaryRow{
			{Group: "Africa", Mean: 52.5, Max: 80, Min: 30, Count: 12},
		},
	}
	require.NoError(t, e.Summary(summary, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Region",
		"MCV2 Coverage Avg (%)",
		"MCV2 Coverage Max (%)",
		"MCV2 Coverage Min (%)",
		"Record Count",
	}, rows[0])
	assert.Equal(t, []string{"Africa", "52.5", "80.0", "30.0", "12"}, rows[1])
}

func TestExporter_Trend(t *testing.T) {
	e := New(logger.Nop())
	path := filepath.Join(t.TempDir(), "trend.csv")

	points := []dataset.TrendPoint{
		{Year: 2014, Coverage: 90},
		{Year: 2015, Coverage: 95.5},
	}
	require.NoError(t, e.Trend(points, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Year", "MCV2 Coverage Rate (%)"}, rows[0])
	assert.Equal(t, []string{"2014", "90"}, rows[1])
	assert.Equal(t, []string{"2015", "95.5"}, rows[2])
}

func TestExporter_MissingParentDir(t *testing.T) {
	e := New(logger.Nop())
	path := filepath.Join(t.TempDir(), "does-not-exist", "out.csv")

	err := e.Records([]dataset.Record{{Country: "CHN", Year: 2015, Coverage: 95}}, path)
	require.ErrorIs(t, err, ErrMissingDir)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file is left behind")
}
