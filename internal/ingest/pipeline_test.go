package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunbi/vaxsight/internal/clean"
	"github.com/eunbi/vaxsight/internal/store"
	"github.com/eunbi/vaxsight/pkg/database"
	"github.com/eunbi/vaxsight/pkg/logger"
)

func newTestPipeline(t *testing.T) (*Pipeline, *store.Repository) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Nop()
	repo := store.New(db, log)
	return NewPipeline(NewReader(log), clean.New(log), repo, log), repo
}

func writeExtract(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MCV2.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipeline_Run(t *testing.T) {
	pipeline, repo := newTestPipeline(t)

	extract := writeExtract(t,
		"SpatialDimensionValueCode,SpatialDimension,TimeDimensionValue,NumericValue,ParentLocation\n"+
			"chn,china,2015,95,western pacific\n"+
			"CHN,China,2015,97,Western Pacific\n"+
			"usa,United States,2015,150,Americas\n"+
			"fra,France,2020,92,Europe\n")

	records, report, err := pipeline.Run(context.Background(), extract)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Input)
	assert.Equal(t, 2, report.Output)
	require.Len(t, records, 2)
	assert.Equal(t, "CHN", records[0].Country)
	assert.Equal(t, 95.0, records[0].Coverage)

	stored, found, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, records, stored)
}

func TestPipeline_Run_SchemaFailureLeavesStoreAlone(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	good := writeExtract(t,
		"SpatialDimensionValueCode,TimeDimensionValue,NumericValue\nCHN,2015,95\n")
	_, _, err := pipeline.Run(ctx, good)
	require.NoError(t, err)

	bad := writeExtract(t, "Location,Period,Value\nChina,2015,95\n")
	_, _, err = pipeline.Run(ctx, bad)
	require.Error(t, err)

	var schemaErr *clean.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	stored, found, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.True(t, found, "the previous data set must survive a failed run")
	assert.Len(t, stored, 1)
}

func TestPipeline_Run_AllRowsDroppedIsNotPersisted(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	extract := writeExtract(t,
		"SpatialDimensionValueCode,TimeDimensionValue,NumericValue\n"+
			",2015,95\n"+
			"CHN,1900,95\n")

	_, report, err := pipeline.Run(ctx, extract)
	require.ErrorIs(t, err, store.ErrEmptyWrite, "an empty cleaned set must not wipe the store")
	assert.Equal(t, 0, report.Output)

	_, found, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}
