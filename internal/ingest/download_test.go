package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunbi/vaxsight/pkg/httputil"
	"github.com/eunbi/vaxsight/pkg/logger"
)

func newTestDownloader() *Downloader {
	client := httputil.New(logger.Nop(), 5*time.Second, 100).DisableRetry()
	return NewDownloader(client, logger.Nop())
}

func TestDownloader_Download(t *testing.T) {
	const body = "SpatialDimensionValueCode,TimeDimensionValue,NumericValue\nCHN,2015,95\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "MCV2.csv")
	d := newTestDownloader()
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestDownloader_Download_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "MCV2.csv")
	d := newTestDownloader()
	err := d.Download(context.Background(), srv.URL, dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file on a failed download")
}

func TestDownloader_Download_ServerErrorIsRetriedThenFails(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := httputil.New(logger.Nop(), 5*time.Second, 100).WithRetry(2, time.Millisecond)
	d := NewDownloader(client, logger.Nop())

	err := d.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "MCV2.csv"))
	require.Error(t, err)
	assert.Equal(t, 3, hits, "initial attempt plus two retries")
}
