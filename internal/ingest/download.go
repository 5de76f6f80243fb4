package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/eunbi/vaxsight/pkg/httputil"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Downloader fetches the source extract over HTTP and stores it locally.
type Downloader struct {
	client *httputil.Client
	log    *logger.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(client *httputil.Client, log *logger.Logger) *Downloader {
	return &Downloader{client: client, log: log}
}

// Download fetches url and writes the body to dest, creating parent
// directories as needed. The file appears at dest only after a complete
// download.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	resp, err := d.client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch extract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch extract: unexpected status %d from %s", resp.StatusCode, url)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp download file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write extract: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close extract: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("finalize extract: %w", err)
	}

	d.log.Infof("downloaded extract: %d bytes to %s", n, dest)
	return nil
}
