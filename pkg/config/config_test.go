package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data/vaccine_data.db", cfg.DBPath)
	assert.Equal(t, "data/MCV2.csv", cfg.CSVPath)
	assert.Equal(t, "exports", cfg.ExportDir)
	assert.Equal(t, 60*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 1.0, cfg.DownloadRPS)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("VAXSIGHT_DB_PATH", "/var/lib/vaxsight/vaccine.db")
	t.Setenv("VAXSIGHT_DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("VAXSIGHT_DOWNLOAD_RPS", "0.5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/var/lib/vaxsight/vaccine.db", cfg.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 0.5, cfg.DownloadRPS)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(func() { os.Unsetenv("VAXSIGHT_EXPORT_DIR") })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("VAXSIGHT_EXPORT_DIR=/tmp/vaxsight-out\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vaxsight-out", cfg.ExportDir)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("ENV", "sandbox")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV must be one of")
}

func TestLoad_BadValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("VAXSIGHT_DOWNLOAD_TIMEOUT", "soon")
	t.Setenv("VAXSIGHT_DOWNLOAD_RPS", "fast")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 1.0, cfg.DownloadRPS)
}
