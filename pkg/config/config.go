package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Data locations
	DBPath    string // SQLite database file
	CSVPath   string // local MCV2 extract
	ExportDir string // destination for CSV exports and chart images

	// Source dataset download
	SourceURL       string
	DownloadTimeout time.Duration
	DownloadRPS     float64 // requests per second allowed against the source host

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadFile reads configuration after loading the given .env file,
// bypassing discovery. Values already present in the environment win.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return build()
}

// Load reads configuration from environment variables, consulting a .env
// file if one can be found.
func Load() (*Config, error) {
	loadEnvFile()
	return build()
}

func build() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DBPath:    getEnv("VAXSIGHT_DB_PATH", "data/vaccine_data.db"),
		CSVPath:   getEnv("VAXSIGHT_CSV_PATH", "data/MCV2.csv"),
		ExportDir: getEnv("VAXSIGHT_EXPORT_DIR", "exports"),

		SourceURL:       getEnv("VAXSIGHT_SOURCE_URL", "https://apps.who.int/gho/athena/api/GHO/MCV2?format=csv"),
		DownloadTimeout: getEnvAsDuration("VAXSIGHT_DOWNLOAD_TIMEOUT", "60s"),
		DownloadRPS:     getEnvAsFloat("VAXSIGHT_DOWNLOAD_RPS", 1.0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("VAXSIGHT_DB_PATH must not be empty")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.DownloadRPS <= 0 {
		return fmt.Errorf("VAXSIGHT_DOWNLOAD_RPS must be > 0")
	}
	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to the executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
