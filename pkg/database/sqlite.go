package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eunbi/vaxsight/pkg/config"
)

// DB wraps the sql.DB handle for the local SQLite store.
// The database connection is created in this package and nowhere else.
type DB struct {
	SQL  *sql.DB
	Path string
}

// New opens (creating if necessary) the SQLite database named in config.
func New(cfg *config.Config) (*DB, error) {
	return Open(cfg.DBPath)
}

// Open opens the SQLite database file at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer at a time; extra connections only risk SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{SQL: db, Path: path}, nil
}

// Close closes the database handle.
func (db *DB) Close() error {
	if db.SQL != nil {
		return db.SQL.Close()
	}
	return nil
}

// Ping checks if the database is accessible.
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}
