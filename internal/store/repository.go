package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/database"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Table holding the cleaned record set.
const Table = "mcv2_vaccination"

var (
	// ErrEmptyWrite is returned when a replace would persist zero records,
	// which would silently wipe the stored data.
	ErrEmptyWrite = errors.New("refusing to replace stored data with an empty record set")

	// ErrNullConstraint is returned when a record is missing a required
	// field. Nothing is written.
	ErrNullConstraint = errors.New("record has a null required field")
)

// Repository is the durable store of cleaned records. It exposes whole-set
// operations only: one writer replaces the entire table as a single
// transaction before any reader observes it.
type Repository struct {
	db  *sql.DB
	log *logger.Logger
}

// New creates a Repository over the given database handle.
func New(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db.SQL, log: log}
}

// ReplaceAll atomically replaces the stored table contents with records.
// It fails without touching stored data when records is empty or when any
// record has a blank country code. There is no partial success.
func (r *Repository) ReplaceAll(ctx context.Context, records []dataset.Record) error {
	if len(records) == 0 {
		return ErrEmptyWrite
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.Country) == "" {
			return fmt.Errorf("%w: record %d has no country code", ErrNullConstraint, i)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+Table); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	createSQL := `
		CREATE TABLE ` + Table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			country TEXT NOT NULL,
			country_name TEXT,
			year INTEGER NOT NULL,
			mcv2_coverage REAL NOT NULL,
			region TEXT,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+Table+` (country, country_name, year, mcv2_coverage, region)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Country,
			nullable(rec.CountryName),
			rec.Year,
			rec.Coverage,
			nullable(rec.Region),
		)
		if err != nil {
			return fmt.Errorf("insert record %s/%d: %w", rec.Country, rec.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	r.log.Infof("replaced stored data: %d records written to %s", len(records), Table)
	return nil
}

// LoadAll returns all stored records in insertion order. found is false,
// with no error, when the table does not exist or holds zero rows.
func (r *Repository) LoadAll(ctx context.Context) (records []dataset.Record, found bool, err error) {
	exists, err := r.tableExists(ctx)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		r.log.Warnf("%s table does not exist yet", Table)
		return nil, false, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT country, country_name, year, mcv2_coverage, region
		FROM `+Table+`
		ORDER BY id`)
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec dataset.Record
		var name, region sql.NullString
		if err := rows.Scan(&rec.Country, &name, &rec.Year, &rec.Coverage, &region); err != nil {
			return nil, false, fmt.Errorf("scan record: %w", err)
		}
		rec.CountryName = name.String
		rec.Region = region.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate %s: %w", Table, err)
	}

	if len(records) == 0 {
		r.log.Warnf("%s table contains no data", Table)
		return nil, false, nil
	}

	r.log.Infof("loaded %d records from %s", len(records), Table)
	return records, true, nil
}

// CountryCodes returns the distinct stored country codes, sorted.
func (r *Repository) CountryCodes(ctx context.Context) ([]string, error) {
	exists, err := r.tableExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT country FROM `+Table+` ORDER BY country`)
	if err != nil {
		return nil, fmt.Errorf("query country codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan country code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *Repository) tableExists(ctx context.Context) (bool, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, Table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return true, nil
}

// nullable maps the empty string to SQL NULL for optional text columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
