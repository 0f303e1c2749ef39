package repository

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// numericColumn matches the fixed-point column types of schema.sql. sqlite
// has no decimal type and would store them as floats, so money is kept as
// TEXT there and decimal.Decimal does the arithmetic.
var numericColumn = regexp.MustCompile(`NUMERIC\(\d+,\s*\d+\)`)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the ledger database. sqlite is limited to a single
// connection so concurrent writers queue instead of failing with SQLITE_BUSY.
func Open(ctx context.Context, driver, url string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	default:
		if maxOpenConns > 0 {
			db.SetMaxOpenConns(maxOpenConns)
		}
	}

	return db, nil
}

// Migrate creates the ledger tables if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema(db.DriverName())); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema returns the DDL for driver.
func Schema(driver string) string {
	if driver == DriverSQLite {
		return numericColumn.ReplaceAllString(schema, "TEXT")
	}
	return schema
}

// forUpdate returns the row-lock suffix for drivers that support it.
func forUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
