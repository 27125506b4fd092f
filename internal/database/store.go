// Package database provides the persistence layer for classification
// results, backed by SQLite for local runs or PostgreSQL by DSN.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	pingTimeout            = 5 * time.Second
)

// Open connects to the store identified by dsn. DSNs beginning with
// "postgres://" use PostgreSQL; everything else is treated as a SQLite
// path (":memory:" included).
func Open(dsn string) (*sqlx.DB, error) {
	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	if driver == "postgres" {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	} else {
		// SQLite serializes writers; a single connection avoids lock churn.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

const channelsSchema = `
CREATE TABLE IF NOT EXISTS channels (
	channel_id      TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	thumbnail_url   TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	classification  TEXT NOT NULL,
	confidence      REAL NOT NULL DEFAULT 0,
	slop_score      REAL NOT NULL DEFAULT 0,
	slop_type       TEXT,
	method          TEXT NOT NULL,
	reasons         TEXT NOT NULL DEFAULT '[]',
	metrics         TEXT NOT NULL DEFAULT '{}',
	run_id          TEXT NOT NULL DEFAULT '',
	classified_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channels_classification ON channels (classification);
CREATE INDEX IF NOT EXISTS idx_channels_classified_at ON channels (classified_at);
`

func migrate(db *sqlx.DB) error {
	if _, err := db.Exec(channelsSchema); err != nil {
		return fmt.Errorf("migrate channels schema: %w", err)
	}
	return nil
}
