package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// Schema creates the tables read and written by this package.
const Schema = `
CREATE TABLE IF NOT EXISTS company_fundamentals (
	id                 BIGSERIAL PRIMARY KEY,
	ticker             TEXT NOT NULL,
	company_name       TEXT NOT NULL DEFAULT '',
	as_of              DATE,
	source             TEXT NOT NULL DEFAULT 'postgres',
	beta               DOUBLE PRECISION,
	market_cap         DOUBLE PRECISION,
	shares_outstanding DOUBLE PRECISION,
	current_price      DOUBLE PRECISION,
	ebit               DOUBLE PRECISION,
	tax_expense        DOUBLE PRECISION,
	depreciation       DOUBLE PRECISION,
	interest_expense   DOUBLE PRECISION,
	long_term_debt     DOUBLE PRECISION,
	short_term_debt    DOUBLE PRECISION,
	cash               DOUBLE PRECISION,
	capex              DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_company_fundamentals_ticker ON company_fundamentals (ticker, as_of DESC);

CREATE TABLE IF NOT EXISTS fundamentals_cache (
	ticker     TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitDB initializes the database connection pool. An empty dbURL falls back
// to the DATABASE_URL environment variable.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	if err == nil && pool == nil {
		err = fmt.Errorf("database pool unavailable after a failed init")
	}
	return err
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
