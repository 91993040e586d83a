package store

import (
	"context"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/models"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FundamentalsRepo serves snapshots from the company_fundamentals table.
// It implements ingest.Source.
type FundamentalsRepo struct {
	pool *pgxpool.Pool
}

// NewFundamentalsRepo creates a new repository
func NewFundamentalsRepo(pool *pgxpool.Pool) *FundamentalsRepo {
	return &FundamentalsRepo{pool: pool}
}

// Fetch returns the most recent row for the ticker.
func (r *FundamentalsRepo) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	ticker = ingest.NormalizeTicker(ticker)

	query := `
		SELECT ticker, company_name, COALESCE(to_char(as_of, 'YYYY-MM-DD'), ''), source,
			beta, market_cap, shares_outstanding, current_price,
			ebit, tax_expense, depreciation, interest_expense,
			long_term_debt, short_term_debt, cash, capex
		FROM company_fundamentals
		WHERE ticker = $1
		ORDER BY as_of DESC NULLS LAST, created_at DESC
		LIMIT 1
	`

	var s models.FundamentalsSnapshot
	err := r.pool.QueryRow(ctx, query, ticker).Scan(
		&s.Ticker, &s.CompanyName, &s.AsOf, &s.Source,
		&s.Beta, &s.MarketCap, &s.SharesOutstanding, &s.CurrentPrice,
		&s.EBIT, &s.TaxExpense, &s.Depreciation, &s.InterestExpense,
		&s.LongTermDebt, &s.ShortTermDebt, &s.Cash, &s.Capex,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s not in company_fundamentals", ingest.ErrNotFound, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fundamentals: %w", err)
	}

	norm := s.Normalize()
	return &norm, nil
}

// Save inserts a snapshot as a new row.
func (r *FundamentalsRepo) Save(ctx context.Context, s models.FundamentalsSnapshot) error {
	s = s.Normalize()
	if s.Source == "" {
		s.Source = "postgres"
	}

	query := `
		INSERT INTO company_fundamentals (
			ticker, company_name, as_of, source,
			beta, market_cap, shares_outstanding, current_price,
			ebit, tax_expense, depreciation, interest_expense,
			long_term_debt, short_term_debt, cash, capex
		) VALUES ($1, $2, NULLIF($3, '')::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.pool.Exec(ctx, query,
		s.Ticker, s.CompanyName, s.AsOf, s.Source,
		s.Beta, s.MarketCap, s.SharesOutstanding, s.CurrentPrice,
		s.EBIT, s.TaxExpense, s.Depreciation, s.InterestExpense,
		s.LongTermDebt, s.ShortTermDebt, s.Cash, s.Capex,
	)
	if err != nil {
		return fmt.Errorf("failed to save fundamentals: %w", err)
	}
	return nil
}
