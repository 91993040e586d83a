// Package ingest retrieves company fundamentals from market-data providers
// and turns them into models.FundamentalsSnapshot values.
package ingest

import (
	"context"
	"dcf_valuation/pkg/models"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a source has no data for the ticker.
var ErrNotFound = errors.New("fundamentals not found")

// Source fetches the latest fundamentals for a ticker.
// Implementations:
// - EDGARSource (SEC XBRL company facts)
// - FileSource (local YAML / HJSON / JSON snapshots)
// - store.FundamentalsRepo (Postgres)
// - StaticSource (in-memory, inline API payloads and tests)
type Source interface {
	Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error)
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// StaticSource serves snapshots from memory, keyed by ticker.
type StaticSource map[string]models.FundamentalsSnapshot

func (s StaticSource) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	snap, ok := s[NormalizeTicker(ticker)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, NormalizeTicker(ticker))
	}
	snap.Ticker = NormalizeTicker(ticker)
	norm := snap.Normalize()
	return &norm, nil
}

// MarketData carries caller-supplied market quantities that fundamentals
// providers such as SEC EDGAR do not report.
type MarketData struct {
	Price     *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Beta      *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
}

// IsZero reports whether no market quantity was supplied.
func (m MarketData) IsZero() bool {
	return m.Price == nil && m.Beta == nil && m.MarketCap == nil
}

// Apply overlays the market data on a snapshot. When the market cap is still
// unknown and both price and shares are, market cap = price * shares.
func (m MarketData) Apply(s models.FundamentalsSnapshot) models.FundamentalsSnapshot {
	if m.Price != nil {
		s.CurrentPrice = models.Float(*m.Price)
	}
	if m.Beta != nil {
		s.Beta = models.Float(*m.Beta)
	}
	if m.MarketCap != nil {
		s.MarketCap = models.Float(*m.MarketCap)
	}
	if s.MarketCap == nil && s.CurrentPrice != nil && s.SharesOutstanding != nil {
		s.MarketCap = models.Float(*s.CurrentPrice * *s.SharesOutstanding)
	}
	return s
}

type overlaySource struct {
	base Source
	md   MarketData
}

// WithMarketData wraps a source so every snapshot gets md applied.
func WithMarketData(base Source, md MarketData) Source {
	if md.IsZero() {
		return base
	}
	return &overlaySource{base: base, md: md}
}

func (o *overlaySource) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	snap, err := o.base.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := o.md.Apply(*snap)
	return &out, nil
}

// MissingFields names the optional snapshot quantities that are nil.
// Market quantities are listed too since EDGAR never reports them.
func MissingFields(s models.FundamentalsSnapshot) []string {
	fields := []struct {
		name  string
		value *float64
	}{
		{"ebit", s.EBIT},
		{"shares_outstanding", s.SharesOutstanding},
		{"market_cap", s.MarketCap},
		{"current_price", s.CurrentPrice},
		{"beta", s.Beta},
		{"tax_expense", s.TaxExpense},
		{"depreciation", s.Depreciation},
		{"interest_expense", s.InterestExpense},
		{"cash", s.Cash},
	}

	missing := make([]string, 0)
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}
