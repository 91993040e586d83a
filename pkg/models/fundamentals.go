package models

import (
	"math"
	"strings"
)

// DefaultBeta is used when the data provider has no beta for the company.
const DefaultBeta = 1.0

// FundamentalsSnapshot holds the facts about one company at one point in time.
// Optional quantities are pointers: nil means the provider did not report them.
// Values are treated as immutable once built; pass by value.
type FundamentalsSnapshot struct {
	Ticker      string `json:"ticker" yaml:"ticker"`
	CompanyName string `json:"company_name" yaml:"company_name"`
	AsOf        string `json:"as_of,omitempty" yaml:"as_of,omitempty"`   // period end, YYYY-MM-DD
	Source      string `json:"source,omitempty" yaml:"source,omitempty"` // "edgar", "file", "postgres", "inline"

	Beta              *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty" yaml:"shares_outstanding,omitempty"`
	CurrentPrice      *float64 `json:"current_price,omitempty" yaml:"current_price,omitempty"`

	// Income statement
	EBIT            *float64 `json:"ebit,omitempty" yaml:"ebit,omitempty"`
	TaxExpense      *float64 `json:"tax_expense,omitempty" yaml:"tax_expense,omitempty"`
	Depreciation    *float64 `json:"depreciation,omitempty" yaml:"depreciation,omitempty"`
	InterestExpense *float64 `json:"interest_expense,omitempty" yaml:"interest_expense,omitempty"`

	// Balance sheet
	LongTermDebt  *float64 `json:"long_term_debt,omitempty" yaml:"long_term_debt,omitempty"`
	ShortTermDebt *float64 `json:"short_term_debt,omitempty" yaml:"short_term_debt,omitempty"`
	Cash          *float64 `json:"cash,omitempty" yaml:"cash,omitempty"`

	// Cash flow. Capex is a non-negative magnitude; use Normalize after decoding.
	Capex float64 `json:"capex" yaml:"capex"`

	// ChangeInWC is fixed at 0. Working capital is not modelled.
	ChangeInWC float64 `json:"change_in_wc" yaml:"change_in_wc"`
}

// Normalize returns a copy with the provider-independent conventions applied:
// upper-case ticker, company name falling back to ticker, capex and interest
// expense as magnitudes and a zero working capital change.
func (s FundamentalsSnapshot) Normalize() FundamentalsSnapshot {
	s.Ticker = strings.ToUpper(strings.TrimSpace(s.Ticker))
	if strings.TrimSpace(s.CompanyName) == "" {
		s.CompanyName = s.Ticker
	}
	s.Capex = math.Abs(s.Capex)
	if s.InterestExpense != nil {
		s.InterestExpense = Float(math.Abs(*s.InterestExpense))
	}
	s.ChangeInWC = 0
	return s
}

// BetaOrDefault returns the reported beta or DefaultBeta.
func (s FundamentalsSnapshot) BetaOrDefault() float64 {
	if s.Beta == nil {
		return DefaultBeta
	}
	return *s.Beta
}

// TotalDebt is long-term plus short-term debt; a missing component counts as 0.
func (s FundamentalsSnapshot) TotalDebt() float64 {
	return Value(s.LongTermDebt) + Value(s.ShortTermDebt)
}

// CashOrZero returns cash and equivalents, 0 when absent.
func (s FundamentalsSnapshot) CashOrZero() float64 {
	return Value(s.Cash)
}

// MacroAssumptions are the user-supplied inputs, all rates as fractions.
type MacroAssumptions struct {
	RiskFreeRate      float64  `json:"risk_free_rate" yaml:"risk_free_rate"`
	EquityRiskPremium float64  `json:"equity_risk_premium" yaml:"equity_risk_premium"`
	ForecastYears     int      `json:"forecast_years" yaml:"forecast_years"`
	PerpetualGrowth   float64  `json:"perpetual_growth" yaml:"perpetual_growth"`
	ShortTermGrowth   *float64 `json:"short_term_growth,omitempty" yaml:"short_term_growth,omitempty"`
}

// Float returns a pointer to f. Handy for building snapshots in code.
func Float(f float64) *float64 { return &f }

// Value dereferences v, returning 0 for nil.
func Value(v *float64) float64 {
	if v != nil {
		return *v
	}
	return 0.0
}
