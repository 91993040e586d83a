package valuation

import (
	"dcf_valuation/pkg/models"
	"math"
)

const (
	// FallbackTaxRate is the representative statutory rate used when the
	// effective rate cannot be derived.
	FallbackTaxRate = 0.21

	// MaxEffectiveTaxRate caps effective rates distorted by one-off tax items.
	MaxEffectiveTaxRate = 0.5

	// FallbackPretaxCostOfDebt is the synthetic default rate for companies
	// that carry debt but report no interest expense.
	FallbackPretaxCostOfDebt = 0.04
)

// CostOfCapital holds the calculated rates and the capital structure weights
type CostOfCapital struct {
	TaxRate      float64 `json:"tax_rate"`
	Beta         float64 `json:"beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After-tax
	WACC         float64 `json:"wacc"`
	WeightEquity float64 `json:"weight_equity"`
	WeightDebt   float64 `json:"weight_debt"`

	// Weighted contributions, WACC = EquityContribution + DebtContribution
	EquityContribution float64 `json:"equity_contribution"`
	DebtContribution   float64 `json:"debt_contribution"`
}

// EffectiveTaxRate derives the tax rate as taxExpense / EBIT, clamped to [0, 0.5].
// Falls back to 0.21 when tax expense is absent or EBIT <= 0.
func EffectiveTaxRate(ebit float64, taxExpense *float64) float64 {
	if taxExpense == nil || ebit <= 0 {
		return FallbackTaxRate
	}
	rate := *taxExpense / ebit
	return math.Max(0, math.Min(rate, MaxEffectiveTaxRate))
}

// AfterTaxCostOfDebt computes Kd = PreTaxKd * (1 - t).
// PreTaxKd is interest / debt, or 4% when interest expense is missing or zero.
// Zero debt has zero cost regardless of reported interest.
func AfterTaxCostOfDebt(totalDebt float64, interestExpense *float64, taxRate float64) float64 {
	if totalDebt == 0 {
		return 0
	}

	pretax := FallbackPretaxCostOfDebt
	if interestExpense != nil && *interestExpense != 0 {
		pretax = *interestExpense / totalDebt
	}

	return pretax * (1 - taxRate)
}

// CostOfEquity is CAPM: Ke = Rf + Beta * ERP.
// Beta is passed through unchanged, sanity checks are the caller's job.
func CostOfEquity(riskFreeRate, beta, equityRiskPremium float64) float64 {
	return riskFreeRate + beta*equityRiskPremium
}

// WACC weights the cost of equity and the after-tax cost of debt by market value.
// With no equity and no debt it returns the cost of equity.
func WACC(costOfEquity, costOfDebt, marketCap, totalDebt float64) float64 {
	we, wd, ok := capitalWeights(marketCap, totalDebt)
	if !ok {
		return costOfEquity
	}
	return we*costOfEquity + wd*costOfDebt
}

func capitalWeights(marketCap, totalDebt float64) (we, wd float64, ok bool) {
	totalValue := marketCap + totalDebt
	if totalValue == 0 {
		return 1, 0, false
	}
	return marketCap / totalValue, totalDebt / totalValue, true
}

// CalculateCostOfCapital runs the capital cost chain for one snapshot.
// Degenerate cases hit along the way are returned so callers can report them.
func CalculateCostOfCapital(s models.FundamentalsSnapshot, macro models.MacroAssumptions) (CostOfCapital, []DegenerateCase) {
	var degenerate []DegenerateCase

	ebit := models.Value(s.EBIT)
	taxRate := EffectiveTaxRate(ebit, s.TaxExpense)

	beta := s.BetaOrDefault()
	ke := CostOfEquity(macro.RiskFreeRate, beta, macro.EquityRiskPremium)

	debt := s.TotalDebt()
	kd := AfterTaxCostOfDebt(debt, s.InterestExpense, taxRate)

	marketCap := models.Value(s.MarketCap)
	we, wd, ok := capitalWeights(marketCap, debt)
	if !ok {
		degenerate = append(degenerate, DegenerateCase{Input: "market_cap+total_debt", Formula: "wacc", Fallback: "cost of equity"})
	}

	return CostOfCapital{
		TaxRate:            taxRate,
		Beta:               beta,
		CostOfEquity:       ke,
		CostOfDebt:         kd,
		WACC:               WACC(ke, kd, marketCap, debt),
		WeightEquity:       we,
		WeightDebt:         wd,
		EquityContribution: we * ke,
		DebtContribution:   wd * kd,
	}, degenerate
}
