package valuation

import (
	"dcf_valuation/pkg/models"
	"math"
	"testing"
)

func TestEffectiveTaxRate_Fallback(t *testing.T) {
	tests := []struct {
		name string
		ebit float64
		tax  *float64
	}{
		{"missing tax expense", 100, nil},
		{"zero ebit", 0, models.Float(10)},
		{"negative ebit", -50, models.Float(10)},
		{"negative ebit and missing tax", -50, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveTaxRate(tt.ebit, tt.tax); got != 0.21 {
				t.Errorf("Expected fallback 0.21, got %f", got)
			}
		})
	}
}

func TestEffectiveTaxRate_Clamped(t *testing.T) {
	tests := []struct {
		ebit, tax, want float64
	}{
		{100, 21, 0.21},
		{100, 80, 0.5}, // one-off charge
		{100, -15, 0},  // tax benefit
		{100, 50, 0.5}, // exactly at the cap
		{1e-9, 1e9, 0.5},
	}

	for _, tt := range tests {
		got := EffectiveTaxRate(tt.ebit, models.Float(tt.tax))
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EffectiveTaxRate(%v, %v): expected %f, got %f", tt.ebit, tt.tax, tt.want, got)
		}
		if got < 0 || got > 0.5 {
			t.Errorf("EffectiveTaxRate(%v, %v) = %f outside [0, 0.5]", tt.ebit, tt.tax, got)
		}
	}
}

func TestAfterTaxCostOfDebt_NoDebt(t *testing.T) {
	for _, interest := range []*float64{nil, models.Float(0), models.Float(25), models.Float(-3)} {
		if got := AfterTaxCostOfDebt(0, interest, 0.21); got != 0 {
			t.Errorf("Expected 0 cost of debt with no debt, got %f", got)
		}
	}
}

func TestAfterTaxCostOfDebt(t *testing.T) {
	// 5 / 100 = 5% pretax, 5% * (1 - 0.2) = 4%
	got := AfterTaxCostOfDebt(100, models.Float(5), 0.2)
	if math.Abs(got-0.04) > 1e-12 {
		t.Errorf("Expected 0.04, got %f", got)
	}

	// No sign handling here: snapshots carry interest as a magnitude
	got = AfterTaxCostOfDebt(100, models.Float(-5), 0.2)
	if math.Abs(got+0.04) > 1e-12 {
		t.Errorf("Expected -0.04 for un-normalized negative interest, got %f", got)
	}
}

func TestAfterTaxCostOfDebt_FallbackRate(t *testing.T) {
	want := 0.04 * (1 - 0.25)
	for _, interest := range []*float64{nil, models.Float(0)} {
		got := AfterTaxCostOfDebt(500, interest, 0.25)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("Expected fallback %f, got %f", want, got)
		}
	}
}

func TestCostOfEquity_CAPM(t *testing.T) {
	// 4% + 1.2 * 5% = 10%
	if got := CostOfEquity(0.04, 1.2, 0.05); math.Abs(got-0.10) > 1e-12 {
		t.Errorf("Expected 0.10, got %f", got)
	}
	// Negative beta passes through
	if got := CostOfEquity(0.04, -0.5, 0.05); math.Abs(got-0.015) > 1e-12 {
		t.Errorf("Expected 0.015, got %f", got)
	}
}

func TestWACC(t *testing.T) {
	// E = 800, D = 200 => 0.8 * 10% + 0.2 * 4% = 8.8%
	got := WACC(0.10, 0.04, 800, 200)
	if math.Abs(got-0.088) > 1e-12 {
		t.Errorf("Expected 0.088, got %f", got)
	}
}

func TestWACC_NoCapital(t *testing.T) {
	if got := WACC(0.11, 0.03, 0, 0); got != 0.11 {
		t.Errorf("Expected cost of equity 0.11, got %f", got)
	}
}

func TestCalculateCostOfCapital(t *testing.T) {
	s := models.FundamentalsSnapshot{
		EBIT:            models.Float(100),
		TaxExpense:      models.Float(20),
		InterestExpense: models.Float(6),
		MarketCap:       models.Float(900),
		LongTermDebt:    models.Float(80),
		ShortTermDebt:   models.Float(20),
	}
	macro := models.MacroAssumptions{RiskFreeRate: 0.04, EquityRiskPremium: 0.05, ForecastYears: 5}

	coc, degenerate := CalculateCostOfCapital(s, macro)
	if len(degenerate) != 0 {
		t.Errorf("Expected no degenerate cases, got %v", degenerate)
	}
	if coc.Beta != 1.0 {
		t.Errorf("Expected default beta 1.0, got %f", coc.Beta)
	}
	if math.Abs(coc.TaxRate-0.2) > 1e-12 {
		t.Errorf("Expected tax rate 0.2, got %f", coc.TaxRate)
	}
	// Ke = 0.04 + 0.05 = 0.09, Kd = 0.06 * 0.8 = 0.048
	if math.Abs(coc.CostOfEquity-0.09) > 1e-12 {
		t.Errorf("Expected Ke 0.09, got %f", coc.CostOfEquity)
	}
	if math.Abs(coc.CostOfDebt-0.048) > 1e-12 {
		t.Errorf("Expected Kd 0.048, got %f", coc.CostOfDebt)
	}
	wantWACC := 0.9*0.09 + 0.1*0.048
	if math.Abs(coc.WACC-wantWACC) > 1e-12 {
		t.Errorf("Expected WACC %f, got %f", wantWACC, coc.WACC)
	}
	if math.Abs(coc.EquityContribution+coc.DebtContribution-coc.WACC) > 1e-12 {
		t.Errorf("Contributions %f + %f do not add up to WACC %f", coc.EquityContribution, coc.DebtContribution, coc.WACC)
	}
}

func TestCalculateCostOfCapital_DegenerateCapital(t *testing.T) {
	s := models.FundamentalsSnapshot{
		EBIT:      models.Float(100),
		MarketCap: models.Float(0),
		Beta:      models.Float(1.5),
	}
	macro := models.MacroAssumptions{RiskFreeRate: 0.03, EquityRiskPremium: 0.04, ForecastYears: 5}

	coc, degenerate := CalculateCostOfCapital(s, macro)
	if coc.WACC != coc.CostOfEquity {
		t.Errorf("Expected WACC to fall back to Ke %f, got %f", coc.CostOfEquity, coc.WACC)
	}
	if len(degenerate) != 1 || degenerate[0].Formula != "wacc" {
		t.Fatalf("Expected one wacc degenerate case, got %v", degenerate)
	}
}

func TestCalculateCostOfCapital_NegativeReportedInterest(t *testing.T) {
	s := models.FundamentalsSnapshot{
		EBIT:            models.Float(100),
		TaxExpense:      models.Float(20),
		InterestExpense: models.Float(-6),
		MarketCap:       models.Float(900),
		LongTermDebt:    models.Float(100),
	}.Normalize()
	macro := models.MacroAssumptions{RiskFreeRate: 0.04, EquityRiskPremium: 0.05, ForecastYears: 5}

	coc, _ := CalculateCostOfCapital(s, macro)
	if math.Abs(coc.CostOfDebt-0.048) > 1e-12 {
		t.Errorf("Expected Kd 0.048 from normalized interest, got %f", coc.CostOfDebt)
	}
}
