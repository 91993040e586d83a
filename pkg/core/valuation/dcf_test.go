package valuation

import (
	"dcf_valuation/pkg/models"
	"errors"
	"math"
	"testing"
)

func TestBaseFCFF(t *testing.T) {
	// 100 * 0.79 + 10 - 15 = 74
	got := BaseFCFF(100, 0.21, models.Float(10), 15, 0)
	if math.Abs(got-74.0) > 1e-9 {
		t.Errorf("Expected base FCFF 74.0, got %f", got)
	}

	// Missing depreciation counts as 0
	got = BaseFCFF(100, 0.21, nil, 15, 0)
	if math.Abs(got-64.0) > 1e-9 {
		t.Errorf("Expected base FCFF 64.0 without D&A, got %f", got)
	}
}

func TestForecastFCFF(t *testing.T) {
	got := ForecastFCFF(74.0, 3, models.Float(0.05))
	want := []float64{77.7, 81.585, 85.66425}

	if len(got) != len(want) {
		t.Fatalf("Expected %d years, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("Year %d: expected %f, got %f", i+1, want[i], got[i])
		}
	}
}

func TestForecastFCFF_DefaultGrowth(t *testing.T) {
	withDefault := ForecastFCFF(74.0, 3, nil)
	explicit := ForecastFCFF(74.0, 3, models.Float(0.05))
	for i := range explicit {
		if withDefault[i] != explicit[i] {
			t.Errorf("Year %d: default growth gave %f, want %f", i+1, withDefault[i], explicit[i])
		}
	}
}

func TestForecastFCFF_GeometricIdentity(t *testing.T) {
	cases := []struct {
		base float64
		n    int
		g    float64
	}{
		{74, 5, 0.05},
		{-20, 4, 0.10},
		{1e9, 10, 0.0},
		{350.5, 1, 0.25},
	}

	for _, c := range cases {
		got := ForecastFCFF(c.base, c.n, models.Float(c.g))
		if len(got) != c.n {
			t.Fatalf("Expected %d years, got %d", c.n, len(got))
		}
		for i := 1; i <= c.n; i++ {
			want := c.base * math.Pow(1+c.g, float64(i))
			if math.Abs(got[i-1]-want) > 1e-9*math.Max(1, math.Abs(want)) {
				t.Errorf("base=%v g=%v year %d: expected %f, got %f", c.base, c.g, i, want, got[i-1])
			}
		}
	}
}

func TestTerminalValue(t *testing.T) {
	got, err := TerminalValue(85.66425, 0.025, 0.09)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 85.66425 * 1.025 / 0.065
	if math.Abs(got-1350.8593) > 0.01 {
		t.Errorf("Expected terminal value ~1350.86, got %f", got)
	}
}

func TestTerminalValue_DomainViolation(t *testing.T) {
	cases := []struct{ wacc, g float64 }{
		{0.025, 0.03},
		{0.03, 0.03},
		{0, 0},
		{-0.01, 0.02},
	}

	for _, c := range cases {
		got, err := TerminalValue(85.66425, c.g, c.wacc)
		if err == nil {
			t.Fatalf("wacc=%v g=%v: expected domain violation, got value %f", c.wacc, c.g, got)
		}
		if !errors.Is(err, ErrDomainViolation) {
			t.Errorf("Expected ErrDomainViolation, got %v", err)
		}
		var dv *DomainViolationError
		if !errors.As(err, &dv) {
			t.Fatalf("Expected *DomainViolationError, got %T", err)
		}
		if dv.WACC != c.wacc || dv.Growth != c.g || dv.Formula != "terminal_value" {
			t.Errorf("Unexpected error context: %+v", dv)
		}
	}
}

func TestEnterpriseValue_SingleYear(t *testing.T) {
	f, tv, w := 100.0, 2000.0, 0.08
	ev, pvs, pvTerminal := EnterpriseValue([]float64{f}, tv, w)

	want := f/(1+w) + tv/(1+w)
	if math.Abs(ev-want) > 1e-9 {
		t.Errorf("Expected EV %f, got %f", want, ev)
	}
	if len(pvs) != 1 || math.Abs(pvs[0]-f/(1+w)) > 1e-9 {
		t.Errorf("Unexpected PV series %v", pvs)
	}
	if math.Abs(pvTerminal-tv/(1+w)) > 1e-9 {
		t.Errorf("Terminal value should be discounted over the horizon, got %f", pvTerminal)
	}
}

func TestEnterpriseValue_TerminalDiscountedOverHorizon(t *testing.T) {
	forecast := []float64{77.7, 81.585, 85.66425}
	_, pvs, pvTerminal := EnterpriseValue(forecast, 1000, 0.1)

	if math.Abs(pvTerminal-1000/math.Pow(1.1, 3)) > 1e-9 {
		t.Errorf("Expected TV discounted by (1+wacc)^3, got %f", pvTerminal)
	}
	for i, pv := range pvs {
		want := forecast[i] / math.Pow(1.1, float64(i+1))
		if math.Abs(pv-want) > 1e-9 {
			t.Errorf("Year %d: expected PV %f, got %f", i+1, want, pv)
		}
	}
}

func TestEquityValue_RoundTrip(t *testing.T) {
	ev, _, _ := EnterpriseValue([]float64{77.7, 81.585, 85.66425}, 1350.86, 0.09)

	for _, c := range []struct{ debt, cash float64 }{
		{0, 0}, {500, 120}, {1e6, 3.5}, {12.25, 9e5},
	} {
		eq := EquityValue(ev, c.debt, c.cash)
		back := eq - c.cash + c.debt
		if math.Abs(back-ev) > 1e-6 {
			t.Errorf("debt=%v cash=%v: round trip gave %f, want %f", c.debt, c.cash, back, ev)
		}
	}
}

func TestPerShareValue(t *testing.T) {
	if got := PerShareValue(1000, 0); got != 0 {
		t.Errorf("Expected 0 for zero shares, got %f", got)
	}
	if got := PerShareValue(1000, 40); got != 25 {
		t.Errorf("Expected 25, got %f", got)
	}
}

func sampleSnapshot() models.FundamentalsSnapshot {
	return models.FundamentalsSnapshot{
		Ticker:            "ACME",
		CompanyName:       "Acme Corp",
		Beta:              models.Float(1.1),
		MarketCap:         models.Float(2000),
		SharesOutstanding: models.Float(50),
		CurrentPrice:      models.Float(40),
		EBIT:              models.Float(100),
		TaxExpense:        models.Float(21),
		Depreciation:      models.Float(10),
		InterestExpense:   models.Float(12),
		LongTermDebt:      models.Float(250),
		ShortTermDebt:     models.Float(50),
		Cash:              models.Float(80),
		Capex:             15,
	}
}

func sampleMacro() models.MacroAssumptions {
	return models.MacroAssumptions{
		RiskFreeRate:      0.042,
		EquityRiskPremium: 0.05,
		ForecastYears:     3,
		PerpetualGrowth:   0.025,
	}
}

func TestCalculateDCF(t *testing.T) {
	s := sampleSnapshot()
	res, err := CalculateDCF(s, sampleMacro())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.BaseFCFF-74.0) > 1e-9 {
		t.Errorf("Expected base FCFF 74.0, got %f", res.BaseFCFF)
	}
	if len(res.Forecast) != 3 || math.Abs(res.Forecast[2]-85.66425) > 1e-6 {
		t.Errorf("Unexpected forecast %v", res.Forecast)
	}

	// Ke = 0.042 + 1.1*0.05 = 0.097; Kd = 12/300 * 0.79 = 0.0316
	// WACC = 2000/2300 * 0.097 + 300/2300 * 0.0316
	wantWACC := 2000.0/2300*0.097 + 300.0/2300*0.0316
	if math.Abs(res.WACC-wantWACC) > 1e-12 {
		t.Errorf("Expected WACC %f, got %f", wantWACC, res.WACC)
	}

	tv, _ := TerminalValue(res.Forecast[2], 0.025, res.WACC)
	ev, _, _ := EnterpriseValue(res.Forecast, tv, res.WACC)
	if math.Abs(res.EnterpriseValue-ev) > 1e-9 {
		t.Errorf("Expected EV %f, got %f", ev, res.EnterpriseValue)
	}
	if math.Abs(res.EquityValue-(ev-300+80)) > 1e-9 {
		t.Errorf("Unexpected equity value %f", res.EquityValue)
	}
	if math.Abs(res.PerShareValue-res.EquityValue/50) > 1e-9 {
		t.Errorf("Unexpected per-share value %f", res.PerShareValue)
	}
	if math.Abs(res.SumPVForecast()+res.PVTerminal-res.EnterpriseValue) > 1e-9 {
		t.Errorf("PV components do not sum to EV")
	}
	if res.ShortTermGrowth != DefaultShortTermGrowth {
		t.Errorf("Expected default short-term growth, got %f", res.ShortTermGrowth)
	}
}

func TestCalculateDCF_MissingFundamentals(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*models.FundamentalsSnapshot)
	}{
		{"ebit", func(s *models.FundamentalsSnapshot) { s.EBIT = nil }},
		{"market_cap", func(s *models.FundamentalsSnapshot) { s.MarketCap = nil }},
		{"shares_outstanding", func(s *models.FundamentalsSnapshot) { s.SharesOutstanding = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(&s)

			res, err := CalculateDCF(s, sampleMacro())
			if res != nil {
				t.Errorf("Expected no result, got %+v", res)
			}
			var mf *MissingFundamentalError
			if !errors.As(err, &mf) {
				t.Fatalf("Expected *MissingFundamentalError, got %v", err)
			}
			if mf.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, mf.Field)
			}
			if !errors.Is(err, ErrMissingFundamental) {
				t.Errorf("Expected errors.Is ErrMissingFundamental")
			}
		})
	}
}

func TestCalculateDCF_NegativeFundamentals(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*models.FundamentalsSnapshot)
	}{
		{"market_cap", func(s *models.FundamentalsSnapshot) { s.MarketCap = models.Float(-1) }},
		{"shares_outstanding", func(s *models.FundamentalsSnapshot) { s.SharesOutstanding = models.Float(-50) }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(&s)

			res, err := CalculateDCF(s, sampleMacro())
			if res != nil {
				t.Errorf("Expected no result, got %+v", res)
			}
			var inv *InvalidFundamentalError
			if !errors.As(err, &inv) {
				t.Fatalf("Expected *InvalidFundamentalError, got %v", err)
			}
			if inv.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, inv.Field)
			}
			if !errors.Is(err, ErrInvalidFundamental) {
				t.Errorf("Expected errors.Is ErrInvalidFundamental")
			}
		})
	}
}

func TestCalculateDCF_OptionalFallbacks(t *testing.T) {
	s := models.FundamentalsSnapshot{
		EBIT:              models.Float(100),
		MarketCap:         models.Float(1000),
		SharesOutstanding: models.Float(10),
	}
	res, err := CalculateDCF(s, sampleMacro())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Beta != 1.0 || res.TaxRate != 0.21 || res.CostOfDebt != 0 {
		t.Errorf("Fallbacks not applied: beta=%f tax=%f kd=%f", res.Beta, res.TaxRate, res.CostOfDebt)
	}
	// 100 * 0.79 with no D&A or capex
	if math.Abs(res.BaseFCFF-79) > 1e-9 {
		t.Errorf("Expected base FCFF 79, got %f", res.BaseFCFF)
	}
}

func TestCalculateDCF_DomainViolation(t *testing.T) {
	macro := sampleMacro()
	macro.PerpetualGrowth = 0.5

	res, err := CalculateDCF(sampleSnapshot(), macro)
	if res != nil {
		t.Errorf("Expected no result on domain violation")
	}
	if !errors.Is(err, ErrDomainViolation) {
		t.Fatalf("Expected ErrDomainViolation, got %v", err)
	}
}

func TestCalculateDCF_ZeroShares(t *testing.T) {
	s := sampleSnapshot()
	s.SharesOutstanding = models.Float(0)

	res, err := CalculateDCF(s, sampleMacro())
	if err != nil {
		t.Fatalf("Zero shares is degenerate, not an error: %v", err)
	}
	if res.PerShareValue != 0 {
		t.Errorf("Expected 0 per share, got %f", res.PerShareValue)
	}
	if len(res.Degenerate) != 1 || !errors.Is(res.Degenerate[0], ErrDegenerateInput) {
		t.Errorf("Expected one degenerate case, got %v", res.Degenerate)
	}
}

func TestCalculateDCF_InvalidAssumptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.MacroAssumptions)
	}{
		{"zero horizon", func(m *models.MacroAssumptions) { m.ForecastYears = 0 }},
		{"negative risk free", func(m *models.MacroAssumptions) { m.RiskFreeRate = -0.01 }},
		{"negative erp", func(m *models.MacroAssumptions) { m.EquityRiskPremium = -0.01 }},
		{"NaN growth", func(m *models.MacroAssumptions) { m.PerpetualGrowth = math.NaN() }},
		{"negative short-term growth", func(m *models.MacroAssumptions) { m.ShortTermGrowth = models.Float(-0.2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleMacro()
			tt.mutate(&m)
			if _, err := CalculateDCF(sampleSnapshot(), m); !errors.Is(err, ErrInvalidAssumption) {
				t.Errorf("Expected ErrInvalidAssumption, got %v", err)
			}
		})
	}
}
