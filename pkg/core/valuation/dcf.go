package valuation

import (
	"dcf_valuation/pkg/models"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DerivedValuation holds the outputs of one DCF run. It is recomputed per run
// and is a pure function of the snapshot and the assumptions.
type DerivedValuation struct {
	CostOfCapital

	BaseFCFF        float64   `json:"base_fcff"`
	Forecast        []float64 `json:"forecast_fcff"`
	TerminalValue   float64   `json:"terminal_value"`
	PVForecast      []float64 `json:"pv_forecast_fcff"`
	PVTerminal      float64   `json:"pv_terminal_value"`
	EnterpriseValue float64   `json:"enterprise_value"`
	TotalDebt       float64   `json:"total_debt"`
	Cash            float64   `json:"cash"`
	EquityValue     float64   `json:"equity_value"`
	PerShareValue   float64   `json:"intrinsic_value_per_share"`

	PerpetualGrowth float64 `json:"perpetual_growth"`
	ShortTermGrowth float64 `json:"short_term_growth"`

	Degenerate []DegenerateCase `json:"degenerate,omitempty"`
}

// SumPVForecast is the present value of the explicit forecast period.
func (d *DerivedValuation) SumPVForecast() float64 {
	return floats.Sum(d.PVForecast)
}

// TerminalValue uses the Gordon growth perpetuity.
//
// FORMULA: TV = FCFF_n * (1 + g) / (WACC - g)
//
// WACC <= g has no meaningful value and returns a *DomainViolationError.
func TerminalValue(finalYearFCFF, perpetualGrowth, wacc float64) (float64, error) {
	if wacc <= perpetualGrowth {
		return 0, &DomainViolationError{Formula: "terminal_value", WACC: wacc, Growth: perpetualGrowth}
	}
	return finalYearFCFF * (1 + perpetualGrowth) / (wacc - perpetualGrowth), nil
}

// EnterpriseValue discounts year i by (1+WACC)^i and the terminal value by
// (1+WACC)^n, n being the last forecast year. The terminal value is stated as
// of the end of the forecast period.
func EnterpriseValue(forecast []float64, terminalValue, wacc float64) (ev float64, pvs []float64, pvTerminal float64) {
	pvs = make([]float64, len(forecast))
	for i, fcff := range forecast {
		pvs[i] = fcff / math.Pow(1+wacc, float64(i+1))
	}

	pvTerminal = terminalValue / math.Pow(1+wacc, float64(len(forecast)))
	ev = floats.Sum(pvs) + pvTerminal
	return ev, pvs, pvTerminal
}

// EquityValue is the net-debt bridge: EV - debt + cash.
func EquityValue(enterpriseValue, totalDebt, cash float64) float64 {
	return enterpriseValue - totalDebt + cash
}

// PerShareValue divides equity value by shares; 0 shares yields 0.
func PerShareValue(equityValue, sharesOutstanding float64) float64 {
	if sharesOutstanding == 0 {
		return 0
	}
	return equityValue / sharesOutstanding
}

// CheckSnapshot returns a *MissingFundamentalError for the first required
// field that is absent and an *InvalidFundamentalError when market cap or
// shares outstanding is negative. Zero shares is allowed and handled as a
// degenerate case.
func CheckSnapshot(s models.FundamentalsSnapshot) error {
	switch {
	case s.EBIT == nil:
		return &MissingFundamentalError{Field: "ebit"}
	case s.MarketCap == nil:
		return &MissingFundamentalError{Field: "market_cap"}
	case s.SharesOutstanding == nil:
		return &MissingFundamentalError{Field: "shares_outstanding"}
	case *s.MarketCap < 0:
		return &InvalidFundamentalError{Field: "market_cap", Value: *s.MarketCap}
	case *s.SharesOutstanding < 0:
		return &InvalidFundamentalError{Field: "shares_outstanding", Value: *s.SharesOutstanding}
	}
	return nil
}

// CheckAssumptions rejects negative or non-finite rates and horizons below one year.
func CheckAssumptions(m models.MacroAssumptions) error {
	type rate struct {
		name string
		v    float64
	}
	rates := []rate{
		{"risk_free_rate", m.RiskFreeRate},
		{"equity_risk_premium", m.EquityRiskPremium},
		{"perpetual_growth", m.PerpetualGrowth},
	}
	if m.ShortTermGrowth != nil {
		rates = append(rates, rate{"short_term_growth", *m.ShortTermGrowth})
	}

	for _, r := range rates {
		if math.IsNaN(r.v) || math.IsInf(r.v, 0) || r.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidAssumption, r.name, r.v)
		}
	}
	if m.ForecastYears < 1 {
		return fmt.Errorf("%w: forecast_years must be greater than 0, got %d", ErrInvalidAssumption, m.ForecastYears)
	}
	return nil
}

// CalculateDCF performs the full single-stage-growth FCFF valuation
func CalculateDCF(s models.FundamentalsSnapshot, macro models.MacroAssumptions) (*DerivedValuation, error) {
	if err := CheckSnapshot(s); err != nil {
		return nil, err
	}
	if err := CheckAssumptions(macro); err != nil {
		return nil, err
	}

	// 1. Cost of capital
	coc, degenerate := CalculateCostOfCapital(s, macro)

	// 2. Cash flows
	base := BaseFCFF(*s.EBIT, coc.TaxRate, s.Depreciation, s.Capex, s.ChangeInWC)
	forecast := ForecastFCFF(base, macro.ForecastYears, macro.ShortTermGrowth)

	// 3. Terminal value
	tv, err := TerminalValue(forecast[len(forecast)-1], macro.PerpetualGrowth, coc.WACC)
	if err != nil {
		return nil, err
	}

	// 4. Discount and bridge
	ev, pvs, pvTerminal := EnterpriseValue(forecast, tv, coc.WACC)
	debt, cash := s.TotalDebt(), s.CashOrZero()
	equity := EquityValue(ev, debt, cash)

	shares := *s.SharesOutstanding
	if shares == 0 {
		degenerate = append(degenerate, DegenerateCase{Input: "shares_outstanding", Formula: "per_share_value", Fallback: "0 per share"})
	}

	stg := DefaultShortTermGrowth
	if macro.ShortTermGrowth != nil {
		stg = *macro.ShortTermGrowth
	}

	return &DerivedValuation{
		CostOfCapital:   coc,
		BaseFCFF:        base,
		Forecast:        forecast,
		TerminalValue:   tv,
		PVForecast:      pvs,
		PVTerminal:      pvTerminal,
		EnterpriseValue: ev,
		TotalDebt:       debt,
		Cash:            cash,
		EquityValue:     equity,
		PerShareValue:   PerShareValue(equity, shares),
		PerpetualGrowth: macro.PerpetualGrowth,
		ShortTermGrowth: stg,
		Degenerate:      degenerate,
	}, nil
}
