package valuation

import "fmt"

// Verdict classifies intrinsic value against the market price
type Verdict string

const (
	VerdictUndervalued  Verdict = "UNDERVALUED"
	VerdictOvervalued   Verdict = "OVERVALUED"
	VerdictFairlyValued Verdict = "FAIRLY VALUED"
)

// VerdictThreshold is the upside (as a fraction) beyond which a stock is
// called under- or overvalued.
const VerdictThreshold = 0.20

// MarketComparison relates the intrinsic value per share to the current price
type MarketComparison struct {
	CurrentPrice   float64 `json:"current_price"`
	IntrinsicValue float64 `json:"intrinsic_value"`
	Upside         float64 `json:"upside"` // (intrinsic - price) / price
	Verdict        Verdict `json:"verdict"`
}

// Compare returns nil when there is no usable market price.
func Compare(intrinsicValue float64, currentPrice *float64) *MarketComparison {
	if currentPrice == nil || *currentPrice <= 0 {
		return nil
	}
	price := *currentPrice
	upside := (intrinsicValue - price) / price

	verdict := VerdictFairlyValued
	switch {
	case upside > VerdictThreshold:
		verdict = VerdictUndervalued
	case upside < -VerdictThreshold:
		verdict = VerdictOvervalued
	}

	return &MarketComparison{
		CurrentPrice:   price,
		IntrinsicValue: intrinsicValue,
		Upside:         upside,
		Verdict:        verdict,
	}
}

// BridgeStep is one bar of the enterprise-to-equity value waterfall
type BridgeStep struct {
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`
	Cumulative float64 `json:"cumulative"`
}

// EquityBridge lays out EV -> less debt -> plus cash -> equity value.
func EquityBridge(d *DerivedValuation) []BridgeStep {
	afterDebt := d.EnterpriseValue - d.TotalDebt
	return []BridgeStep{
		{Label: "Enterprise Value", Amount: d.EnterpriseValue, Cumulative: d.EnterpriseValue},
		{Label: "Less: Debt", Amount: -d.TotalDebt, Cumulative: afterDebt},
		{Label: "Plus: Cash", Amount: d.Cash, Cumulative: afterDebt + d.Cash},
		{Label: "Equity Value", Amount: d.EquityValue, Cumulative: d.EquityValue},
	}
}

// PVBar is the present value contributed by one forecast year or the terminal value
type PVBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"` // fraction of enterprise value
}

// CapitalSlice is one side of the capital structure behind WACC
type CapitalSlice struct {
	Label        string  `json:"label"`
	Weight       float64 `json:"weight"`
	Cost         float64 `json:"cost"`
	Contribution float64 `json:"contribution"`
}

// ChartData is the plot-ready view of a valuation.
type ChartData struct {
	Bridge      []BridgeStep   `json:"bridge"`
	PVBreakdown []PVBar        `json:"pv_breakdown"`
	WACCWeights []CapitalSlice `json:"wacc_weights"`
}

// Charts assembles the equity bridge, PV breakdown and WACC composition.
func Charts(d *DerivedValuation) ChartData {
	share := func(v float64) float64 {
		if d.EnterpriseValue == 0 {
			return 0
		}
		return v / d.EnterpriseValue
	}

	bars := make([]PVBar, 0, len(d.PVForecast)+1)
	for i, pv := range d.PVForecast {
		bars = append(bars, PVBar{Label: fmt.Sprintf("Year %d", i+1), Value: pv, Share: share(pv)})
	}
	bars = append(bars, PVBar{Label: "Terminal", Value: d.PVTerminal, Share: share(d.PVTerminal)})

	return ChartData{
		Bridge:      EquityBridge(d),
		PVBreakdown: bars,
		WACCWeights: []CapitalSlice{
			{Label: "Equity", Weight: d.WeightEquity, Cost: d.CostOfEquity, Contribution: d.EquityContribution},
			{Label: "Debt", Weight: d.WeightDebt, Cost: d.CostOfDebt, Contribution: d.DebtContribution},
		},
	}
}
