package valuation

import (
	"dcf_valuation/pkg/models"
	"math"
)

// DefaultShortTermGrowth applies to the forecast when no override is supplied.
const DefaultShortTermGrowth = 0.05

// BaseFCFF computes base-year free cash flow to firm.
//
// FORMULA: FCFF = EBIT * (1 - t) + D&A - CapEx - ΔNWC
//
// Missing depreciation counts as 0. Capex is a non-negative magnitude.
func BaseFCFF(ebit, taxRate float64, depreciation *float64, capex, changeInWC float64) float64 {
	nopat := ebit * (1 - taxRate)
	return nopat + models.Value(depreciation) - capex - changeInWC
}

// ForecastFCFF grows the base cash flow geometrically for the given number of years.
// Year i (1-indexed) is base * (1+g)^i. A nil growth uses DefaultShortTermGrowth.
func ForecastFCFF(baseFCFF float64, years int, growth *float64) []float64 {
	g := DefaultShortTermGrowth
	if growth != nil {
		g = *growth
	}

	if years < 1 {
		return []float64{}
	}
	forecast := make([]float64, years)
	for i := range forecast {
		forecast[i] = baseFCFF * math.Pow(1+g, float64(i+1))
	}
	return forecast
}
