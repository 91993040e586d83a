// Package assumption loads and validates the user-facing macro assumptions.
// Rates are entered in percent (4.2 means 4.2%) and converted to fractions
// for the valuation core.
package assumption

import (
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Inputs are macro assumptions in percent units, as a user types them.
type Inputs struct {
	RiskFreeRate      float64  `json:"risk_free_rate" yaml:"risk_free_rate"`           // %, e.g. 4.2
	EquityRiskPremium float64  `json:"equity_risk_premium" yaml:"equity_risk_premium"` // %, e.g. 5.0
	ForecastYears     int      `json:"forecast_years" yaml:"forecast_years"`
	PerpetualGrowth   float64  `json:"perpetual_growth" yaml:"perpetual_growth"`                       // %, e.g. 2.5
	ShortTermGrowth   *float64 `json:"short_term_growth,omitempty" yaml:"short_term_growth,omitempty"` // %, nil = default 5%
}

// Defaults mirror the example values shown in the input prompts.
func Defaults() Inputs {
	return Inputs{
		RiskFreeRate:      4.2,
		EquityRiskPremium: 5.0,
		ForecastYears:     5,
		PerpetualGrowth:   2.5,
	}
}

// Clone returns a copy that shares no pointers with in. Decoding a request
// body into a clone leaves the original untouched.
func (in Inputs) Clone() Inputs {
	if in.ShortTermGrowth != nil {
		in.ShortTermGrowth = models.Float(*in.ShortTermGrowth)
	}
	return in
}

// Validate checks that every rate is a finite non-negative number and the
// forecast horizon is a positive integer.
func (in Inputs) Validate() error {
	rates := []struct {
		name  string
		value *float64
	}{
		{"Risk-Free Rate", &in.RiskFreeRate},
		{"Equity Risk Premium", &in.EquityRiskPremium},
		{"Perpetual Growth Rate", &in.PerpetualGrowth},
		{"Short-term Growth Rate", in.ShortTermGrowth},
	}
	for _, r := range rates {
		if r.value == nil {
			continue
		}
		if err := checkRate(r.name, *r.value); err != nil {
			return err
		}
	}
	if in.ForecastYears <= 0 {
		return fmt.Errorf("%w: Forecast Period must be greater than 0", valuation.ErrInvalidAssumption)
	}
	return nil
}

func checkRate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a number", valuation.ErrInvalidAssumption, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must be non-negative", valuation.ErrInvalidAssumption, name)
	}
	return nil
}

// ToMacro validates the inputs and converts percent to fractions.
func (in Inputs) ToMacro() (models.MacroAssumptions, error) {
	if err := in.Validate(); err != nil {
		return models.MacroAssumptions{}, err
	}
	m := models.MacroAssumptions{
		RiskFreeRate:      in.RiskFreeRate / 100,
		EquityRiskPremium: in.EquityRiskPremium / 100,
		ForecastYears:     in.ForecastYears,
		PerpetualGrowth:   in.PerpetualGrowth / 100,
	}
	if in.ShortTermGrowth != nil {
		m.ShortTermGrowth = models.Float(*in.ShortTermGrowth / 100)
	}
	return m, nil
}

// FromMacro converts fractional assumptions back to percent inputs.
func FromMacro(m models.MacroAssumptions) Inputs {
	in := Inputs{
		RiskFreeRate:      m.RiskFreeRate * 100,
		EquityRiskPremium: m.EquityRiskPremium * 100,
		ForecastYears:     m.ForecastYears,
		PerpetualGrowth:   m.PerpetualGrowth * 100,
	}
	if m.ShortTermGrowth != nil {
		in.ShortTermGrowth = models.Float(*m.ShortTermGrowth * 100)
	}
	return in
}

// ParsePercent parses a typed percent value ("4.2", "4.2%").
func ParsePercent(name, s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid input for %s", valuation.ErrInvalidAssumption, name)
	}
	if err := checkRate(name, v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseYears parses a typed forecast horizon.
func ParseYears(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid input for Forecast Period", valuation.ErrInvalidAssumption)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: Forecast Period must be greater than 0", valuation.ErrInvalidAssumption)
	}
	return v, nil
}

// LoadFile reads inputs from a YAML, Hjson or JSON file. Fields missing from
// the file keep the values of base.
func LoadFile(path string, base Inputs) (Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read assumptions file: %w", err)
	}

	in := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	case ".hjson":
		err = utils.DecodeHJSON(data, &in)
	default:
		_, err = utils.SmartParse(string(data), &in)
	}
	if err != nil {
		return base, fmt.Errorf("failed to parse assumptions file %s: %w", path, err)
	}

	if err := in.Validate(); err != nil {
		return base, err
	}
	return in, nil
}
