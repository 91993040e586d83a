package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCurrency abbreviates billions and millions ($1.23B, $45.60M) and
// prints smaller amounts in full ($1,234.56). Amounts are USD.
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v)
	abs := d.Abs()

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	switch {
	case abs.GreaterThanOrEqual(decimal.New(1, 9)):
		return sign + "$" + abs.Shift(-9).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(decimal.New(1, 6)):
		return sign + "$" + abs.Shift(-6).StringFixed(2) + "M"
	}

	cur := money.GetCurrency(money.USD)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	cents := d.Mul(factor).Round(0)
	return money.New(cents.IntPart(), money.USD).Display()
}

// FormatPercent prints a fraction as a percentage with two decimals (0.0825 -> 8.25%).
func FormatPercent(f float64) string {
	return decimal.NewFromFloat(f).Shift(2).StringFixed(2) + "%"
}

// FormatSignedPercent is FormatPercent with an explicit + for gains.
func FormatSignedPercent(f float64) string {
	s := FormatPercent(f)
	if f > 0 {
		return "+" + s
	}
	return s
}

// FormatShares prints a share count with thousands separators and no decimals.
func FormatShares(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	s := d.Abs().String()

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if d.IsNegative() {
		return "-" + string(out)
	}
	return string(out)
}
