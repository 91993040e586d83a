// Package report renders valuation results as Markdown, HTML and terminal text.
package report

import (
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
	"fmt"
	"strings"
)

// Markdown renders the valuation summary.
func Markdown(res *pipeline.Result) string {
	var b strings.Builder
	s, v, m := res.Snapshot, res.Valuation, res.Assumptions

	fmt.Fprintf(&b, "# DCF Valuation Summary: %s (%s)\n\n", s.Ticker, s.CompanyName)
	meta := []string{"Run `" + res.RunID + "`"}
	if s.Source != "" {
		meta = append(meta, "source: "+s.Source)
	}
	if s.AsOf != "" {
		meta = append(meta, "as of "+s.AsOf)
	}
	if s.CurrentPrice != nil {
		meta = append(meta, "current price "+FormatCurrency(*s.CurrentPrice))
	}
	b.WriteString("_" + strings.Join(meta, " · ") + "_\n\n")

	// 1. Inputs
	b.WriteString("## Input Parameters\n\n")
	table(&b, []string{"Parameter", "Value"}, [][]string{
		{"Risk-Free Rate", FormatPercent(m.RiskFreeRate)},
		{"Equity Risk Premium", FormatPercent(m.EquityRiskPremium)},
		{"Forecast Period", fmt.Sprintf("%d years", m.ForecastYears)},
		{"Perpetual Growth Rate", FormatPercent(m.PerpetualGrowth)},
		{"Short-term FCFF Growth", FormatPercent(v.ShortTermGrowth)},
	})

	// 2. Company metrics
	b.WriteString("## Company Metrics\n\n")
	table(&b, []string{"Metric", "Value"}, [][]string{
		{"Beta", fmt.Sprintf("%.2f", v.Beta)},
		{"Market Cap", FormatCurrency(models.Value(s.MarketCap))},
		{"Total Debt", FormatCurrency(v.TotalDebt)},
		{"Cash", FormatCurrency(v.Cash)},
		{"Tax Rate", FormatPercent(v.TaxRate)},
	})

	// 3. WACC
	b.WriteString("## WACC Calculation\n\n")
	table(&b, []string{"Component", "Cost", "Weight", "Contribution"}, [][]string{
		{"Cost of Equity (CAPM)", FormatPercent(v.CostOfEquity), FormatPercent(v.WeightEquity), FormatPercent(v.EquityContribution)},
		{"Cost of Debt (after-tax)", FormatPercent(v.CostOfDebt), FormatPercent(v.WeightDebt), FormatPercent(v.DebtContribution)},
		{"**WACC**", "", "", "**" + FormatPercent(v.WACC) + "**"},
	})

	// 4. Cash flows
	b.WriteString("## Free Cash Flow Analysis\n\n")
	fmt.Fprintf(&b, "EBIT: %s · Base Year FCFF: %s\n\n", FormatCurrency(models.Value(s.EBIT)), FormatCurrency(v.BaseFCFF))
	rows := make([][]string, 0, len(v.Forecast))
	for i, f := range v.Forecast {
		rows = append(rows, []string{fmt.Sprintf("Year %d", i+1), FormatCurrency(f), FormatCurrency(v.PVForecast[i])})
	}
	table(&b, []string{"Year", "FCFF", "Present Value"}, rows)

	// 5. Valuation bridge
	b.WriteString("## Valuation\n\n")
	table(&b, []string{"Item", "Amount"}, [][]string{
		{"Terminal Value", FormatCurrency(v.TerminalValue)},
		{"PV of Terminal Value", FormatCurrency(v.PVTerminal)},
		{"PV of Forecast FCFF", FormatCurrency(v.SumPVForecast())},
		{"Enterprise Value", FormatCurrency(v.EnterpriseValue)},
		{"Less: Total Debt", FormatCurrency(v.TotalDebt)},
		{"Plus: Cash", FormatCurrency(v.Cash)},
		{"Equity Value", FormatCurrency(v.EquityValue)},
		{"Shares Outstanding", FormatShares(models.Value(s.SharesOutstanding))},
	})
	fmt.Fprintf(&b, "**Intrinsic Value per Share: %s**\n\n", FormatCurrency(v.PerShareValue))

	// 6. Market comparison
	if c := res.Comparison; c != nil {
		b.WriteString("## Market Comparison\n\n")
		fmt.Fprintf(&b, "Current Price: %s · Upside/Downside: %s\n\n", FormatCurrency(c.CurrentPrice), FormatSignedPercent(c.Upside))
		b.WriteString(verdictLine(c) + "\n\n")
	}

	// 7. Sensitivity
	b.WriteString("## Sensitivity Analysis\n\n")
	b.WriteString("Intrinsic value per share by WACC (rows) and perpetual growth (columns).\n\n")
	sensitivityTable(&b, res.Sensitivity)

	// 8. Degenerate inputs and data warnings
	if len(res.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range res.Warnings {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func verdictLine(c *valuation.MarketComparison) string {
	switch c.Verdict {
	case valuation.VerdictUndervalued:
		return fmt.Sprintf("→ Stock appears **UNDERVALUED** by %s", FormatPercent(c.Upside))
	case valuation.VerdictOvervalued:
		return fmt.Sprintf("→ Stock appears **OVERVALUED** by %s", FormatPercent(-c.Upside))
	default:
		return "→ Stock appears **FAIRLY VALUED**"
	}
}

func sensitivityTable(b *strings.Builder, g valuation.SensitivityGrid) {
	header := []string{"WACC \\ g"}
	for _, growth := range g.Growths {
		header = append(header, FormatPercent(growth))
	}

	rows := make([][]string, 0, len(g.WACCs))
	for i, w := range g.WACCs {
		row := []string{FormatPercent(w)}
		for j := range g.Growths {
			cell := g.At(i, j)
			text := "n/a"
			if cell.Valid {
				text = FormatCurrency(cell.PerShare)
			}
			if i == g.BaseRow && j == g.BaseCol {
				text = "**" + text + "**"
			}
			row = append(row, text)
		}
		rows = append(rows, row)
	}
	table(b, header, rows)
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, r := range rows {
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	b.WriteString("\n")
}
