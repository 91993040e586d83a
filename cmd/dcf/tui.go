package main

import (
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF6F61"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(highlight).
			Padding(0, 2).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(1)
)

// promptInputs asks for each assumption, pre-filled with the current values.
func promptInputs(in assumption.Inputs) (assumption.Inputs, error) {
	short := 5.0
	if in.ShortTermGrowth != nil {
		short = *in.ShortTermGrowth
	}

	riskStr := formatPct(in.RiskFreeRate)
	erpStr := formatPct(in.EquityRiskPremium)
	yearsStr := strconv.Itoa(in.ForecastYears)
	growthStr := formatPct(in.PerpetualGrowth)
	shortStr := formatPct(short)

	fmt.Println(headerStyle.Render("DCF ASSUMPTIONS"))

	percent := func(name string) func(string) error {
		return func(s string) error {
			_, err := assumption.ParsePercent(name, s)
			return err
		}
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Risk-Free Rate (%)").
				Description("e.g. 4.2").
				Value(&riskStr).
				Validate(percent("Risk-Free Rate")),
			huh.NewInput().
				Title("Equity Risk Premium (%)").
				Description("e.g. 5.0").
				Value(&erpStr).
				Validate(percent("Equity Risk Premium")),
			huh.NewInput().
				Title("Forecast Period (years)").
				Description("e.g. 5").
				Value(&yearsStr).
				Validate(func(s string) error {
					_, err := assumption.ParseYears(s)
					return err
				}),
			huh.NewInput().
				Title("Perpetual Growth Rate (%)").
				Description("e.g. 2.5").
				Value(&growthStr).
				Validate(percent("Perpetual Growth Rate")),
			huh.NewInput().
				Title("Short-term Growth Rate (%)").
				Description("FCFF growth during the forecast period").
				Value(&shortStr).
				Validate(percent("Short-term Growth Rate")),
		),
	).Run()
	if err != nil {
		return in, fmt.Errorf("failed to read assumptions: %w", err)
	}

	// Validators already accepted every field.
	in.RiskFreeRate, _ = assumption.ParsePercent("Risk-Free Rate", riskStr)
	in.EquityRiskPremium, _ = assumption.ParsePercent("Equity Risk Premium", erpStr)
	in.ForecastYears, _ = assumption.ParseYears(yearsStr)
	in.PerpetualGrowth, _ = assumption.ParsePercent("Perpetual Growth Rate", growthStr)
	s, _ := assumption.ParsePercent("Short-term Growth Rate", shortStr)
	in.ShortTermGrowth = models.Float(s)

	return in, in.Validate()
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// headline is the boxed summary printed above the full terminal report.
func headline(res *pipeline.Result) string {
	v := res.Valuation

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s", res.Snapshot.Ticker, res.Snapshot.CompanyName)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Intrinsic value per share  %s\n", report.FormatCurrency(v.PerShareValue))
	fmt.Fprintf(&b, "WACC                       %s\n", report.FormatPercent(v.CostOfCapital.WACC))
	fmt.Fprintf(&b, "Enterprise value           %s", report.FormatCurrency(v.EnterpriseValue))

	if c := res.Comparison; c != nil {
		style := lipgloss.NewStyle().Bold(true).Foreground(special)
		if c.Verdict == valuation.VerdictOvervalued {
			style = style.Foreground(warning)
		}
		fmt.Fprintf(&b, "\nCurrent price              %s\n", report.FormatCurrency(c.CurrentPrice))
		b.WriteString(style.Render(fmt.Sprintf("%s (%s)", c.Verdict, report.FormatSignedPercent(c.Upside))))
	}

	return boxStyle.Render(b.String())
}
