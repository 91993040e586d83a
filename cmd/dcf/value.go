package main

import (
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/models"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	formatTerminal = "terminal"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatHTML     = "html"
)

var (
	riskFree        float64
	equityPremium   float64
	forecastYears   int
	perpetualGrowth float64
	shortTermGrowth float64
	assumptionsFile string
	interactive     bool
	sourceName      string
	outputFormat    string
	glamourStyle    string
	priceFlag       float64
	betaFlag        float64
)

var valueCmd = &cobra.Command{
	Use:   "value TICKER",
	Short: "Run a DCF valuation for one company",
	Example: `  dcf value AAPL --price 190 --beta 1.2
  dcf value MSFT --risk-free 4.3 --growth 2 --years 7 --format markdown
  dcf value ACME --source file --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runValue,
}

func init() {
	d := assumption.Defaults()
	f := valueCmd.Flags()
	f.Float64Var(&riskFree, "risk-free", d.RiskFreeRate, "Risk-free rate, percent")
	f.Float64Var(&equityPremium, "erp", d.EquityRiskPremium, "Equity risk premium, percent")
	f.IntVar(&forecastYears, "years", d.ForecastYears, "Forecast period, years")
	f.Float64Var(&perpetualGrowth, "growth", d.PerpetualGrowth, "Perpetual growth rate, percent")
	f.Float64Var(&shortTermGrowth, "short-term-growth", 5.0, "Short-term FCFF growth rate, percent")
	f.StringVar(&assumptionsFile, "assumptions", "", "Assumptions file (yaml, hjson or json)")
	f.BoolVarP(&interactive, "interactive", "i", false, "Prompt for assumptions")
	f.StringVar(&sourceName, "source", "", "Fundamentals source: edgar, file or postgres (default from config)")
	f.StringVarP(&outputFormat, "format", "f", formatTerminal, "Output format: terminal, markdown, json or html")
	f.StringVar(&glamourStyle, "style", "", "Terminal style (dark, light, notty); empty detects")
	f.Float64Var(&priceFlag, "price", 0, "Current share price")
	f.Float64Var(&betaFlag, "beta", 0, "Equity beta")
}

func runValue(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	// 1. Assumptions: config, then file, then flags, then the form
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	macro, err := in.ToMacro()
	if err != nil {
		return err
	}

	// 2. Fundamentals source
	if sourceName != "" {
		cfg.Source = sourceName
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	src, err := pipeline.BuildSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	src = ingest.WithMarketData(src, marketFlags(cmd))

	// 3. Valuation
	res, err := pipeline.NewPipelineOrchestrator(src, log).Run(ctx, args[0], macro)
	if err != nil {
		return err
	}

	// 4. Output
	return render(cmd, res)
}

func resolveInputs(cmd *cobra.Command) (assumption.Inputs, error) {
	in := cfg.Assumptions
	if assumptionsFile != "" {
		loaded, err := assumption.LoadFile(assumptionsFile, in)
		if err != nil {
			return in, err
		}
		in = loaded
	}

	f := cmd.Flags()
	if f.Changed("risk-free") {
		in.RiskFreeRate = riskFree
	}
	if f.Changed("erp") {
		in.EquityRiskPremium = equityPremium
	}
	if f.Changed("years") {
		in.ForecastYears = forecastYears
	}
	if f.Changed("growth") {
		in.PerpetualGrowth = perpetualGrowth
	}
	if f.Changed("short-term-growth") {
		in.ShortTermGrowth = models.Float(shortTermGrowth)
	}

	if interactive {
		return promptInputs(in)
	}
	return in, in.Validate()
}

func marketFlags(cmd *cobra.Command) ingest.MarketData {
	var md ingest.MarketData
	if cmd.Flags().Changed("price") {
		md.Price = models.Float(priceFlag)
	}
	if cmd.Flags().Changed("beta") {
		md.Beta = models.Float(betaFlag)
	}
	return md
}

func render(cmd *cobra.Command, res *pipeline.Result) error {
	out := cmd.OutOrStdout()

	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)

	case formatMarkdown:
		_, err := fmt.Fprint(out, report.Markdown(res))
		return err

	case formatHTML:
		page, err := report.HTML(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, page)
		return err

	case formatTerminal:
		rendered, err := report.Terminal(report.Markdown(res), glamourStyle, terminalWidth())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headline(res))
		_, err = fmt.Fprint(out, rendered)
		return err
	}

	return fmt.Errorf("unknown format %q", outputFormat)
}

func terminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		var w int
		if _, err := fmt.Sscanf(cols, "%d", &w); err == nil && w > 40 {
			return w
		}
	}
	return 100
}
