package pipeline

import (
	"context"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result is everything one valuation run produces.
type Result struct {
	RunID       string                      `json:"run_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Snapshot    models.FundamentalsSnapshot `json:"snapshot"`
	Assumptions models.MacroAssumptions     `json:"assumptions"`
	Valuation   *valuation.DerivedValuation `json:"valuation"`
	Sensitivity valuation.SensitivityGrid   `json:"sensitivity"`
	Comparison  *valuation.MarketComparison `json:"comparison,omitempty"`
	Charts      valuation.ChartData         `json:"charts"`
	Warnings    []string                    `json:"warnings,omitempty"`
}

// PipelineOrchestrator manages the end-to-end data flow:
// Source (fundamentals) -> Valuation -> Sensitivity -> Market comparison
type PipelineOrchestrator struct {
	source ingest.Source
	log    zerolog.Logger
	now    func() time.Time
}

// NewPipelineOrchestrator creates a new orchestrator.
// source: Implementation of ingest.Source (e.g., EDGARSource, FileSource, FundamentalsRepo)
func NewPipelineOrchestrator(source ingest.Source, log zerolog.Logger) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		source: source,
		log:    log.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
}

// Run fetches fundamentals for ticker and values the company.
func (p *PipelineOrchestrator) Run(ctx context.Context, ticker string, macro models.MacroAssumptions) (*Result, error) {
	ticker = ingest.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", valuation.ErrInvalidAssumption)
	}

	start := p.now()
	p.log.Info().Str("ticker", ticker).Msg("Fetching fundamentals")

	snap, err := p.source.Fetch(ctx, ticker)
	if err != nil {
		p.log.Error().Err(err).Str("ticker", ticker).Msg("Fetch failed")
		return nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", ticker, err)
	}
	p.log.Debug().
		Str("ticker", ticker).
		Str("source", snap.Source).
		Str("as_of", snap.AsOf).
		Dur("elapsed", p.now().Sub(start)).
		Msg("Fundamentals fetched")

	return p.RunSnapshot(ctx, *snap, macro)
}

// RunSnapshot values an already-assembled snapshot.
func (p *PipelineOrchestrator) RunSnapshot(ctx context.Context, snap models.FundamentalsSnapshot, macro models.MacroAssumptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap = snap.Normalize()
	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Str("ticker", snap.Ticker).Logger()

	var warnings []string
	if snap.Beta == nil {
		msg := fmt.Sprintf("beta not available, using default %.1f", models.DefaultBeta)
		log.Warn().Msg(msg)
		warnings = append(warnings, msg)
	}

	// 1. DCF
	res, err := valuation.CalculateDCF(snap, macro)
	if err != nil {
		log.Error().Err(err).Msg("Valuation failed")
		return nil, fmt.Errorf("failed to value %s: %w", snap.Ticker, err)
	}
	for _, d := range res.Degenerate {
		log.Warn().Str("input", d.Input).Str("formula", d.Formula).Str("fallback", d.Fallback).Msg("Degenerate input")
		warnings = append(warnings, d.Error())
	}

	// 2. Sensitivity
	grid := valuation.BuildSensitivity(res.Forecast, snap, res.WACC, macro.PerpetualGrowth)

	// 3. Market comparison
	cmp := valuation.Compare(res.PerShareValue, snap.CurrentPrice)

	log.Info().
		Float64("wacc", res.WACC).
		Float64("enterprise_value", res.EnterpriseValue).
		Float64("per_share", res.PerShareValue).
		Msg("Valuation complete")

	return &Result{
		RunID:       runID,
		GeneratedAt: p.now(),
		Snapshot:    snap,
		Assumptions: macro,
		Valuation:   res,
		Sensitivity: grid,
		Comparison:  cmp,
		Charts:      valuation.Charts(res),
		Warnings:    warnings,
	}, nil
}
