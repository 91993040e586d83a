package valuation

import (
	"context"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/report"
	coreValuation "dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ValuationRequest is the body of the valuation endpoints. Assumptions are
// in percent and default to the server configuration field by field. When
// Snapshot is present no fundamentals source is queried.
type ValuationRequest struct {
	Ticker      string                       `json:"ticker"`
	Assumptions assumption.Inputs            `json:"assumptions"`
	Snapshot    *models.FundamentalsSnapshot `json:"snapshot,omitempty"`
	Market      ingest.MarketData            `json:"market"`
}

// ErrorResponse is returned for every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Handler holds dependencies for valuation endpoints
type Handler struct {
	source   ingest.Source
	defaults assumption.Inputs
	log      zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(source ingest.Source, defaults assumption.Inputs, log zerolog.Logger) *Handler {
	return &Handler{
		source:   source,
		defaults: defaults,
		log:      log.With().Str("component", "valuation_api").Logger(),
	}
}

// Routes mounts the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/dcf", h.HandleDCF)
	r.Post("/report", h.HandleReport)
}

// HandleDCF returns the full valuation result as JSON.
func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// HandleReport returns the valuation summary as an HTML page.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	page, err := report.HTML(res)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	req := ValuationRequest{Assumptions: h.defaults.Clone()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error(), Kind: "invalid_request"})
		return nil, false
	}

	macro, err := req.Assumptions.ToMacro()
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	// 1. Pick the source: inline snapshot or the configured provider
	source := h.source
	ticker := req.Ticker
	if req.Snapshot != nil {
		if ticker == "" {
			ticker = req.Snapshot.Ticker
		}
		snap := *req.Snapshot
		snap.Source = "inline"
		source = ingest.StaticSource{ingest.NormalizeTicker(ticker): snap}
	}
	source = ingest.WithMarketData(source, req.Market)

	// 2. Run
	orch := pipeline.NewPipelineOrchestrator(source, h.log)
	res, err := orch.Run(r.Context(), ticker, macro)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return res, true
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, coreValuation.ErrInvalidAssumption):
		status, kind = http.StatusBadRequest, "invalid_assumption"
	case errors.Is(err, ingest.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, coreValuation.ErrMissingFundamental):
		status, kind = http.StatusUnprocessableEntity, "missing_fundamental"
	case errors.Is(err, coreValuation.ErrInvalidFundamental):
		status, kind = http.StatusUnprocessableEntity, "invalid_fundamental"
	case errors.Is(err, coreValuation.ErrDomainViolation):
		status, kind = http.StatusUnprocessableEntity, "domain_violation"
	case errors.Is(err, context.DeadlineExceeded):
		status, kind = http.StatusGatewayTimeout, "timeout"
	}
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Valuation request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
