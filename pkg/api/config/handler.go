package config

import (
	"dcf_valuation/pkg/core/assumption"
	coreConfig "dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/valuation"
	"encoding/json"
	"net/http"
)

// Response describes the server's valuation defaults.
type Response struct {
	ActiveSource     string            `json:"active_source"`
	Available        []string          `json:"available"`
	Assumptions      assumption.Inputs `json:"assumptions"` // percent units
	SensitivitySize  int               `json:"sensitivity_size"`
	VerdictThreshold float64           `json:"verdict_threshold"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	cfg *coreConfig.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *coreConfig.Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		ActiveSource:     h.cfg.Source,
		Available:        []string{coreConfig.SourceEDGAR, coreConfig.SourceFile, coreConfig.SourcePostgres},
		Assumptions:      h.cfg.Assumptions,
		SensitivitySize:  valuation.GridSize,
		VerdictThreshold: valuation.VerdictThreshold,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
