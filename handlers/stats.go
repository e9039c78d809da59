// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/salarypulse/server/middleware"
	"github.com/salarypulse/server/models"
	"github.com/salarypulse/server/survey"
)

// StatsHandler serves the aggregate snapshot maintained by the storage
// trigger. Read-only sibling of the admission pipeline.
type StatsHandler struct {
	reader *survey.StatsReader
}

func NewStatsHandler(reader *survey.StatsReader) *StatsHandler {
	return &StatsHandler{reader: reader}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.Snapshot(r.Context())
	if err != nil {
		slog.Error("failed to read stats snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// OptionsHandler publishes the current enum option sets so the form client
// stays in lockstep with the validator.
type OptionsHandler struct{}

func NewOptionsHandler() *OptionsHandler {
	return &OptionsHandler{}
}

// GetOptions handles GET /api/options
func (h *OptionsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.AllOptions())
}
