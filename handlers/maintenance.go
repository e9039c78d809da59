// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/salarypulse/server/cliparse"
	"github.com/salarypulse/server/middleware"
	"github.com/salarypulse/server/models"
	"github.com/salarypulse/server/ratelimit"
	"github.com/salarypulse/server/token"
)

// MaintenanceHandler reclaims expired rate-window buckets and consumed
// tokens. Intended to be hit by a cron job.
type MaintenanceHandler struct {
	cfg     cliparse.Config
	limiter *ratelimit.Limiter
	ledger  *token.Ledger
}

func NewMaintenanceHandler(cfg cliparse.Config, limiter *ratelimit.Limiter, ledger *token.Ledger) *MaintenanceHandler {
	return &MaintenanceHandler{cfg: cfg, limiter: limiter, ledger: ledger}
}

// Cleanup handles POST /api/maintenance/cleanup
func (h *MaintenanceHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	// Bearer check only when a credential is configured.
	if h.cfg.MaintenanceToken != "" {
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !hmac.Equal([]byte(presented), []byte(h.cfg.MaintenanceToken)) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid maintenance credential")
			return
		}
	}

	now := time.Now()

	buckets, err := h.limiter.Cleanup(r.Context(), now)
	if err != nil {
		slog.Error("rate bucket cleanup failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Cleanup failed")
		return
	}

	tokens, err := h.ledger.Cleanup(r.Context(), now)
	if err != nil {
		slog.Error("token cleanup failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Cleanup failed")
		return
	}

	slog.Info("maintenance cleanup completed", "rate_buckets", buckets, "tokens", tokens)

	middleware.JSONResponse(w, http.StatusOK, models.CleanupResponse{
		RateBucketsDeleted: buckets,
		TokensDeleted:      tokens,
	})
}
