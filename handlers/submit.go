// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/salarypulse/server/behavior"
	"github.com/salarypulse/server/cliparse"
	"github.com/salarypulse/server/metrics"
	"github.com/salarypulse/server/middleware"
	"github.com/salarypulse/server/models"
	"github.com/salarypulse/server/origin"
	"github.com/salarypulse/server/ratelimit"
	"github.com/salarypulse/server/survey"
	"github.com/salarypulse/server/token"
	"github.com/salarypulse/server/validate"
	"github.com/salarypulse/server/verify"
)

// SubmitHandler runs the admission pipeline. Stages execute strictly in
// sequence; any failure short-circuits with a typed rejection so later,
// costlier stages are never reached. Nothing is retried within a request.
type SubmitHandler struct {
	cfg      cliparse.Config
	guard    *origin.Guard
	limiter  *ratelimit.Limiter
	ledger   *token.Ledger
	policy   behavior.Policy
	verifier *verify.Client
	gateway  *survey.Gateway
}

func NewSubmitHandler(
	cfg cliparse.Config,
	guard *origin.Guard,
	limiter *ratelimit.Limiter,
	ledger *token.Ledger,
	verifier *verify.Client,
	gateway *survey.Gateway,
) *SubmitHandler {
	return &SubmitHandler{
		cfg:     cfg,
		guard:   guard,
		limiter: limiter,
		ledger:  ledger,
		policy: behavior.Policy{
			MinDwell:       cfg.MinDwell,
			MaxWindow:      cfg.MaxWindow,
			MaxIdle:        cfg.MaxIdle,
			MinMouseMoves:  cfg.MinMouseMoves,
			MinTouchEvents: cfg.MinTouchEvents,
			MinClicks:      cfg.MinClicks,
		},
		verifier: verifier,
		gateway:  gateway,
	}
}

// Submit handles POST /api/submissions
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDurationSeconds.Observe(time.Since(start).Seconds())
	}()
	metrics.SubmissionsTotal.Inc()
	now := time.Now()

	// Stage 1: origin
	if err := h.guard.Check(r); err != nil {
		h.reject(w, models.RejectOriginMismatch, "Request origin not allowed", nil)
		return
	}

	// Stage 2: global rate limit (fail-open on store errors)
	if !h.limiter.Admit(r.Context(), now) {
		h.reject(w, models.RejectRateLimitExceeded, "Too many requests, try again later", nil)
		return
	}

	// Stage 3: body-size bound
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			metrics.RejectionsTotal.WithLabelValues(models.RejectMalformedRequest).Inc()
			return
		}
		h.reject(w, models.RejectMalformedRequest, "Could not read request body", nil)
		return
	}

	// Stage 4: parse (lenient; unknown keys are a validation concern later)
	var req models.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.reject(w, models.RejectMalformedRequest, "Invalid JSON", nil)
		return
	}

	// Stage 5: human verification (fail-closed)
	if err := h.verifier.Verify(r.Context(), req.HumanVerificationToken, middleware.GetClientIP(r)); err != nil {
		if errors.Is(err, verify.ErrFailed) {
			h.reject(w, models.RejectVerificationFailed, "Human verification failed", nil)
			return
		}
		h.reject(w, models.RejectVerificationUnavailable, "Human verification unavailable, try again later", nil)
		return
	}

	// Stage 6: one-time token consumption. Consumption precedes acceptance
	// so two concurrent requests can never both spend the same token.
	if err := h.ledger.ValidateFormat(req.SubmitToken, now); err != nil {
		h.reject(w, models.RejectMalformedRequest, "Invalid submission token", nil)
		return
	}
	fresh, err := h.ledger.Consume(r.Context(), req.SubmitToken, now)
	if err != nil {
		slog.Error("token consumption failed", "error", err)
		h.reject(w, models.RejectPersistenceFailure, "Internal error", nil)
		return
	}
	if !fresh {
		h.reject(w, models.RejectReplayDetected, "Submission token already used", nil)
		return
	}

	// Stage 7: behavior scoring
	mobile := behavior.IsMobileUA(r.UserAgent())
	if err := h.policy.Evaluate(req.BehaviorData, mobile, now); err != nil {
		var anomaly *behavior.AnomalyError
		if errors.As(err, &anomaly) {
			h.reject(w, models.RejectBehaviorAnomaly, anomaly.Reason, nil)
			return
		}
		h.reject(w, models.RejectMalformedRequest, "Malformed telemetry", nil)
		return
	}

	// Stage 8: structural validation, all violations collected
	rec, violations := validate.Submission(body, req)
	if len(violations) > 0 {
		h.reject(w, models.RejectValidationFailed, "Submission failed validation", violations)
		return
	}

	// Stage 9: persist; the aggregate trigger fires in the same transaction
	writeStart := time.Now()
	id, err := h.gateway.Insert(r.Context(), rec)
	metrics.DBWriteDurationSeconds.Observe(time.Since(writeStart).Seconds())
	if err != nil {
		slog.Error("failed to persist submission", "error", err)
		if errors.Is(err, survey.ErrTimeout) {
			h.reject(w, models.RejectPersistenceTimeout, "Storage timeout, please retry", nil)
			return
		}
		h.reject(w, models.RejectPersistenceFailure, "Internal error", nil)
		return
	}

	metrics.AdmissionsTotal.Inc()
	slog.Info("submission admitted", "id", id, "mobile", mobile)
	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{Success: true})
}

func (h *SubmitHandler) reject(w http.ResponseWriter, category, message string, fields []models.FieldError) {
	metrics.RejectionsTotal.WithLabelValues(category).Inc()
	slog.Info("submission rejected", "category", category)
	middleware.RejectResponse(w, category, message, fields)
}
