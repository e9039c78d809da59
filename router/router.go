// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/salarypulse/server/cliparse"
	"github.com/salarypulse/server/handlers"
	"github.com/salarypulse/server/middleware"
	"github.com/salarypulse/server/origin"
	"github.com/salarypulse/server/ratelimit"
	"github.com/salarypulse/server/survey"
	"github.com/salarypulse/server/token"
	"github.com/salarypulse/server/verify"
)

// NewRouter wires the admission pipeline and read-side handlers. rdb may be
// nil, which disables the stats cache and drops Redis from health checks.
func NewRouter(dbConn *sql.DB, rdb *redis.Client, reg *prometheus.Registry, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Pipeline components
	guard := origin.NewGuard(cfg.AllowedOrigins)
	limiter := ratelimit.NewLimiter(dbConn, cfg.RateWindow, cfg.RateMaxRequests)
	ledger := token.NewLedger(dbConn, cfg.TokenValidity, cfg.TokenSkew)
	verifier := verify.NewClient(cfg.VerifySecret, cfg.VerifyURL, cfg.DevMode)
	gateway := survey.NewGateway(dbConn, cfg.PersistTimeout)
	reader := survey.NewStatsReader(dbConn, rdb, cfg.StatsCacheTTL)

	// Initialize handlers
	submitHandler := handlers.NewSubmitHandler(cfg, guard, limiter, ledger, verifier, gateway)
	statsHandler := handlers.NewStatsHandler(reader)
	optionsHandler := handlers.NewOptionsHandler()
	maintenanceHandler := handlers.NewMaintenanceHandler(cfg, limiter, ledger)
	healthHandler := handlers.NewHealthHandler(dbConn, rdb)

	// Submission pipeline (public)
	mux.HandleFunc("POST /api/submissions", middleware.WithLogging(submitHandler.Submit))

	// Read side (public)
	mux.HandleFunc("GET /api/stats", middleware.WithLogging(statsHandler.GetStats))
	mux.HandleFunc("GET /api/options", middleware.WithLogging(optionsHandler.GetOptions))

	// Maintenance (optionally bearer-gated)
	mux.HandleFunc("POST /api/maintenance/cleanup", middleware.WithLogging(maintenanceHandler.Cleanup))

	// Operational endpoints
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return middleware.CORS(cfg.AllowedOrigins, mux)
}
