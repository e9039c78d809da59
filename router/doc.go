// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines all HTTP routes for the SalaryPulse API.

# Routes

Submission pipeline:

	POST /api/submissions - run the full admission pipeline

Read side:

	GET /api/stats   - aggregate snapshot (briefly cached)
	GET /api/options - current enum option sets

Operations:

	POST /api/maintenance/cleanup - reclaim expired rate buckets and tokens
	GET  /health                  - liveness and dependency degradation
	GET  /metrics                 - Prometheus registry

# Routing

Uses Go 1.22+ enhanced routing with method matching. The whole mux is
wrapped in exact-match CORS for the configured origins.
*/
package router
