// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SalaryPulse API server.

SalaryPulse collects anonymous salary-sentiment survey submissions over a
public endpoint. The hard part is not the form - it is admitting only
genuine, once-only, non-automated responses without tracking anyone. Every
submission runs a strictly ordered admission pipeline:

	origin -> rate limit -> size bound -> parse -> human verification
	       -> one-time token -> behavior scoring -> validation -> persist

The serving layer is assumed horizontally replicated with no shared memory;
all cross-request coordination (rate window, token uniqueness, aggregate
consistency) lives in PostgreSQL atomics, never in process state.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... VERIFY_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3322 -d "postgres://..." -verify-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - VERIFY_SECRET (-verify-secret): human verification service secret
    (optional only in dev mode)

Optional settings:

  - PORT (-p): server port (default: 3322)
  - ALLOWED_ORIGINS (-origins): extra origins admitted by the origin guard
  - REDIS_ADDR: enables the stats read cache
  - MAINTENANCE_TOKEN (-maintenance-token): bearer credential for cleanup
  - RATE_WINDOW, RATE_MAX_REQUESTS, TOKEN_VALIDITY, TOKEN_SKEW,
    BEHAVIOR_*, STATS_CACHE_TTL, MAX_BODY_BYTES, PERSIST_TIMEOUT

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP handlers (submit pipeline, stats, maintenance, health)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: wire types, option sets, rejection taxonomy
  - origin, ratelimit, token, behavior, verify, validate, survey: the
    pipeline stages, one package each
  - metrics: Prometheus instrumentation
  - db: schema, aggregate trigger, seed row
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
