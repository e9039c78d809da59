// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration parsing from CLI flags and environment
variables.

Flags take precedence, then environment variables, then defaults. Secrets
(VERIFY_SECRET, MAINTENANCE_TOKEN) should be provided via environment in
production; the CLI flags exist for development convenience.

Every behavioral threshold of the admission pipeline lives in Config rather
than in pipeline code:

  - RATE_WINDOW / RATE_MAX_REQUESTS: global throttle budget
  - TOKEN_VALIDITY / TOKEN_SKEW: one-time token lifetime and clock tolerance
  - BEHAVIOR_*: dwell, idle and interaction-count thresholds
  - STATS_CACHE_TTL: read-side snapshot cache lifetime
  - MAX_BODY_BYTES / PERSIST_TIMEOUT: request and write bounds

A missing VERIFY_SECRET is a startup error unless dev mode is enabled; the
verifier never silently bypasses verification.
*/
package cliparse
