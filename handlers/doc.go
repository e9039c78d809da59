// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP handlers.

# Submission Pipeline

SubmitHandler.Submit runs the stages strictly in order:

 1. origin guard (exact-match allow-list)
 2. global rate limit (store-backed, fail-open)
 3. body-size bound (10KB default)
 4. JSON parse (lenient; unknown keys handled by validation)
 5. human verification (external service, fail-closed)
 6. one-time token consumption (insert-as-lock, replay prevention)
 7. behavior scoring (independent AND conditions)
 8. payload validation (all violations collected)
 9. persist (aggregate trigger fires in the same transaction)

Each stage failure short-circuits with one rejection category from
models; later stages never run. Nothing is retried server-side - transient
failures (store timeout, verifier outage) surface to the caller for
client-side retry, since blind retry after an ambiguous persistence outcome
risks duplicate admission.

# Read Side

StatsHandler serves the trigger-maintained aggregate snapshot (briefly
Redis-cached). OptionsHandler publishes the enum option sets.

# Operations

MaintenanceHandler reclaims expired rate buckets and tokens, optionally
gated by a bearer credential. HealthHandler reports dependency degradation.
*/
package handlers
