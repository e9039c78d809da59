// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Limiter throttles aggregate traffic across all serving instances with no
// per-user tracking and no shared memory. The rate_window table is the only
// coordination point; the bucket upsert-increment is atomic at the row
// level, so the worst race outcome is slight over-admission, never
// under-admission.
type Limiter struct {
	db          *sql.DB
	window      time.Duration
	maxRequests int
	bucketSize  time.Duration
}

func NewLimiter(db *sql.DB, window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		db:          db,
		window:      window,
		maxRequests: maxRequests,
		bucketSize:  time.Minute,
	}
}

// Admit reports whether the request fits the trailing-window budget:
// reclaim stale buckets, sum the rest, reject at the budget, otherwise
// upsert-increment the current bucket. On any storage error it fails open
// and logs - throttling must never be a single point of total outage.
func (l *Limiter) Admit(ctx context.Context, now time.Time) bool {
	cutoff := now.Add(-l.window)
	if _, err := l.db.ExecContext(ctx, `DELETE FROM rate_window WHERE bucket_start < $1`, cutoff); err != nil {
		slog.Warn("rate limiter failing open: bucket reclamation failed", "error", err)
		return true
	}

	var total int
	err := l.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(count), 0) FROM rate_window`).Scan(&total)
	if err != nil {
		slog.Warn("rate limiter failing open: window sum failed", "error", err)
		return true
	}
	if total >= l.maxRequests {
		return false
	}

	bucket := now.Truncate(l.bucketSize)
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO rate_window (bucket_start, count)
		VALUES ($1, 1)
		ON CONFLICT (bucket_start) DO UPDATE SET count = rate_window.count + 1
	`, bucket)
	if err != nil {
		slog.Warn("rate limiter failing open: bucket increment failed", "error", err)
	}
	return true
}

// Cleanup reclaims buckets older than the trailing window. Admit already
// does this inline; the maintenance endpoint calls it so an idle instance
// does not accumulate stale rows.
func (l *Limiter) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM rate_window WHERE bucket_start < $1`, now.Add(-l.window))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up rate buckets: %w", err)
	}
	return res.RowsAffected()
}
