// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/salarypulse/server/models"
)

var (
	// ErrTimeout means the write exceeded its statement time bound. The
	// caller may retry at the HTTP layer; the gateway never retries
	// internally, since retrying a possibly-succeeded write risks
	// duplicates - there is deliberately no content dedup key.
	ErrTimeout = errors.New("persistence timed out")
	ErrFailed  = errors.New("persistence failed")
)

// Gateway owns all writes to survey_response. The aggregate_stats row is
// maintained by the table's trigger inside the same transaction, so no
// application code touches it.
type Gateway struct {
	db      *sql.DB
	timeout time.Duration
}

func NewGateway(db *sql.DB, timeout time.Duration) *Gateway {
	return &Gateway{db: db, timeout: timeout}
}

// Insert persists a fully validated, sanitized record. Success is confirmed
// by reading back the generated identity, not by mere absence of error. No
// content-based deduplication: distinct anonymous respondents may submit
// identical answer tuples; uniqueness lives at the token layer.
func (g *Gateway) Insert(ctx context.Context, rec models.SurveyResponse) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	id := uuid.NewString()
	var returned string
	err := g.db.QueryRowContext(ctx, `
		INSERT INTO survey_response
			(id, industry, salary_months, personal_income, personal_arrears,
			 friends_status, friends_arrears_perception, welfare_cut, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`, id, rec.Industry, rec.SalaryMonths, rec.PersonalIncome, rec.PersonalArrears,
		rec.FriendsStatus, rec.FriendsArrearsPerception, pq.Array(rec.WelfareCut),
	).Scan(&returned)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if returned != id {
		return "", fmt.Errorf("%w: store returned identity %q for %q", ErrFailed, returned, id)
	}
	return id, nil
}

// StatsReader serves the aggregate snapshot. The snapshot only changes on
// new admissions, so it is cached briefly in Redis when an address is
// configured; cache errors degrade to a direct read, never to an outage.
type StatsReader struct {
	db  *sql.DB
	rdb *redis.Client
	ttl time.Duration
}

const statsCacheKey = "salarypulse:stats"

func NewStatsReader(db *sql.DB, rdb *redis.Client, ttl time.Duration) *StatsReader {
	return &StatsReader{db: db, rdb: rdb, ttl: ttl}
}

// Snapshot returns the current aggregate, from cache when fresh.
func (s *StatsReader) Snapshot(ctx context.Context) (models.AggregateStats, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var stats models.AggregateStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("stats cache read failed, falling through to database", "error", err)
		}
	}

	stats, err := s.read(ctx)
	if err != nil {
		return models.AggregateStats{}, err
	}

	if s.rdb != nil {
		if body, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, statsCacheKey, body, s.ttl).Err(); err != nil {
				slog.Warn("stats cache write failed", "error", err)
			}
		}
	}
	return stats, nil
}

func (s *StatsReader) read(ctx context.Context) (models.AggregateStats, error) {
	var stats models.AggregateStats
	var incomeJSON, friendsJSON, arrearsJSON []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT total_count, salary_mean, salary_median,
		       income_counts, friends_counts, arrears_counts, updated_at
		FROM aggregate_stats
		WHERE id = 1
	`).Scan(&stats.TotalCount, &stats.SalaryMean, &stats.SalaryMedian,
		&incomeJSON, &friendsJSON, &arrearsJSON, &stats.UpdatedAt)
	if err != nil {
		return models.AggregateStats{}, fmt.Errorf("failed to read aggregate stats: %w", err)
	}

	for _, pair := range []struct {
		raw  []byte
		dest *map[string]int64
	}{
		{incomeJSON, &stats.IncomeCounts},
		{friendsJSON, &stats.FriendsCounts},
		{arrearsJSON, &stats.ArrearsCounts},
	} {
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return models.AggregateStats{}, fmt.Errorf("failed to decode aggregate buckets: %w", err)
		}
	}
	return stats, nil
}
