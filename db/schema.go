// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables, the aggregate trigger, and the all-zero
// stats seed row. Safe to call multiple times - uses IF NOT EXISTS and
// ON CONFLICT DO NOTHING.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range []string{schema, aggregateTrigger, statsSeed} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Accepted submissions (append-only archive)
CREATE TABLE IF NOT EXISTS survey_response (
    id TEXT PRIMARY KEY,
    industry TEXT NOT NULL,
    salary_months NUMERIC(3,1) NOT NULL CHECK (salary_months >= 0 AND salary_months <= 18),
    personal_income TEXT NOT NULL,
    personal_arrears TEXT NOT NULL,
    friends_status TEXT NOT NULL,
    friends_arrears_perception TEXT NOT NULL,
    welfare_cut TEXT[] NOT NULL CHECK (array_length(welfare_cut, 1) >= 1),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_survey_response_created_at ON survey_response(created_at);

-- Single trigger-maintained summary row (id is always 1)
CREATE TABLE IF NOT EXISTS aggregate_stats (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    total_count BIGINT NOT NULL DEFAULT 0,
    salary_mean NUMERIC(6,3) NOT NULL DEFAULT 0,
    salary_median NUMERIC(4,1) NOT NULL DEFAULT 0,
    income_counts JSONB NOT NULL DEFAULT '{}',
    friends_counts JSONB NOT NULL DEFAULT '{}',
    arrears_counts JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Windowed request counters, one row per minute bucket
CREATE TABLE IF NOT EXISTS rate_window (
    bucket_start TIMESTAMPTZ PRIMARY KEY,
    count INT NOT NULL DEFAULT 0
);

-- Consumed one-time submission tokens. The primary key is the replay
-- prevention primitive: a second insert of the same token fails.
CREATE TABLE IF NOT EXISTS used_token (
    token TEXT PRIMARY KEY,
    consumed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_used_token_expires_at ON used_token(expires_at);
`

// The aggregate is maintained by the storage layer itself, not by application
// code, so concurrent instances can never observe a survey_response without
// its aggregate reflected. A statement-level trigger recomputes the summary
// row inside the same transaction as the write that fired it.
const aggregateTrigger = `
CREATE OR REPLACE FUNCTION refresh_aggregate_stats() RETURNS TRIGGER AS $$
BEGIN
    UPDATE aggregate_stats SET
        total_count = (SELECT COUNT(*) FROM survey_response),
        salary_mean = (SELECT COALESCE(AVG(salary_months), 0) FROM survey_response),
        salary_median = (SELECT COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY salary_months), 0) FROM survey_response),
        income_counts = (
            SELECT COALESCE(jsonb_object_agg(personal_income, n), '{}'::jsonb)
            FROM (SELECT personal_income, COUNT(*) AS n FROM survey_response GROUP BY personal_income) t
        ),
        friends_counts = (
            SELECT COALESCE(jsonb_object_agg(friends_status, n), '{}'::jsonb)
            FROM (SELECT friends_status, COUNT(*) AS n FROM survey_response GROUP BY friends_status) t
        ),
        arrears_counts = (
            SELECT COALESCE(jsonb_object_agg(personal_arrears, n), '{}'::jsonb)
            FROM (SELECT personal_arrears, COUNT(*) AS n FROM survey_response GROUP BY personal_arrears) t
        ),
        updated_at = NOW()
    WHERE id = 1;
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS survey_response_aggregate ON survey_response;
CREATE TRIGGER survey_response_aggregate
AFTER INSERT OR UPDATE OR DELETE ON survey_response
FOR EACH STATEMENT EXECUTE FUNCTION refresh_aggregate_stats();
`

const statsSeed = `
INSERT INTO aggregate_stats (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
`
