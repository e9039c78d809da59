// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables, the aggregate trigger, and the
stats seed row:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for tables and indexes,
CREATE OR REPLACE for the trigger function, and ON CONFLICT DO NOTHING for
the seed row.

# Tables

  - survey_response: accepted submissions (append-only)
  - aggregate_stats: single summary row, id always 1
  - rate_window: per-minute request counters for the global throttle
  - used_token: consumed one-time tokens (primary key = replay prevention)

# The Aggregate Trigger

A statement-level AFTER INSERT OR UPDATE OR DELETE trigger on survey_response
recomputes aggregate_stats (total count, mean and median salary_months, and
per-option counts for the three sentiment enums) within the same transaction
as the triggering write. Readers therefore never observe a response row
without its aggregate reflected, and never observe staleness beyond the
commit boundary. Application code does not write aggregate_stats.

# Concurrency Primitives

All cross-instance coordination is expressed as store atomics:

  - used_token: unique-constraint insert (insert-as-lock)
  - rate_window: INSERT ... ON CONFLICT DO UPDATE upsert-increment
  - aggregate_stats: trigger within the inserting transaction
*/
package db
