// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus collectors for the submission
// pipeline: volume, admissions, rejections by category, and latency.
package metrics
