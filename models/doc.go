// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire types and domain types shared across the
admission pipeline.

# Rejection Taxonomy

Every stage failure is reported as one of the Reject* categories. StatusFor
maps a category to its HTTP status; nothing else about an internal failure is
exposed to the caller.

# Option Sets

The survey's enum fields each have a fixed option set (IndustryOptions,
PersonalIncomeOptions, ...). Validation is exact string membership - no
substring or prefix matching, and unknown values are rejected rather than
coerced. AllOptions bundles the sets for the public options endpoint.

# Domain Types

  - SurveyResponse: one accepted submission (append-only archive)
  - AggregateStats: the single trigger-maintained summary row
*/
package models
