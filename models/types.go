package models

import (
	"net/http"
	"time"
)

// Rejection categories. Every pipeline stage converts its internal failure
// into exactly one of these before it crosses the HTTP boundary.
const (
	RejectOriginMismatch          = "origin_mismatch"
	RejectRateLimitExceeded       = "rate_limit_exceeded"
	RejectMalformedRequest        = "malformed_request"
	RejectVerificationFailed      = "verification_failed"
	RejectVerificationUnavailable = "verification_unavailable"
	RejectReplayDetected          = "replay_detected"
	RejectBehaviorAnomaly         = "behavior_anomaly"
	RejectValidationFailed        = "validation_failed"
	RejectPersistenceTimeout      = "persistence_timeout"
	RejectPersistenceFailure      = "persistence_failure"
)

// StatusFor maps a rejection category to its HTTP status code.
func StatusFor(category string) int {
	switch category {
	case RejectOriginMismatch, RejectVerificationFailed, RejectBehaviorAnomaly:
		return http.StatusForbidden
	case RejectRateLimitExceeded:
		return http.StatusTooManyRequests
	case RejectMalformedRequest, RejectReplayDetected, RejectValidationFailed:
		return http.StatusBadRequest
	case RejectVerificationUnavailable, RejectPersistenceTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Request types

// BehaviorData carries the client-reported interaction telemetry.
// StartTime and LastActivity are Unix epoch milliseconds.
type BehaviorData struct {
	MouseMovements float64 `json:"mouseMovements"`
	Clicks         float64 `json:"clicks"`
	TouchEvents    float64 `json:"touchEvents"`
	Scrolls        float64 `json:"scrolls"`
	KeyPresses     float64 `json:"keyPresses"`
	StartTime      float64 `json:"startTime"`
	LastActivity   float64 `json:"lastActivity"`
}

// SubmitRequest is the inbound submission body. Survey answer fields use
// snake_case; control fields use the camelCase names the form client sends.
type SubmitRequest struct {
	Industry                 string       `json:"industry"`
	SalaryMonths             *float64     `json:"salary_months"`
	PersonalIncome           string       `json:"personal_income"`
	PersonalArrears          string       `json:"personal_arrears"`
	FriendsStatus            string       `json:"friends_status"`
	FriendsArrearsPerception string       `json:"friends_arrears_perception"`
	WelfareCut               []string     `json:"welfare_cut"`
	SubmitToken              string       `json:"submitToken"`
	BehaviorData             BehaviorData `json:"behaviorData"`
	HumanVerificationToken   string       `json:"humanVerificationToken"`
}

// Response types

type SubmitResponse struct {
	Success bool `json:"success"`
}

type CleanupResponse struct {
	RateBucketsDeleted int64 `json:"rate_buckets_deleted"`
	TokensDeleted      int64 `json:"tokens_deleted"`
}

// ErrorResponse is the public error body. Fields is populated only for
// validation rejections; Message never carries internal diagnostics.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError names a single validation violation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Domain types

// SurveyResponse is one accepted submission. Immutable once inserted.
type SurveyResponse struct {
	ID                       string    `json:"id"`
	Industry                 string    `json:"industry"`
	SalaryMonths             float64   `json:"salary_months"`
	PersonalIncome           string    `json:"personal_income"`
	PersonalArrears          string    `json:"personal_arrears"`
	FriendsStatus            string    `json:"friends_status"`
	FriendsArrearsPerception string    `json:"friends_arrears_perception"`
	WelfareCut               []string  `json:"welfare_cut"`
	CreatedAt                time.Time `json:"created_at"`
}

// AggregateStats is the single trigger-maintained summary row. The bucket
// maps count responses per option value for their respective enum fields.
type AggregateStats struct {
	TotalCount    int64            `json:"total_count"`
	SalaryMean    float64          `json:"salary_mean"`
	SalaryMedian  float64          `json:"salary_median"`
	IncomeCounts  map[string]int64 `json:"income_counts"`
	FriendsCounts map[string]int64 `json:"friends_counts"`
	ArrearsCounts map[string]int64 `json:"arrears_counts"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
