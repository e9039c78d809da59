// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/salarypulse/server/models"
)

// Keys the submission body may carry. Anything else is rejected - unknown
// keys are how payload smuggling starts.
var allowedKeys = map[string]bool{
	"industry":                   true,
	"salary_months":              true,
	"personal_income":            true,
	"personal_arrears":           true,
	"friends_status":             true,
	"friends_arrears_perception": true,
	"welfare_cut":                true,
	"submitToken":                true,
	"behaviorData":               true,
	"humanVerificationToken":     true,
}

var allowedBehaviorKeys = map[string]bool{
	"mouseMovements": true,
	"clicks":         true,
	"touchEvents":    true,
	"scrolls":        true,
	"keyPresses":     true,
	"startTime":      true,
	"lastActivity":   true,
}

// Submission checks the parsed request against the option sets and
// structural rules. All violations are collected and returned together, not
// short-circuited, so the caller can report everything wrong in one round
// trip. On success (no violations) the returned record is trimmed and
// length-capped, ready for persistence.
func Submission(rawBody []byte, req models.SubmitRequest) (models.SurveyResponse, []models.FieldError) {
	var violations []models.FieldError
	add := func(field, reason string) {
		violations = append(violations, models.FieldError{Field: field, Reason: reason})
	}

	violations = append(violations, unknownKeys(rawBody)...)

	checkEnum := func(field, value string, options []string) {
		switch {
		case strings.TrimSpace(value) == "":
			add(field, "required")
		case len(value) > models.MaxFieldLength:
			add(field, "exceeds maximum length")
		case !contains(options, value):
			add(field, "not a recognized option")
		}
	}

	checkEnum("industry", req.Industry, models.IndustryOptions)
	checkEnum("personal_income", req.PersonalIncome, models.PersonalIncomeOptions)
	checkEnum("personal_arrears", req.PersonalArrears, models.PersonalArrearsOptions)
	checkEnum("friends_status", req.FriendsStatus, models.FriendsStatusOptions)
	checkEnum("friends_arrears_perception", req.FriendsArrearsPerception, models.FriendsArrearsPerceptionOptions)

	var salary float64
	if req.SalaryMonths == nil {
		add("salary_months", "required")
	} else {
		salary = *req.SalaryMonths
		if math.IsNaN(salary) || salary < models.SalaryMonthsMin || salary > models.SalaryMonthsMax {
			add("salary_months", "must be between 0 and 18")
		} else if steps := salary / models.SalaryMonthsStep; steps != math.Trunc(steps) {
			add("salary_months", "must be a multiple of 0.5")
		}
	}

	switch {
	case len(req.WelfareCut) == 0:
		add("welfare_cut", "at least one selection required")
	case len(req.WelfareCut) > len(models.WelfareCutOptions):
		add("welfare_cut", "too many selections")
	default:
		seen := make(map[string]bool, len(req.WelfareCut))
		for _, v := range req.WelfareCut {
			if len(v) > models.MaxFieldLength {
				add("welfare_cut", "entry exceeds maximum length")
				break
			}
			if !contains(models.WelfareCutOptions, v) {
				add("welfare_cut", "not a recognized option: "+v)
				break
			}
			if seen[v] {
				add("welfare_cut", "duplicate selection: "+v)
				break
			}
			seen[v] = true
		}
	}

	if len(violations) > 0 {
		return models.SurveyResponse{}, violations
	}

	// Defensive second pass: everything reaching persistence is trimmed and
	// capped even though the checks above already bounded it.
	rec := models.SurveyResponse{
		Industry:                 sanitize(req.Industry),
		SalaryMonths:             salary,
		PersonalIncome:           sanitize(req.PersonalIncome),
		PersonalArrears:          sanitize(req.PersonalArrears),
		FriendsStatus:            sanitize(req.FriendsStatus),
		FriendsArrearsPerception: sanitize(req.FriendsArrearsPerception),
		WelfareCut:               make([]string, 0, len(req.WelfareCut)),
	}
	for _, v := range req.WelfareCut {
		rec.WelfareCut = append(rec.WelfareCut, sanitize(v))
	}
	return rec, nil
}

// unknownKeys re-examines the raw body for keys outside the declared shape.
// The earlier lenient parse ignored them; here they become violations.
func unknownKeys(rawBody []byte) []models.FieldError {
	var violations []models.FieldError

	var top map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &top); err != nil {
		return nil // parse errors were already rejected upstream
	}
	for k := range top {
		if !allowedKeys[k] {
			violations = append(violations, models.FieldError{Field: k, Reason: "unrecognized field"})
		}
	}

	if raw, ok := top["behaviorData"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			for k := range nested {
				if !allowedBehaviorKeys[k] {
					violations = append(violations, models.FieldError{Field: "behaviorData." + k, Reason: "unrecognized field"})
				}
			}
		}
	}
	return violations
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > models.MaxFieldLength {
		s = s[:models.MaxFieldLength]
	}
	return s
}
