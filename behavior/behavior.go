// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package behavior

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/salarypulse/server/models"
)

// ErrMalformedTelemetry flags telemetry that is not even well-formed
// (non-finite or negative values), as opposed to telemetry that looks
// automated.
var ErrMalformedTelemetry = errors.New("malformed telemetry")

// AnomalyError carries the human-readable reason a submission looked
// automated.
type AnomalyError struct {
	Reason string
}

func (e *AnomalyError) Error() string {
	return "behavior anomaly: " + e.Reason
}

// Policy holds the heuristic thresholds. Each is an independent necessary
// condition (AND) - a single violation rejects; there is no weighted score.
type Policy struct {
	MinDwell       time.Duration
	MaxWindow      time.Duration
	MaxIdle        time.Duration
	MinMouseMoves  int
	MinTouchEvents int
	MinClicks      int
}

// IsMobileUA classifies the device from the declared client identity string.
// The hint only switches which interaction counter applies (touch events for
// mobile, pointer moves for desktop).
func IsMobileUA(userAgent string) bool {
	for _, marker := range []string{"Mobile", "Android", "iPhone", "iPad"} {
		if strings.Contains(userAgent, marker) {
			return true
		}
	}
	return false
}

// Evaluate validates the telemetry and applies the policy. It is stateless:
// the decision depends only on the inputs and the supplied clock reading.
func (p Policy) Evaluate(t models.BehaviorData, mobile bool, now time.Time) error {
	for name, v := range map[string]float64{
		"mouseMovements": t.MouseMovements,
		"clicks":         t.Clicks,
		"touchEvents":    t.TouchEvents,
		"scrolls":        t.Scrolls,
		"keyPresses":     t.KeyPresses,
		"startTime":      t.StartTime,
		"lastActivity":   t.LastActivity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: field %s", ErrMalformedTelemetry, name)
		}
	}

	elapsed := now.Sub(time.UnixMilli(int64(t.StartTime)))
	idle := now.Sub(time.UnixMilli(int64(t.LastActivity)))

	if elapsed < p.MinDwell {
		return &AnomalyError{Reason: fmt.Sprintf("session shorter than %s", p.MinDwell)}
	}
	if elapsed > p.MaxWindow {
		return &AnomalyError{Reason: fmt.Sprintf("session older than %s", p.MaxWindow)}
	}
	if idle > p.MaxIdle {
		return &AnomalyError{Reason: fmt.Sprintf("idle for more than %s", p.MaxIdle)}
	}

	if mobile {
		if int(t.TouchEvents) < p.MinTouchEvents {
			return &AnomalyError{Reason: fmt.Sprintf("fewer than %d touch events", p.MinTouchEvents)}
		}
	} else {
		if int(t.MouseMovements) < p.MinMouseMoves {
			return &AnomalyError{Reason: fmt.Sprintf("fewer than %d pointer-move samples", p.MinMouseMoves)}
		}
	}
	if int(t.Clicks) < p.MinClicks {
		return &AnomalyError{Reason: fmt.Sprintf("fewer than %d clicks", p.MinClicks)}
	}

	return nil
}
