// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// 1) Submission volume
	SubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "submissions_total",
		Help: "Total number of submission requests received.",
	})

	// 2) Admissions (fully accepted submissions)
	AdmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admissions_total",
		Help: "Submissions accepted through every pipeline stage.",
	})

	// 3) Rejections by pipeline stage
	RejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rejections_total",
		Help: "Submissions rejected, labeled by rejection category.",
	}, []string{"category"})

	// 4) Request latency (handler duration)
	RequestDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "End-to-end handler duration for submission requests.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// 5) DB write latency
	DBWriteDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "db_write_duration_seconds",
		Help:    "Duration of INSERT into the survey_response table.",
		Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		SubmissionsTotal,
		AdmissionsTotal,
		RejectionsTotal,
		RequestDurationSeconds,
		DBWriteDurationSeconds,
	)
}
