// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /api/submissions", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Echoes Access-Control-Allow-Origin only for exact matches against the
configured origin list; there is no wildcard. The origin guard makes the
final admit/reject decision - CORS only controls what browsers will attempt.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.RejectResponse(w, models.RejectReplayDetected, "message", nil)

RejectResponse maps a pipeline rejection category to its HTTP status and
emits the public error body. Parse JSON request bodies:

	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil { ... }

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Forwarded to the human verification service as a scoring hint.
*/
package middleware
