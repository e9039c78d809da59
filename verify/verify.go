// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrFailed means the service answered and judged the token invalid.
	ErrFailed = errors.New("human verification failed")
	// ErrUnavailable means the service was unreachable or answered garbage.
	// The verifier fails closed: a broken dependency must not admit bots.
	ErrUnavailable = errors.New("human verification service unavailable")
	// ErrUnconfigured means no service secret is set outside dev mode.
	ErrUnconfigured = errors.New("human verification secret not configured")
)

// Client forwards externally-issued verification tokens to a Turnstile-style
// siteverify endpoint and treats its structured answer as authoritative.
type Client struct {
	secret  string
	url     string
	devMode bool
	httpc   *http.Client
}

func NewClient(secret, verifyURL string, devMode bool) *Client {
	return &Client{
		secret:  secret,
		url:     verifyURL,
		devMode: devMode,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the token with the external service. Unconfigured secret is
// a hard reject in production; in dev mode the check is skipped with a
// warning so local work does not require service credentials.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if c.secret == "" {
		if c.devMode {
			slog.Warn("dev mode: skipping human verification")
			return nil
		}
		return ErrUnconfigured
	}
	if token == "" {
		return ErrFailed
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return ErrUnavailable
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Error("verification service unreachable", "error", err)
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("verification service returned unexpected status", "status", resp.StatusCode)
		return ErrUnavailable
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("verification service returned malformed body", "error", err)
		return ErrUnavailable
	}

	if !body.Success {
		slog.Info("human verification rejected", "codes", body.ErrorCodes)
		return ErrFailed
	}
	return nil
}
