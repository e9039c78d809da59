// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package origin

import (
	"errors"
	"net/http"
	"net/url"
)

var (
	ErrMissing  = errors.New("request carries neither Origin nor Referer")
	ErrMismatch = errors.New("origin not in allow-list")
)

// Guard decides whether a request's declared origin is acceptable. It is a
// pure decision: no state, no side effects.
type Guard struct {
	extra []string
}

// NewGuard builds a guard admitting the configured extra origins in addition
// to the request's own derived same-origin value.
func NewGuard(extraOrigins []string) *Guard {
	return &Guard{extra: extraOrigins}
}

// Check admits or rejects the request. The declared origin must equal an
// allow-list entry exactly - substring or prefix matching would admit
// "site.com.evil.com" for an allowed "site.com", so it is ruled out by
// construction. When Origin is absent the Referer's origin component is
// used, extracted by URL parsing rather than string slicing. When both are
// absent the request is rejected.
func (g *Guard) Check(r *http.Request) error {
	declared := r.Header.Get("Origin")
	if declared == "" {
		declared = refererOrigin(r.Header.Get("Referer"))
	}
	if declared == "" {
		return ErrMissing
	}

	if declared == sameOrigin(r) {
		return nil
	}
	for _, o := range g.extra {
		if declared == o {
			return nil
		}
	}
	return ErrMismatch
}

// sameOrigin derives the origin this server is being addressed as, from the
// request's Host and forwarded scheme.
func sameOrigin(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}

func refererOrigin(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
