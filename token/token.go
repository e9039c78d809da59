// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// NonceHexLength is the exact hex length of the token nonce.
const NonceHexLength = 16

var (
	ErrMalformed  = errors.New("token is not timestamp-nonce shaped")
	ErrFromFuture = errors.New("token timestamp is in the future")
	ErrExpired    = errors.New("token has expired")
)

// New issues a client-format token: Unix-millisecond timestamp, a hyphen,
// and a fixed-length random hex nonce. Issuance is deliberately a pure
// client-side concern with no server secret - any client-embedded secret is
// observable by the sender and provides no real integrity. Replay prevention
// comes solely from one-time consumption.
func New(now time.Time) (string, error) {
	b := make([]byte, NonceHexLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + hex.EncodeToString(b), nil
}

// Ledger enforces one-time consumption of submission tokens against the
// shared used_token table.
type Ledger struct {
	db       *sql.DB
	validity time.Duration
	skew     time.Duration
}

func NewLedger(db *sql.DB, validity, skew time.Duration) *Ledger {
	return &Ledger{db: db, validity: validity, skew: skew}
}

// ValidateFormat checks token shape and freshness without touching the
// store: timestamp-nonce layout, fixed nonce length, timestamp not in the
// future beyond the skew tolerance, age within the validity window.
func (l *Ledger) ValidateFormat(tok string, now time.Time) error {
	tsPart, nonce, ok := strings.Cut(tok, "-")
	if !ok || len(nonce) != NonceHexLength {
		return ErrMalformed
	}
	if _, err := hex.DecodeString(nonce); err != nil {
		return ErrMalformed
	}
	ms, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil || ms <= 0 {
		return ErrMalformed
	}

	issued := time.UnixMilli(ms)
	if issued.After(now.Add(l.skew)) {
		return ErrFromFuture
	}
	if now.Sub(issued) > l.validity {
		return ErrExpired
	}
	return nil
}

// Consume attempts to spend the token. The insert into used_token is the
// sole replay-prevention mechanism: the first caller wins the unique
// constraint, every later caller gets (false, nil). Consumption happens
// before acceptance, never after, so two concurrent requests can never both
// pass with the same token.
func (l *Ledger) Consume(ctx context.Context, tok string, now time.Time) (bool, error) {
	expires := now.Add(l.validity + l.skew)
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO used_token (token, consumed_at, expires_at)
		VALUES ($1, $2, $3)
	`, tok, now, expires)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume token: %w", err)
	}
	return true, nil
}

// Cleanup reclaims consumed tokens whose expiry has passed. A reclaimed
// token can never be replayed: its timestamp is older than the validity
// window, so ValidateFormat rejects it before the ledger is consulted.
func (l *Ledger) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM used_token WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up tokens: %w", err)
	}
	return res.RowsAffected()
}
