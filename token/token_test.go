package token

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/salarypulse/server/testutil"
)

func TestNewShape(t *testing.T) {
	now := time.Now()
	tok, err := New(now)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tsPart, nonce, ok := strings.Cut(tok, "-")
	if !ok {
		t.Fatalf("token %q has no hyphen", tok)
	}
	if tsPart != strconv.FormatInt(now.UnixMilli(), 10) {
		t.Errorf("timestamp part = %q, want %d", tsPart, now.UnixMilli())
	}
	if len(nonce) != NonceHexLength {
		t.Errorf("nonce length = %d, want %d", len(nonce), NonceHexLength)
	}
}

func TestValidateFormat(t *testing.T) {
	now := time.Now()
	ledger := NewLedger(nil, 120*time.Second, 30*time.Second)

	fresh := func(offset time.Duration) string {
		return strconv.FormatInt(now.Add(offset).UnixMilli(), 10) + "-a1b2c3d4e5f60718"
	}

	tests := []struct {
		name    string
		tok     string
		wantErr error
	}{
		{"fresh token", fresh(-10 * time.Second), nil},
		{"issued just now", fresh(0), nil},
		{"within forward skew", fresh(20 * time.Second), nil},
		{"at the validity edge", fresh(-119 * time.Second), nil},
		{"expired", fresh(-3 * time.Minute), ErrExpired},
		{"beyond forward skew", fresh(2 * time.Minute), ErrFromFuture},
		{"empty", "", ErrMalformed},
		{"no hyphen", "1700000000000a1b2c3d4e5f60718", ErrMalformed},
		{"nonce too short", fresh(0)[:len(fresh(0))-2], ErrMalformed},
		{"nonce not hex", strconv.FormatInt(now.UnixMilli(), 10) + "-z1b2c3d4e5f60718", ErrMalformed},
		{"timestamp not numeric", "soon-a1b2c3d4e5f60718", ErrMalformed},
		{"zero timestamp", "0-a1b2c3d4e5f60718", ErrMalformed},
		{"negative timestamp", "-5-a1b2c3d4e5f60718", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ledger.ValidateFormat(tt.tok, now); err != tt.wantErr {
				t.Errorf("ValidateFormat(%q) = %v, want %v", tt.tok, err, tt.wantErr)
			}
		})
	}
}

func TestConsumeOnce(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	ledger := NewLedger(conn, 120*time.Second, 30*time.Second)
	now := time.Now()

	tok, err := New(now)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	fresh, err := ledger.Consume(context.Background(), tok, now)
	if err != nil {
		t.Fatalf("first Consume() error: %v", err)
	}
	if !fresh {
		t.Fatal("first Consume() = false, want true")
	}

	// The second attempt must lose the unique constraint without surfacing
	// an error.
	fresh, err = ledger.Consume(context.Background(), tok, now)
	if err != nil {
		t.Fatalf("second Consume() error: %v", err)
	}
	if fresh {
		t.Error("second Consume() = true, want false")
	}
}

func TestConsumeDistinctTokens(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	ledger := NewLedger(conn, 120*time.Second, 30*time.Second)
	now := time.Now()

	for i := 0; i < 3; i++ {
		tok, err := New(now)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		fresh, err := ledger.Consume(context.Background(), tok, now)
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if !fresh {
			t.Errorf("Consume() of distinct token %d = false, want true", i)
		}
	}
}

func TestCleanupReclaimsExpired(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	ledger := NewLedger(conn, 120*time.Second, 30*time.Second)
	past := time.Now().Add(-10 * time.Minute)
	now := time.Now()

	expired, err := New(past)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	live, err := New(now)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := ledger.Consume(context.Background(), expired, past); err != nil {
		t.Fatalf("Consume() error: %v", err)
	}
	if _, err := ledger.Consume(context.Background(), live, now); err != nil {
		t.Fatalf("Consume() error: %v", err)
	}

	removed, err := ledger.Cleanup(context.Background(), now)
	if err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed %d tokens, want 1", removed)
	}

	// The surviving token still blocks replay.
	fresh, err := ledger.Consume(context.Background(), live, now)
	if err != nil {
		t.Fatalf("Consume() error: %v", err)
	}
	if fresh {
		t.Error("Consume() of live token after cleanup = true, want false")
	}
}
