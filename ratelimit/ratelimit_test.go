package ratelimit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/salarypulse/server/testutil"
)

func TestAdmitUpToBudget(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	limiter := NewLimiter(conn, time.Minute, 5)
	now := time.Now()

	for i := 0; i < 5; i++ {
		if !limiter.Admit(context.Background(), now) {
			t.Fatalf("Admit() %d = false, want true", i+1)
		}
	}

	// Request 6 must be the first and only rejection.
	if limiter.Admit(context.Background(), now) {
		t.Error("Admit() over budget = true, want false")
	}
	if limiter.Admit(context.Background(), now) {
		t.Error("Admit() after rejection = true, want false")
	}
}

func TestAdmitRejectionDoesNotConsume(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	limiter := NewLimiter(conn, time.Minute, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		limiter.Admit(context.Background(), now)
	}
	limiter.Admit(context.Background(), now) // rejected

	var total int
	err := conn.QueryRow(`SELECT COALESCE(SUM(count), 0) FROM rate_window`).Scan(&total)
	if err != nil {
		t.Fatalf("Failed to sum window: %v", err)
	}
	if total != 3 {
		t.Errorf("window total = %d, want 3 (rejections must not count)", total)
	}
}

func TestAdmitWindowReset(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	limiter := NewLimiter(conn, time.Minute, 2)
	start := time.Now()

	limiter.Admit(context.Background(), start)
	limiter.Admit(context.Background(), start)
	if limiter.Admit(context.Background(), start) {
		t.Fatal("Admit() over budget = true, want false")
	}

	// Once the window has slid past the old buckets, capacity returns.
	later := start.Add(2 * time.Minute)
	if !limiter.Admit(context.Background(), later) {
		t.Error("Admit() after window reset = false, want true")
	}
}

func TestAdmitFailsOpen(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	conn.Close() // storage gone

	limiter := NewLimiter(conn, time.Minute, 1)
	if !limiter.Admit(context.Background(), time.Now()) {
		t.Error("Admit() with broken storage = false, want fail-open true")
	}
}

func TestCleanup(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	limiter := NewLimiter(conn, time.Minute, 100)
	now := time.Now()

	// One stale bucket, one current.
	stale := now.Add(-10 * time.Minute).Truncate(time.Minute)
	insertBucket(t, conn, stale, 7)
	limiter.Admit(context.Background(), now)

	// Admit already reclaimed the stale bucket inline; reinsert to exercise
	// the maintenance path on its own.
	insertBucket(t, conn, stale, 7)

	removed, err := limiter.Cleanup(context.Background(), now)
	if err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed %d buckets, want 1", removed)
	}
}

func insertBucket(t *testing.T, conn *sql.DB, start time.Time, count int) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO rate_window (bucket_start, count)
		VALUES ($1, $2)
		ON CONFLICT (bucket_start) DO UPDATE SET count = $2
	`, start, count)
	if err != nil {
		t.Fatalf("Failed to insert bucket: %v", err)
	}
}
