package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/salarypulse/server/cliparse"
	"github.com/salarypulse/server/models"
	"github.com/salarypulse/server/origin"
	"github.com/salarypulse/server/ratelimit"
	"github.com/salarypulse/server/survey"
	"github.com/salarypulse/server/testutil"
	"github.com/salarypulse/server/token"
	"github.com/salarypulse/server/verify"
)

// submitEnv wires a SubmitHandler against a real test database and a stubbed
// verification service.
type submitEnv struct {
	handler *SubmitHandler
	conn    *sql.DB
	cfg     cliparse.Config
}

func newSubmitEnv(t *testing.T, verifyStatus int, verifyBody string, mutate func(*cliparse.Config)) submitEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(verifyStatus)
		w.Write([]byte(verifyBody))
	}))
	t.Cleanup(verifier.Close)

	cfg := testutil.GetTestConfig()
	cfg.VerifySecret = "test-secret"
	cfg.VerifyURL = verifier.URL
	if mutate != nil {
		mutate(&cfg)
	}

	handler := NewSubmitHandler(
		cfg,
		origin.NewGuard(cfg.AllowedOrigins),
		ratelimit.NewLimiter(conn, cfg.RateWindow, cfg.RateMaxRequests),
		token.NewLedger(conn, cfg.TokenValidity, cfg.TokenSkew),
		verify.NewClient(cfg.VerifySecret, cfg.VerifyURL, cfg.DevMode),
		survey.NewGateway(conn, cfg.PersistTimeout),
	)
	return submitEnv{handler: handler, conn: conn, cfg: cfg}
}

func freshToken(t *testing.T) string {
	t.Helper()
	tok, err := token.New(time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return tok
}

func validPayload(t *testing.T, tok string) map[string]interface{} {
	t.Helper()
	now := time.Now()
	return map[string]interface{}{
		"industry":                   "公务员/体制内 (岸上)",
		"salary_months":              12,
		"personal_income":            "基本持平 (波动 < 10%)",
		"personal_arrears":           "从未欠薪，按时发放",
		"friends_status":             "普遍在涨薪/跳槽，行情不错",
		"friends_arrears_perception": "几乎没听说过 (罕见)",
		"welfare_cut":                []string{"没有任何福利缩水/维持原状"},
		"submitToken":                tok,
		"humanVerificationToken":     "cf-token-abc",
		"behaviorData": map[string]interface{}{
			"mouseMovements": 40,
			"clicks":         8,
			"touchEvents":    0,
			"scrolls":        5,
			"keyPresses":     12,
			"startTime":      now.Add(-60 * time.Second).UnixMilli(),
			"lastActivity":   now.Add(-2 * time.Second).UnixMilli(),
		},
	}
}

func submit(env submitEnv, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	base := map[string]string{
		"Origin":     "https://salarypulse.example",
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
	}
	for k, v := range headers {
		base[k] = v
	}
	req := testutil.MakeRequest("POST", "/api/submissions", payload, base)
	w := httptest.NewRecorder()
	env.handler.Submit(w, req)
	return w
}

func assertRejection(t *testing.T, w *httptest.ResponseRecorder, category string) models.ErrorResponse {
	t.Helper()
	testutil.AssertStatus(t, w, models.StatusFor(category))
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error != category {
		t.Errorf("rejection category = %q, want %q", resp.Error, category)
	}
	return resp
}

func TestSubmitAdmitsValidSubmission(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	w := submit(env, validPayload(t, freshToken(t)), nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("response success = false, want true")
	}

	if n := testutil.CountResponses(t, env.conn); n != 1 {
		t.Errorf("stored responses = %d, want 1", n)
	}
	// The trigger kept the aggregate in lockstep.
	if total := testutil.AggregateTotal(t, env.conn); total != 1 {
		t.Errorf("aggregate total = %d, want 1", total)
	}
}

func TestSubmitReplayRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)
	tok := freshToken(t)

	w := submit(env, validPayload(t, tok), nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Same token again: rejected, nothing new stored.
	w = submit(env, validPayload(t, tok), nil)
	assertRejection(t, w, models.RejectReplayDetected)

	if n := testutil.CountResponses(t, env.conn); n != 1 {
		t.Errorf("stored responses after replay = %d, want 1", n)
	}
	if total := testutil.AggregateTotal(t, env.conn); total != 1 {
		t.Errorf("aggregate total after replay = %d, want 1", total)
	}
}

func TestSubmitOriginRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	w := submit(env, validPayload(t, freshToken(t)), map[string]string{
		"Origin": "https://evil.example",
	})
	assertRejection(t, w, models.RejectOriginMismatch)

	if n := testutil.CountResponses(t, env.conn); n != 0 {
		t.Errorf("stored responses = %d, want 0", n)
	}
}

func TestSubmitRateLimitRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, func(cfg *cliparse.Config) {
		cfg.RateMaxRequests = 2
	})

	for i := 0; i < 2; i++ {
		w := submit(env, validPayload(t, freshToken(t)), nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w := submit(env, validPayload(t, freshToken(t)), nil)
	assertRejection(t, w, models.RejectRateLimitExceeded)
}

func TestSubmitOversizedBodyRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	payload := validPayload(t, freshToken(t))
	payload["industry"] = strings.Repeat("x", 20*1024)

	w := submit(env, payload, nil)
	testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestSubmitInvalidJSONRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	req := httptest.NewRequest("POST", "/api/submissions", strings.NewReader("{not json"))
	req.Header.Set("Origin", "https://salarypulse.example")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.handler.Submit(w, req)
	assertRejection(t, w, models.RejectMalformedRequest)
}

func TestSubmitVerificationFailedRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": false, "error-codes": ["invalid-input-response"]}`, nil)

	w := submit(env, validPayload(t, freshToken(t)), nil)
	assertRejection(t, w, models.RejectVerificationFailed)
}

func TestSubmitVerifierOutageFailsClosed(t *testing.T) {
	env := newSubmitEnv(t, http.StatusInternalServerError, ``, nil)

	w := submit(env, validPayload(t, freshToken(t)), nil)
	assertRejection(t, w, models.RejectVerificationUnavailable)

	// Verification precedes consumption: the token must remain unspent so
	// the client can retry with the same token once the verifier recovers.
	var n int
	if err := env.conn.QueryRow(`SELECT COUNT(*) FROM used_token`).Scan(&n); err != nil {
		t.Fatalf("Failed to count tokens: %v", err)
	}
	if n != 0 {
		t.Errorf("consumed tokens = %d, want 0", n)
	}
}

func TestSubmitTokenFormatRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	tests := []struct {
		name string
		tok  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"expired", "1000000000000-a1b2c3d4e5f60718"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := submit(env, validPayload(t, tt.tok), nil)
			assertRejection(t, w, models.RejectMalformedRequest)
		})
	}
}

func TestSubmitBehaviorAnomalyRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	payload := validPayload(t, freshToken(t))
	payload["behaviorData"].(map[string]interface{})["startTime"] = time.Now().Add(-2 * time.Second).UnixMilli()

	w := submit(env, payload, nil)
	assertRejection(t, w, models.RejectBehaviorAnomaly)

	if n := testutil.CountResponses(t, env.conn); n != 0 {
		t.Errorf("stored responses = %d, want 0", n)
	}
}

func TestSubmitMobileTouchPath(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	// No pointer moves but enough touch events: fine on a mobile UA.
	payload := validPayload(t, freshToken(t))
	behavior := payload["behaviorData"].(map[string]interface{})
	behavior["mouseMovements"] = 0
	behavior["touchEvents"] = 6

	w := submit(env, payload, map[string]string{
		"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
	})
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestSubmitValidationRejectedWithFields(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	payload := validPayload(t, freshToken(t))
	payload["welfare_cut"] = []string{"不存在的选项"}
	payload["salary_months"] = 18.3

	w := submit(env, payload, nil)
	resp := assertRejection(t, w, models.RejectValidationFailed)

	fields := make(map[string]bool)
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	if !fields["welfare_cut"] || !fields["salary_months"] {
		t.Errorf("violation fields = %v, want welfare_cut and salary_months", resp.Fields)
	}

	if n := testutil.CountResponses(t, env.conn); n != 0 {
		t.Errorf("stored responses = %d, want 0", n)
	}
}

func TestSubmitUnknownKeyRejected(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)

	payload := validPayload(t, freshToken(t))
	payload["isAdmin"] = true

	w := submit(env, payload, nil)
	resp := assertRejection(t, w, models.RejectValidationFailed)

	found := false
	for _, f := range resp.Fields {
		if f.Field == "isAdmin" {
			found = true
		}
	}
	if !found {
		t.Errorf("violation fields = %v, want isAdmin", resp.Fields)
	}
}

func TestSubmitValidationFailureConsumesToken(t *testing.T) {
	env := newSubmitEnv(t, http.StatusOK, `{"success": true}`, nil)
	tok := freshToken(t)

	payload := validPayload(t, tok)
	payload["welfare_cut"] = []string{}
	w := submit(env, payload, nil)
	assertRejection(t, w, models.RejectValidationFailed)

	// Consumption precedes validation, so a corrected resubmission needs a
	// fresh token.
	w = submit(env, validPayload(t, tok), nil)
	assertRejection(t, w, models.RejectReplayDetected)
}
