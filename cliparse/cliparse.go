package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every tunable of the admission pipeline. Thresholds are
// configuration, not hard-coded literals, so policy can change without
// touching pipeline logic.
type Config struct {
	Port        int
	DatabaseURL string

	// Origin checking: extra origins admitted besides the derived same-origin
	// value. Matching is exact-string.
	AllowedOrigins []string

	// Global rate limiting (shared window across all instances).
	RateWindow      time.Duration
	RateMaxRequests int

	// One-time submission tokens.
	TokenValidity time.Duration
	TokenSkew     time.Duration

	// Behavior scoring thresholds. Each is an independent necessary
	// condition; violating any one rejects the submission.
	MinDwell       time.Duration // minimum session length
	MaxWindow      time.Duration // maximum session length (stale sessions)
	MaxIdle        time.Duration // maximum time since last activity
	MinMouseMoves  int           // desktop only
	MinTouchEvents int           // mobile only
	MinClicks      int

	// Human verification service.
	VerifySecret string
	VerifyURL    string

	// Read-side stats caching (optional; empty RedisAddr disables).
	RedisAddr     string
	StatsCacheTTL time.Duration

	// Maintenance endpoint bearer credential (optional; empty disables auth).
	MaintenanceToken string

	MaxBodyBytes   int64
	PersistTimeout time.Duration

	// DevMode permits an unconfigured verification secret (the check is
	// skipped with a warning). Never enable in production.
	DevMode bool
}

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// ParseFlags validates flags, applies env fallbacks and defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := flag.NewFlagSet("salarypulse", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&origins, "origins", "", "Comma-separated extra allowed origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VerifySecret, "verify-secret", "", "Human verification service secret (prefer env)")
	fs.StringVar(&cfg.MaintenanceToken, "maintenance-token", "", "Bearer token for the maintenance endpoint (prefer env)")
	fs.BoolVar(&cfg.DevMode, "dev", false, "Development mode")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3322 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = splitOrigins(origins)

	if cfg.VerifySecret == "" {
		cfg.VerifySecret = os.Getenv("VERIFY_SECRET")
	}
	if !cfg.DevMode && os.Getenv("DEV_MODE") == "true" {
		cfg.DevMode = true
	}
	// The verifier fails closed on an empty secret outside dev mode, so an
	// unconfigured deployment rejects rather than silently admitting bots.
	if cfg.VerifySecret == "" && !cfg.DevMode {
		return Config{}, errors.New("VERIFY_SECRET required outside dev mode")
	}

	cfg.VerifyURL = os.Getenv("VERIFY_URL")
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = defaultVerifyURL
	}

	if cfg.MaintenanceToken == "" {
		cfg.MaintenanceToken = os.Getenv("MAINTENANCE_TOKEN")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	// Pipeline tunables, env-overridable with production defaults.
	var err error
	if cfg.RateWindow, err = durationEnv("RATE_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RateMaxRequests, err = intEnv("RATE_MAX_REQUESTS", 1000); err != nil {
		return Config{}, err
	}
	if cfg.TokenValidity, err = durationEnv("TOKEN_VALIDITY", 120*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TokenSkew, err = durationEnv("TOKEN_SKEW", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MinDwell, err = durationEnv("BEHAVIOR_MIN_DWELL", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MaxWindow, err = durationEnv("BEHAVIOR_MAX_WINDOW", 600*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdle, err = durationEnv("BEHAVIOR_MAX_IDLE", 120*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MinMouseMoves, err = intEnv("BEHAVIOR_MIN_MOUSE_MOVES", 5); err != nil {
		return Config{}, err
	}
	if cfg.MinTouchEvents, err = intEnv("BEHAVIOR_MIN_TOUCH_EVENTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.MinClicks, err = intEnv("BEHAVIOR_MIN_CLICKS", 3); err != nil {
		return Config{}, err
	}
	if cfg.StatsCacheTTL, err = durationEnv("STATS_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PersistTimeout, err = durationEnv("PERSIST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	maxBody, err := intEnv("MAX_BODY_BYTES", 10*1024)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return cfg, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return n, nil
}
