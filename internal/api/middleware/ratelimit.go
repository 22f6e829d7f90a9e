package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
)

// RateLimitConfig is one limiter policy: RequestLimit requests per
// WindowLength, per key.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// IngestRateLimit applies to data submission endpoints, counted per
	// API key (60 req/min).
	IngestRateLimit = RateLimitConfig{RequestLimit: 60, WindowLength: time.Minute}

	// AdminRateLimit applies to the administrative surface (100 req/min).
	AdminRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits per client IP. Runs after chi's RealIP so the key is
// the real address, not the proxy's.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, httprate.KeyByRealIP)
}

// RateLimitByAPIKey limits per authenticated API key, so one noisy
// integration cannot starve the others. Unauthenticated requests fall back to
// the client IP. Must run after APIKeyAuth.
func RateLimitByAPIKey(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, keyByAPIKeyOrIP)
}

func limit(cfg RateLimitConfig, keyFn httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyFn),
		httprate.WithLimitHandler(rejectOverLimit(cfg)),
	)
}

func keyByAPIKeyOrIP(r *http.Request) (string, error) {
	if key := GetAPIKey(r.Context()); key != nil {
		return "key:" + key.ID, nil
	}
	return httprate.KeyByRealIP(r)
}

// rejectOverLimit writes the 429 problem response. httprate does not expose
// the exact reset time, so Retry-After is the full window length.
func rejectOverLimit(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(cfg.WindowLength.Seconds()))

	return func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
		problem.Instance = r.URL.Path

		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w)
	}
}
