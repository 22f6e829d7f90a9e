package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
)

func serveWith(mw func(http.Handler) http.Handler, req *http.Request, inner http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/data", http.NoBody)
	rec := serveWith(middleware.SecurityHeaders, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)

	want := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Permissions-Policy":        "geolocation=(), camera=(), microphone=()",
	}
	for header, value := range want {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
}

func TestSecurityHeaders_PreservesExistingHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/data", http.NoBody)
	rec := serveWith(middleware.SecurityHeaders, req, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Custom-Header", "custom-value")
		w.WriteHeader(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom-value", rec.Header().Get("X-Custom-Header"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRequireTLS_DisabledByDefault(t *testing.T) {
	t.Setenv("REQUIRE_TLS", "")

	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := serveWith(middleware.RequireTLS, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTLS_Enabled_RejectsHTTP(t *testing.T) {
	t.Setenv("REQUIRE_TLS", "true")

	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := serveWith(middleware.RequireTLS, req, okHandler)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "TLS required")
	assert.Contains(t, rec.Body.String(), "This endpoint requires HTTPS")
}

func TestRequireTLS_Enabled_AllowsHTTPS(t *testing.T) {
	t.Setenv("REQUIRE_TLS", "true")

	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := serveWith(middleware.RequireTLS, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTLS_Enabled_NoHeaderAllowed(t *testing.T) {
	t.Setenv("REQUIRE_TLS", "true")

	// No X-Forwarded-Proto: a direct connection or local development.
	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)
	rec := serveWith(middleware.RequireTLS, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)
}
