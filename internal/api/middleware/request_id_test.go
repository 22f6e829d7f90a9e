package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var ctxID string
	req := httptest.NewRequest(http.MethodPost, "/v1/data", nil)
	rec := serveWith(middleware.RequestID, req, func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	assert.Contains(t, ctxID, "req_")

	headerID := rec.Header().Get("X-Request-Id")
	assert.Contains(t, headerID, "req_")
	assert.Equal(t, ctxID, headerID)
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/data", nil)
	req.Header.Set("X-Request-Id", "gateway-assigned-id")

	rec := serveWith(middleware.RequestID, req, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gateway-assigned-id", middleware.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	assert.Equal(t, "gateway-assigned-id", rec.Header().Get("X-Request-Id"))
}

func TestGetRequestID_ReturnsEmptyStringForMissingContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/data", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestID_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/data", nil)
		rec := serveWith(middleware.RequestID, req, okHandler)

		id := rec.Header().Get("X-Request-Id")
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate request ID generated: %s", id)
		seen[id] = true
	}
}
