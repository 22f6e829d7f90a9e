package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
)

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_Middleware_PassesThrough(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "success", status: http.StatusOK, body: "OK"},
		{name: "client error", status: http.StatusBadRequest, body: `{"error": "bad request"}`},
		{name: "server error", status: http.StatusInternalServerError, body: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)
			rec := serveWith(metrics.Middleware(), req, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestMetrics_Middleware_DefaultStatusCode(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/buildings", http.NoBody)
	rec := serveWith(metrics.Middleware(), req, func(w http.ResponseWriter, _ *http.Request) {
		// No explicit WriteHeader.
		_, _ = w.Write([]byte("response"))
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}
