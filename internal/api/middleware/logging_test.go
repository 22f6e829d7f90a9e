package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carbonguardian/carbonguardian/internal/api/middleware"
)

// serveLogged runs one request through the Logger middleware (wrapped by any
// outer middleware given) and returns the decoded log line.
func serveLogged(t *testing.T, req *http.Request, inner http.HandlerFunc, outer ...func(http.Handler) http.Handler) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	handler := http.Handler(middleware.Logger(zerolog.New(&buf))(inner))
	for i := len(outer) - 1; i >= 0; i-- {
		handler = outer[i](handler)
	}

	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_LogsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/buildings", http.NoBody)
	req.Header.Set("User-Agent", "meter-gateway/2.1")

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("response body"))
	})

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/buildings", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(13), entry["bytes"]) // len("response body")
	assert.Equal(t, "meter-gateway/2.1", entry["user_agent"])
	assert.NotEmpty(t, entry["duration"])
}

func TestLogger_WarnsOnClientError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(400), entry["status"])
}

func TestLogger_ErrorsOnServerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/data", http.NoBody)

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(500), entry["status"])
}

func TestLogger_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/data", http.NoBody)

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, middleware.RequestID)

	requestID, ok := entry["request_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_IncludesTraceID(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	req := httptest.NewRequest(http.MethodGet, "/v1/data", http.NoBody)

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, middleware.Tracing("carbonguardian-api"))

	traceID, ok := entry["trace_id"].(string)
	assert.True(t, ok)
	assert.Len(t, traceID, 32)

	spanID, ok := entry["span_id"].(string)
	assert.True(t, ok)
	assert.Len(t, spanID, 16)
}

func TestLogger_DefaultStatusCode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/data", http.NoBody)

	entry := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		// No explicit WriteHeader.
		_, _ = w.Write([]byte("ok"))
	})

	assert.Equal(t, float64(200), entry["status"])
}
