package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Empty(t, p.Code)
	assert.Nil(t, p.Errors)
}

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).
		WithDetail("value must be positive").
		WithInstance("/v1/data").
		WithCode(models.CodeInvalidValue).
		WithErrors([]models.FieldError{
			{Field: "value", Message: "must be positive", Code: "OUT_OF_RANGE"},
			{Field: "unit", Message: "required", Code: "REQUIRED"},
		})

	assert.Equal(t, "value must be positive", p.Detail)
	assert.Equal(t, "/v1/data", p.Instance)
	assert.Equal(t, models.CodeInvalidValue, p.Code)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "value", p.Errors[0].Field)
	assert.Equal(t, "must be positive", p.Errors[0].Message)
	assert.Equal(t, "OUT_OF_RANGE", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid submission", []models.FieldError{
		{Field: "buildingId", Message: "required"},
	})
	p.Instance = "/v1/data"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "Validation error", result.Title)
	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "invalid submission", result.Detail)
	assert.Equal(t, "/v1/data", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "buildingId", result.Errors[0].Field)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantTitle  string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad request",
			problem:    models.NewBadRequest("req_1", "invalid data", nil),
			wantType:   models.ProblemTypeValidation,
			wantTitle:  "Validation error",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthorized",
			problem:    models.NewUnauthorized("req_1", "token expired"),
			wantType:   models.ProblemTypeUnauthorized,
			wantTitle:  "Unauthorized",
			wantStatus: http.StatusUnauthorized,
			wantCode:   models.CodeUnauthorized,
		},
		{
			name:       "forbidden",
			problem:    models.NewForbidden("req_1", "operator role required"),
			wantType:   models.ProblemTypeForbidden,
			wantTitle:  "Forbidden",
			wantStatus: http.StatusForbidden,
			wantCode:   models.CodeForbidden,
		},
		{
			name:       "not found",
			problem:    models.NewNotFound("req_1", "building not found"),
			wantType:   models.ProblemTypeNotFound,
			wantTitle:  "Not found",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict",
			problem:    models.NewConflict("req_1", "duplicate record"),
			wantType:   models.ProblemTypeConflict,
			wantTitle:  "Conflict",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "too many requests",
			problem:    models.NewTooManyRequests("req_1", "rate limit exceeded"),
			wantType:   models.ProblemTypeTooManyRequests,
			wantTitle:  "Too many requests",
			wantStatus: http.StatusTooManyRequests,
			wantCode:   models.CodeRateLimited,
		},
		{
			name:       "upstream error",
			problem:    models.NewUpstreamError("req_1", "platform timed out", models.CodeUpstreamTimeout),
			wantType:   models.ProblemTypeUpstream,
			wantTitle:  "Upstream error",
			wantStatus: http.StatusBadGateway,
			wantCode:   models.CodeUpstreamTimeout,
		},
		{
			name:       "internal error",
			problem:    models.NewInternalError("req_1", "database error"),
			wantType:   models.ProblemTypeInternal,
			wantTitle:  "Internal server error",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "service unavailable",
			problem:    models.NewServiceUnavailable("req_1", "upstream unavailable"),
			wantType:   models.ProblemTypeUnavailable,
			wantTitle:  "Service unavailable",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantTitle, tt.problem.Title)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.Equal(t, tt.wantCode, tt.problem.Code)
			assert.Equal(t, "req_1", tt.problem.TraceID)
		})
	}
}
