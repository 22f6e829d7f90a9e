package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC7807 error response. Every error the API emits goes
// through this shape, with Content-Type application/problem+json.
type Problem struct {
	// Type identifies the problem class as a URI reference.
	Type string `json:"type"`

	// Title is a short human-readable summary of the problem class.
	Title string `json:"title"`

	// Status is the HTTP status code of this occurrence.
	Status int `json:"status"`

	// Detail explains this specific occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`

	// TraceID ties the response to the request's log and trace records.
	TraceID string `json:"traceId"`

	// Code is the machine-readable error code clients switch on.
	Code string `json:"code,omitempty"`

	// Errors carries per-field validation failures.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is one validation failure on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation      = "https://api.carbonguardian.cn/problems/validation-error"
	ProblemTypeUnauthorized    = "https://api.carbonguardian.cn/problems/unauthorized"
	ProblemTypeNotFound        = "https://api.carbonguardian.cn/problems/not-found"
	ProblemTypeConflict        = "https://api.carbonguardian.cn/problems/conflict"
	ProblemTypeTooManyRequests = "https://api.carbonguardian.cn/problems/too-many-requests"
	ProblemTypeInternal        = "https://api.carbonguardian.cn/problems/internal-error"
	ProblemTypeUnavailable     = "https://api.carbonguardian.cn/problems/service-unavailable"
	ProblemTypeForbidden       = "https://api.carbonguardian.cn/problems/forbidden"
	ProblemTypeUpstream        = "https://api.carbonguardian.cn/problems/upstream-error"
)

// Machine-readable error codes carried in the code field.
const (
	CodeUnknownBuilding  = "UNKNOWN_BUILDING"
	CodeInvalidUnit      = "INVALID_UNIT"
	CodeInvalidValue     = "INVALID_VALUE"
	CodeDuplicateRecord  = "DUPLICATE_RECORD"
	CodeBatchTooLarge    = "BATCH_TOO_LARGE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUpstreamTimeout  = "UPSTREAM_TIMEOUT"
	CodeUpstreamRejected = "UPSTREAM_REJECTED"
)

// NewProblem creates a Problem with the required fields set. Optional fields
// are added with the With* chain.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{Type: problemType, Title: title, Status: status, TraceID: traceID}
}

// WithDetail sets the occurrence-specific explanation.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets the request path that produced the problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithCode sets the machine-readable error code.
func (p *Problem) WithCode(code string) *Problem {
	p.Code = code
	return p
}

// WithErrors attaches per-field validation failures.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write serializes the problem to the response. The trace ID is echoed as
// X-Request-Id so a client report can be matched to a log line.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 validation problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID).
		WithDetail(detail).WithErrors(errors)
}

// NewUnauthorized creates a 401 problem.
func NewUnauthorized(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized, traceID).
		WithDetail(detail).WithCode(CodeUnauthorized)
}

// NewForbidden creates a 403 problem.
func NewForbidden(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeForbidden, "Forbidden", http.StatusForbidden, traceID).
		WithDetail(detail).WithCode(CodeForbidden)
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).
		WithDetail(detail)
}

// NewConflict creates a 409 problem.
func NewConflict(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeConflict, "Conflict", http.StatusConflict, traceID).
		WithDetail(detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).
		WithDetail(detail).WithCode(CodeRateLimited)
}

// NewUpstreamError creates a 502 problem for provincial platform failures.
func NewUpstreamError(traceID, detail, code string) *Problem {
	return NewProblem(ProblemTypeUpstream, "Upstream error", http.StatusBadGateway, traceID).
		WithDetail(detail).WithCode(code)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).
		WithDetail(detail)
}

// NewServiceUnavailable creates a 503 problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).
		WithDetail(detail)
}
