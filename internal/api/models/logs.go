package models

import "github.com/carbonguardian/carbonguardian/internal/audit"

// LogEntryResponse is the representation of one integration log entry.
type LogEntryResponse struct {
	ID             string    `json:"id"`
	Timestamp      Timestamp `json:"timestamp"`
	Direction      string    `json:"direction"`
	Source         string    `json:"source"`
	RequestType    string    `json:"requestType"`
	Endpoint       string    `json:"endpoint"`
	Status         string    `json:"status"`
	StatusCode     int       `json:"statusCode"`
	ResponseTimeMS int64     `json:"responseTimeMs"`
	Message        string    `json:"message,omitempty"`
	Details        string    `json:"details,omitempty"`
}

// LogListResponse is a listing of integration log entries, newest first.
type LogListResponse struct {
	Logs []LogEntryResponse `json:"logs"`
}

// NewLogEntryResponse converts a domain log entry to its API representation.
func NewLogEntryResponse(e *audit.Entry) LogEntryResponse {
	return LogEntryResponse{
		ID:             e.ID,
		Timestamp:      Timestamp(e.Timestamp),
		Direction:      string(e.Direction),
		Source:         e.Source,
		RequestType:    e.RequestType,
		Endpoint:       e.Endpoint,
		Status:         string(e.Status),
		StatusCode:     e.StatusCode,
		ResponseTimeMS: e.ResponseTimeMS,
		Message:        e.Message,
		Details:        e.Details,
	}
}
