package models

import (
	"time"

	"github.com/carbonguardian/carbonguardian/internal/emissions"
)

// SubmitRecordRequest is the body of a single data submission.
type SubmitRecordRequest struct {
	BuildingID string    `json:"buildingId" validate:"required"`
	DataType   string    `json:"dataType" validate:"required"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit" validate:"required"`
	Timestamp  time.Time `json:"timestamp" validate:"required"`
	Notes      string    `json:"notes,omitempty" validate:"max=500"`
}

// SubmitBatchRequest is the body of a batch data submission.
type SubmitBatchRequest struct {
	Records []SubmitRecordRequest `json:"records" validate:"required,min=1,dive"`
}

// RecordResponse is the representation of an accepted record.
type RecordResponse struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"buildingId"`
	DataType   string    `json:"dataType"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Timestamp  Timestamp `json:"timestamp"`
	ReportDate string    `json:"reportDate"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// BatchResponse is the result of an accepted batch submission.
type BatchResponse struct {
	Accepted int              `json:"accepted"`
	Records  []RecordResponse `json:"records"`
}

// RecordListResponse is a paged listing of records.
type RecordListResponse struct {
	Records []RecordResponse  `json:"records"`
	Meta    PagedResponseMeta `json:"meta"`
}

// NewRecordResponse converts a domain record to its API representation.
func NewRecordResponse(rec *emissions.Record) RecordResponse {
	return RecordResponse{
		ID:         rec.ID,
		BuildingID: rec.BuildingID,
		DataType:   rec.DataType,
		Value:      rec.Value,
		Unit:       rec.Unit,
		Timestamp:  Timestamp(rec.Timestamp),
		ReportDate: rec.ReportDate,
		Notes:      rec.Notes,
		CreatedAt:  Timestamp(rec.CreatedAt),
	}
}
