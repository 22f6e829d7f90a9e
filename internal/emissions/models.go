// Package emissions implements the ingestion gateway for emissions data.
// Records are validated against the building/parameter registry, persisted
// immutably, and handed off to threshold evaluation and provincial sync.
package emissions

import (
	"errors"
	"time"
)

// Validation and ingestion errors. These map one-to-one onto the API error
// codes returned to submitters.
var (
	ErrUnknownBuilding = errors.New("unknown building")
	ErrInvalidUnit     = errors.New("unit not allowed for data type")
	ErrInvalidValue    = errors.New("value must be a finite number")
	ErrDuplicateRecord = errors.New("record already exists for building, data type and report date")
	ErrBatchTooLarge   = errors.New("batch exceeds maximum size")
	ErrRecordNotFound  = errors.New("record not found")
)

// MaxBatchSize is the largest accepted batch submission.
const MaxBatchSize = 500

// Record represents one accepted emissions data point. Records are immutable
// after acceptance; corrections are submitted as new records.
type Record struct {
	ID         string
	BuildingID string // building code, e.g. "FJ-XZ-01"
	DataType   string
	Value      float64
	Unit       string
	Timestamp  time.Time
	ReportDate string // YYYY-MM-DD, derived from Timestamp
	Notes      string
	CreatedAt  time.Time
}

// ReportDateOf derives the report date for a measurement timestamp.
// Uniqueness is enforced per (building, data type, report date).
func ReportDateOf(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// Key identifies the uniqueness triple of a record.
type Key struct {
	BuildingID string
	DataType   string
	ReportDate string
}

// KeyOf returns the uniqueness key of a record.
func KeyOf(r *Record) Key {
	return Key{BuildingID: r.BuildingID, DataType: r.DataType, ReportDate: r.ReportDate}
}
