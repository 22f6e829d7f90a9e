// Package audit implements the append-only integration call log. Every
// inbound data-endpoint request and every outbound provincial call is
// recorded; entries are immutable and pruned only by the retention job.
package audit

import (
	"errors"
	"time"
)

// ErrEntryNotFound is returned when an entry lookup misses.
var ErrEntryNotFound = errors.New("log entry not found")

// Status classifies a logged call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Direction distinguishes calls received by this system from calls it makes.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Entry is one logged integration call.
type Entry struct {
	ID             string
	Timestamp      time.Time
	Direction      Direction
	Source         string // caller identity: key name, "provincial_platform", ...
	RequestType    string // HTTP method
	Endpoint       string
	Status         Status
	StatusCode     int
	ResponseTimeMS int64
	Message        string
	Details        string
}

// StatusForCode maps an HTTP status code onto a log status.
func StatusForCode(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusSuccess
	case code >= 300 && code < 500:
		return StatusWarning
	default:
		return StatusError
	}
}
