package audit

import (
	"context"
	"time"
)

// QueryOptions filters log listings.
type QueryOptions struct {
	Source    string
	Status    Status
	Direction Direction
	From      time.Time
	To        time.Time
	Limit     int
}

// Repository defines the interface for log persistence. There is no update
// or per-entry delete: the log is append-only, pruned only by retention.
type Repository interface {
	// Append stores one entry.
	Append(ctx context.Context, e *Entry) error

	// Query retrieves entries matching the filter, newest first.
	Query(ctx context.Context, opts QueryOptions) ([]*Entry, error)

	// PruneBefore deletes entries older than the cutoff and returns the
	// number removed. Reserved for the maintenance job.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}
