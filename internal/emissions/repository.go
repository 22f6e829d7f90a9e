package emissions

import (
	"context"
	"time"
)

// ListOptions contains filters for listing records.
type ListOptions struct {
	BuildingID string
	DataType   string
	From       time.Time
	To         time.Time
	Limit      int
}

// Repository defines the interface for emissions record persistence.
// Records are append-only; there is no update or delete path.
type Repository interface {
	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Exists reports whether a record exists for the uniqueness key.
	Exists(ctx context.Context, key Key) (bool, error)

	// Create persists a single record. Returns ErrDuplicateRecord if the
	// uniqueness key is already taken.
	Create(ctx context.Context, r *Record) error

	// CreateBatch persists all records or none. A duplicate anywhere in
	// the batch (against stored records or within the batch itself) fails
	// the whole batch with ErrDuplicateRecord.
	CreateBatch(ctx context.Context, records []*Record) error

	// List retrieves records matching the filter, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)
}
