package apikey

import (
	"context"
	"time"
)

// Repository defines the interface for API key persistence.
type Repository interface {
	// Get retrieves a key by ID.
	Get(ctx context.Context, id string) (*Key, error)

	// GetByPrefix retrieves a key by its secret prefix.
	GetByPrefix(ctx context.Context, prefix string) (*Key, error)

	// List retrieves all keys, newest first.
	List(ctx context.Context) ([]*Key, error)

	// Create persists a new key.
	Create(ctx context.Context, k *Key) error

	// UpdateStatus sets the status of a key.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// TouchLastUsed records a successful authentication.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
