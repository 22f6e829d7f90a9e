package apikey

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	keys     map[string]*Key   // keyed by ID
	byPrefix map[string]string // prefix -> ID
}

// NewInMemoryRepository creates a new in-memory key repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		keys:     make(map[string]*Key),
		byPrefix: make(map[string]string),
	}
}

// Get retrieves a key by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.keys[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return copyKey(k), nil
}

// GetByPrefix retrieves a key by its secret prefix.
func (r *InMemoryRepository) GetByPrefix(_ context.Context, prefix string) (*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPrefix[prefix]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return copyKey(r.keys[id]), nil
}

// List retrieves all keys, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Key, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, copyKey(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create persists a new key.
func (r *InMemoryRepository) Create(_ context.Context, k *Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys[k.ID] = copyKey(k)
	r.byPrefix[k.Prefix] = k.ID
	return nil
}

// UpdateStatus sets the status of a key.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	k.Status = status
	return nil
}

// TouchLastUsed records a successful authentication.
func (r *InMemoryRepository) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	t := at
	k.LastUsedAt = &t
	return nil
}

func copyKey(k *Key) *Key {
	cpy := *k
	cpy.Permissions = append([]Permission(nil), k.Permissions...)
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		cpy.LastUsedAt = &t
	}
	return &cpy
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
