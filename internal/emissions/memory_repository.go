package emissions

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development. Production should use
// PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record // keyed by ID
	keys    map[Key]string     // uniqueness key -> ID
}

// NewInMemoryRepository creates a new in-memory emissions repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Record),
		keys:    make(map[Key]string),
	}
}

// Get retrieves a record by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	cpy := *rec
	return &cpy, nil
}

// Exists reports whether a record exists for the uniqueness key.
func (r *InMemoryRepository) Exists(_ context.Context, key Key) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.keys[key]
	return ok, nil
}

// Create persists a single record.
func (r *InMemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := KeyOf(rec)
	if _, exists := r.keys[key]; exists {
		return ErrDuplicateRecord
	}

	cpy := *rec
	r.records[rec.ID] = &cpy
	r.keys[key] = rec.ID
	return nil
}

// CreateBatch persists all records or none.
func (r *InMemoryRepository) CreateBatch(_ context.Context, records []*Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check the whole batch before touching the store.
	seen := make(map[Key]struct{}, len(records))
	for _, rec := range records {
		key := KeyOf(rec)
		if _, exists := r.keys[key]; exists {
			return ErrDuplicateRecord
		}
		if _, dup := seen[key]; dup {
			return ErrDuplicateRecord
		}
		seen[key] = struct{}{}
	}

	for _, rec := range records {
		cpy := *rec
		r.records[rec.ID] = &cpy
		r.keys[KeyOf(rec)] = rec.ID
	}
	return nil
}

// List retrieves records matching the filter, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Record
	for _, rec := range r.records {
		if opts.BuildingID != "" && rec.BuildingID != opts.BuildingID {
			continue
		}
		if opts.DataType != "" && rec.DataType != opts.DataType {
			continue
		}
		if !opts.From.IsZero() && rec.Timestamp.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && rec.Timestamp.After(opts.To) {
			continue
		}
		cpy := *rec
		out = append(out, &cpy)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
