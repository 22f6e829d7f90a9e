package registry

import (
	"context"
	"sort"
	"sync"
)

// InMemoryBuildingRepository is an in-memory implementation of
// BuildingRepository. This is intended for testing and local development.
// Production should use PostgresBuildingRepository.
type InMemoryBuildingRepository struct {
	mu        sync.RWMutex
	buildings map[string]*Building // keyed by ID
	byCode    map[string]string    // code -> ID
}

// NewInMemoryBuildingRepository creates a new in-memory building repository.
func NewInMemoryBuildingRepository() *InMemoryBuildingRepository {
	return &InMemoryBuildingRepository{
		buildings: make(map[string]*Building),
		byCode:    make(map[string]string),
	}
}

// GetByCode retrieves a building by its unique code.
func (r *InMemoryBuildingRepository) GetByCode(_ context.Context, code string) (*Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, ErrBuildingNotFound
	}

	cpy := *r.buildings[id]
	return &cpy, nil
}

// Get retrieves a building by ID.
func (r *InMemoryBuildingRepository) Get(_ context.Context, id string) (*Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buildings[id]
	if !ok {
		return nil, ErrBuildingNotFound
	}

	cpy := *b
	return &cpy, nil
}

// List retrieves all buildings, optionally filtered by organization.
func (r *InMemoryBuildingRepository) List(_ context.Context, organization string) ([]*Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Building
	for _, b := range r.buildings {
		if organization != "" && b.Organization != organization {
			continue
		}
		cpy := *b
		out = append(out, &cpy)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Create registers a new building.
func (r *InMemoryBuildingRepository) Create(_ context.Context, b *Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[b.Code]; exists {
		return ErrDuplicateCode
	}

	cpy := *b
	r.buildings[b.ID] = &cpy
	r.byCode[b.Code] = b.ID
	return nil
}

// Update replaces an existing building.
func (r *InMemoryBuildingRepository) Update(_ context.Context, b *Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.buildings[b.ID]
	if !ok {
		return ErrBuildingNotFound
	}

	if old.Code != b.Code {
		if _, taken := r.byCode[b.Code]; taken {
			return ErrDuplicateCode
		}
		delete(r.byCode, old.Code)
		r.byCode[b.Code] = b.ID
	}

	cpy := *b
	r.buildings[b.ID] = &cpy
	return nil
}

// InMemoryParameterRepository is an in-memory implementation of
// ParameterRepository.
type InMemoryParameterRepository struct {
	mu     sync.RWMutex
	params map[string]*Parameter // keyed by data type
}

// NewInMemoryParameterRepository creates a parameter repository seeded with
// the given definitions.
func NewInMemoryParameterRepository(params []*Parameter) *InMemoryParameterRepository {
	m := make(map[string]*Parameter, len(params))
	for _, p := range params {
		cpy := *p
		m[p.DataType] = &cpy
	}
	return &InMemoryParameterRepository{params: m}
}

// GetByDataType retrieves the parameter definition for a data type.
func (r *InMemoryParameterRepository) GetByDataType(_ context.Context, dataType string) (*Parameter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.params[dataType]
	if !ok {
		return nil, ErrParameterNotFound
	}

	cpy := *p
	return &cpy, nil
}

// List retrieves all parameter definitions.
func (r *InMemoryParameterRepository) List(_ context.Context) ([]*Parameter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Parameter, 0, len(r.params))
	for _, p := range r.params {
		cpy := *p
		out = append(out, &cpy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataType < out[j].DataType })
	return out, nil
}

// Ensure implementations satisfy the interfaces.
var (
	_ BuildingRepository  = (*InMemoryBuildingRepository)(nil)
	_ ParameterRepository = (*InMemoryParameterRepository)(nil)
)
