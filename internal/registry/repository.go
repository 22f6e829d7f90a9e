package registry

import "context"

// BuildingRepository defines the interface for building master data.
type BuildingRepository interface {
	// GetByCode retrieves a building by its unique code.
	// Returns ErrBuildingNotFound if no building carries the code.
	GetByCode(ctx context.Context, code string) (*Building, error)

	// Get retrieves a building by ID.
	Get(ctx context.Context, id string) (*Building, error)

	// List retrieves all buildings, optionally filtered by organization.
	List(ctx context.Context, organization string) ([]*Building, error)

	// Create registers a new building. Returns ErrDuplicateCode if the
	// code is already taken.
	Create(ctx context.Context, b *Building) error

	// Update replaces an existing building.
	Update(ctx context.Context, b *Building) error
}

// ParameterRepository defines the interface for parameter definitions.
type ParameterRepository interface {
	// GetByDataType retrieves the parameter definition for a data type.
	// Returns ErrParameterNotFound for unknown data types.
	GetByDataType(ctx context.Context, dataType string) (*Parameter, error)

	// List retrieves all parameter definitions.
	List(ctx context.Context) ([]*Parameter, error)
}
