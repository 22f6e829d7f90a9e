package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service provides registry lookups for the ingestion gateway and the
// administrative write path for master data.
type Service struct {
	buildings  BuildingRepository
	parameters ParameterRepository
}

// NewService creates a new registry service.
func NewService(buildings BuildingRepository, parameters ParameterRepository) *Service {
	return &Service{buildings: buildings, parameters: parameters}
}

// ResolveBuilding looks up a building by its code.
func (s *Service) ResolveBuilding(ctx context.Context, code string) (*Building, error) {
	return s.buildings.GetByCode(ctx, code)
}

// ResolveParameter looks up the parameter definition for a data type.
func (s *Service) ResolveParameter(ctx context.Context, dataType string) (*Parameter, error) {
	return s.parameters.GetByDataType(ctx, dataType)
}

// ListBuildings retrieves all buildings, optionally filtered by organization.
func (s *Service) ListBuildings(ctx context.Context, organization string) ([]*Building, error) {
	return s.buildings.List(ctx, organization)
}

// ListParameters retrieves all parameter definitions.
func (s *Service) ListParameters(ctx context.Context) ([]*Parameter, error) {
	return s.parameters.List(ctx)
}

// CreateBuildingInput holds the fields for registering a building.
type CreateBuildingInput struct {
	Code         string
	Name         string
	Type         string
	AreaM2       float64
	Organization string
	Lat          float64
	Lon          float64
}

// CreateBuilding registers a new building. Administrative operation, not
// reachable from the ingestion path.
func (s *Service) CreateBuilding(ctx context.Context, input CreateBuildingInput) (*Building, error) {
	now := time.Now()
	b := &Building{
		ID:           "bld_" + uuid.New().String()[:22],
		Code:         input.Code,
		Name:         input.Name,
		Type:         input.Type,
		AreaM2:       input.AreaM2,
		Organization: input.Organization,
		Lat:          input.Lat,
		Lon:          input.Lon,
		Status:       BuildingActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.buildings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetBuildingStatus updates a building's operational status.
func (s *Service) SetBuildingStatus(ctx context.Context, id string, status BuildingStatus) (*Building, error) {
	b, err := s.buildings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	if err := s.buildings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
