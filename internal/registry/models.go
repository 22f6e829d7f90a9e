// Package registry provides the building and parameter master-data registry.
// It is read-mostly: the ingestion path only resolves entries, while mutation
// is an administrative operation.
package registry

import (
	"errors"
	"time"
)

// Registry errors.
var (
	ErrBuildingNotFound  = errors.New("building not found")
	ErrParameterNotFound = errors.New("parameter not found")
	ErrDuplicateCode     = errors.New("building code already registered")
)

// BuildingStatus represents the operational status of a building.
type BuildingStatus string

const (
	BuildingActive      BuildingStatus = "active"
	BuildingInactive    BuildingStatus = "inactive"
	BuildingMaintenance BuildingStatus = "maintenance"
)

// Building represents a monitored building.
type Building struct {
	ID           string
	Code         string
	Name         string
	Type         string
	AreaM2       float64
	Organization string
	Lat          float64
	Lon          float64
	Status       BuildingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UploadRequirement describes how a parameter's data is expected to arrive.
type UploadRequirement string

const (
	UploadRealtime UploadRequirement = "realtime"
	UploadReport   UploadRequirement = "report"
)

// Parameter defines a collectable data type and its legal units.
type Parameter struct {
	Category          string
	Subcategory       string
	Name              string
	DataType          string
	Units             []string
	DefaultUnit       string
	UploadRequirement UploadRequirement

	// EmissionFactor converts one DefaultUnit of consumption to kgCO2e.
	// Zero means no conversion is defined for the parameter.
	EmissionFactor float64
}

// AllowsUnit reports whether unit is legal for this parameter.
func (p *Parameter) AllowsUnit(unit string) bool {
	for _, u := range p.Units {
		if u == unit {
			return true
		}
	}
	return false
}
