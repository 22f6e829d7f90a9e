package models

import "github.com/carbonguardian/carbonguardian/internal/registry"

// CreateBuildingRequest is the body of a building registration.
type CreateBuildingRequest struct {
	Code         string  `json:"code" validate:"required,min=1,max=50"`
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Type         string  `json:"type" validate:"max=100"`
	AreaM2       float64 `json:"areaM2" validate:"gte=0"`
	Organization string  `json:"organization" validate:"max=200"`
	Lat          float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon          float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// UpdateBuildingStatusRequest changes a building's lifecycle status.
type UpdateBuildingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive maintenance"`
}

// BuildingResponse is the representation of a building.
type BuildingResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Type         string    `json:"type,omitempty"`
	AreaM2       float64   `json:"areaM2,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Lat          float64   `json:"lat,omitempty"`
	Lon          float64   `json:"lon,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// BuildingListResponse is a listing of buildings.
type BuildingListResponse struct {
	Buildings []BuildingResponse `json:"buildings"`
}

// ParameterResponse is the representation of a collectable parameter.
type ParameterResponse struct {
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory,omitempty"`
	Name              string   `json:"name"`
	DataType          string   `json:"dataType"`
	Units             []string `json:"units"`
	DefaultUnit       string   `json:"defaultUnit"`
	UploadRequirement string   `json:"uploadRequirement"`
	EmissionFactor    float64  `json:"emissionFactor,omitempty"`
}

// ParameterListResponse is a listing of parameters.
type ParameterListResponse struct {
	Parameters []ParameterResponse `json:"parameters"`
}

// NewBuildingResponse converts a domain building to its API representation.
func NewBuildingResponse(b *registry.Building) BuildingResponse {
	return BuildingResponse{
		ID:           b.ID,
		Code:         b.Code,
		Name:         b.Name,
		Type:         b.Type,
		AreaM2:       b.AreaM2,
		Organization: b.Organization,
		Lat:          b.Lat,
		Lon:          b.Lon,
		Status:       string(b.Status),
		CreatedAt:    Timestamp(b.CreatedAt),
		UpdatedAt:    Timestamp(b.UpdatedAt),
	}
}

// NewParameterResponse converts a domain parameter to its API representation.
func NewParameterResponse(p *registry.Parameter) ParameterResponse {
	return ParameterResponse{
		Category:          p.Category,
		Subcategory:       p.Subcategory,
		Name:              p.Name,
		DataType:          p.DataType,
		Units:             p.Units,
		DefaultUnit:       p.DefaultUnit,
		UploadRequirement: string(p.UploadRequirement),
		EmissionFactor:    p.EmissionFactor,
	}
}
