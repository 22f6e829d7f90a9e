package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/registry"
)

// RegistryHandler handles building and parameter catalog endpoints.
type RegistryHandler struct {
	svc *registry.Service
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(svc *registry.Service) *RegistryHandler {
	return &RegistryHandler{svc: svc}
}

// ListBuildings handles GET /v1/buildings.
func (h *RegistryHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.svc.ListBuildings(r.Context(), r.URL.Query().Get("organization"))
	if err != nil {
		response.InternalError(w, r, "failed to list buildings")
		return
	}

	resp := models.BuildingListResponse{Buildings: make([]models.BuildingResponse, 0, len(buildings))}
	for _, b := range buildings {
		resp.Buildings = append(resp.Buildings, models.NewBuildingResponse(b))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// GetBuilding handles GET /v1/buildings/{code}.
func (h *RegistryHandler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	building, err := h.svc.ResolveBuilding(r.Context(), code)
	if err != nil {
		if errors.Is(err, registry.ErrBuildingNotFound) {
			response.NotFound(w, r, "building not found")
			return
		}
		response.InternalError(w, r, "failed to load building")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewBuildingResponse(building))
}

// CreateBuilding handles POST /v1/admin/buildings.
func (h *RegistryHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var input models.CreateBuildingRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	building, err := h.svc.CreateBuilding(r.Context(), registry.CreateBuildingInput{
		Code:         input.Code,
		Name:         input.Name,
		Type:         input.Type,
		AreaM2:       input.AreaM2,
		Organization: input.Organization,
		Lat:          input.Lat,
		Lon:          input.Lon,
	})
	if err != nil {
		if errors.Is(err, registry.ErrDuplicateCode) {
			response.Conflict(w, r, "building code already registered")
			return
		}
		response.InternalError(w, r, "failed to create building")
		return
	}

	location := fmt.Sprintf("/v1/buildings/%s", building.Code)
	response.Created(w, r, location, models.NewBuildingResponse(building))
}

// UpdateBuildingStatus handles PUT /v1/admin/buildings/{buildingId}/status.
func (h *RegistryHandler) UpdateBuildingStatus(w http.ResponseWriter, r *http.Request) {
	buildingID := chi.URLParam(r, "buildingId")

	var input models.UpdateBuildingStatusRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	building, err := h.svc.SetBuildingStatus(r.Context(), buildingID, registry.BuildingStatus(input.Status))
	if err != nil {
		if errors.Is(err, registry.ErrBuildingNotFound) {
			response.NotFound(w, r, "building not found")
			return
		}
		response.InternalError(w, r, "failed to update building")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewBuildingResponse(building))
}

// ListParameters handles GET /v1/parameters - the collectable parameter
// catalog with legal units.
func (h *RegistryHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.svc.ListParameters(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list parameters")
		return
	}

	resp := models.ParameterListResponse{Parameters: make([]models.ParameterResponse, 0, len(params))}
	for _, p := range params {
		resp.Parameters = append(resp.Parameters, models.NewParameterResponse(p))
	}
	response.JSON(w, r, http.StatusOK, resp)
}
