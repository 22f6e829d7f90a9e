package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/api/response"
	"github.com/carbonguardian/carbonguardian/internal/apikey"
)

// APIKeyHandler handles API key administration endpoints.
type APIKeyHandler struct {
	svc *apikey.Service
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(svc *apikey.Service) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

// Create handles POST /v1/admin/apikeys - issue a new key. The plaintext
// secret appears in this response only.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateAPIKeyRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	perms := make([]apikey.Permission, 0, len(input.Permissions))
	for _, p := range input.Permissions {
		perms = append(perms, apikey.Permission(p))
	}

	issued, err := h.svc.Issue(r.Context(), input.Name, perms)
	if err != nil {
		response.InternalError(w, r, "failed to issue API key")
		return
	}

	resp := models.IssuedAPIKeyResponse{
		APIKeyResponse: models.NewAPIKeyResponse(issued.Key),
		Secret:         issued.Secret,
	}
	location := fmt.Sprintf("/v1/admin/apikeys/%s", issued.Key.ID)
	response.Created(w, r, location, resp)
}

// List handles GET /v1/admin/apikeys - list keys without secrets.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list API keys")
		return
	}

	resp := models.APIKeyListResponse{Keys: make([]models.APIKeyResponse, 0, len(keys))}
	for _, key := range keys {
		resp.Keys = append(resp.Keys, models.NewAPIKeyResponse(key))
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// Get handles GET /v1/admin/apikeys/{keyId}.
func (h *APIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyId")
	key, err := h.svc.Get(r.Context(), keyID)
	if err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			response.NotFound(w, r, "API key not found")
			return
		}
		response.InternalError(w, r, "failed to load API key")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAPIKeyResponse(key))
}

// Revoke handles DELETE /v1/admin/apikeys/{keyId}. Revocation takes effect
// immediately; in-flight requests with the key are not affected but the next
// authentication fails.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyId")
	if err := h.svc.Revoke(r.Context(), keyID); err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			response.NotFound(w, r, "API key not found")
			return
		}
		response.InternalError(w, r, "failed to revoke API key")
		return
	}
	response.NoContent(w, r)
}
