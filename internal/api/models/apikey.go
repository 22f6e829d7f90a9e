package models

import "github.com/carbonguardian/carbonguardian/internal/apikey"

// CreateAPIKeyRequest is the body of a key issuance request.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,oneof=read write delete"`
}

// APIKeyResponse is the representation of an API key. The secret is never
// included; see IssuedAPIKeyResponse.
type APIKeyResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Prefix      string     `json:"prefix"`
	Permissions []string   `json:"permissions"`
	Status      string     `json:"status"`
	CreatedAt   Timestamp  `json:"createdAt"`
	LastUsedAt  *Timestamp `json:"lastUsedAt,omitempty"`
}

// IssuedAPIKeyResponse carries the one-time plaintext secret alongside the
// key. Returned only from the issuance endpoint.
type IssuedAPIKeyResponse struct {
	APIKeyResponse
	Secret string `json:"secret"`
}

// APIKeyListResponse is a listing of API keys.
type APIKeyListResponse struct {
	Keys []APIKeyResponse `json:"keys"`
}

// NewAPIKeyResponse converts a domain key to its API representation.
func NewAPIKeyResponse(key *apikey.Key) APIKeyResponse {
	perms := make([]string, 0, len(key.Permissions))
	for _, p := range key.Permissions {
		perms = append(perms, string(p))
	}

	resp := APIKeyResponse{
		ID:          key.ID,
		Name:        key.Name,
		Prefix:      key.Prefix,
		Permissions: perms,
		Status:      string(key.Status),
		CreatedAt:   Timestamp(key.CreatedAt),
	}
	if key.LastUsedAt != nil {
		ts := Timestamp(*key.LastUsedAt)
		resp.LastUsedAt = &ts
	}
	return resp
}
