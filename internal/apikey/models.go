// Package apikey implements issuance, authentication and permission scoping
// of API credentials used by external callers of the ingestion gateway.
package apikey

import (
	"errors"
	"time"
)

// Credential errors.
var (
	ErrKeyNotFound  = errors.New("api key not found")
	ErrUnauthorized = errors.New("invalid or revoked api key")
	ErrForbidden    = errors.New("api key lacks required permission")
)

// Permission is an action an API key may be granted.
type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionDelete Permission = "delete"
)

// ValidPermission reports whether p is a known permission.
func ValidPermission(p Permission) bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionDelete:
		return true
	}
	return false
}

// Status represents the lifecycle state of an API key.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Key represents an issued API credential. The plaintext secret is returned
// exactly once at issuance; only a bcrypt hash is stored.
type Key struct {
	ID          string
	Name        string
	Prefix      string // first characters of the secret, for lookup and display
	SecretHash  string
	Permissions []Permission
	Status      Status
	CreatedAt   time.Time
	LastUsedAt  *time.Time
}

// Has reports whether the key carries the given permission.
func (k *Key) Has(p Permission) bool {
	for _, granted := range k.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}
