package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// secretLength is the number of random bytes behind each secret.
	secretLength = 32

	// prefixLength is the number of hex characters used as the lookup
	// prefix. The prefix is safe to display and log.
	prefixLength = 12

	// bcryptCost is the cost factor for hashing secrets.
	bcryptCost = 12

	// secretTag identifies Carbon Guardian keys in the wild.
	secretTag = "cg_"
)

// Service implements issuance, authentication and scoping of API keys.
type Service struct {
	repo Repository
}

// NewService creates a new API key service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IssuedKey is the one-time result of Issue. Secret is never stored and
// cannot be retrieved again.
type IssuedKey struct {
	Key    *Key
	Secret string
}

// Issue creates a new API key with the given name and permission set.
// The returned plaintext secret has the form cg_<prefix>_<random>.
func (s *Service) Issue(ctx context.Context, name string, permissions []Permission) (*IssuedKey, error) {
	if name == "" {
		return nil, errors.New("key name is required")
	}
	if len(permissions) == 0 {
		return nil, errors.New("at least one permission is required")
	}
	for _, p := range permissions {
		if !ValidPermission(p) {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
	}

	raw := make([]byte, secretLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	prefix := hex.EncodeToString(raw)[:prefixLength]
	secret := secretTag + prefix + "_" + base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	key := &Key{
		ID:          "key_" + uuid.New().String()[:22],
		Name:        name,
		Prefix:      prefix,
		SecretHash:  string(hash),
		Permissions: append([]Permission(nil), permissions...),
		Status:      StatusActive,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	return &IssuedKey{Key: key, Secret: secret}, nil
}

// Authenticate resolves a plaintext secret to its key. Revoked keys fail
// immediately; there is no grace period.
func (s *Service) Authenticate(ctx context.Context, secret string) (*Key, error) {
	prefix, ok := parsePrefix(secret)
	if !ok {
		return nil, ErrUnauthorized
	}

	key, err := s.repo.GetByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if key.Status != StatusActive {
		return nil, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)); err != nil {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	// Best effort; a failed touch must not fail the request.
	_ = s.repo.TouchLastUsed(ctx, key.ID, now)
	key.LastUsedAt = &now

	return key, nil
}

// Authorize checks that the key carries the permission for an action.
func (s *Service) Authorize(key *Key, action Permission) error {
	if key == nil {
		return ErrUnauthorized
	}
	if !key.Has(action) {
		return ErrForbidden
	}
	return nil
}

// Revoke deactivates a key. The key fails authentication on its next use.
func (s *Service) Revoke(ctx context.Context, id string) error {
	return s.repo.UpdateStatus(ctx, id, StatusInactive)
}

// List retrieves all issued keys (hashes included; callers must mask).
func (s *Service) List(ctx context.Context) ([]*Key, error) {
	return s.repo.List(ctx)
}

// Get retrieves a key by ID.
func (s *Service) Get(ctx context.Context, id string) (*Key, error) {
	return s.repo.Get(ctx, id)
}

// parsePrefix extracts the lookup prefix from a plaintext secret.
func parsePrefix(secret string) (string, bool) {
	if !strings.HasPrefix(secret, secretTag) {
		return "", false
	}
	rest := secret[len(secretTag):]
	i := strings.IndexByte(rest, '_')
	if i != prefixLength {
		return "", false
	}
	return rest[:i], true
}
