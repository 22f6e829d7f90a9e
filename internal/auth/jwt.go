// Package auth issues and validates the JWT bearer tokens used by the
// administrative API surface. Device-facing ingestion authenticates with API
// keys instead; see the apikey package.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpiry is how long admin access tokens are valid. Short expiry
// limits exposure if a token is compromised.
const AccessTokenExpiry = 1 * time.Hour

// Admin roles. Operators manage buildings, keys and rules; viewers get
// read-only access to the same surface.
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

var (
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrAccessTokenExpired = errors.New("access token has expired")
)

// Claims are the claims carried by admin access tokens. AdminID duplicates
// the subject under a short key so middleware never has to touch the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims

	AdminID string `json:"uid"`
	Role    string `json:"role"`
}

// JWTConfig holds the signing material and the issuer/audience pair every
// token must match.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// JWTService mints and checks admin access tokens. Tokens are HS256-signed
// with a single shared key; there is no key rotation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(cfg JWTConfig) *JWTService {
	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// GenerateAccessToken mints a token for one administrator and returns it with
// its expiry time.
func (s *JWTService) GenerateAccessToken(adminID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(AccessTokenExpiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   adminID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        newTokenID(),
		},
		AdminID: adminID,
		Role:    role,
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken checks signature, expiry, issuer and audience, and
// returns the claims. Expired tokens get their own error so handlers can tell
// clients to re-authenticate rather than reject the credential outright.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	keyFn := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFn,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrAccessTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccessToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// newTokenID returns a random jti so individual tokens show up distinctly in
// logs.
func newTokenID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
