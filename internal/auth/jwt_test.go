package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonguardian/carbonguardian/internal/auth"
)

func newService(signingKey, issuer, audience string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: signingKey,
		Issuer:     issuer,
		Audience:   audience,
	})
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "https://api.carbonguardian.cn", "carbonguardian-api")

	token, expiresAt, err := svc.GenerateAccessToken("adm_test123", auth.RoleOperator)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "adm_test123", claims.AdminID)
	assert.Equal(t, "adm_test123", claims.Subject)
	assert.Equal(t, auth.RoleOperator, claims.Role)
	assert.Equal(t, "https://api.carbonguardian.cn", claims.Issuer)
}

func TestJWTService_MalformedTokens(t *testing.T) {
	svc := newService("test-secret-key-for-testing-only", "https://api.carbonguardian.cn", "carbonguardian-api")

	for _, token := range []string{"", "not.a.valid.jwt", "xxx.yyy.zzz"} {
		_, err := svc.ValidateAccessToken(token)
		assert.Error(t, err, "token %q should be rejected", token)
	}
}

func TestJWTService_RejectsMismatchedService(t *testing.T) {
	// Tokens minted by one service configuration must not validate on
	// another that differs in key, issuer or audience.
	tests := []struct {
		name     string
		minter   *auth.JWTService
		verifier *auth.JWTService
		wantErr  error
	}{
		{
			name:     "different signing key",
			minter:   newService("key-one", "https://api.carbonguardian.cn", "carbonguardian-api"),
			verifier: newService("key-two", "https://api.carbonguardian.cn", "carbonguardian-api"),
			wantErr:  auth.ErrInvalidAccessToken,
		},
		{
			name:     "different issuer",
			minter:   newService("test-key", "issuer-one", "carbonguardian-api"),
			verifier: newService("test-key", "issuer-two", "carbonguardian-api"),
		},
		{
			name:     "different audience",
			minter:   newService("test-key", "https://api.carbonguardian.cn", "audience-one"),
			verifier: newService("test-key", "https://api.carbonguardian.cn", "audience-two"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := tt.minter.GenerateAccessToken("adm_test123", auth.RoleViewer)
			require.NoError(t, err)

			_, err = tt.verifier.ValidateAccessToken(token)
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
