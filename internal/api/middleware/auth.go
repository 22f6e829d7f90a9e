package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
	"github.com/carbonguardian/carbonguardian/internal/apikey"
	"github.com/carbonguardian/carbonguardian/internal/auth"
)

// apiKeyCtxKey is the context key for the authenticated API key.
type apiKeyCtxKey struct{}

// adminCtxKey is the context key for the authenticated admin claims.
type adminCtxKey struct{}

// APIKeyAuth creates authentication middleware that validates API key bearer
// secrets against the key store. A revoked or unknown key fails immediately.
func APIKeyAuth(keys *apikey.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r, "missing or malformed authorization header")
				return
			}

			key, err := keys.Authenticate(r.Context(), secret)
			if err != nil {
				writeUnauthorized(w, r, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on one API key permission. It must run
// after APIKeyAuth.
func RequirePermission(keys *apikey.Service, perm apikey.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetAPIKey(r.Context())
			if key == nil {
				writeUnauthorized(w, r, "missing API key")
				return
			}
			if err := keys.Authorize(key, perm); err != nil {
				writeForbidden(w, r, "API key lacks the "+string(perm)+" permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth creates authentication middleware that validates admin JWT
// bearer tokens.
func AdminAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r, "missing or malformed authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), adminCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator gates a route on the operator admin role. It must run
// after AdminAuth.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetAdminClaims(r.Context())
		if claims == nil {
			writeUnauthorized(w, r, "missing admin token")
			return
		}
		if claims.Role != auth.RoleOperator {
			writeForbidden(w, r, "operator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// writeForbidden writes a 403 Forbidden response.
func writeForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewForbidden(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetAPIKey retrieves the authenticated API key from the context.
// Returns nil if the request did not authenticate with an API key.
func GetAPIKey(ctx context.Context) *apikey.Key {
	if key, ok := ctx.Value(apiKeyCtxKey{}).(*apikey.Key); ok {
		return key
	}
	return nil
}

// GetAdminClaims retrieves the authenticated admin claims from the context.
// Returns nil if the request did not authenticate with an admin token.
func GetAdminClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(adminCtxKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}
