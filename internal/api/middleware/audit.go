package middleware

import (
	"net/http"
	"time"

	"github.com/carbonguardian/carbonguardian/internal/audit"
)

// AuditTrail records every request passing through it to the integration
// log. The source is the authenticated API key's name when present. Mount it
// on integration-facing routes; admin browsing is not an integration call.
func AuditTrail(svc *audit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			source := "anonymous"
			if key := GetAPIKey(r.Context()); key != nil {
				source = key.Name
			}

			svc.Record(r.Context(), audit.Entry{
				Direction:      audit.DirectionInbound,
				Source:         source,
				RequestType:    r.Method,
				Endpoint:       r.URL.Path,
				Status:         audit.StatusForCode(wrapped.statusCode),
				StatusCode:     wrapped.statusCode,
				ResponseTimeMS: time.Since(start).Milliseconds(),
			})
		})
	}
}
