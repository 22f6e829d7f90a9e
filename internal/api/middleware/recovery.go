package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/api/models"
)

// Recovery converts handler panics into a 500 problem response. The stack is
// logged with the request ID so the failing request can be found in traces.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					writePanicResponse(log, w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writePanicResponse(log zerolog.Logger, w http.ResponseWriter, r *http.Request, err any) {
	requestID := GetRequestID(r.Context())

	log.Error().
		Str("request_id", requestID).
		Str("path", r.URL.Path).
		Interface("error", err).
		Str("stack", string(debug.Stack())).
		Msg("panic recovered")

	models.NewInternalError(requestID, "an unexpected error occurred").
		WithInstance(r.URL.Path).
		Write(w)
}
