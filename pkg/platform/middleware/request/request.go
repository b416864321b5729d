// Package request provides request-ID middleware and accessors.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"ballotbox/pkg/requestcontext"
)

// HeaderRequestID is the header clients may use to propagate a request ID.
const HeaderRequestID = "X-Request-ID"

// WithRequestID assigns each request an ID, preferring one supplied by the
// client, and echoes it back on the response.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
