// Package requesttime pins a single observation of the clock per request.
//
// Every time comparison in one request (election window checks, timestamps on
// created records) sees the same instant, and tests can substitute a fixed
// time via requestcontext.WithTime.
package requesttime

import (
	"net/http"
	"time"

	"ballotbox/pkg/requestcontext"
)

// WithRequestTime stores the arrival time in the request context.
func WithRequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
