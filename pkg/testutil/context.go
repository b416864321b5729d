package testutil

import (
	"net/http"
	"time"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/requestcontext"
)

// WithAuth adds an authenticated user ID and role to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithAuth(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
