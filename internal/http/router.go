// Package httpapi assembles the HTTP surface: middleware, route groups, and
// the authentication boundary between public, voter, and admin endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/httputil"
	authmw "ballotbox/pkg/platform/middleware/auth"
	requestmw "ballotbox/pkg/platform/middleware/request"
	requesttimemw "ballotbox/pkg/platform/middleware/requesttime"

	candidacyhandler "ballotbox/internal/candidacy/handler"
	electionhandler "ballotbox/internal/election/handler"
	identityhandler "ballotbox/internal/identity/handler"
	votinghandler "ballotbox/internal/voting/handler"
)

// Handlers groups the per-module HTTP handlers the router mounts.
type Handlers struct {
	Identity  *identityhandler.Handler
	Election  *electionhandler.Handler
	Candidacy *candidacyhandler.Handler
	Voting    *votinghandler.Handler
}

// NewRouter builds the full route tree. Every request gets an ID and a pinned
// clock; token validation guards the voter surface and the role check guards
// the admin surface on top of it.
func NewRouter(h Handlers, validator authmw.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestmw.WithRequestID)
	r.Use(requesttimemw.WithRequestTime)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public surface: registration, login, and the read-only ballot views.
	h.Identity.Register(r)
	h.Election.RegisterPublic(r)
	h.Candidacy.RegisterPublic(r)

	// Authenticated surface. Per the login contract, everyone here is fully
	// verified.
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, logger))

		h.Election.Register(r)
		h.Candidacy.Register(r)
		h.Voting.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(id.RoleAdmin, logger))

			h.Identity.RegisterAdmin(r)
			h.Election.RegisterAdmin(r)
			h.Candidacy.RegisterAdmin(r)
			h.Voting.RegisterAdmin(r)
		})
	})

	return r
}
