package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/httputil"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/election/service"
)

// Handler wires election endpoints to the election service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated election listing.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/elections/active", h.HandleListActive)
}

// Register mounts the authenticated read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/elections", h.HandleList)
	r.Get("/elections/{electionID}", h.HandleGet)
}

// RegisterAdmin mounts the admin-only mutation endpoints. The caller guards
// the group with RequireRole(ADMIN).
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/elections", h.HandleCreate)
	r.Put("/elections/{electionID}", h.HandleUpdate)
	r.Delete("/elections/{electionID}", h.HandleDelete)
	r.Patch("/elections/{electionID}/toggle-active", h.HandleToggleActive)
	r.Patch("/elections/{electionID}/toggle-results", h.HandleToggleResults)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateElectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	election, err := h.service.Create(ctx, service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "election created",
		"request_id", requestID,
		"election_id", election.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, election)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	elections, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, elections)
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	elections, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, elections)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	election, err := h.service.Get(r.Context(), electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, election)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateElectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	election, err := h.service.Update(ctx, electionID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, election)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), electionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Election deleted"})
}

func (h *Handler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	election, err := h.service.ToggleActive(r.Context(), electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, election)
}

func (h *Handler) HandleToggleResults(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	election, err := h.service.ToggleResultsPublished(r.Context(), electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, election)
}
