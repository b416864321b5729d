package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/httputil"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/candidacy/models"
	"ballotbox/internal/candidacy/service"
)

// Handler wires nomination endpoints to the candidacy service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the ballot view for an election.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/candidates/election/{electionID}", h.HandleListByElection)
}

// Register mounts the endpoints available to any authenticated user.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidates/nominate", h.HandleNominate)
	r.Get("/candidates/my-nominations", h.HandleListMine)
}

// RegisterAdmin mounts the review endpoints. The caller guards the group
// with RequireRole(ADMIN).
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/candidates", h.HandleListAll)
	r.Get("/candidates/pending", h.HandleListPending)
	r.Patch("/candidates/{candidateID}/approve", h.HandleApprove)
	r.Patch("/candidates/{candidateID}/reject", h.HandleReject)
	r.Delete("/candidates/{candidateID}", h.HandleDelete)
}

func (h *Handler) HandleNominate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[NominateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	nomination, err := h.service.Nominate(ctx, requestcontext.UserID(ctx), req.ParsedElectionID(), req.Party)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "nomination accepted",
		"request_id", requestID,
		"candidate_id", nomination.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, nomination)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	nominations, err := h.service.ListMine(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nominations)
}

func (h *Handler) HandleListByElection(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	nominations, err := h.service.ListByElection(r.Context(), electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nominations)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	nominations, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nominations)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	nominations, err := h.service.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nominations)
}

// reviewResponse mirrors the review endpoints' message-plus-record shape.
type reviewResponse struct {
	Message   string             `json:"message"`
	Candidate *models.Nomination `json:"candidate"`
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Approve, "Candidate approved")
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Reject, "Candidate rejected")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, candidateID id.CandidateID) (*models.Nomination, error),
	message string,
) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	nomination, err := apply(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reviewResponse{Message: message, Candidate: nomination})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), candidateID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Candidate removed"})
}
