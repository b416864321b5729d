package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/voting/models"
	"ballotbox/internal/voting/service"
)

// Handler wires voting endpoints to the voting engine.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints available to any authenticated user.
func (h *Handler) Register(r chi.Router) {
	r.Post("/votes/cast", h.HandleCast)
	r.Get("/votes/history", h.HandleHistory)
	r.Get("/votes/has-voted/{electionID}", h.HandleHasVoted)
	r.Get("/votes/results/{electionID}", h.HandleResults)
}

// RegisterAdmin mounts the full-ledger listing. The caller guards the group
// with RequireRole(ADMIN).
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/votes/all", h.HandleAllVotes)
}

// castResponse wraps the receipt with a confirmation message.
type castResponse struct {
	Message string             `json:"message"`
	Vote    *models.VoteRecord `json:"vote"`
}

func (h *Handler) HandleCast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CastVoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.CastVote(ctx, requestcontext.UserID(ctx), req.ParsedElectionID(), req.ParsedCandidateID())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "vote accepted",
		"request_id", requestID,
		"vote_id", record.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, castResponse{Message: "Vote cast successfully", Vote: record})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.service.History(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) HandleHasVoted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	voted, err := h.service.HasVoted(ctx, requestcontext.UserID(ctx), electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"hasVoted": voted})
}

// HandleResults applies the publication gate. The engine always computes the
// full payload; this is the one place that decides who may see it. Admins see
// results regardless of publication state.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, err := h.service.Results(ctx, electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if !results.Election.IsResultsPublished && !requestcontext.IsAdmin(ctx) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "results are not published yet"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) HandleAllVotes(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.AllVotes(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}
