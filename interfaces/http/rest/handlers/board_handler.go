package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/commands/bus"
	"retroboard-backend/application/queries"
	querybus "retroboard-backend/application/queries/bus"
	"retroboard-backend/interfaces/http/rest/middleware"
)

// BoardHandler handles board-scoped HTTP requests: listings, quota, and
// the admin teardown operations
type BoardHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *BoardHandler {
	return &BoardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// ListCards handles GET /boards/{boardID}/cards
func (h *BoardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	boardID, ok := h.boardIDParam(w, r)
	if !ok {
		return
	}

	query := queries.ListBoardCardsQuery{
		BoardID:          boardID,
		IncludeRelations: r.URL.Query().Get("relations") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondCommandError(h.logger, w, err, "Failed to list board cards")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// GetQuota handles GET /boards/{boardID}/quota
func (h *BoardHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	boardID, ok := h.boardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := queries.GetQuotaStatusQuery{
		BoardID:  boardID,
		UserHash: actor.UserHash,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondCommandError(h.logger, w, err, "Failed to get quota status")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// ClearBoard handles POST /boards/{boardID}/clear. The route sits behind
// RequireAdmin; the capability still travels on the command so the handler
// chain never re-derives it.
func (h *BoardHandler) ClearBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := h.boardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.ClearBoardCommand{
		BoardID:  boardID,
		UserHash: actor.UserHash,
		Admin:    actor.Admin,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to clear board")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message":  "Board cleared",
		"board_id": boardID,
	})
}

// ResetBoard handles POST /boards/{boardID}/reset
func (h *BoardHandler) ResetBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := h.boardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.ResetBoardCommand{
		BoardID:  boardID,
		UserHash: actor.UserHash,
		Admin:    actor.Admin,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to reset board")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message":  "Board reset",
		"board_id": boardID,
	})
}

func (h *BoardHandler) boardIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	boardID := chi.URLParam(r, "boardID")
	if boardID == "" {
		respondError(h.logger, w, http.StatusBadRequest, "Board ID is required")
		return "", false
	}
	return boardID, true
}
