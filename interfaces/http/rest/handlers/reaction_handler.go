package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/commands/bus"
	"retroboard-backend/interfaces/http/rest/middleware"
	"retroboard-backend/pkg/utils"
)

// ReactionHandler handles reaction-related HTTP requests
type ReactionHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewReactionHandler creates a new reaction handler
func NewReactionHandler(commandBus *bus.CommandBus, logger *zap.Logger) *ReactionHandler {
	return &ReactionHandler{
		commandBus: commandBus,
		logger:     logger,
	}
}

// UpsertReactionRequest represents the request body for placing a reaction
type UpsertReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"omitempty,max=30"`
}

// UpsertReaction handles PUT /cards/{cardID}/reactions. Repeating the
// request is idempotent: the reaction refreshes in place and no count moves.
func (h *ReactionHandler) UpsertReaction(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	var req UpsertReactionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.UpsertReactionCommand{
		CardID:       cardID,
		UserHash:     actor.UserHash,
		UserAlias:    actor.Alias,
		ReactionType: req.ReactionType,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to add reaction")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Reaction recorded",
		"card_id": cardID,
	})
}

// RemoveReaction handles DELETE /cards/{cardID}/reactions
func (h *ReactionHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.RemoveReactionCommand{
		CardID:   cardID,
		UserHash: actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to remove reaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReactionHandler) cardIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		respondError(h.logger, w, http.StatusBadRequest, "Card ID is required")
		return "", false
	}
	if _, err := uuid.Parse(cardID); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid card ID format")
		return "", false
	}
	return cardID, true
}
