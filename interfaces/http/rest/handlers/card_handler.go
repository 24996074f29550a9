package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/commands/bus"
	"retroboard-backend/application/queries"
	querybus "retroboard-backend/application/queries/bus"
	"retroboard-backend/interfaces/http/rest/middleware"
	"retroboard-backend/pkg/utils"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *CardHandler {
	return &CardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateCardRequest represents the request body for creating a card
type CreateCardRequest struct {
	BoardID   string `json:"board_id" validate:"required"`
	ColumnID  string `json:"column_id" validate:"required"`
	Text      string `json:"text" validate:"required,min=1,max=1000"`
	CardType  string `json:"card_type" validate:"omitempty,oneof=feedback action"`
	Anonymous bool   `json:"anonymous"`
}

// UpdateCardRequest represents the request body for editing a card's text
type UpdateCardRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// MoveCardRequest represents the request body for moving a card
type MoveCardRequest struct {
	ColumnID string `json:"column_id" validate:"required"`
}

// SetParentRequest represents the request body for grouping a card
type SetParentRequest struct {
	ParentID string `json:"parent_id" validate:"required,uuid"`
}

// AddLinkRequest represents the request body for linking feedback to an action
type AddLinkRequest struct {
	FeedbackID string `json:"feedback_id" validate:"required,uuid"`
}

// BulkDeleteRequest represents the request body for deleting several cards
type BulkDeleteRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1,max=50,dive,uuid"`
}

// CreateCard handles POST /cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if req.CardType == "" {
		req.CardType = "feedback"
	}

	cmd := commands.CreateCardCommand{
		BoardID:   req.BoardID,
		ColumnID:  req.ColumnID,
		Text:      req.Text,
		CardType:  req.CardType,
		Anonymous: req.Anonymous,
		UserHash:  actor.UserHash,
		UserAlias: actor.Alias,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to create card")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, map[string]string{
		"message":    "Card created successfully",
		"created_at": utils.NowRFC3339(),
	})
}

// GetCard handles GET /cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	query := queries.GetCardQuery{
		CardID:           cardID,
		IncludeRelations: r.URL.Query().Get("relations") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondCommandError(h.logger, w, err, "Failed to retrieve card")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}

// SuggestLinks handles GET /cards/{cardID}/link-suggestions
func (h *CardHandler) SuggestLinks(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			respondError(h.logger, w, http.StatusBadRequest, "limit must be between 1 and 20")
			return
		}
		limit = parsed
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SuggestLinksQuery{
		CardID: cardID,
		Limit:  limit,
	})
	if err != nil {
		respondCommandError(h.logger, w, err, "Failed to compute link suggestions")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"card_id":     cardID,
		"suggestions": result,
	})
}

// UpdateCard handles PUT /cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.UpdateCardContentCommand{
		CardID:   cardID,
		Text:     req.Text,
		UserHash: actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to update card")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message": "Card updated successfully",
		"id":      cardID,
	})
}

// MoveCard handles POST /cards/{cardID}/move
func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	var req MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.MoveCardCommand{
		CardID:   cardID,
		ColumnID: req.ColumnID,
		UserHash: actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to move card")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message":   "Card moved successfully",
		"id":        cardID,
		"column_id": req.ColumnID,
	})
}

// DeleteCard handles DELETE /cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.DeleteCardCommand{
		CardID:   cardID,
		UserHash: actor.UserHash,
		Admin:    actor.Admin,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteCards handles POST /cards/bulk-delete
func (h *CardHandler) BulkDeleteCards(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.BulkDeleteCardsCommand{
		CardIDs:  req.CardIDs,
		UserHash: actor.UserHash,
		Admin:    actor.Admin,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to delete cards")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":   "Bulk delete completed",
		"requested": len(req.CardIDs),
	})
}

// SetParent handles PUT /cards/{cardID}/parent
func (h *CardHandler) SetParent(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	var req SetParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.SetParentCardCommand{
		ChildID:  cardID,
		ParentID: req.ParentID,
		UserHash: actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to set parent card")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message":   "Card grouped successfully",
		"id":        cardID,
		"parent_id": req.ParentID,
	})
}

// ClearParent handles DELETE /cards/{cardID}/parent
func (h *CardHandler) ClearParent(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.ClearParentCardCommand{
		ChildID:  cardID,
		UserHash: actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to clear parent card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLink handles POST /cards/{cardID}/links
func (h *CardHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	var req AddLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.AddLinkedFeedbackCommand{
		ActionID:   cardID,
		FeedbackID: req.FeedbackID,
		UserHash:   actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to link feedback")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]string{
		"message":     "Feedback linked successfully",
		"action_id":   cardID,
		"feedback_id": req.FeedbackID,
	})
}

// RemoveLink handles DELETE /cards/{cardID}/links/{feedbackID}
func (h *CardHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDParam(w, r)
	if !ok {
		return
	}

	feedbackID := chi.URLParam(r, "feedbackID")
	if _, err := uuid.Parse(feedbackID); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid feedback card ID format")
		return
	}

	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		respondError(h.logger, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.RemoveLinkedFeedbackCommand{
		ActionID:   cardID,
		FeedbackID: feedbackID,
		UserHash:   actor.UserHash,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondCommandError(h.logger, w, err, "Failed to unlink feedback")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// cardIDParam extracts and validates the card ID path parameter
func (h *CardHandler) cardIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
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
