package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/queries"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/valueobjects"
)

// SuggestLinksHandler handles link-suggestion queries for action cards
type SuggestLinksHandler struct {
	suggester *services.LinkSuggester
	logger    *zap.Logger
}

// NewSuggestLinksHandler creates a new suggest links handler
func NewSuggestLinksHandler(suggester *services.LinkSuggester, logger *zap.Logger) *SuggestLinksHandler {
	return &SuggestLinksHandler{
		suggester: suggester,
		logger:    logger,
	}
}

// Handle executes the suggestion query
func (h *SuggestLinksHandler) Handle(ctx context.Context, query queries.SuggestLinksQuery) ([]services.LinkSuggestion, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cardID, err := valueobjects.NewCardIDFromString(query.CardID)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID: %w", err)
	}

	suggestions, err := h.suggester.SuggestForCard(ctx, cardID, query.Limit)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []services.LinkSuggestion{}
	}
	return suggestions, nil
}
