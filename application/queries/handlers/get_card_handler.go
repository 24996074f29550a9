package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/application/queries"
	"retroboard-backend/domain/core/valueobjects"
)

// GetCardHandler handles single-card queries
type GetCardHandler struct {
	cardRepo ports.CardRepository
	logger   *zap.Logger
}

// NewGetCardHandler creates a new get card handler
func NewGetCardHandler(cardRepo ports.CardRepository, logger *zap.Logger) *GetCardHandler {
	return &GetCardHandler{
		cardRepo: cardRepo,
		logger:   logger,
	}
}

// Handle executes the get card query
func (h *GetCardHandler) Handle(ctx context.Context, query queries.GetCardQuery) (*queries.CardView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cardID, err := valueobjects.NewCardIDFromString(query.CardID)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID: %w", err)
	}

	card, err := h.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	view := toCardView(card)

	if query.IncludeRelations {
		// Relations are resolved against the whole board so children and
		// linked feedback can be embedded
		boardCards, err := h.cardRepo.GetByBoard(ctx, card.BoardID())
		if err != nil {
			return nil, fmt.Errorf("failed to load board cards: %w", err)
		}
		for _, embedded := range embedRelations(boardCards) {
			if embedded.ID == view.ID {
				view = embedded
				break
			}
		}
	}

	return &view, nil
}
