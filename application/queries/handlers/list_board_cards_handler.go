package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/application/queries"
	"retroboard-backend/domain/core/valueobjects"
)

// ListBoardCardsHandler handles board card listing queries
type ListBoardCardsHandler struct {
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	logger    *zap.Logger
}

// NewListBoardCardsHandler creates a new list board cards handler
func NewListBoardCardsHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	logger *zap.Logger,
) *ListBoardCardsHandler {
	return &ListBoardCardsHandler{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		logger:    logger,
	}
}

// Handle executes the list board cards query
func (h *ListBoardCardsHandler) Handle(ctx context.Context, query queries.ListBoardCardsQuery) (*queries.BoardCardsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	boardID, err := valueobjects.NewBoardIDFromString(query.BoardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	// Board existence is verified first so a missing board surfaces as
	// not-found rather than an empty list
	if _, err := h.boardRepo.GetByID(ctx, boardID); err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	cards, err := h.cardRepo.GetByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board cards: %w", err)
	}

	result := &queries.BoardCardsResult{
		BoardID: query.BoardID,
		Total:   len(cards),
	}

	if query.IncludeRelations {
		result.Cards = embedRelations(cards)
	} else {
		result.Cards = make([]queries.CardView, 0, len(cards))
		for _, card := range cards {
			result.Cards = append(result.Cards, toCardView(card))
		}
	}

	return result, nil
}
