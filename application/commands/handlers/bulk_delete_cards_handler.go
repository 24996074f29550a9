package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// BulkDeleteCardsHandler deletes several cards in one request. Cards the
// caller may not delete are skipped and reported, not fatal: the bulk
// operation deletes what it can.
type BulkDeleteCardsHandler struct {
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	cascade   *services.CascadeCoordinator
	publisher ports.BoardEventPublisher
	logger    *zap.Logger
}

// BulkDeleteResult reports the outcome per card
type BulkDeleteResult struct {
	Deleted []string `json:"deleted"`
	Skipped []string `json:"skipped"`
}

// NewBulkDeleteCardsHandler creates a new bulk delete handler
func NewBulkDeleteCardsHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	cascade *services.CascadeCoordinator,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *BulkDeleteCardsHandler {
	return &BulkDeleteCardsHandler{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		cascade:   cascade,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the bulk delete cards command
func (h *BulkDeleteCardsHandler) Handle(ctx context.Context, cmd commands.BulkDeleteCardsCommand) (*BulkDeleteResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	result := &BulkDeleteResult{
		Deleted: []string{},
		Skipped: []string{},
	}

	for _, rawID := range cmd.CardIDs {
		cardID, err := valueobjects.NewCardIDFromString(rawID)
		if err != nil {
			result.Skipped = append(result.Skipped, rawID)
			continue
		}

		card, err := h.cardRepo.GetByID(ctx, cardID)
		if err != nil {
			// Already gone counts as done for a bulk delete
			if pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrCardNotFound.Code) {
				result.Deleted = append(result.Deleted, rawID)
			} else {
				result.Skipped = append(result.Skipped, rawID)
			}
			continue
		}

		if !card.IsCreatedBy(cmd.UserHash) && !cmd.Admin {
			result.Skipped = append(result.Skipped, rawID)
			continue
		}

		teardown, err := h.cascade.DeleteCard(ctx, card)
		if err != nil {
			h.logger.Error("Bulk delete failed for card",
				zap.String("cardID", rawID),
				zap.Error(err),
			)
			result.Skipped = append(result.Skipped, rawID)
			continue
		}

		orphaned := make([]string, len(teardown.OrphanedChildIDs))
		for i, id := range teardown.OrphanedChildIDs {
			orphaned[i] = id.String()
		}
		h.publisher.CardDeleted(ctx, events.NewCardDeleted(
			card.ID(),
			card.BoardID(),
			string(card.Type()),
			orphaned,
			time.Now(),
		))

		result.Deleted = append(result.Deleted, rawID)
	}

	h.logger.Info("Bulk delete completed",
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}
