package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// UpdateCardHandler handles card content edits. Only the creator may edit
// a card's text.
type UpdateCardHandler struct {
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	publisher ports.BoardEventPublisher
	logger    *zap.Logger
}

// NewUpdateCardHandler creates a new update card handler
func NewUpdateCardHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *UpdateCardHandler {
	return &UpdateCardHandler{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the update card content command
func (h *UpdateCardHandler) Handle(ctx context.Context, cmd commands.UpdateCardContentCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	cardID, err := valueobjects.NewCardIDFromString(cmd.CardID)
	if err != nil {
		return fmt.Errorf("invalid card ID: %w", err)
	}

	card, err := h.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to get card: %w", err)
	}

	if !card.IsCreatedBy(cmd.UserHash) {
		return pkgerrors.ErrNotCardCreator.WithDetail("card_id", cmd.CardID)
	}

	board, err := h.boardRepo.GetByID(ctx, card.BoardID())
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}
	if board.IsClosed() {
		return pkgerrors.ErrBoardClosed.WithDetail("board_id", board.ID().String())
	}

	text, err := valueobjects.NewCardText(cmd.Text)
	if err != nil {
		return err
	}

	if err := card.UpdateText(text); err != nil {
		return err
	}

	if err := h.cardRepo.Save(ctx, card); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.logger.Info("Card content updated", zap.String("cardID", cmd.CardID))

	for _, event := range card.GetUncommittedEvents() {
		if updated, ok := event.(events.CardContentUpdated); ok {
			h.publisher.CardContentUpdated(ctx, updated)
		}
	}
	card.MarkEventsAsCommitted()

	return nil
}
