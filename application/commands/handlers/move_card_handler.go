package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/validators"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// MoveCardHandler handles column moves. The target column must exist in
// the board's column set; relationships survive the move.
type MoveCardHandler struct {
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	validator *validators.CardValidator
	publisher ports.BoardEventPublisher
	logger    *zap.Logger
}

// NewMoveCardHandler creates a new move card handler
func NewMoveCardHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	validator *validators.CardValidator,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *MoveCardHandler {
	return &MoveCardHandler{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the move card command
func (h *MoveCardHandler) Handle(ctx context.Context, cmd commands.MoveCardCommand) error {
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

	board, err := h.boardRepo.GetByID(ctx, card.BoardID())
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}
	if board.IsClosed() {
		return pkgerrors.ErrBoardClosed.WithDetail("board_id", board.ID().String())
	}

	if err := h.validator.ValidateColumnOnBoard(board, cmd.ColumnID); err != nil {
		return err
	}

	if err := card.MoveToColumn(cmd.ColumnID); err != nil {
		return err
	}

	if err := h.cardRepo.Save(ctx, card); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.logger.Info("Card moved",
		zap.String("cardID", cmd.CardID),
		zap.String("column", cmd.ColumnID),
	)

	for _, event := range card.GetUncommittedEvents() {
		if moved, ok := event.(events.CardMoved); ok {
			h.publisher.CardMoved(ctx, moved)
		}
	}
	card.MarkEventsAsCommitted()

	return nil
}
