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

// DeleteCardHandler handles card deletion. Children of the deleted card
// are orphaned, not deleted; the card is scrubbed out of every action
// card's linked set. Creators may delete their own cards; board admins may
// delete any card.
type DeleteCardHandler struct {
	cardRepo   ports.CardRepository
	boardRepo  ports.BoardRepository
	cascade    *services.CascadeCoordinator
	eventStore ports.EventStore
	publisher  ports.BoardEventPublisher
	logger     *zap.Logger
}

// NewDeleteCardHandler creates a new delete card handler
func NewDeleteCardHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	cascade *services.CascadeCoordinator,
	eventStore ports.EventStore,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *DeleteCardHandler {
	return &DeleteCardHandler{
		cardRepo:   cardRepo,
		boardRepo:  boardRepo,
		cascade:    cascade,
		eventStore: eventStore,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the delete card command
func (h *DeleteCardHandler) Handle(ctx context.Context, cmd commands.DeleteCardCommand) error {
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

	if !card.IsCreatedBy(cmd.UserHash) && !cmd.Admin {
		return pkgerrors.ErrNotCardCreator.WithDetail("card_id", cmd.CardID)
	}

	board, err := h.boardRepo.GetByID(ctx, card.BoardID())
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}
	if board.IsClosed() && !cmd.Admin {
		return pkgerrors.ErrBoardClosed.WithDetail("board_id", board.ID().String())
	}

	result, err := h.cascade.DeleteCard(ctx, card)
	if err != nil {
		return err
	}

	// The card's event history is swept with the card itself
	if err := h.eventStore.DeleteEvents(ctx, cmd.CardID); err != nil {
		h.logger.Warn("Failed to delete card event history",
			zap.String("cardID", cmd.CardID),
			zap.Error(err),
		)
	}

	orphaned := make([]string, len(result.OrphanedChildIDs))
	for i, id := range result.OrphanedChildIDs {
		orphaned[i] = id.String()
	}

	h.publisher.CardDeleted(ctx, events.NewCardDeleted(
		card.ID(),
		card.BoardID(),
		string(card.Type()),
		orphaned,
		time.Now(),
	))

	return nil
}
