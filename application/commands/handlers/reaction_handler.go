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

// ReactionHandler handles reaction removals. Upserts go through
// UpsertReactionOrchestrator so the ledger write and the counter
// increments commit together; removal stays here because a delete plus
// floored decrements cannot double-count on retry.
type ReactionHandler struct {
	cardRepo     ports.CardRepository
	boardRepo    ports.BoardRepository
	reactionRepo ports.ReactionRepository
	aggregator   *services.CounterAggregator
	publisher    ports.BoardEventPublisher
	logger       *zap.Logger
}

// NewReactionHandler creates a new reaction handler
func NewReactionHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	reactionRepo ports.ReactionRepository,
	aggregator *services.CounterAggregator,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *ReactionHandler {
	return &ReactionHandler{
		cardRepo:     cardRepo,
		boardRepo:    boardRepo,
		reactionRepo: reactionRepo,
		aggregator:   aggregator,
		publisher:    publisher,
		logger:       logger,
	}
}

// HandleRemove executes the remove reaction command
func (h *ReactionHandler) HandleRemove(ctx context.Context, cmd commands.RemoveReactionCommand) error {
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

	existed, err := h.reactionRepo.Delete(ctx, cardID, cmd.UserHash)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if !existed {
		return pkgerrors.ErrReactionNotFound.
			WithDetail("card_id", cmd.CardID).
			WithDetail("user_hash", cmd.UserHash)
	}

	totals, err := h.aggregator.OnReactionRemoved(ctx, card)
	if err != nil {
		return err
	}

	h.publisher.ReactionRemoved(ctx, events.NewReactionRemoved(
		cardID,
		card.BoardID(),
		cmd.UserHash,
		totals.DirectCount,
		totals.AggregatedCount,
		totals.ParentID,
		time.Now(),
	))

	return nil
}
