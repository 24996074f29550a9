package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// UpsertReactionOrchestrator handles the reaction upsert: the ledger insert
// and both counter increments commit inside one unit of work, so a
// mid-flight failure can never leave a reaction recorded without its counts
// (or the reverse). Each call opens its own unit of work via the factory;
// two users reacting at the same moment never touch shared transaction
// state.
type UpsertReactionOrchestrator struct {
	newUOW    ports.UnitOfWorkFactory
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	quota     *services.QuotaEnforcer
	publisher ports.BoardEventPublisher
	logger    *zap.Logger
}

// NewUpsertReactionOrchestrator creates a new orchestrator instance
func NewUpsertReactionOrchestrator(
	newUOW ports.UnitOfWorkFactory,
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	quota *services.QuotaEnforcer,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *UpsertReactionOrchestrator {
	return &UpsertReactionOrchestrator{
		newUOW:    newUOW,
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		quota:     quota,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle orchestrates the transactional reaction upsert
func (o *UpsertReactionOrchestrator) Handle(ctx context.Context, cmd commands.UpsertReactionCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	cardID, err := valueobjects.NewCardIDFromString(cmd.CardID)
	if err != nil {
		return fmt.Errorf("invalid card ID: %w", err)
	}

	card, err := o.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to get card: %w", err)
	}

	board, err := o.boardRepo.GetByID(ctx, card.BoardID())
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}
	if board.IsClosed() {
		return pkgerrors.ErrBoardClosed.WithDetail("board_id", board.ID().String())
	}

	quota, err := o.quota.ReactionQuotaForUpsert(ctx, board, cardID, cmd.UserHash)
	if err != nil {
		return err
	}
	if !quota.CanCreate {
		return pkgerrors.ErrReactionLimitReached.
			WithDetail("current", quota.CurrentCount).
			WithDetail("limit", quota.Limit)
	}

	reaction, err := entities.NewReaction(
		cardID,
		card.BoardID(),
		cmd.UserHash,
		cmd.UserAlias,
		entities.ReactionType(cmd.ReactionType),
	)
	if err != nil {
		return err
	}

	uow := o.newUOW()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // Will be no-op if commit succeeds

	inserted, err := uow.ReactionRepository().Upsert(ctx, reaction)
	if err != nil {
		return fmt.Errorf("failed to upsert reaction: %w", err)
	}

	var totals services.CounterTotals
	if inserted {
		txCards := uow.CardRepository()

		direct, aggregated, err := txCards.IncrementReactionCounts(ctx, cardID, 1)
		if err != nil {
			return fmt.Errorf("failed to adjust reaction counts: %w", err)
		}
		totals.DirectCount = direct
		totals.AggregatedCount = aggregated

		if parentID, hasParent := card.ParentID(); hasParent {
			totals.ParentID = parentID.String()
			if _, err := txCards.IncrementAggregatedCount(ctx, parentID, 1); err != nil {
				return fmt.Errorf("failed to propagate count to parent: %w", err)
			}
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !inserted {
		return nil
	}

	o.logger.Info("Reaction added",
		zap.String("cardID", cmd.CardID),
		zap.Int("directCount", totals.DirectCount),
		zap.Int("aggregatedCount", totals.AggregatedCount),
	)

	o.publisher.ReactionAdded(ctx, events.NewReactionAdded(
		cardID,
		card.BoardID(),
		cmd.UserHash,
		string(reaction.Type()),
		totals.DirectCount,
		totals.AggregatedCount,
		totals.ParentID,
		time.Now(),
	))

	return nil
}
