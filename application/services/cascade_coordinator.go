package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
)

// ClearResult reports what a board teardown removed
type ClearResult struct {
	CardsDeleted     int
	ReactionsDeleted int
	SessionsDeleted  int
	Reopened         bool
}

// CardTeardownResult reports what a single-card teardown touched
type CardTeardownResult struct {
	OrphanedChildIDs []valueobjects.CardID
	ReactionsDeleted int
}

// CascadeCoordinator orchestrates multi-entity deletes. Board teardown
// deletes reactions, then cards, then sessions, in that fixed order, so a
// mid-cascade failure never leaves reactions pointing at deleted cards.
// Every step is idempotent: re-running a partially-cleared teardown
// converges to fully cleared without erroring.
type CascadeCoordinator struct {
	cardRepo     ports.CardRepository
	reactionRepo ports.ReactionRepository
	sessionRepo  ports.SessionRepository
	boardRepo    ports.BoardRepository
	lock         ports.DistributedLock
	logger       *zap.Logger
}

// NewCascadeCoordinator creates a new cascade coordinator
func NewCascadeCoordinator(
	cardRepo ports.CardRepository,
	reactionRepo ports.ReactionRepository,
	sessionRepo ports.SessionRepository,
	boardRepo ports.BoardRepository,
	lock ports.DistributedLock,
	logger *zap.Logger,
) *CascadeCoordinator {
	return &CascadeCoordinator{
		cardRepo:     cardRepo,
		reactionRepo: reactionRepo,
		sessionRepo:  sessionRepo,
		boardRepo:    boardRepo,
		lock:         lock,
		logger:       logger,
	}
}

const teardownLockTTLSeconds = 60

// ClearBoard deletes all reactions, cards and sessions on the board
func (c *CascadeCoordinator) ClearBoard(ctx context.Context, board *entities.Board) (ClearResult, error) {
	lockKey := "teardown:" + board.ID().String()
	if err := c.lock.Acquire(ctx, lockKey, teardownLockTTLSeconds); err != nil {
		return ClearResult{}, fmt.Errorf("board teardown already in progress: %w", err)
	}
	defer func() {
		if err := c.lock.Release(ctx, lockKey); err != nil {
			c.logger.Warn("Failed to release teardown lock",
				zap.String("boardID", board.ID().String()),
				zap.Error(err),
			)
		}
	}()

	return c.clearLocked(ctx, board)
}

func (c *CascadeCoordinator) clearLocked(ctx context.Context, board *entities.Board) (ClearResult, error) {
	var result ClearResult

	cards, err := c.cardRepo.GetByBoard(ctx, board.ID())
	if err != nil {
		return result, fmt.Errorf("failed to list board cards: %w", err)
	}

	cardIDs := make([]valueobjects.CardID, len(cards))
	for i, card := range cards {
		cardIDs[i] = card.ID()
	}

	// Reactions reference cards, so they go first. If a later step fails,
	// a re-run finds fewer rows and deletes the remainder.
	if len(cardIDs) > 0 {
		deleted, err := c.reactionRepo.DeleteByCards(ctx, cardIDs)
		if err != nil {
			return result, fmt.Errorf("failed to delete board reactions: %w", err)
		}
		result.ReactionsDeleted = deleted
	}

	cardsDeleted, err := c.cardRepo.DeleteByBoard(ctx, board.ID())
	if err != nil {
		return result, fmt.Errorf("failed to delete board cards: %w", err)
	}
	result.CardsDeleted = cardsDeleted

	sessionsDeleted, err := c.sessionRepo.DeleteByBoard(ctx, board.ID())
	if err != nil {
		return result, fmt.Errorf("failed to delete board sessions: %w", err)
	}
	result.SessionsDeleted = sessionsDeleted

	c.logger.Info("Board cleared",
		zap.String("boardID", board.ID().String()),
		zap.Int("cards", result.CardsDeleted),
		zap.Int("reactions", result.ReactionsDeleted),
		zap.Int("sessions", result.SessionsDeleted),
	)

	return result, nil
}

// ResetBoard clears the board and reopens it if it was closed
func (c *CascadeCoordinator) ResetBoard(ctx context.Context, board *entities.Board) (ClearResult, error) {
	result, err := c.ClearBoard(ctx, board)
	if err != nil {
		return result, err
	}

	if board.IsClosed() {
		if err := c.boardRepo.Reopen(ctx, board.ID()); err != nil {
			return result, fmt.Errorf("failed to reopen board: %w", err)
		}
		board.Reopen()
		result.Reopened = true
	}

	return result, nil
}

// DeleteCard tears down a single card: children are orphaned rather than
// deleted, the card is scrubbed out of every action card's linked set, and
// its reactions are removed before the card itself.
func (c *CascadeCoordinator) DeleteCard(ctx context.Context, card *entities.Card) (CardTeardownResult, error) {
	var result CardTeardownResult

	orphaned, err := c.cardRepo.OrphanChildren(ctx, card.ID())
	if err != nil {
		return result, fmt.Errorf("failed to orphan children: %w", err)
	}
	result.OrphanedChildIDs = orphaned

	if card.Type() == entities.CardTypeFeedback {
		if err := c.cardRepo.ScrubLinkedFeedback(ctx, card.BoardID(), card.ID()); err != nil {
			return result, fmt.Errorf("failed to scrub linked feedback references: %w", err)
		}
	}

	reactionsDeleted, err := c.reactionRepo.DeleteByCard(ctx, card.ID())
	if err != nil {
		return result, fmt.Errorf("failed to delete card reactions: %w", err)
	}
	result.ReactionsDeleted = reactionsDeleted

	if err := c.cardRepo.Delete(ctx, card.ID()); err != nil {
		return result, fmt.Errorf("failed to delete card: %w", err)
	}

	c.logger.Info("Card deleted",
		zap.String("cardID", card.ID().String()),
		zap.String("boardID", card.BoardID().String()),
		zap.Int("orphanedChildren", len(result.OrphanedChildIDs)),
		zap.Int("reactions", result.ReactionsDeleted),
	)

	return result, nil
}
