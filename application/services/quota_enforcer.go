package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
)

// QuotaStatus reports how much of a per-user limit is consumed and whether
// another creation is allowed
type QuotaStatus struct {
	CurrentCount int  `json:"current_count"`
	Limit        int  `json:"limit"`
	LimitEnabled bool `json:"limit_enabled"`
	CanCreate    bool `json:"can_create"`
}

// QuotaEnforcer computes per-user counts against a board's configured
// limits. Quota is consumed only at the point a genuinely new card or
// reaction is created; updates to existing records never count.
type QuotaEnforcer struct {
	cardRepo     ports.CardRepository
	reactionRepo ports.ReactionRepository
	logger       *zap.Logger
}

// NewQuotaEnforcer creates a new quota enforcer
func NewQuotaEnforcer(
	cardRepo ports.CardRepository,
	reactionRepo ports.ReactionRepository,
	logger *zap.Logger,
) *QuotaEnforcer {
	return &QuotaEnforcer{
		cardRepo:     cardRepo,
		reactionRepo: reactionRepo,
		logger:       logger,
	}
}

// CheckCardQuota reports whether the user may create another feedback card
// on the board. Only feedback cards count; action cards are always exempt.
func (e *QuotaEnforcer) CheckCardQuota(ctx context.Context, board *entities.Board, userHash string) (QuotaStatus, error) {
	count, err := e.cardRepo.CountUserCards(ctx, board.ID(), userHash, entities.CardTypeFeedback)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("failed to count user cards: %w", err)
	}

	limit, enabled := board.CardLimitPerUser()
	status := QuotaStatus{
		CurrentCount: count,
		Limit:        limit,
		LimitEnabled: enabled,
		CanCreate:    !enabled || count < limit,
	}

	if !status.CanCreate {
		e.logger.Debug("Card quota exhausted",
			zap.String("boardID", board.ID().String()),
			zap.Int("count", count),
			zap.Int("limit", limit),
		)
	}

	return status, nil
}

// CheckReactionQuota reports whether the user may place another reaction on
// the board's cards. The count is scoped to this board; reactions on other
// boards never count against it.
func (e *QuotaEnforcer) CheckReactionQuota(ctx context.Context, board *entities.Board, userHash string) (QuotaStatus, error) {
	count, err := e.reactionRepo.CountUserReactionsOnBoard(ctx, board.ID(), userHash)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("failed to count user reactions: %w", err)
	}

	limit, enabled := board.ReactionLimitPerUser()
	status := QuotaStatus{
		CurrentCount: count,
		Limit:        limit,
		LimitEnabled: enabled,
		CanCreate:    !enabled || count < limit,
	}

	if !status.CanCreate {
		e.logger.Debug("Reaction quota exhausted",
			zap.String("boardID", board.ID().String()),
			zap.Int("count", count),
			zap.Int("limit", limit),
		)
	}

	return status, nil
}

// CardQuotaForCreation checks quota for a card of the given type. Action
// cards bypass the limit entirely.
func (e *QuotaEnforcer) CardQuotaForCreation(ctx context.Context, board *entities.Board, userHash string, cardType entities.CardType) (QuotaStatus, error) {
	if cardType == entities.CardTypeAction {
		return QuotaStatus{CanCreate: true}, nil
	}
	return e.CheckCardQuota(ctx, board, userHash)
}

// ReactionQuotaForUpsert checks quota for a reaction about to be placed on
// the given card. An existing reaction for (card, user) is an update, not a
// creation, so it consumes no quota.
func (e *QuotaEnforcer) ReactionQuotaForUpsert(ctx context.Context, board *entities.Board, cardID valueobjects.CardID, userHash string) (QuotaStatus, error) {
	reacted, err := e.reactionRepo.HasUserReacted(ctx, cardID, userHash)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("failed to check existing reaction: %w", err)
	}
	if reacted {
		return QuotaStatus{CanCreate: true}, nil
	}
	return e.CheckReactionQuota(ctx, board, userHash)
}
