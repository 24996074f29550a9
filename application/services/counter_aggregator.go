package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
)

// CounterTotals carries the counts after a counter adjustment, denormalized
// for event fan-out
type CounterTotals struct {
	DirectCount     int
	AggregatedCount int
	ParentID        string
}

// CounterAggregator applies reaction-count deltas to a card and propagates
// them to the card's parent. All adjustments run as atomic store-side
// increments, floored at zero.
//
// Linking a child that already carries reactions does not retroactively
// move those counts into the parent; the parent's aggregated total only
// reflects reactions that arrive while the link exists.
type CounterAggregator struct {
	cardRepo ports.CardRepository
	logger   *zap.Logger
}

// NewCounterAggregator creates a new counter aggregator
func NewCounterAggregator(cardRepo ports.CardRepository, logger *zap.Logger) *CounterAggregator {
	return &CounterAggregator{
		cardRepo: cardRepo,
		logger:   logger,
	}
}

// OnReactionAdded increments the card's direct and aggregated counts by
// one. If the card has a parent, the parent's aggregated count is also
// incremented; its direct count is untouched.
func (a *CounterAggregator) OnReactionAdded(ctx context.Context, card *entities.Card) (CounterTotals, error) {
	return a.apply(ctx, card, 1)
}

// OnReactionRemoved is the symmetric decrement, floored at zero on both the
// card and, if applicable, its parent
func (a *CounterAggregator) OnReactionRemoved(ctx context.Context, card *entities.Card) (CounterTotals, error) {
	return a.apply(ctx, card, -1)
}

func (a *CounterAggregator) apply(ctx context.Context, card *entities.Card, delta int) (CounterTotals, error) {
	direct, aggregated, err := a.cardRepo.IncrementReactionCounts(ctx, card.ID(), delta)
	if err != nil {
		return CounterTotals{}, fmt.Errorf("failed to adjust reaction counts: %w", err)
	}

	totals := CounterTotals{
		DirectCount:     direct,
		AggregatedCount: aggregated,
	}

	parentID, hasParent := card.ParentID()
	if !hasParent {
		return totals, nil
	}
	totals.ParentID = parentID.String()

	// The parent adjustment is a separate write; a failure here leaves the
	// card's own counts applied. Surfacing the error lets the caller log
	// it, but the reaction itself has already landed.
	if _, err := a.cardRepo.IncrementAggregatedCount(ctx, parentID, delta); err != nil {
		a.logger.Error("Failed to propagate reaction count to parent",
			zap.String("cardID", card.ID().String()),
			zap.String("parentID", parentID.String()),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		return totals, fmt.Errorf("failed to propagate count to parent: %w", err)
	}

	return totals, nil
}
