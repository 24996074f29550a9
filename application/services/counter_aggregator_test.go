package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

func TestCounterAggregator_OnReactionAdded_NoParent(t *testing.T) {
	ctx := context.Background()
	card := fixtures.NewCardBuilder().MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("IncrementReactionCounts", ctx, card.ID(), 1).Return(3, 3, nil)

	aggregator := NewCounterAggregator(cardRepo, zap.NewNop())

	totals, err := aggregator.OnReactionAdded(ctx, card)

	require.NoError(t, err)
	assert.Equal(t, 3, totals.DirectCount)
	assert.Equal(t, 3, totals.AggregatedCount)
	assert.Empty(t, totals.ParentID)
	cardRepo.AssertExpectations(t)
	cardRepo.AssertNotCalled(t, "IncrementAggregatedCount")
}

func TestCounterAggregator_OnReactionAdded_PropagatesToParent(t *testing.T) {
	ctx := context.Background()
	parentID := valueobjects.NewCardID()
	card := fixtures.NewCardBuilder().WithParent(parentID).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("IncrementReactionCounts", ctx, card.ID(), 1).Return(1, 1, nil)
	cardRepo.On("IncrementAggregatedCount", ctx, parentID, 1).Return(5, nil)

	aggregator := NewCounterAggregator(cardRepo, zap.NewNop())

	totals, err := aggregator.OnReactionAdded(ctx, card)

	require.NoError(t, err)
	assert.Equal(t, 1, totals.DirectCount)
	assert.Equal(t, parentID.String(), totals.ParentID)
	cardRepo.AssertExpectations(t)
}

func TestCounterAggregator_OnReactionRemoved_PropagatesDecrement(t *testing.T) {
	ctx := context.Background()
	parentID := valueobjects.NewCardID()
	card := fixtures.NewCardBuilder().WithParent(parentID).WithCounts(2, 2).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("IncrementReactionCounts", ctx, card.ID(), -1).Return(1, 1, nil)
	cardRepo.On("IncrementAggregatedCount", ctx, parentID, -1).Return(4, nil)

	aggregator := NewCounterAggregator(cardRepo, zap.NewNop())

	totals, err := aggregator.OnReactionRemoved(ctx, card)

	require.NoError(t, err)
	assert.Equal(t, 1, totals.DirectCount)
	assert.Equal(t, 1, totals.AggregatedCount)
	cardRepo.AssertExpectations(t)
}

func TestCounterAggregator_ParentPropagationFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	parentID := valueobjects.NewCardID()
	card := fixtures.NewCardBuilder().WithParent(parentID).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("IncrementReactionCounts", ctx, card.ID(), 1).Return(1, 1, nil)
	cardRepo.On("IncrementAggregatedCount", ctx, parentID, 1).
		Return(0, errors.New("conditional check failed"))

	aggregator := NewCounterAggregator(cardRepo, zap.NewNop())

	totals, err := aggregator.OnReactionAdded(ctx, card)

	// The card's own counts landed even though propagation failed
	require.Error(t, err)
	assert.Equal(t, 1, totals.DirectCount)
	cardRepo.AssertExpectations(t)
}
