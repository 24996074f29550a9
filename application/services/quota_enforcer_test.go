package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

func TestQuotaEnforcer_CheckCardQuota(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     *int
		count     int
		wantOK    bool
		wantLimit bool
	}{
		{name: "no limit configured", limit: nil, count: 99, wantOK: true, wantLimit: false},
		{name: "under limit", limit: intPtr(5), count: 4, wantOK: true, wantLimit: true},
		{name: "at limit", limit: intPtr(5), count: 5, wantOK: false, wantLimit: true},
		{name: "over limit", limit: intPtr(2), count: 7, wantOK: false, wantLimit: true},
		{name: "zero limit blocks everything", limit: intPtr(0), count: 0, wantOK: false, wantLimit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			builder := fixtures.NewBoardBuilder()
			if tt.limit != nil {
				builder = builder.WithCardLimit(*tt.limit)
			}
			board := builder.MustBuild()

			cardRepo := new(mocks.MockCardRepository)
			reactionRepo := new(mocks.MockReactionRepository)
			cardRepo.On("CountUserCards", ctx, board.ID(), "user-1", entities.CardTypeFeedback).
				Return(tt.count, nil)

			enforcer := NewQuotaEnforcer(cardRepo, reactionRepo, zap.NewNop())

			// Act
			status, err := enforcer.CheckCardQuota(ctx, board, "user-1")

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.count, status.CurrentCount)
			assert.Equal(t, tt.wantOK, status.CanCreate)
			assert.Equal(t, tt.wantLimit, status.LimitEnabled)
			cardRepo.AssertExpectations(t)
		})
	}
}

func TestQuotaEnforcer_CardQuotaForCreation_ActionCardsExempt(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithCardLimit(0).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	reactionRepo := new(mocks.MockReactionRepository)
	enforcer := NewQuotaEnforcer(cardRepo, reactionRepo, zap.NewNop())

	status, err := enforcer.CardQuotaForCreation(ctx, board, "user-1", entities.CardTypeAction)

	require.NoError(t, err)
	assert.True(t, status.CanCreate)
	// The card repository must never be consulted for action cards
	cardRepo.AssertNotCalled(t, "CountUserCards")
}

func TestQuotaEnforcer_CheckReactionQuota(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithReactionLimit(3).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	reactionRepo := new(mocks.MockReactionRepository)
	reactionRepo.On("CountUserReactionsOnBoard", ctx, board.ID(), "user-1").Return(3, nil)

	enforcer := NewQuotaEnforcer(cardRepo, reactionRepo, zap.NewNop())

	status, err := enforcer.CheckReactionQuota(ctx, board, "user-1")

	require.NoError(t, err)
	assert.False(t, status.CanCreate)
	assert.Equal(t, 3, status.CurrentCount)
	assert.Equal(t, 3, status.Limit)
	reactionRepo.AssertExpectations(t)
}

func TestQuotaEnforcer_ReactionQuotaForUpsert_ExistingReactionConsumesNothing(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithReactionLimit(1).MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	reactionRepo := new(mocks.MockReactionRepository)
	reactionRepo.On("HasUserReacted", ctx, card.ID(), "user-1").Return(true, nil)

	enforcer := NewQuotaEnforcer(cardRepo, reactionRepo, zap.NewNop())

	status, err := enforcer.ReactionQuotaForUpsert(ctx, board, card.ID(), "user-1")

	require.NoError(t, err)
	assert.True(t, status.CanCreate)
	reactionRepo.AssertNotCalled(t, "CountUserReactionsOnBoard")
}

func intPtr(v int) *int {
	return &v
}
