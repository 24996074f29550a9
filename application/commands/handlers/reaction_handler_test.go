package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

type reactionTestDeps struct {
	cardRepo     *mocks.MockCardRepository
	boardRepo    *mocks.MockBoardRepository
	reactionRepo *mocks.MockReactionRepository
	publisher    *mocks.MockBoardEventPublisher
}

func newReactionHandler() (*ReactionHandler, reactionTestDeps) {
	deps := reactionTestDeps{
		cardRepo:     new(mocks.MockCardRepository),
		boardRepo:    new(mocks.MockBoardRepository),
		reactionRepo: new(mocks.MockReactionRepository),
		publisher:    new(mocks.MockBoardEventPublisher),
	}
	logger := zap.NewNop()
	aggregator := services.NewCounterAggregator(deps.cardRepo, logger)
	handler := NewReactionHandler(
		deps.cardRepo, deps.boardRepo, deps.reactionRepo, aggregator, deps.publisher, logger,
	)
	return handler, deps
}

func TestReactionHandler_HandleRemove_PropagatesToParent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	parentID := valueobjects.NewCardID()
	card := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithParent(parentID).
		WithCounts(1, 1).
		MustBuild()
	handler, deps := newReactionHandler()

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.reactionRepo.On("Delete", ctx, card.ID(), "user-1").Return(true, nil)
	deps.cardRepo.On("IncrementReactionCounts", ctx, card.ID(), -1).Return(0, 0, nil)
	deps.cardRepo.On("IncrementAggregatedCount", ctx, parentID, -1).Return(3, nil)
	deps.publisher.On("ReactionRemoved", ctx, mock.AnythingOfType("events.ReactionRemoved")).Return()

	cmd := commands.RemoveReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := handler.HandleRemove(ctx, cmd)

	// Assert
	require.NoError(t, err)
	deps.cardRepo.AssertExpectations(t)
	deps.publisher.AssertExpectations(t)
}

func TestReactionHandler_HandleRemove_AbsentReaction(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newReactionHandler()

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.reactionRepo.On("Delete", ctx, card.ID(), "user-1").Return(false, nil)

	cmd := commands.RemoveReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := handler.HandleRemove(ctx, cmd)

	// Assert: nothing to decrement when no reaction existed
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrReactionNotFound.Code))
	deps.cardRepo.AssertNotCalled(t, "IncrementReactionCounts")
}

func TestReactionHandler_HandleRemove_ClosedBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newReactionHandler()

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)

	cmd := commands.RemoveReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := handler.HandleRemove(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrBoardClosed.Code))
	deps.reactionRepo.AssertNotCalled(t, "Delete")
}
