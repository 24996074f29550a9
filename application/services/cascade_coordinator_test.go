package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

type cascadeMocks struct {
	cardRepo     *mocks.MockCardRepository
	reactionRepo *mocks.MockReactionRepository
	sessionRepo  *mocks.MockSessionRepository
	boardRepo    *mocks.MockBoardRepository
	lock         *mocks.MockDistributedLock
}

func newCascadeCoordinator() (*CascadeCoordinator, cascadeMocks) {
	m := cascadeMocks{
		cardRepo:     new(mocks.MockCardRepository),
		reactionRepo: new(mocks.MockReactionRepository),
		sessionRepo:  new(mocks.MockSessionRepository),
		boardRepo:    new(mocks.MockBoardRepository),
		lock:         new(mocks.MockDistributedLock),
	}
	coordinator := NewCascadeCoordinator(
		m.cardRepo, m.reactionRepo, m.sessionRepo, m.boardRepo, m.lock, zap.NewNop(),
	)
	return coordinator, m
}

func TestCascadeCoordinator_ClearBoard(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	cardA := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	cardB := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()

	coordinator, m := newCascadeCoordinator()
	lockKey := "teardown:" + board.ID().String()

	m.lock.On("Acquire", ctx, lockKey, teardownLockTTLSeconds).Return(nil)
	m.lock.On("Release", ctx, lockKey).Return(nil)
	m.cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{cardA, cardB}, nil)
	m.reactionRepo.On("DeleteByCards", ctx, []valueobjects.CardID{cardA.ID(), cardB.ID()}).Return(5, nil)
	m.cardRepo.On("DeleteByBoard", ctx, board.ID()).Return(2, nil)
	m.sessionRepo.On("DeleteByBoard", ctx, board.ID()).Return(3, nil)

	result, err := coordinator.ClearBoard(ctx, board)

	require.NoError(t, err)
	assert.Equal(t, 2, result.CardsDeleted)
	assert.Equal(t, 5, result.ReactionsDeleted)
	assert.Equal(t, 3, result.SessionsDeleted)
	m.lock.AssertExpectations(t)
	m.cardRepo.AssertExpectations(t)
	m.reactionRepo.AssertExpectations(t)
	m.sessionRepo.AssertExpectations(t)
}

func TestCascadeCoordinator_ClearBoard_EmptyBoardIsNoop(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()

	coordinator, m := newCascadeCoordinator()
	m.lock.On("Acquire", ctx, mock.Anything, teardownLockTTLSeconds).Return(nil)
	m.lock.On("Release", ctx, mock.Anything).Return(nil)
	m.cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{}, nil)
	m.cardRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)
	m.sessionRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)

	result, err := coordinator.ClearBoard(ctx, board)

	require.NoError(t, err)
	assert.Zero(t, result.CardsDeleted)
	// No cards means no bulk reaction delete is issued
	m.reactionRepo.AssertNotCalled(t, "DeleteByCards")
}

func TestCascadeCoordinator_ClearBoard_LockContention(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()

	coordinator, m := newCascadeCoordinator()
	m.lock.On("Acquire", ctx, mock.Anything, teardownLockTTLSeconds).
		Return(errors.New("lock held"))

	_, err := coordinator.ClearBoard(ctx, board)

	require.Error(t, err)
	m.cardRepo.AssertNotCalled(t, "GetByBoard")
}

func TestCascadeCoordinator_ResetBoard_ReopensClosedBoard(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().MustBuild()

	coordinator, m := newCascadeCoordinator()
	m.lock.On("Acquire", ctx, mock.Anything, teardownLockTTLSeconds).Return(nil)
	m.lock.On("Release", ctx, mock.Anything).Return(nil)
	m.cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{}, nil)
	m.cardRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)
	m.sessionRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)
	m.boardRepo.On("Reopen", ctx, board.ID()).Return(nil)

	result, err := coordinator.ResetBoard(ctx, board)

	require.NoError(t, err)
	assert.True(t, result.Reopened)
	assert.False(t, board.IsClosed())
	m.boardRepo.AssertExpectations(t)
}

func TestCascadeCoordinator_ResetBoard_ActiveBoardNotReopened(t *testing.T) {
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()

	coordinator, m := newCascadeCoordinator()
	m.lock.On("Acquire", ctx, mock.Anything, teardownLockTTLSeconds).Return(nil)
	m.lock.On("Release", ctx, mock.Anything).Return(nil)
	m.cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{}, nil)
	m.cardRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)
	m.sessionRepo.On("DeleteByBoard", ctx, board.ID()).Return(0, nil)

	result, err := coordinator.ResetBoard(ctx, board)

	require.NoError(t, err)
	assert.False(t, result.Reopened)
	m.boardRepo.AssertNotCalled(t, "Reopen")
}

func TestCascadeCoordinator_DeleteCard_OrphansChildrenAndScrubsLinks(t *testing.T) {
	ctx := context.Background()
	card := fixtures.NewCardBuilder().MustBuild()
	childID := valueobjects.NewCardID()

	coordinator, m := newCascadeCoordinator()
	m.cardRepo.On("OrphanChildren", ctx, card.ID()).Return([]valueobjects.CardID{childID}, nil)
	m.cardRepo.On("ScrubLinkedFeedback", ctx, card.BoardID(), card.ID()).Return(nil)
	m.reactionRepo.On("DeleteByCard", ctx, card.ID()).Return(4, nil)
	m.cardRepo.On("Delete", ctx, card.ID()).Return(nil)

	result, err := coordinator.DeleteCard(ctx, card)

	require.NoError(t, err)
	assert.Equal(t, []valueobjects.CardID{childID}, result.OrphanedChildIDs)
	assert.Equal(t, 4, result.ReactionsDeleted)
	m.cardRepo.AssertExpectations(t)
	m.reactionRepo.AssertExpectations(t)
}

func TestCascadeCoordinator_DeleteCard_ActionCardSkipsScrub(t *testing.T) {
	ctx := context.Background()
	card := fixtures.NewCardBuilder().AsAction().MustBuild()

	coordinator, m := newCascadeCoordinator()
	m.cardRepo.On("OrphanChildren", ctx, card.ID()).Return([]valueobjects.CardID{}, nil)
	m.reactionRepo.On("DeleteByCard", ctx, card.ID()).Return(0, nil)
	m.cardRepo.On("Delete", ctx, card.ID()).Return(nil)

	_, err := coordinator.DeleteCard(ctx, card)

	require.NoError(t, err)
	// Only feedback cards can appear in linked sets
	m.cardRepo.AssertNotCalled(t, "ScrubLinkedFeedback")
}
