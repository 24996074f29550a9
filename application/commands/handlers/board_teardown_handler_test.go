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
	"retroboard-backend/domain/core/entities"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

type teardownTestDeps struct {
	cardRepo     *mocks.MockCardRepository
	boardRepo    *mocks.MockBoardRepository
	reactionRepo *mocks.MockReactionRepository
	sessionRepo  *mocks.MockSessionRepository
	eventStore   *mocks.MockEventStore
	publisher    *mocks.MockBoardEventPublisher
	lock         *mocks.MockDistributedLock
}

func newTeardownHandler() (*BoardTeardownHandler, teardownTestDeps) {
	deps := teardownTestDeps{
		cardRepo:     new(mocks.MockCardRepository),
		boardRepo:    new(mocks.MockBoardRepository),
		reactionRepo: new(mocks.MockReactionRepository),
		sessionRepo:  new(mocks.MockSessionRepository),
		eventStore:   new(mocks.MockEventStore),
		publisher:    new(mocks.MockBoardEventPublisher),
		lock:         new(mocks.MockDistributedLock),
	}
	logger := zap.NewNop()
	cascade := services.NewCascadeCoordinator(
		deps.cardRepo, deps.reactionRepo, deps.sessionRepo, deps.boardRepo, deps.lock, logger,
	)
	handler := NewBoardTeardownHandler(deps.boardRepo, cascade, deps.eventStore, deps.publisher, logger)
	return handler, deps
}

func (d teardownTestDeps) expectTeardown(board *entities.Board, cards []*entities.Card) {
	d.lock.On("Acquire", mock.Anything, "teardown:"+board.ID().String(), mock.Anything).Return(nil)
	d.lock.On("Release", mock.Anything, "teardown:"+board.ID().String()).Return(nil)
	d.cardRepo.On("GetByBoard", mock.Anything, board.ID()).Return(cards, nil)
	if len(cards) > 0 {
		d.reactionRepo.On("DeleteByCards", mock.Anything, mock.AnythingOfType("[]valueobjects.CardID")).Return(len(cards), nil)
	}
	d.cardRepo.On("DeleteByBoard", mock.Anything, board.ID()).Return(len(cards), nil)
	d.sessionRepo.On("DeleteByBoard", mock.Anything, board.ID()).Return(1, nil)
	d.eventStore.On("DeleteEvents", mock.Anything, board.ID().String()).Return(nil)
}

func TestBoardTeardownHandler_Clear_WithAdminCapability(t *testing.T) {
	// Arrange: the caller is not in the board's admin list but carries the
	// admin capability on the command
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithAdmins("someone-else").MustBuild()
	cards := []*entities.Card{
		fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild(),
		fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild(),
	}
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.expectTeardown(board, cards)
	deps.publisher.On("BoardCleared", mock.Anything, mock.AnythingOfType("events.BoardCleared")).Return()

	// Act
	err := handler.HandleClear(ctx, commands.ClearBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "user-1",
		Admin:    true,
	})

	// Assert
	require.NoError(t, err)
	deps.cardRepo.AssertExpectations(t)
	deps.sessionRepo.AssertExpectations(t)
	deps.publisher.AssertExpectations(t)
}

func TestBoardTeardownHandler_Clear_BoardAdminListQualifies(t *testing.T) {
	// Arrange: no capability on the command, but the user hash is in the
	// board's admin list
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithAdmins("admin-hash").MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.expectTeardown(board, nil)
	deps.publisher.On("BoardCleared", mock.Anything, mock.AnythingOfType("events.BoardCleared")).Return()

	// Act
	err := handler.HandleClear(ctx, commands.ClearBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "admin-hash",
	})

	// Assert
	require.NoError(t, err)
	deps.publisher.AssertExpectations(t)
}

func TestBoardTeardownHandler_Clear_RejectsNonAdmin(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithAdmins("someone-else").MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleClear(ctx, commands.ClearBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "user-1",
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNotBoardAdmin)
	deps.cardRepo.AssertNotCalled(t, "DeleteByBoard", mock.Anything, mock.Anything)
}

func TestBoardTeardownHandler_Clear_ConcurrentTeardownBlocked(t *testing.T) {
	// Arrange: another teardown holds the lock
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.lock.On("Acquire", mock.Anything, "teardown:"+board.ID().String(), mock.Anything).
		Return(pkgerrors.ErrLockContended)

	// Act
	err := handler.HandleClear(ctx, commands.ClearBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "user-1",
		Admin:    true,
	})

	// Assert
	require.Error(t, err)
	deps.cardRepo.AssertNotCalled(t, "GetByBoard", mock.Anything, mock.Anything)
}

func TestBoardTeardownHandler_Reset_ReopensClosedBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().WithAdmins("admin-hash").MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.expectTeardown(board, nil)
	deps.boardRepo.On("Reopen", mock.Anything, board.ID()).Return(nil)
	deps.publisher.On("BoardReset", mock.Anything, mock.AnythingOfType("events.BoardReset")).Return()

	// Act
	err := handler.HandleReset(ctx, commands.ResetBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "admin-hash",
	})

	// Assert
	require.NoError(t, err)
	assert.False(t, board.IsClosed())
	deps.boardRepo.AssertCalled(t, "Reopen", mock.Anything, board.ID())
	deps.publisher.AssertExpectations(t)
}

func TestBoardTeardownHandler_Reset_ActiveBoardStaysActive(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithAdmins("admin-hash").MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.expectTeardown(board, nil)
	deps.publisher.On("BoardReset", mock.Anything, mock.AnythingOfType("events.BoardReset")).Return()

	// Act
	err := handler.HandleReset(ctx, commands.ResetBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "admin-hash",
	})

	// Assert
	require.NoError(t, err)
	deps.boardRepo.AssertNotCalled(t, "Reopen", mock.Anything, mock.Anything)
}

func TestBoardTeardownHandler_Clear_EventHistoryFailureIsNonFatal(t *testing.T) {
	// Arrange: sweeping the event history fails, the clear still succeeds
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithAdmins("admin-hash").MustBuild()
	handler, deps := newTeardownHandler()

	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.lock.On("Release", mock.Anything, mock.Anything).Return(nil)
	deps.cardRepo.On("GetByBoard", mock.Anything, board.ID()).Return([]*entities.Card{}, nil)
	deps.cardRepo.On("DeleteByBoard", mock.Anything, board.ID()).Return(0, nil)
	deps.sessionRepo.On("DeleteByBoard", mock.Anything, board.ID()).Return(0, nil)
	deps.eventStore.On("DeleteEvents", mock.Anything, board.ID().String()).
		Return(pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, "STORE_DOWN", "event store unavailable"))
	deps.publisher.On("BoardCleared", mock.Anything, mock.AnythingOfType("events.BoardCleared")).Return()

	// Act
	err := handler.HandleClear(ctx, commands.ClearBoardCommand{
		BoardID:  board.ID().String(),
		UserHash: "admin-hash",
	})

	// Assert
	require.NoError(t, err)
	deps.publisher.AssertExpectations(t)
}
