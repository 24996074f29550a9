package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/validators"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

func newCreateCardHandler() (*CreateCardHandler, *mocks.MockCardRepository, *mocks.MockBoardRepository, *mocks.MockBoardEventPublisher) {
	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	reactionRepo := new(mocks.MockReactionRepository)
	publisher := new(mocks.MockBoardEventPublisher)
	logger := zap.NewNop()

	handler := NewCreateCardHandler(
		cardRepo,
		boardRepo,
		services.NewQuotaEnforcer(cardRepo, reactionRepo, logger),
		validators.NewCardValidator(),
		publisher,
		logger,
	)
	return handler, cardRepo, boardRepo, publisher
}

func TestCreateCardHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	handler, cardRepo, boardRepo, publisher := newCreateCardHandler()

	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("CountUserCards", ctx, board.ID(), "user-1", entities.CardTypeFeedback).Return(0, nil)
	cardRepo.On("Save", ctx, mock.AnythingOfType("*entities.Card")).Return(nil)
	publisher.On("CardCreated", ctx, mock.AnythingOfType("events.CardCreated")).Return()

	cmd := CreateCardCommand{
		BoardID:   board.ID().String(),
		ColumnID:  "went-well",
		Text:      "Deploys were smooth this sprint",
		CardType:  "feedback",
		UserHash:  "user-1",
		UserAlias: "Alice",
	}

	// Act
	card, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, board.ID(), card.BoardID())
	assert.Equal(t, entities.CardTypeFeedback, card.Type())
	assert.Empty(t, card.GetUncommittedEvents())
	cardRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateCardHandler_Handle_ClosedBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().MustBuild()
	handler, cardRepo, boardRepo, _ := newCreateCardHandler()

	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)

	cmd := CreateCardCommand{
		BoardID:  board.ID().String(),
		ColumnID: "went-well",
		Text:     "Too late for this one",
		CardType: "feedback",
		UserHash: "user-1",
	}

	// Act
	card, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, card)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrBoardClosed.Code))
	cardRepo.AssertNotCalled(t, "Save")
}

func TestCreateCardHandler_Handle_UnknownColumn(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	handler, cardRepo, boardRepo, _ := newCreateCardHandler()

	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)

	cmd := CreateCardCommand{
		BoardID:  board.ID().String(),
		ColumnID: "no-such-column",
		Text:     "Lost in space",
		CardType: "feedback",
		UserHash: "user-1",
	}

	// Act
	card, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, card)
	cardRepo.AssertNotCalled(t, "Save")
}

func TestCreateCardHandler_Handle_FeedbackQuotaExhausted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithCardLimit(5).MustBuild()
	handler, cardRepo, boardRepo, _ := newCreateCardHandler()

	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("CountUserCards", ctx, board.ID(), "user-1", entities.CardTypeFeedback).Return(5, nil)

	cmd := CreateCardCommand{
		BoardID:  board.ID().String(),
		ColumnID: "went-well",
		Text:     "One card too many",
		CardType: "feedback",
		UserHash: "user-1",
	}

	// Act
	card, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, card)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrCardLimitReached.Code))
	cardRepo.AssertNotCalled(t, "Save")
}

func TestCreateCardHandler_Handle_ActionCardsBypassQuota(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithCardLimit(1).MustBuild()
	handler, cardRepo, boardRepo, publisher := newCreateCardHandler()

	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("Save", ctx, mock.AnythingOfType("*entities.Card")).Return(nil)
	publisher.On("CardCreated", ctx, mock.AnythingOfType("events.CardCreated")).Return()

	cmd := CreateCardCommand{
		BoardID:  board.ID().String(),
		ColumnID: "actions",
		Text:     "Automate the release checklist",
		CardType: "action",
		UserHash: "user-1",
	}

	// Act
	card, err := handler.Handle(ctx, cmd)

	// Assert: the per-user card count is never consulted for action cards
	require.NoError(t, err)
	require.NotNil(t, card)
	cardRepo.AssertNotCalled(t, "CountUserCards")
}
