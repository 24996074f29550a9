package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	domainservices "retroboard-backend/domain/services"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

type linkTestDeps struct {
	cardRepo  *mocks.MockCardRepository
	boardRepo *mocks.MockBoardRepository
	publisher *mocks.MockBoardEventPublisher
}

func newLinkCardHandler() (*LinkCardHandler, linkTestDeps) {
	deps := linkTestDeps{
		cardRepo:  new(mocks.MockCardRepository),
		boardRepo: new(mocks.MockBoardRepository),
		publisher: new(mocks.MockBoardEventPublisher),
	}
	handler := NewLinkCardHandler(
		deps.cardRepo, deps.boardRepo, domainservices.NewLinkValidator(), deps.publisher, zap.NewNop(),
	)
	return handler, deps
}

func TestLinkCardHandler_SetParent_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	parent := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	child := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, child.ID()).Return(child, nil)
	deps.cardRepo.On("GetByID", mock.Anything, parent.ID()).Return(parent, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.cardRepo.On("Save", mock.Anything, child).Return(nil)
	deps.publisher.On("CardsLinked", mock.Anything, mock.AnythingOfType("events.CardsLinked")).Return()

	// Act
	err := handler.HandleSetParent(ctx, commands.SetParentCardCommand{
		ChildID:  child.ID().String(),
		ParentID: parent.ID().String(),
		UserHash: "user-1",
	})

	// Assert
	require.NoError(t, err)
	parentID, hasParent := child.ParentID()
	assert.True(t, hasParent)
	assert.True(t, parentID.Equals(parent.ID()))
	assert.Empty(t, child.GetUncommittedEvents())
	deps.cardRepo.AssertExpectations(t)
	deps.publisher.AssertExpectations(t)
}

func TestLinkCardHandler_SetParent_RejectsNestedGrouping(t *testing.T) {
	// Arrange: the prospective child already carries a parent
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	grandparent := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	parent := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	child := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithParent(grandparent.ID()).
		MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, child.ID()).Return(child, nil)
	deps.cardRepo.On("GetByID", mock.Anything, parent.ID()).Return(parent, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleSetParent(ctx, commands.SetParentCardCommand{
		ChildID:  child.ID().String(),
		ParentID: parent.ID().String(),
		UserHash: "user-1",
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrChildHasParent)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_SetParent_RejectsSwapCycle(t *testing.T) {
	// Arrange: A is parent of B, then B is offered as parent of A
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	cardA := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	cardB := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithParent(cardA.ID()).
		MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, cardA.ID()).Return(cardA, nil)
	deps.cardRepo.On("GetByID", mock.Anything, cardB.ID()).Return(cardB, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleSetParent(ctx, commands.SetParentCardCommand{
		ChildID:  cardA.ID().String(),
		ParentID: cardB.ID().String(),
		UserHash: "user-1",
	})

	// Assert: the validator rejects it before any write happens; the
	// depth-one rule fires first since B already has a parent
	require.Error(t, err)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_ClearParent_NoParentIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleClearParent(ctx, commands.ClearParentCardCommand{
		ChildID:  card.ID().String(),
		UserHash: "user-1",
	})

	// Assert
	require.NoError(t, err)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_AddLinkedFeedback_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	action := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).AsAction().MustBuild()
	feedback := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, action.ID()).Return(action, nil)
	deps.cardRepo.On("GetByID", mock.Anything, feedback.ID()).Return(feedback, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	deps.cardRepo.On("Save", mock.Anything, action).Return(nil)
	deps.publisher.On("CardsLinked", mock.Anything, mock.AnythingOfType("events.CardsLinked")).Return()

	// Act
	err := handler.HandleAddLinkedFeedback(ctx, commands.AddLinkedFeedbackCommand{
		ActionID:   action.ID().String(),
		FeedbackID: feedback.ID().String(),
		UserHash:   "user-1",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, action.HasLinkedFeedback(feedback.ID()))
	deps.cardRepo.AssertExpectations(t)
	deps.publisher.AssertExpectations(t)
}

func TestLinkCardHandler_AddLinkedFeedback_RepeatIsNoOp(t *testing.T) {
	// Arrange: the link already exists
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	feedback := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	action := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		AsAction().
		WithLinkedFeedback(feedback.ID()).
		MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, action.ID()).Return(action, nil)
	deps.cardRepo.On("GetByID", mock.Anything, feedback.ID()).Return(feedback, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleAddLinkedFeedback(ctx, commands.AddLinkedFeedbackCommand{
		ActionID:   action.ID().String(),
		FeedbackID: feedback.ID().String(),
		UserHash:   "user-1",
	})

	// Assert
	require.NoError(t, err)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_AddLinkedFeedback_RejectsFeedbackSource(t *testing.T) {
	// Arrange: a feedback card cannot link other feedback
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	source := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	target := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, source.ID()).Return(source, nil)
	deps.cardRepo.On("GetByID", mock.Anything, target.ID()).Return(target, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleAddLinkedFeedback(ctx, commands.AddLinkedFeedbackCommand{
		ActionID:   source.ID().String(),
		FeedbackID: target.ID().String(),
		UserHash:   "user-1",
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCardType)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_RemoveLinkedFeedback_AbsentLinkIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	action := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).AsAction().MustBuild()
	other := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, action.ID()).Return(action, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleRemoveLinkedFeedback(ctx, commands.RemoveLinkedFeedbackCommand{
		ActionID:   action.ID().String(),
		FeedbackID: other.ID().String(),
		UserHash:   "user-1",
	})

	// Assert
	require.NoError(t, err)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLinkCardHandler_SetParent_ClosedBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().MustBuild()
	parent := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	child := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	handler, deps := newLinkCardHandler()

	deps.cardRepo.On("GetByID", mock.Anything, child.ID()).Return(child, nil)
	deps.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)

	// Act
	err := handler.HandleSetParent(ctx, commands.SetParentCardCommand{
		ChildID:  child.ID().String(),
		ParentID: parent.ID().String(),
		UserHash: "user-1",
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrBoardClosed)
	deps.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
