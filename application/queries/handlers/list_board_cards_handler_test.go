package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/queries"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

func TestListBoardCardsHandler_FlatListing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	cards := []*entities.Card{
		fixtures.NewCardBuilder().WithBoardID(board.ID().String()).WithText("First").MustBuild(),
		fixtures.NewCardBuilder().WithBoardID(board.ID().String()).WithText("Second").MustBuild(),
	}
	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("GetByBoard", ctx, board.ID()).Return(cards, nil)
	handler := NewListBoardCardsHandler(cardRepo, boardRepo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.ListBoardCardsQuery{BoardID: board.ID().String()})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Cards, 2)
	assert.Empty(t, result.Cards[0].Children)
	assert.Empty(t, result.Cards[0].LinkedFeedback)
}

func TestListBoardCardsHandler_EmbedsRelations(t *testing.T) {
	// Arrange: a parent with one grouped child, plus an action card linking
	// the parent
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	parent := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).WithText("Parent theme").MustBuild()
	child := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithText("Grouped detail").
		WithParent(parent.ID()).
		MustBuild()
	action := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithText("Follow up").
		AsAction().
		WithLinkedFeedback(parent.ID()).
		MustBuild()
	cards := []*entities.Card{parent, child, action}

	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("GetByBoard", ctx, board.ID()).Return(cards, nil)
	handler := NewListBoardCardsHandler(cardRepo, boardRepo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.ListBoardCardsQuery{
		BoardID:          board.ID().String(),
		IncludeRelations: true,
	})

	// Assert: the child appears only under its parent, never at top level
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Cards, 2)

	var parentView, actionView *queries.CardView
	for i := range result.Cards {
		switch result.Cards[i].ID {
		case parent.ID().String():
			parentView = &result.Cards[i]
		case action.ID().String():
			actionView = &result.Cards[i]
		}
	}

	require.NotNil(t, parentView)
	require.Len(t, parentView.Children, 1)
	assert.Equal(t, child.ID().String(), parentView.Children[0].ID)

	require.NotNil(t, actionView)
	require.Len(t, actionView.LinkedFeedback, 1)
	assert.Equal(t, parent.ID().String(), actionView.LinkedFeedback[0].ID)
}

func TestListBoardCardsHandler_OrphanedParentRefSurfacesAtTopLevel(t *testing.T) {
	// Arrange: the child's parent was deleted but the reference survived
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	ghost := fixtures.NewCardBuilder().MustBuild()
	child := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithParent(ghost.ID()).
		MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{child}, nil)
	handler := NewListBoardCardsHandler(cardRepo, boardRepo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.ListBoardCardsQuery{
		BoardID:          board.ID().String(),
		IncludeRelations: true,
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, child.ID().String(), result.Cards[0].ID)
}

func TestListBoardCardsHandler_MissingBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	boardRepo.On("GetByID", ctx, board.ID()).Return(nil, assert.AnError)
	handler := NewListBoardCardsHandler(cardRepo, boardRepo, zap.NewNop())

	// Act
	_, err := handler.Handle(ctx, queries.ListBoardCardsQuery{BoardID: board.ID().String()})

	// Assert
	require.Error(t, err)
	cardRepo.AssertNotCalled(t, "GetByBoard", mock.Anything, mock.Anything)
}
