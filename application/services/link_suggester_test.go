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

func TestLinkSuggester_RanksByWordOverlap(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	action := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		AsAction().
		WithText("Speed up the deploy pipeline before next sprint").
		MustBuild()
	strong := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithText("The deploy pipeline is slow and blocks the sprint").
		MustBuild()
	weak := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithText("Standups run long").
		MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("GetByID", ctx, action.ID()).Return(action, nil)
	cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{action, strong, weak}, nil)

	suggester := NewLinkSuggester(cardRepo, zap.NewNop())

	// Act
	suggestions, err := suggester.SuggestForCard(ctx, action.ID(), 5)

	// Assert: only the overlapping feedback card qualifies
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, strong.ID().String(), suggestions[0].CardID)
	assert.Greater(t, suggestions[0].Score, 0.2)
}

func TestLinkSuggester_ExcludesAlreadyLinked(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	feedback := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithText("Deploy pipeline needs caching improvements").
		MustBuild()
	action := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		AsAction().
		WithText("Improve deploy pipeline caching").
		WithLinkedFeedback(feedback.ID()).
		MustBuild()

	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("GetByID", ctx, action.ID()).Return(action, nil)
	cardRepo.On("GetByBoard", ctx, board.ID()).Return([]*entities.Card{action, feedback}, nil)

	suggester := NewLinkSuggester(cardRepo, zap.NewNop())

	// Act
	suggestions, err := suggester.SuggestForCard(ctx, action.ID(), 5)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestLinkSuggester_RejectsFeedbackCards(t *testing.T) {
	// Arrange
	ctx := context.Background()
	feedback := fixtures.NewCardBuilder().MustBuild()
	cardRepo := new(mocks.MockCardRepository)
	cardRepo.On("GetByID", ctx, feedback.ID()).Return(feedback, nil)

	suggester := NewLinkSuggester(cardRepo, zap.NewNop())

	// Act
	_, err := suggester.SuggestForCard(ctx, feedback.ID(), 5)

	// Assert
	require.Error(t, err)
}

func TestOverlapScore(t *testing.T) {
	source := extractWords("improve the deploy pipeline speed")
	target := extractWords("deploy pipeline speed matters")

	score, matched := overlapScore(source, target)

	// "the" is dropped as a short token; 3 of 4 source words match
	assert.Equal(t, 3, matched)
	assert.InDelta(t, 0.75, score, 0.001)
}
