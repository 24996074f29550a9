package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/pkg/errors"
)

func newTestCard(t *testing.T, boardID string, cardType entities.CardType) *entities.Card {
	t.Helper()

	bid, err := valueobjects.NewBoardIDFromString(boardID)
	require.NoError(t, err)

	text, err := valueobjects.NewCardText("some card text")
	require.NoError(t, err)

	card, err := entities.NewCard(bid, "went-well", text, cardType, false, "user-hash-1", "Alice")
	require.NoError(t, err)

	return card
}

func lookupFrom(cards ...*entities.Card) CardLookup {
	byID := make(map[string]*entities.Card, len(cards))
	for _, c := range cards {
		byID[c.ID().String()] = c
	}
	return func(id valueobjects.CardID) (*entities.Card, bool) {
		c, ok := byID[id.String()]
		return c, ok
	}
}

func TestLinkValidator_ParentLink_Success(t *testing.T) {
	validator := NewLinkValidator()

	parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
	child := newTestCard(t, "board-1", entities.CardTypeFeedback)

	err := validator.ValidateLink(LinkTypeParentOf, parent, child, lookupFrom(parent, child))

	assert.NoError(t, err)
}

func TestLinkValidator_ParentLink_Failures(t *testing.T) {
	validator := NewLinkValidator()

	tests := []struct {
		name     string
		setup    func(t *testing.T) (source, target *entities.Card, lookup CardLookup)
		wantCode string
	}{
		{
			name: "missing target card",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				return parent, nil, lookupFrom(parent)
			},
			wantCode: errors.ErrCardNotFound.Code,
		},
		{
			name: "self link",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				card := newTestCard(t, "board-1", entities.CardTypeFeedback)
				return card, card, lookupFrom(card)
			},
			wantCode: errors.ErrSelfLink.Code,
		},
		{
			name: "cards on different boards",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				child := newTestCard(t, "board-2", entities.CardTypeFeedback)
				return parent, child, lookupFrom(parent, child)
			},
			wantCode: "CROSS_BOARD_LINK",
		},
		{
			name: "action card as parent",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				parent := newTestCard(t, "board-1", entities.CardTypeAction)
				child := newTestCard(t, "board-1", entities.CardTypeFeedback)
				return parent, child, lookupFrom(parent, child)
			},
			wantCode: errors.ErrInvalidCardType.Code,
		},
		{
			name: "action card as child",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				child := newTestCard(t, "board-1", entities.CardTypeAction)
				return parent, child, lookupFrom(parent, child)
			},
			wantCode: errors.ErrInvalidCardType.Code,
		},
		{
			name: "child already grouped",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				existing := newTestCard(t, "board-1", entities.CardTypeFeedback)
				child := newTestCard(t, "board-1", entities.CardTypeFeedback)
				require.NoError(t, child.SetParent(existing.ID()))

				parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				return parent, child, lookupFrom(existing, parent, child)
			},
			wantCode: errors.ErrChildHasParent.Code,
		},
		{
			name: "prospective parent is itself a child",
			setup: func(t *testing.T) (*entities.Card, *entities.Card, CardLookup) {
				grandparent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				parent := newTestCard(t, "board-1", entities.CardTypeFeedback)
				require.NoError(t, parent.SetParent(grandparent.ID()))

				child := newTestCard(t, "board-1", entities.CardTypeFeedback)
				return parent, child, lookupFrom(grandparent, parent, child)
			},
			wantCode: errors.ErrParentIsChild.Code,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, target, lookup := tt.setup(t)

			err := validator.ValidateLink(LinkTypeParentOf, source, target, lookup)

			require.Error(t, err)
			domainErr, ok := err.(*errors.DomainError)
			require.True(t, ok, "expected a domain error, got %T", err)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestLinkValidator_ParentLink_SwapDetected(t *testing.T) {
	// A is parent of B; making A a child of B must be rejected. The
	// single-parent checks catch this before the chain walk, but the cycle
	// error is what a caller operating on stale data would hit.
	validator := NewLinkValidator()

	cardA := newTestCard(t, "board-1", entities.CardTypeFeedback)
	cardB := newTestCard(t, "board-1", entities.CardTypeFeedback)
	require.NoError(t, cardB.SetParent(cardA.ID()))

	err := validator.ValidateLink(LinkTypeParentOf, cardB, cardA, lookupFrom(cardA, cardB))

	require.Error(t, err)
	domainErr, ok := err.(*errors.DomainError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrParentIsChild.Code, domainErr.Code)
}

func TestLinkValidator_FeedbackLink(t *testing.T) {
	validator := NewLinkValidator()

	t.Run("action to feedback succeeds", func(t *testing.T) {
		action := newTestCard(t, "board-1", entities.CardTypeAction)
		feedback := newTestCard(t, "board-1", entities.CardTypeFeedback)

		err := validator.ValidateLink(LinkTypeLinkedTo, action, feedback, lookupFrom(action, feedback))

		assert.NoError(t, err)
	})

	t.Run("feedback source rejected", func(t *testing.T) {
		source := newTestCard(t, "board-1", entities.CardTypeFeedback)
		target := newTestCard(t, "board-1", entities.CardTypeFeedback)

		err := validator.ValidateLink(LinkTypeLinkedTo, source, target, lookupFrom(source, target))

		require.Error(t, err)
		domainErr, ok := err.(*errors.DomainError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrInvalidCardType.Code, domainErr.Code)
	})

	t.Run("action target rejected", func(t *testing.T) {
		source := newTestCard(t, "board-1", entities.CardTypeAction)
		target := newTestCard(t, "board-1", entities.CardTypeAction)

		err := validator.ValidateLink(LinkTypeLinkedTo, source, target, lookupFrom(source, target))

		require.Error(t, err)
		domainErr, ok := err.(*errors.DomainError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrInvalidCardType.Code, domainErr.Code)
	})
}

func TestLinkValidator_UnknownLinkType(t *testing.T) {
	validator := NewLinkValidator()

	a := newTestCard(t, "board-1", entities.CardTypeFeedback)
	b := newTestCard(t, "board-1", entities.CardTypeFeedback)

	err := validator.ValidateLink(LinkType("sibling_of"), a, b, lookupFrom(a, b))

	require.Error(t, err)
	domainErr, ok := err.(*errors.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_LINK_TYPE", domainErr.Code)
}
