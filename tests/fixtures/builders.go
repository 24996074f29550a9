// Package fixtures provides builders for test entities with sensible
// defaults.
package fixtures

import (
	"fmt"
	"time"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
)

// CardBuilder helps create test cards with default values
type CardBuilder struct {
	id              valueobjects.CardID
	boardID         string
	columnID        string
	text            string
	cardType        entities.CardType
	anonymous       bool
	creatorHash     string
	creatorAlias    string
	parentID        *valueobjects.CardID
	linkedFeedback  []valueobjects.CardID
	directCount     int
	aggregatedCount int
}

func NewCardBuilder() *CardBuilder {
	return &CardBuilder{
		id:           valueobjects.NewCardID(),
		boardID:      "test-board-123",
		columnID:     "went-well",
		text:         "Test card text",
		cardType:     entities.CardTypeFeedback,
		creatorHash:  "test-user-hash",
		creatorAlias: "Test User",
	}
}

func (b *CardBuilder) WithID(id string) *CardBuilder {
	b.id, _ = valueobjects.NewCardIDFromString(id)
	return b
}

func (b *CardBuilder) WithBoardID(boardID string) *CardBuilder {
	b.boardID = boardID
	return b
}

func (b *CardBuilder) WithColumn(columnID string) *CardBuilder {
	b.columnID = columnID
	return b
}

func (b *CardBuilder) WithText(text string) *CardBuilder {
	b.text = text
	return b
}

func (b *CardBuilder) WithType(cardType entities.CardType) *CardBuilder {
	b.cardType = cardType
	return b
}

func (b *CardBuilder) AsAction() *CardBuilder {
	b.cardType = entities.CardTypeAction
	return b
}

func (b *CardBuilder) Anonymous() *CardBuilder {
	b.anonymous = true
	return b
}

func (b *CardBuilder) WithCreator(userHash, alias string) *CardBuilder {
	b.creatorHash = userHash
	b.creatorAlias = alias
	return b
}

func (b *CardBuilder) WithParent(parentID valueobjects.CardID) *CardBuilder {
	b.parentID = &parentID
	return b
}

func (b *CardBuilder) WithLinkedFeedback(ids ...valueobjects.CardID) *CardBuilder {
	b.linkedFeedback = ids
	return b
}

func (b *CardBuilder) WithCounts(direct, aggregated int) *CardBuilder {
	b.directCount = direct
	b.aggregatedCount = aggregated
	return b
}

func (b *CardBuilder) Build() (*entities.Card, error) {
	boardID, err := valueobjects.NewBoardIDFromString(b.boardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	text, err := valueobjects.NewCardText(b.text)
	if err != nil {
		return nil, fmt.Errorf("invalid card text: %w", err)
	}

	now := time.Now()
	return entities.ReconstructCard(
		b.id,
		boardID,
		b.columnID,
		text,
		b.cardType,
		b.anonymous,
		b.creatorHash,
		b.creatorAlias,
		b.parentID,
		b.linkedFeedback,
		b.directCount,
		b.aggregatedCount,
		now,
		now,
	)
}

func (b *CardBuilder) MustBuild() *entities.Card {
	card, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build test card: %v", err))
	}
	return card
}

// BoardBuilder helps create test boards with default values
type BoardBuilder struct {
	id            string
	name          string
	state         entities.BoardState
	columns       []string
	admins        []string
	cardLimit     *int
	reactionLimit *int
}

func NewBoardBuilder() *BoardBuilder {
	return &BoardBuilder{
		id:      "test-board-123",
		name:    "Sprint 42 Retro",
		state:   entities.BoardStateActive,
		columns: []string{"went-well", "to-improve", "actions"},
		admins:  []string{"admin-hash"},
	}
}

func (b *BoardBuilder) WithID(id string) *BoardBuilder {
	b.id = id
	return b
}

func (b *BoardBuilder) WithName(name string) *BoardBuilder {
	b.name = name
	return b
}

func (b *BoardBuilder) Closed() *BoardBuilder {
	b.state = entities.BoardStateClosed
	return b
}

func (b *BoardBuilder) WithColumns(columns ...string) *BoardBuilder {
	b.columns = columns
	return b
}

func (b *BoardBuilder) WithAdmins(admins ...string) *BoardBuilder {
	b.admins = admins
	return b
}

func (b *BoardBuilder) WithCardLimit(limit int) *BoardBuilder {
	b.cardLimit = &limit
	return b
}

func (b *BoardBuilder) WithReactionLimit(limit int) *BoardBuilder {
	b.reactionLimit = &limit
	return b
}

func (b *BoardBuilder) Build() (*entities.Board, error) {
	boardID, err := valueobjects.NewBoardIDFromString(b.id)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	now := time.Now()
	return entities.ReconstructBoard(
		boardID,
		b.name,
		b.state,
		b.columns,
		b.admins,
		b.cardLimit,
		b.reactionLimit,
		now,
		now,
	)
}

func (b *BoardBuilder) MustBuild() *entities.Board {
	board, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build test board: %v", err))
	}
	return board
}

// ReactionBuilder helps create test reactions with default values
type ReactionBuilder struct {
	cardID       valueobjects.CardID
	boardID      string
	userHash     string
	userAlias    string
	reactionType entities.ReactionType
}

func NewReactionBuilder() *ReactionBuilder {
	return &ReactionBuilder{
		cardID:       valueobjects.NewCardID(),
		boardID:      "test-board-123",
		userHash:     "test-user-hash",
		userAlias:    "Test User",
		reactionType: entities.ReactionTypeThumbsUp,
	}
}

func (b *ReactionBuilder) WithCardID(cardID valueobjects.CardID) *ReactionBuilder {
	b.cardID = cardID
	return b
}

func (b *ReactionBuilder) WithBoardID(boardID string) *ReactionBuilder {
	b.boardID = boardID
	return b
}

func (b *ReactionBuilder) WithUser(userHash, alias string) *ReactionBuilder {
	b.userHash = userHash
	b.userAlias = alias
	return b
}

func (b *ReactionBuilder) Build() (*entities.Reaction, error) {
	boardID, err := valueobjects.NewBoardIDFromString(b.boardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	return entities.NewReaction(b.cardID, boardID, b.userHash, b.userAlias, b.reactionType)
}

func (b *ReactionBuilder) MustBuild() *entities.Reaction {
	reaction, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build test reaction: %v", err))
	}
	return reaction
}
