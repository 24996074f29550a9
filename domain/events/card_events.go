package events

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
)

// Event payloads carry enough denormalized data (card id, board id, counts,
// parent id) for a listener to update its view without re-querying.

// CardCreated is raised when a new card is created
type CardCreated struct {
	BaseEvent
	CardID    valueobjects.CardID  `json:"card_id"`
	BoardID   valueobjects.BoardID `json:"board_id"`
	ColumnID  string               `json:"column_id"`
	CardType  string               `json:"card_type"`
	Text      string               `json:"text"`
	Anonymous bool                 `json:"anonymous"`
	Alias     string               `json:"alias,omitempty"`
}

// NewCardCreated creates a CardCreated event
func NewCardCreated(cardID valueobjects.CardID, boardID valueobjects.BoardID, columnID, cardType, text string, anonymous bool, alias string, timestamp time.Time) CardCreated {
	return CardCreated{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "card.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:    cardID,
		BoardID:   boardID,
		ColumnID:  columnID,
		CardType:  cardType,
		Text:      text,
		Anonymous: anonymous,
		Alias:     alias,
	}
}

// CardContentUpdated is raised when card text is updated
type CardContentUpdated struct {
	BaseEvent
	CardID  valueobjects.CardID  `json:"card_id"`
	BoardID valueobjects.BoardID `json:"board_id"`
	OldText string               `json:"old_text"`
	NewText string               `json:"new_text"`
}

// NewCardContentUpdated creates a CardContentUpdated event
func NewCardContentUpdated(cardID valueobjects.CardID, boardID valueobjects.BoardID, oldText, newText string, timestamp time.Time) CardContentUpdated {
	return CardContentUpdated{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "card.content_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:  cardID,
		BoardID: boardID,
		OldText: oldText,
		NewText: newText,
	}
}

// CardMoved is raised when a card is moved to another column
type CardMoved struct {
	BaseEvent
	CardID    valueobjects.CardID  `json:"card_id"`
	BoardID   valueobjects.BoardID `json:"board_id"`
	OldColumn string               `json:"old_column"`
	NewColumn string               `json:"new_column"`
}

// NewCardMoved creates a CardMoved event
func NewCardMoved(cardID valueobjects.CardID, boardID valueobjects.BoardID, oldColumn, newColumn string, timestamp time.Time) CardMoved {
	return CardMoved{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "card.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:    cardID,
		BoardID:   boardID,
		OldColumn: oldColumn,
		NewColumn: newColumn,
	}
}

// CardDeleted is raised when a card is deleted. OrphanedChildIDs lists the
// former children whose parent reference was cleared by the delete.
type CardDeleted struct {
	BaseEvent
	CardID           valueobjects.CardID  `json:"card_id"`
	BoardID          valueobjects.BoardID `json:"board_id"`
	CardType         string               `json:"card_type"`
	OrphanedChildIDs []string             `json:"orphaned_child_ids,omitempty"`
}

// NewCardDeleted creates a CardDeleted event
func NewCardDeleted(cardID valueobjects.CardID, boardID valueobjects.BoardID, cardType string, orphanedChildIDs []string, timestamp time.Time) CardDeleted {
	return CardDeleted{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "card.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:           cardID,
		BoardID:          boardID,
		CardType:         cardType,
		OrphanedChildIDs: orphanedChildIDs,
	}
}

// CardsLinked is raised when two cards are linked (parent_of or linked_to)
type CardsLinked struct {
	BaseEvent
	SourceID valueobjects.CardID  `json:"source_id"`
	TargetID valueobjects.CardID  `json:"target_id"`
	BoardID  valueobjects.BoardID `json:"board_id"`
	LinkType string               `json:"link_type"`
}

// NewCardsLinked creates a CardsLinked event
func NewCardsLinked(sourceID, targetID valueobjects.CardID, boardID valueobjects.BoardID, linkType string, timestamp time.Time) CardsLinked {
	return CardsLinked{
		BaseEvent: BaseEvent{
			AggregateID: sourceID.String(),
			EventType:   "cards.linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		SourceID: sourceID,
		TargetID: targetID,
		BoardID:  boardID,
		LinkType: linkType,
	}
}

// CardsUnlinked is raised when a card link is removed
type CardsUnlinked struct {
	BaseEvent
	SourceID valueobjects.CardID  `json:"source_id"`
	TargetID valueobjects.CardID  `json:"target_id"`
	BoardID  valueobjects.BoardID `json:"board_id"`
	LinkType string               `json:"link_type"`
}

// NewCardsUnlinked creates a CardsUnlinked event
func NewCardsUnlinked(sourceID, targetID valueobjects.CardID, boardID valueobjects.BoardID, linkType string, timestamp time.Time) CardsUnlinked {
	return CardsUnlinked{
		BaseEvent: BaseEvent{
			AggregateID: sourceID.String(),
			EventType:   "cards.unlinked",
			Timestamp:   timestamp,
			Version:     1,
		},
		SourceID: sourceID,
		TargetID: targetID,
		BoardID:  boardID,
		LinkType: linkType,
	}
}
