package events

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
)

// ReactionAdded is raised when a reaction is newly placed on a card.
// The counts are the card's values after the increment was applied; ParentID
// is set when the increment was also propagated to a parent card.
type ReactionAdded struct {
	BaseEvent
	CardID          valueobjects.CardID  `json:"card_id"`
	BoardID         valueobjects.BoardID `json:"board_id"`
	UserHash        string               `json:"user_hash"`
	ReactionType    string               `json:"reaction_type"`
	DirectCount     int                  `json:"direct_count"`
	AggregatedCount int                  `json:"aggregated_count"`
	ParentID        string               `json:"parent_id,omitempty"`
}

// NewReactionAdded creates a ReactionAdded event
func NewReactionAdded(cardID valueobjects.CardID, boardID valueobjects.BoardID, userHash, reactionType string, directCount, aggregatedCount int, parentID string, timestamp time.Time) ReactionAdded {
	return ReactionAdded{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "reaction.added",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:          cardID,
		BoardID:         boardID,
		UserHash:        userHash,
		ReactionType:    reactionType,
		DirectCount:     directCount,
		AggregatedCount: aggregatedCount,
		ParentID:        parentID,
	}
}

// ReactionRemoved is raised when a reaction is removed from a card
type ReactionRemoved struct {
	BaseEvent
	CardID          valueobjects.CardID  `json:"card_id"`
	BoardID         valueobjects.BoardID `json:"board_id"`
	UserHash        string               `json:"user_hash"`
	DirectCount     int                  `json:"direct_count"`
	AggregatedCount int                  `json:"aggregated_count"`
	ParentID        string               `json:"parent_id,omitempty"`
}

// NewReactionRemoved creates a ReactionRemoved event
func NewReactionRemoved(cardID valueobjects.CardID, boardID valueobjects.BoardID, userHash string, directCount, aggregatedCount int, parentID string, timestamp time.Time) ReactionRemoved {
	return ReactionRemoved{
		BaseEvent: BaseEvent{
			AggregateID: cardID.String(),
			EventType:   "reaction.removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		CardID:          cardID,
		BoardID:         boardID,
		UserHash:        userHash,
		DirectCount:     directCount,
		AggregatedCount: aggregatedCount,
		ParentID:        parentID,
	}
}
