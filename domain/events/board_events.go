package events

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
)

// BoardCleared is raised after a board teardown cascade completes
type BoardCleared struct {
	BaseEvent
	BoardID          valueobjects.BoardID `json:"board_id"`
	CardsDeleted     int                  `json:"cards_deleted"`
	ReactionsDeleted int                  `json:"reactions_deleted"`
	SessionsDeleted  int                  `json:"sessions_deleted"`
}

// NewBoardCleared creates a BoardCleared event
func NewBoardCleared(boardID valueobjects.BoardID, cardsDeleted, reactionsDeleted, sessionsDeleted int, timestamp time.Time) BoardCleared {
	return BoardCleared{
		BaseEvent: BaseEvent{
			AggregateID: boardID.String(),
			EventType:   "board.cleared",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:          boardID,
		CardsDeleted:     cardsDeleted,
		ReactionsDeleted: reactionsDeleted,
		SessionsDeleted:  sessionsDeleted,
	}
}

// BoardReset is raised when a board is cleared and reopened
type BoardReset struct {
	BaseEvent
	BoardID  valueobjects.BoardID `json:"board_id"`
	Reopened bool                 `json:"reopened"`
}

// NewBoardReset creates a BoardReset event
func NewBoardReset(boardID valueobjects.BoardID, reopened bool, timestamp time.Time) BoardReset {
	return BoardReset{
		BaseEvent: BaseEvent{
			AggregateID: boardID.String(),
			EventType:   "board.reset",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:  boardID,
		Reopened: reopened,
	}
}
