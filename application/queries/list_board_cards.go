package queries

import "errors"

// ListBoardCardsQuery represents a query for all cards on a board. With
// relations included, each top-level card embeds its children and, for
// action cards, its linked feedback cards.
type ListBoardCardsQuery struct {
	BoardID          string
	IncludeRelations bool
}

// Validate validates the ListBoardCardsQuery
func (q ListBoardCardsQuery) Validate() error {
	if q.BoardID == "" {
		return errors.New("board ID is required")
	}
	return nil
}

// BoardCardsResult represents the result of listing a board's cards
type BoardCardsResult struct {
	BoardID string     `json:"board_id"`
	Cards   []CardView `json:"cards"`
	Total   int        `json:"total"`
}
