package queries

import "errors"

// GetCardQuery represents a query to get a single card
type GetCardQuery struct {
	CardID           string
	IncludeRelations bool
}

// Validate validates the GetCardQuery
func (q GetCardQuery) Validate() error {
	if q.CardID == "" {
		return errors.New("card ID is required")
	}
	return nil
}

// CardView is the read model for a card, with relationship data embedded
// when requested
type CardView struct {
	ID                      string     `json:"id"`
	BoardID                 string     `json:"board_id"`
	ColumnID                string     `json:"column_id"`
	Text                    string     `json:"text"`
	CardType                string     `json:"card_type"`
	Anonymous               bool       `json:"anonymous"`
	CreatorAlias            string     `json:"creator_alias,omitempty"`
	ParentCardID            string     `json:"parent_card_id,omitempty"`
	LinkedFeedbackIDs       []string   `json:"linked_feedback_ids,omitempty"`
	DirectReactionCount     int        `json:"direct_reaction_count"`
	AggregatedReactionCount int        `json:"aggregated_reaction_count"`
	CreatedAt               string     `json:"created_at"`
	UpdatedAt               string     `json:"updated_at"`
	Children                []CardView `json:"children,omitempty"`
	LinkedFeedback          []CardView `json:"linked_feedback,omitempty"`
}
