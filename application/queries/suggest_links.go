package queries

import "errors"

// SuggestLinksQuery asks for feedback cards worth linking to an action card
type SuggestLinksQuery struct {
	CardID string
	Limit  int
}

// Validate validates the SuggestLinksQuery
func (q SuggestLinksQuery) Validate() error {
	if q.CardID == "" {
		return errors.New("card ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}
