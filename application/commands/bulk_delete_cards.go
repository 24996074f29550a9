package commands

import (
	"errors"
)

// BulkDeleteCardsCommand deletes several cards in one request. Each card
// goes through the same teardown as a single delete: children orphaned,
// linked sets scrubbed, reactions removed.
type BulkDeleteCardsCommand struct {
	CardIDs  []string `json:"card_ids" validate:"required,min=1,max=50,dive,uuid"`
	UserHash string   `json:"user_hash" validate:"required"`
	Admin    bool     `json:"-"`
}

// Validate validates the command
func (cmd BulkDeleteCardsCommand) Validate() error {
	if len(cmd.CardIDs) == 0 {
		return errors.New("at least one card ID is required")
	}
	if len(cmd.CardIDs) > MaxBulkDeleteSize {
		return errors.New("too many cards in one request")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

const MaxBulkDeleteSize = 50
