package commands

import (
	"errors"
)

// UpsertReactionCommand places or refreshes a user's reaction on a card.
// Repeated upserts by the same user are idempotent and never double-count.
type UpsertReactionCommand struct {
	CardID       string `json:"card_id" validate:"required,uuid"`
	UserHash     string `json:"user_hash" validate:"required"`
	UserAlias    string `json:"user_alias" validate:"max=60"`
	ReactionType string `json:"reaction_type"`
}

// Validate validates the command
func (cmd UpsertReactionCommand) Validate() error {
	if cmd.CardID == "" {
		return errors.New("card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// RemoveReactionCommand removes a user's reaction from a card
type RemoveReactionCommand struct {
	CardID   string `json:"card_id" validate:"required,uuid"`
	UserHash string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd RemoveReactionCommand) Validate() error {
	if cmd.CardID == "" {
		return errors.New("card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}
