package commands

import (
	"errors"
)

// UpdateCardContentCommand represents the command to edit a card's text.
// Only the card's creator may edit it.
type UpdateCardContentCommand struct {
	CardID   string `json:"card_id" validate:"required,uuid"`
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	UserHash string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd UpdateCardContentCommand) Validate() error {
	if cmd.CardID == "" {
		return errors.New("card ID is required")
	}
	if cmd.Text == "" {
		return errors.New("text is required")
	}
	if len(cmd.Text) > MaxCardTextLength {
		return errors.New("text exceeds maximum length")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// MoveCardCommand represents the command to move a card to another column
type MoveCardCommand struct {
	CardID   string `json:"card_id" validate:"required,uuid"`
	ColumnID string `json:"column_id" validate:"required"`
	UserHash string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd MoveCardCommand) Validate() error {
	if cmd.CardID == "" {
		return errors.New("card ID is required")
	}
	if cmd.ColumnID == "" {
		return errors.New("column ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// DeleteCardCommand represents the command to delete a card. Children are
// orphaned, not deleted. Admin is an explicit capability; creators may
// always delete their own cards.
type DeleteCardCommand struct {
	CardID   string `json:"card_id" validate:"required,uuid"`
	UserHash string `json:"user_hash" validate:"required"`
	Admin    bool   `json:"-"`
}

// Validate validates the command
func (cmd DeleteCardCommand) Validate() error {
	if cmd.CardID == "" {
		return errors.New("card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}
