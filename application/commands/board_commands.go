package commands

import (
	"errors"
)

// ClearBoardCommand tears down all content on a board. Admin capability is
// required and passed explicitly by the caller.
type ClearBoardCommand struct {
	BoardID  string `json:"board_id" validate:"required"`
	UserHash string `json:"user_hash" validate:"required"`
	Admin    bool   `json:"-"`
}

// Validate validates the command
func (cmd ClearBoardCommand) Validate() error {
	if cmd.BoardID == "" {
		return errors.New("board ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// ResetBoardCommand clears a board and reopens it if it was closed
type ResetBoardCommand struct {
	BoardID  string `json:"board_id" validate:"required"`
	UserHash string `json:"user_hash" validate:"required"`
	Admin    bool   `json:"-"`
}

// Validate validates the command
func (cmd ResetBoardCommand) Validate() error {
	if cmd.BoardID == "" {
		return errors.New("board ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}
