package commands

import (
	"errors"
)

// SetParentCardCommand groups a feedback card under a parent feedback card
type SetParentCardCommand struct {
	ChildID  string `json:"child_id" validate:"required,uuid"`
	ParentID string `json:"parent_id" validate:"required,uuid"`
	UserHash string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd SetParentCardCommand) Validate() error {
	if cmd.ChildID == "" {
		return errors.New("child card ID is required")
	}
	if cmd.ParentID == "" {
		return errors.New("parent card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// ClearParentCardCommand removes a card's parent grouping. Clearing needs
// no structural validation.
type ClearParentCardCommand struct {
	ChildID  string `json:"child_id" validate:"required,uuid"`
	UserHash string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd ClearParentCardCommand) Validate() error {
	if cmd.ChildID == "" {
		return errors.New("child card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// AddLinkedFeedbackCommand attaches a feedback card to an action card
type AddLinkedFeedbackCommand struct {
	ActionID   string `json:"action_id" validate:"required,uuid"`
	FeedbackID string `json:"feedback_id" validate:"required,uuid"`
	UserHash   string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd AddLinkedFeedbackCommand) Validate() error {
	if cmd.ActionID == "" {
		return errors.New("action card ID is required")
	}
	if cmd.FeedbackID == "" {
		return errors.New("feedback card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// RemoveLinkedFeedbackCommand detaches a feedback card from an action card
type RemoveLinkedFeedbackCommand struct {
	ActionID   string `json:"action_id" validate:"required,uuid"`
	FeedbackID string `json:"feedback_id" validate:"required,uuid"`
	UserHash   string `json:"user_hash" validate:"required"`
}

// Validate validates the command
func (cmd RemoveLinkedFeedbackCommand) Validate() error {
	if cmd.ActionID == "" {
		return errors.New("action card ID is required")
	}
	if cmd.FeedbackID == "" {
		return errors.New("feedback card ID is required")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}
