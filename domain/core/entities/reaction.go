package entities

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
)

// ReactionType is the kind of reaction placed on a card
type ReactionType string

const (
	// ReactionTypeThumbsUp is the default reaction kind
	ReactionTypeThumbsUp ReactionType = "thumbs_up"
)

// IsValid reports whether the reaction type is known
func (t ReactionType) IsValid() bool {
	return t == ReactionTypeThumbsUp
}

// Reaction records that a user reacted to a card. A user holds at most one
// reaction per card; repeated adds update the existing record in place.
type Reaction struct {
	cardID       valueobjects.CardID
	boardID      valueobjects.BoardID
	userHash     string
	userAlias    string
	reactionType ReactionType
	createdAt    time.Time
	updatedAt    time.Time
}

// NewReaction creates a reaction for the given user on the given card
func NewReaction(cardID valueobjects.CardID, boardID valueobjects.BoardID, userHash, userAlias string, reactionType ReactionType) (*Reaction, error) {
	if cardID.IsZero() {
		return nil, pkgerrors.NewValidationError("cardID cannot be empty")
	}
	if boardID.IsZero() {
		return nil, pkgerrors.NewValidationError("boardID cannot be empty")
	}
	if userHash == "" {
		return nil, pkgerrors.NewValidationError("user identity cannot be empty")
	}
	if reactionType == "" {
		reactionType = ReactionTypeThumbsUp
	}
	if !reactionType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown reaction type")
	}

	now := time.Now()
	return &Reaction{
		cardID:       cardID,
		boardID:      boardID,
		userHash:     userHash,
		userAlias:    userAlias,
		reactionType: reactionType,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructReaction reconstructs a reaction from repository data
func ReconstructReaction(cardID valueobjects.CardID, boardID valueobjects.BoardID, userHash, userAlias string, reactionType ReactionType, createdAt, updatedAt time.Time) *Reaction {
	return &Reaction{
		cardID:       cardID,
		boardID:      boardID,
		userHash:     userHash,
		userAlias:    userAlias,
		reactionType: reactionType,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// CardID returns the card the reaction is on
func (r *Reaction) CardID() valueobjects.CardID {
	return r.cardID
}

// BoardID returns the board the card belongs to
func (r *Reaction) BoardID() valueobjects.BoardID {
	return r.boardID
}

// UserHash returns the opaque hashed identity of the reacting user
func (r *Reaction) UserHash() string {
	return r.userHash
}

// UserAlias returns the reacting user's display alias
func (r *Reaction) UserAlias() string {
	return r.userAlias
}

// Type returns the reaction kind
func (r *Reaction) Type() ReactionType {
	return r.reactionType
}

// Refresh updates the alias and touch time when a user re-adds an existing
// reaction
func (r *Reaction) Refresh(userAlias string) {
	r.userAlias = userAlias
	r.updatedAt = time.Now()
}

// CreatedAt returns when the reaction was first placed
func (r *Reaction) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the reaction was last touched
func (r *Reaction) UpdatedAt() time.Time {
	return r.updatedAt
}
