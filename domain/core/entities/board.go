package entities

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
)

// BoardState describes whether a board accepts mutations
type BoardState string

const (
	BoardStateActive BoardState = "active"
	BoardStateClosed BoardState = "closed"
)

// Board is the container read model for cards. Card mutations consult it
// for column membership, per-user limits, admin capability and state; the
// engine never creates boards, it only reads and reopens them.
type Board struct {
	id                   valueobjects.BoardID
	name                 string
	state                BoardState
	columns              []string
	admins               []string
	cardLimitPerUser     *int
	reactionLimitPerUser *int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewBoard creates a board in the active state
func NewBoard(id valueobjects.BoardID, name string, columns []string, admins []string) (*Board, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("boardID cannot be empty")
	}
	if len(columns) == 0 {
		return nil, pkgerrors.NewValidationError("board must have at least one column")
	}

	now := time.Now()
	return &Board{
		id:        id,
		name:      name,
		state:     BoardStateActive,
		columns:   append([]string{}, columns...),
		admins:    append([]string{}, admins...),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBoard reconstructs a board from repository data
func ReconstructBoard(
	id valueobjects.BoardID,
	name string,
	state BoardState,
	columns []string,
	admins []string,
	cardLimitPerUser, reactionLimitPerUser *int,
	createdAt, updatedAt time.Time,
) (*Board, error) {
	if state != BoardStateActive && state != BoardStateClosed {
		return nil, pkgerrors.NewValidationError("board state must be active or closed")
	}
	if cardLimitPerUser != nil && *cardLimitPerUser < 0 {
		return nil, pkgerrors.NewValidationError("card limit cannot be negative")
	}
	if reactionLimitPerUser != nil && *reactionLimitPerUser < 0 {
		return nil, pkgerrors.NewValidationError("reaction limit cannot be negative")
	}

	return &Board{
		id:                   id,
		name:                 name,
		state:                state,
		columns:              append([]string{}, columns...),
		admins:               append([]string{}, admins...),
		cardLimitPerUser:     cardLimitPerUser,
		reactionLimitPerUser: reactionLimitPerUser,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}

// ID returns the board's identifier
func (b *Board) ID() valueobjects.BoardID {
	return b.id
}

// Name returns the board's display name
func (b *Board) Name() string {
	return b.name
}

// State returns the board's lifecycle state
func (b *Board) State() BoardState {
	return b.state
}

// IsClosed reports whether the board rejects mutations
func (b *Board) IsClosed() bool {
	return b.state == BoardStateClosed
}

// Columns returns the board's column identifiers
func (b *Board) Columns() []string {
	cols := make([]string, len(b.columns))
	copy(cols, b.columns)
	return cols
}

// HasColumn reports whether the given column exists on the board
func (b *Board) HasColumn(columnID string) bool {
	for _, col := range b.columns {
		if col == columnID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the given hashed identity administers the board
func (b *Board) IsAdmin(userHash string) bool {
	for _, admin := range b.admins {
		if admin == userHash {
			return true
		}
	}
	return false
}

// CardLimitPerUser returns the per-user card creation limit, if one is set.
// An absent limit means unlimited.
func (b *Board) CardLimitPerUser() (int, bool) {
	if b.cardLimitPerUser == nil {
		return 0, false
	}
	return *b.cardLimitPerUser, true
}

// ReactionLimitPerUser returns the per-user reaction limit, if one is set
func (b *Board) ReactionLimitPerUser() (int, bool) {
	if b.reactionLimitPerUser == nil {
		return 0, false
	}
	return *b.reactionLimitPerUser, true
}

// Close moves the board to the closed state. Closing a closed board is a
// no-op.
func (b *Board) Close() {
	if b.state == BoardStateClosed {
		return
	}
	b.state = BoardStateClosed
	b.updatedAt = time.Now()
}

// Reopen moves a closed board back to the active state. Reopening an
// active board is a no-op and reports false.
func (b *Board) Reopen() bool {
	if b.state == BoardStateActive {
		return false
	}
	b.state = BoardStateActive
	b.updatedAt = time.Now()
	return true
}

// CreatedAt returns when the board was created
func (b *Board) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns when the board was last updated
func (b *Board) UpdatedAt() time.Time {
	return b.updatedAt
}
