package entities

import (
	"time"

	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
)

// Session tracks a user's presence on a board, including the websocket
// connection used for real-time fan-out. Sessions are swept when a board
// is cleared.
type Session struct {
	boardID      valueobjects.BoardID
	userHash     string
	userAlias    string
	connectionID string
	connectedAt  time.Time
	lastSeenAt   time.Time
}

// NewSession creates a session for a user joining a board
func NewSession(boardID valueobjects.BoardID, userHash, userAlias, connectionID string) (*Session, error) {
	if boardID.IsZero() {
		return nil, pkgerrors.NewValidationError("boardID cannot be empty")
	}
	if userHash == "" {
		return nil, pkgerrors.NewValidationError("user identity cannot be empty")
	}

	now := time.Now()
	return &Session{
		boardID:      boardID,
		userHash:     userHash,
		userAlias:    userAlias,
		connectionID: connectionID,
		connectedAt:  now,
		lastSeenAt:   now,
	}, nil
}

// ReconstructSession reconstructs a session from repository data
func ReconstructSession(boardID valueobjects.BoardID, userHash, userAlias, connectionID string, connectedAt, lastSeenAt time.Time) *Session {
	return &Session{
		boardID:      boardID,
		userHash:     userHash,
		userAlias:    userAlias,
		connectionID: connectionID,
		connectedAt:  connectedAt,
		lastSeenAt:   lastSeenAt,
	}
}

// BoardID returns the board the session belongs to
func (s *Session) BoardID() valueobjects.BoardID {
	return s.boardID
}

// UserHash returns the opaque hashed identity of the user
func (s *Session) UserHash() string {
	return s.userHash
}

// UserAlias returns the user's display alias
func (s *Session) UserAlias() string {
	return s.userAlias
}

// ConnectionID returns the websocket connection identifier, if connected
func (s *Session) ConnectionID() string {
	return s.connectionID
}

// Touch updates the last-seen time
func (s *Session) Touch() {
	s.lastSeenAt = time.Now()
}

// ConnectedAt returns when the session was established
func (s *Session) ConnectedAt() time.Time {
	return s.connectedAt
}

// LastSeenAt returns the last activity time
func (s *Session) LastSeenAt() time.Time {
	return s.lastSeenAt
}

// IsStale reports whether the session has been inactive longer than the
// given timeout
func (s *Session) IsStale(timeout time.Duration) bool {
	return time.Since(s.lastSeenAt) > timeout
}
