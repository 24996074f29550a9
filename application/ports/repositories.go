package ports

import (
	"context"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
)

// CardRepository defines the interface for card persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type CardRepository interface {
	// Save persists a card (create or update)
	Save(ctx context.Context, card *entities.Card) error

	// GetByID retrieves a card by its ID
	GetByID(ctx context.Context, id valueobjects.CardID) (*entities.Card, error)

	// GetByBoard retrieves all cards on a board
	GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Card, error)

	// Delete removes a card
	Delete(ctx context.Context, id valueobjects.CardID) error

	// DeleteByBoard removes all cards on a board, returning how many were deleted
	DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error)

	// CountUserCards counts cards of the given type created by a user on a board
	CountUserCards(ctx context.Context, boardID valueobjects.BoardID, userHash string, cardType entities.CardType) (int, error)

	// IncrementReactionCounts atomically adjusts both reaction counters by
	// delta, floored at zero, and returns the resulting counts. The
	// adjustment happens in the store, not as a read-modify-write here.
	IncrementReactionCounts(ctx context.Context, id valueobjects.CardID, delta int) (direct, aggregated int, err error)

	// IncrementAggregatedCount atomically adjusts only the aggregated
	// counter by delta, floored at zero, and returns the resulting count
	IncrementAggregatedCount(ctx context.Context, id valueobjects.CardID, delta int) (aggregated int, err error)

	// OrphanChildren clears the parent reference on every child of the
	// given card and returns the orphaned card IDs
	OrphanChildren(ctx context.Context, parentID valueobjects.CardID) ([]valueobjects.CardID, error)

	// ScrubLinkedFeedback removes the given feedback card from every action
	// card's linked set on the board
	ScrubLinkedFeedback(ctx context.Context, boardID valueobjects.BoardID, feedbackID valueobjects.CardID) error
}

// ReactionRepository defines the interface for reaction persistence
type ReactionRepository interface {
	// Upsert inserts the reaction if none exists for (card, user), or
	// updates the existing record in place. The returned flag reports
	// whether a new record was inserted; callers use it to decide whether
	// counters move.
	Upsert(ctx context.Context, reaction *entities.Reaction) (inserted bool, err error)

	// GetByCardAndUser retrieves a user's reaction on a card, if any
	GetByCardAndUser(ctx context.Context, cardID valueobjects.CardID, userHash string) (*entities.Reaction, error)

	// GetByCard retrieves all reactions on a card
	GetByCard(ctx context.Context, cardID valueobjects.CardID) ([]*entities.Reaction, error)

	// Delete removes a user's reaction on a card; reports whether one existed
	Delete(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error)

	// DeleteByCard removes all reactions on a card, returning how many were deleted
	DeleteByCard(ctx context.Context, cardID valueobjects.CardID) (int, error)

	// DeleteByCards removes all reactions on the given cards in bulk
	DeleteByCards(ctx context.Context, cardIDs []valueobjects.CardID) (int, error)

	// CountUserReactionsOnBoard counts a user's reactions across the
	// board's cards. Reactions on other boards' cards never count.
	CountUserReactionsOnBoard(ctx context.Context, boardID valueobjects.BoardID, userHash string) (int, error)

	// CountByCard counts the reactions on a card
	CountByCard(ctx context.Context, cardID valueobjects.CardID) (int, error)

	// HasUserReacted reports whether the user holds a reaction on the card
	HasUserReacted(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error)
}

// BoardRepository defines read access to boards plus the single mutation
// this engine performs on them
type BoardRepository interface {
	// GetByID retrieves a board by its ID
	GetByID(ctx context.Context, id valueobjects.BoardID) (*entities.Board, error)

	// Reopen moves a closed board back to the active state
	Reopen(ctx context.Context, id valueobjects.BoardID) error
}

// SessionRepository defines the interface for board session persistence
type SessionRepository interface {
	// Save persists a session (create or update)
	Save(ctx context.Context, session *entities.Session) error

	// GetByBoard retrieves all sessions on a board
	GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Session, error)

	// Delete removes a user's session on a board
	Delete(ctx context.Context, boardID valueobjects.BoardID, userHash string) error

	// DeleteByBoard removes all sessions on a board, returning how many were deleted
	DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error)
}

// EventStore defines the interface for event persistence
type EventStore interface {
	// SaveEvents persists domain events
	SaveEvents(ctx context.Context, events []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error)

	// GetEventsByType retrieves events of a specific type
	GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error)

	// DeleteEvents removes all events for an aggregate
	DeleteEvents(ctx context.Context, aggregateID string) error

	// DeleteEventsBatch removes all events for multiple aggregates
	DeleteEventsBatch(ctx context.Context, aggregateIDs []string) error
}

// UnitOfWork defines a transaction boundary for multi-entity operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction
	Rollback() error

	// CardRepository returns the card repository for this transaction
	CardRepository() CardRepository

	// ReactionRepository returns the reaction repository for this transaction
	ReactionRepository() ReactionRepository

	// SessionRepository returns the session repository for this transaction
	SessionRepository() SessionRepository
}

// UnitOfWorkFactory hands out a fresh unit of work per operation. A unit
// of work carries in-flight transaction state, so concurrent handlers must
// never share one instance.
type UnitOfWorkFactory func() UnitOfWork

// DistributedLock guards multi-step operations that must not interleave,
// such as board teardown
type DistributedLock interface {
	// Acquire takes the named lock; fails if another holder has it
	Acquire(ctx context.Context, key string, ttlSeconds int) error

	// Release releases the named lock
	Release(ctx context.Context, key string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
