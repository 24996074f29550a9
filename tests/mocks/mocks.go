// Package mocks provides testify mock implementations of the application
// ports for unit testing handlers and services.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
)

// MockCardRepository mocks ports.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Save(ctx context.Context, card *entities.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) GetByID(ctx context.Context, id valueobjects.CardID) (*entities.Card, error) {
	args := m.Called(ctx, id)
	if card, ok := args.Get(0).(*entities.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCardRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Card, error) {
	args := m.Called(ctx, boardID)
	if cards, ok := args.Get(0).([]*entities.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCardRepository) Delete(ctx context.Context, id valueobjects.CardID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) CountUserCards(ctx context.Context, boardID valueobjects.BoardID, userHash string, cardType entities.CardType) (int, error) {
	args := m.Called(ctx, boardID, userHash, cardType)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) IncrementReactionCounts(ctx context.Context, id valueobjects.CardID, delta int) (int, int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockCardRepository) IncrementAggregatedCount(ctx context.Context, id valueobjects.CardID, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) OrphanChildren(ctx context.Context, parentID valueobjects.CardID) ([]valueobjects.CardID, error) {
	args := m.Called(ctx, parentID)
	if ids, ok := args.Get(0).([]valueobjects.CardID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCardRepository) ScrubLinkedFeedback(ctx context.Context, boardID valueobjects.BoardID, feedbackID valueobjects.CardID) error {
	args := m.Called(ctx, boardID, feedbackID)
	return args.Error(0)
}

// MockReactionRepository mocks ports.ReactionRepository
type MockReactionRepository struct {
	mock.Mock
}

func (m *MockReactionRepository) Upsert(ctx context.Context, reaction *entities.Reaction) (bool, error) {
	args := m.Called(ctx, reaction)
	return args.Bool(0), args.Error(1)
}

func (m *MockReactionRepository) GetByCardAndUser(ctx context.Context, cardID valueobjects.CardID, userHash string) (*entities.Reaction, error) {
	args := m.Called(ctx, cardID, userHash)
	if reaction, ok := args.Get(0).(*entities.Reaction); ok {
		return reaction, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReactionRepository) GetByCard(ctx context.Context, cardID valueobjects.CardID) ([]*entities.Reaction, error) {
	args := m.Called(ctx, cardID)
	if reactions, ok := args.Get(0).([]*entities.Reaction); ok {
		return reactions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReactionRepository) Delete(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	args := m.Called(ctx, cardID, userHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockReactionRepository) DeleteByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	args := m.Called(ctx, cardID)
	return args.Int(0), args.Error(1)
}

func (m *MockReactionRepository) DeleteByCards(ctx context.Context, cardIDs []valueobjects.CardID) (int, error) {
	args := m.Called(ctx, cardIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockReactionRepository) CountUserReactionsOnBoard(ctx context.Context, boardID valueobjects.BoardID, userHash string) (int, error) {
	args := m.Called(ctx, boardID, userHash)
	return args.Int(0), args.Error(1)
}

func (m *MockReactionRepository) CountByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	args := m.Called(ctx, cardID)
	return args.Int(0), args.Error(1)
}

func (m *MockReactionRepository) HasUserReacted(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	args := m.Called(ctx, cardID, userHash)
	return args.Bool(0), args.Error(1)
}

// MockBoardRepository mocks ports.BoardRepository
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id valueobjects.BoardID) (*entities.Board, error) {
	args := m.Called(ctx, id)
	if board, ok := args.Get(0).(*entities.Board); ok {
		return board, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBoardRepository) Reopen(ctx context.Context, id valueobjects.BoardID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository mocks ports.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Session, error) {
	args := m.Called(ctx, boardID)
	if sessions, ok := args.Get(0).([]*entities.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, boardID valueobjects.BoardID, userHash string) error {
	args := m.Called(ctx, boardID, userHash)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

// MockDistributedLock mocks ports.DistributedLock
type MockDistributedLock struct {
	mock.Mock
}

func (m *MockDistributedLock) Acquire(ctx context.Context, key string, ttlSeconds int) error {
	args := m.Called(ctx, key, ttlSeconds)
	return args.Error(0)
}

func (m *MockDistributedLock) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockBoardEventPublisher mocks ports.BoardEventPublisher
type MockBoardEventPublisher struct {
	mock.Mock
}

func (m *MockBoardEventPublisher) CardCreated(ctx context.Context, event events.CardCreated) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) CardContentUpdated(ctx context.Context, event events.CardContentUpdated) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) CardMoved(ctx context.Context, event events.CardMoved) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) CardDeleted(ctx context.Context, event events.CardDeleted) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) CardsLinked(ctx context.Context, event events.CardsLinked) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) CardsUnlinked(ctx context.Context, event events.CardsUnlinked) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) ReactionAdded(ctx context.Context, event events.ReactionAdded) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) ReactionRemoved(ctx context.Context, event events.ReactionRemoved) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) BoardCleared(ctx context.Context, event events.BoardCleared) {
	m.Called(ctx, event)
}

func (m *MockBoardEventPublisher) BoardReset(ctx context.Context, event events.BoardReset) {
	m.Called(ctx, event)
}

// MockEventStore mocks ports.EventStore
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) SaveEvents(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

func (m *MockEventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	args := m.Called(ctx, aggregateID)
	if evts, ok := args.Get(0).([]events.DomainEvent); ok {
		return evts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	args := m.Called(ctx, eventType, limit)
	if evts, ok := args.Get(0).([]events.DomainEvent); ok {
		return evts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEventStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	args := m.Called(ctx, aggregateID)
	return args.Error(0)
}

func (m *MockEventStore) DeleteEventsBatch(ctx context.Context, aggregateIDs []string) error {
	args := m.Called(ctx, aggregateIDs)
	return args.Error(0)
}

// MockUnitOfWork mocks ports.UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) CardRepository() ports.CardRepository {
	args := m.Called()
	if repo, ok := args.Get(0).(ports.CardRepository); ok {
		return repo
	}
	return nil
}

func (m *MockUnitOfWork) ReactionRepository() ports.ReactionRepository {
	args := m.Called()
	if repo, ok := args.Get(0).(ports.ReactionRepository); ok {
		return repo
	}
	return nil
}

func (m *MockUnitOfWork) SessionRepository() ports.SessionRepository {
	args := m.Called()
	if repo, ok := args.Get(0).(ports.SessionRepository); ok {
		return repo
	}
	return nil
}
