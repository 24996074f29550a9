package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

// fakeReactionStore is an in-memory reaction ledger that scopes counts by
// board the same way the table does: through each card's board reference.
type fakeReactionStore struct {
	mu         sync.Mutex
	cardBoards map[string]string
	reactions  map[string]map[string]*entities.Reaction
}

var _ ports.ReactionRepository = (*fakeReactionStore)(nil)

func newFakeReactionStore() *fakeReactionStore {
	return &fakeReactionStore{
		cardBoards: make(map[string]string),
		reactions:  make(map[string]map[string]*entities.Reaction),
	}
}

func (s *fakeReactionStore) addCard(cardID valueobjects.CardID, boardID valueobjects.BoardID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cardBoards[cardID.String()] = boardID.String()
}

func (s *fakeReactionStore) Upsert(ctx context.Context, reaction *entities.Reaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cardKey := reaction.CardID().String()
	byUser, ok := s.reactions[cardKey]
	if !ok {
		byUser = make(map[string]*entities.Reaction)
		s.reactions[cardKey] = byUser
	}
	if existing, ok := byUser[reaction.UserHash()]; ok {
		existing.Refresh(reaction.UserAlias())
		return false, nil
	}
	byUser[reaction.UserHash()] = reaction
	return true, nil
}

func (s *fakeReactionStore) GetByCardAndUser(ctx context.Context, cardID valueobjects.CardID, userHash string) (*entities.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reactions[cardID.String()][userHash]; ok {
		return r, nil
	}
	return nil, pkgerrors.ErrReactionNotFound
}

func (s *fakeReactionStore) GetByCard(ctx context.Context, cardID valueobjects.CardID) ([]*entities.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Reaction
	for _, r := range s.reactions[cardID.String()] {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeReactionStore) Delete(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := s.reactions[cardID.String()]
	if _, ok := byUser[userHash]; !ok {
		return false, nil
	}
	delete(byUser, userHash)
	return true, nil
}

func (s *fakeReactionStore) DeleteByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.reactions[cardID.String()])
	delete(s.reactions, cardID.String())
	return n, nil
}

func (s *fakeReactionStore) DeleteByCards(ctx context.Context, cardIDs []valueobjects.CardID) (int, error) {
	total := 0
	for _, id := range cardIDs {
		n, _ := s.DeleteByCard(ctx, id)
		total += n
	}
	return total, nil
}

func (s *fakeReactionStore) CountUserReactionsOnBoard(ctx context.Context, boardID valueobjects.BoardID, userHash string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for cardKey, byUser := range s.reactions {
		if s.cardBoards[cardKey] != boardID.String() {
			continue
		}
		if _, ok := byUser[userHash]; ok {
			count++
		}
	}
	return count, nil
}

func (s *fakeReactionStore) CountByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reactions[cardID.String()]), nil
}

func (s *fakeReactionStore) HasUserReacted(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reactions[cardID.String()][userHash]
	return ok, nil
}

// TestReactionQuotaFlow_ReleaseAndReuse walks the full quota lifecycle on a
// board with a single reaction slot: consume it, get rejected, free it,
// consume it again. A pre-existing reaction by the same user on another
// board's card sits in the ledger throughout and must never count here.
func TestReactionQuotaFlow_ReleaseAndReuse(t *testing.T) {
	// Arrange
	ctx := context.Background()
	boardA := fixtures.NewBoardBuilder().WithReactionLimit(1).MustBuild()
	boardB := fixtures.NewBoardBuilder().MustBuild()
	cardX := fixtures.NewCardBuilder().WithBoardID(boardA.ID().String()).MustBuild()
	cardY := fixtures.NewCardBuilder().WithBoardID(boardA.ID().String()).MustBuild()
	cardZ := fixtures.NewCardBuilder().WithBoardID(boardB.ID().String()).MustBuild()

	store := newFakeReactionStore()
	store.addCard(cardX.ID(), boardA.ID())
	store.addCard(cardY.ID(), boardA.ID())
	store.addCard(cardZ.ID(), boardB.ID())

	otherBoardReaction := fixtures.NewReactionBuilder().
		WithCardID(cardZ.ID()).
		WithBoardID(boardB.ID().String()).
		WithUser("user-1", "Alice").
		MustBuild()
	inserted, err := store.Upsert(ctx, otherBoardReaction)
	require.NoError(t, err)
	require.True(t, inserted)

	cardRepo := new(mocks.MockCardRepository)
	boardRepo := new(mocks.MockBoardRepository)
	publisher := new(mocks.MockBoardEventPublisher)
	logger := zap.NewNop()

	cardRepo.On("GetByID", ctx, cardX.ID()).Return(cardX, nil)
	cardRepo.On("GetByID", ctx, cardY.ID()).Return(cardY, nil)
	cardRepo.On("IncrementReactionCounts", ctx, mock.AnythingOfType("valueobjects.CardID"), 1).Return(1, 1, nil)
	cardRepo.On("IncrementReactionCounts", ctx, mock.AnythingOfType("valueobjects.CardID"), -1).Return(0, 0, nil)
	boardRepo.On("GetByID", ctx, boardA.ID()).Return(boardA, nil)
	publisher.On("ReactionAdded", ctx, mock.AnythingOfType("events.ReactionAdded")).Return()
	publisher.On("ReactionRemoved", ctx, mock.AnythingOfType("events.ReactionRemoved")).Return()

	quota := services.NewQuotaEnforcer(cardRepo, store, logger)
	aggregator := services.NewCounterAggregator(cardRepo, logger)
	factory := func() ports.UnitOfWork {
		return &singleUseUnitOfWork{cards: cardRepo, reactions: store}
	}
	upsert := NewUpsertReactionOrchestrator(factory, cardRepo, boardRepo, quota, publisher, logger)
	remover := NewReactionHandler(cardRepo, boardRepo, store, aggregator, publisher, logger)

	// The reaction on the other board's card is invisible to this board
	count, err := store.CountUserReactionsOnBoard(ctx, boardA.ID(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Act / Assert: react to X consumes the single slot
	err = upsert.Handle(ctx, commands.UpsertReactionCommand{
		CardID: cardX.ID().String(), UserHash: "user-1", UserAlias: "Alice",
	})
	require.NoError(t, err)

	// React to Y: the slot is taken
	err = upsert.Handle(ctx, commands.UpsertReactionCommand{
		CardID: cardY.ID().String(), UserHash: "user-1",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrReactionLimitReached.Code))

	// Remove from X: the slot frees up
	err = remover.HandleRemove(ctx, commands.RemoveReactionCommand{
		CardID: cardX.ID().String(), UserHash: "user-1",
	})
	require.NoError(t, err)

	// React to Y again: succeeds now
	err = upsert.Handle(ctx, commands.UpsertReactionCommand{
		CardID: cardY.ID().String(), UserHash: "user-1",
	})
	require.NoError(t, err)

	reacted, err := store.HasUserReacted(ctx, cardY.ID(), "user-1")
	require.NoError(t, err)
	assert.True(t, reacted)

	// The other board's ledger never moved
	stillThere, err := store.HasUserReacted(ctx, cardZ.ID(), "user-1")
	require.NoError(t, err)
	assert.True(t, stillThere)
}
