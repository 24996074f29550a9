package handlers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

// singleUseUnitOfWork mirrors the storage implementation's contract: an
// instance carries one transaction, and Begin fails while one is open. The
// optional gate lets a test hold every caller inside Begin until all of
// them have arrived.
type singleUseUnitOfWork struct {
	mu        sync.Mutex
	active    bool
	cards     ports.CardRepository
	reactions ports.ReactionRepository
	sessions  ports.SessionRepository
	gate      *sync.WaitGroup
}

func (u *singleUseUnitOfWork) Begin(ctx context.Context) error {
	if u.gate != nil {
		u.gate.Done()
		u.gate.Wait()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return fmt.Errorf("transaction already active")
	}
	u.active = true
	return nil
}

func (u *singleUseUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return fmt.Errorf("no active transaction")
	}
	u.active = false
	return nil
}

func (u *singleUseUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.active = false
	return nil
}

func (u *singleUseUnitOfWork) CardRepository() ports.CardRepository { return u.cards }

func (u *singleUseUnitOfWork) ReactionRepository() ports.ReactionRepository { return u.reactions }

func (u *singleUseUnitOfWork) SessionRepository() ports.SessionRepository { return u.sessions }

type upsertTestDeps struct {
	cardRepo     *mocks.MockCardRepository
	boardRepo    *mocks.MockBoardRepository
	reactionRepo *mocks.MockReactionRepository
	publisher    *mocks.MockBoardEventPublisher
	opened       *int32
}

func newUpsertOrchestrator(gate *sync.WaitGroup) (*UpsertReactionOrchestrator, upsertTestDeps) {
	deps := upsertTestDeps{
		cardRepo:     new(mocks.MockCardRepository),
		boardRepo:    new(mocks.MockBoardRepository),
		reactionRepo: new(mocks.MockReactionRepository),
		publisher:    new(mocks.MockBoardEventPublisher),
		opened:       new(int32),
	}
	logger := zap.NewNop()
	quota := services.NewQuotaEnforcer(deps.cardRepo, deps.reactionRepo, logger)
	factory := func() ports.UnitOfWork {
		atomic.AddInt32(deps.opened, 1)
		return &singleUseUnitOfWork{
			cards:     deps.cardRepo,
			reactions: deps.reactionRepo,
			gate:      gate,
		}
	}
	orchestrator := NewUpsertReactionOrchestrator(
		factory, deps.cardRepo, deps.boardRepo, quota, deps.publisher, logger,
	)
	return orchestrator, deps
}

func TestUpsertReactionOrchestrator_NewReaction(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	orchestrator, deps := newUpsertOrchestrator(nil)

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.reactionRepo.On("HasUserReacted", ctx, card.ID(), "user-1").Return(false, nil)
	deps.reactionRepo.On("CountUserReactionsOnBoard", ctx, board.ID(), "user-1").Return(0, nil)
	deps.reactionRepo.On("Upsert", ctx, mock.AnythingOfType("*entities.Reaction")).Return(true, nil)
	deps.cardRepo.On("IncrementReactionCounts", ctx, card.ID(), 1).Return(1, 1, nil)
	deps.publisher.On("ReactionAdded", ctx, mock.AnythingOfType("events.ReactionAdded")).Return()

	cmd := commands.UpsertReactionCommand{
		CardID:    card.ID().String(),
		UserHash:  "user-1",
		UserAlias: "Alice",
	}

	// Act
	err := orchestrator.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(deps.opened))
	deps.reactionRepo.AssertExpectations(t)
	deps.cardRepo.AssertExpectations(t)
	deps.publisher.AssertExpectations(t)
}

func TestUpsertReactionOrchestrator_PropagatesToParent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	parentID := valueobjects.NewCardID()
	card := fixtures.NewCardBuilder().
		WithBoardID(board.ID().String()).
		WithParent(parentID).
		MustBuild()
	orchestrator, deps := newUpsertOrchestrator(nil)

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.reactionRepo.On("HasUserReacted", ctx, card.ID(), "user-1").Return(false, nil)
	deps.reactionRepo.On("CountUserReactionsOnBoard", ctx, board.ID(), "user-1").Return(0, nil)
	deps.reactionRepo.On("Upsert", ctx, mock.AnythingOfType("*entities.Reaction")).Return(true, nil)
	deps.cardRepo.On("IncrementReactionCounts", ctx, card.ID(), 1).Return(1, 1, nil)
	deps.cardRepo.On("IncrementAggregatedCount", ctx, parentID, 1).Return(4, nil)
	deps.publisher.On("ReactionAdded", ctx, mock.AnythingOfType("events.ReactionAdded")).Return()

	cmd := commands.UpsertReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := orchestrator.Handle(ctx, cmd)

	// Assert: the parent's aggregated count moves inside the same transaction
	require.NoError(t, err)
	deps.cardRepo.AssertExpectations(t)
}

func TestUpsertReactionOrchestrator_RepeatIsIdempotent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	orchestrator, deps := newUpsertOrchestrator(nil)

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	// An existing reaction bypasses the quota count entirely
	deps.reactionRepo.On("HasUserReacted", ctx, card.ID(), "user-1").Return(true, nil)
	deps.reactionRepo.On("Upsert", ctx, mock.AnythingOfType("*entities.Reaction")).Return(false, nil)

	cmd := commands.UpsertReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := orchestrator.Handle(ctx, cmd)

	// Assert: no counter movement, no fan-out
	require.NoError(t, err)
	deps.cardRepo.AssertNotCalled(t, "IncrementReactionCounts")
	deps.publisher.AssertNotCalled(t, "ReactionAdded")
}

func TestUpsertReactionOrchestrator_QuotaExhausted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().WithReactionLimit(2).MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	orchestrator, deps := newUpsertOrchestrator(nil)

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.reactionRepo.On("HasUserReacted", ctx, card.ID(), "user-1").Return(false, nil)
	deps.reactionRepo.On("CountUserReactionsOnBoard", ctx, board.ID(), "user-1").Return(2, nil)

	cmd := commands.UpsertReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := orchestrator.Handle(ctx, cmd)

	// Assert: rejected before any transaction opens
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrReactionLimitReached.Code))
	assert.EqualValues(t, 0, atomic.LoadInt32(deps.opened))
	deps.reactionRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertReactionOrchestrator_ClosedBoard(t *testing.T) {
	// Arrange
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().Closed().MustBuild()
	card := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	orchestrator, deps := newUpsertOrchestrator(nil)

	deps.cardRepo.On("GetByID", ctx, card.ID()).Return(card, nil)
	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)

	cmd := commands.UpsertReactionCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	}

	// Act
	err := orchestrator.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrBoardClosed.Code))
	deps.reactionRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsertReactionOrchestrator_ConcurrentUpsertsGetIsolatedTransactions(t *testing.T) {
	// Arrange: two users reacting at the same moment. The gate holds both
	// calls inside Begin until each has arrived, so a shared unit of work
	// would see the second Begin fail with an already-active transaction.
	ctx := context.Background()
	board := fixtures.NewBoardBuilder().MustBuild()
	cardA := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()
	cardB := fixtures.NewCardBuilder().WithBoardID(board.ID().String()).MustBuild()

	gate := new(sync.WaitGroup)
	gate.Add(2)
	orchestrator, deps := newUpsertOrchestrator(gate)

	deps.boardRepo.On("GetByID", ctx, board.ID()).Return(board, nil)
	deps.publisher.On("ReactionAdded", ctx, mock.AnythingOfType("events.ReactionAdded")).Return()
	for _, card := range []struct {
		id   valueobjects.CardID
		user string
	}{{cardA.ID(), "user-1"}, {cardB.ID(), "user-2"}} {
		deps.reactionRepo.On("HasUserReacted", ctx, card.id, card.user).Return(false, nil)
		deps.reactionRepo.On("CountUserReactionsOnBoard", ctx, board.ID(), card.user).Return(0, nil)
		deps.cardRepo.On("IncrementReactionCounts", ctx, card.id, 1).Return(1, 1, nil)
	}
	deps.cardRepo.On("GetByID", ctx, cardA.ID()).Return(cardA, nil)
	deps.cardRepo.On("GetByID", ctx, cardB.ID()).Return(cardB, nil)
	deps.reactionRepo.On("Upsert", ctx, mock.AnythingOfType("*entities.Reaction")).Return(true, nil)

	cmds := []commands.UpsertReactionCommand{
		{CardID: cardA.ID().String(), UserHash: "user-1"},
		{CardID: cardB.ID().String(), UserHash: "user-2"},
	}

	// Act
	errs := make(chan error, len(cmds))
	var wg sync.WaitGroup
	for _, cmd := range cmds {
		wg.Add(1)
		go func(cmd commands.UpsertReactionCommand) {
			defer wg.Done()
			errs <- orchestrator.Handle(ctx, cmd)
		}(cmd)
	}
	wg.Wait()
	close(errs)

	// Assert: both commits land and each call opened its own transaction
	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(deps.opened))
}
