package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/commands/bus"
	cmdhandlers "retroboard-backend/application/commands/handlers"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/validators"
	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"
	"retroboard-backend/tests/fixtures"
	"retroboard-backend/tests/mocks"
)

// lifecycleEnv wires the command bus the way the container does, with the
// persistence layer mocked out, so commands run through validation, the
// middleware pipeline and the real handlers.
type lifecycleEnv struct {
	bus          *bus.CommandBus
	cardRepo     *mocks.MockCardRepository
	boardRepo    *mocks.MockBoardRepository
	reactionRepo *mocks.MockReactionRepository
	sessionRepo  *mocks.MockSessionRepository
	eventStore   *mocks.MockEventStore
	publisher    *mocks.MockBoardEventPublisher
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()

	env := &lifecycleEnv{
		cardRepo:     new(mocks.MockCardRepository),
		boardRepo:    new(mocks.MockBoardRepository),
		reactionRepo: new(mocks.MockReactionRepository),
		sessionRepo:  new(mocks.MockSessionRepository),
		eventStore:   new(mocks.MockEventStore),
		publisher:    new(mocks.MockBoardEventPublisher),
	}

	logger := zap.NewNop()
	lock := new(mocks.MockDistributedLock)
	lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	lock.On("Release", mock.Anything, mock.Anything).Return(nil)

	quota := services.NewQuotaEnforcer(env.cardRepo, env.reactionRepo, logger)
	cascade := services.NewCascadeCoordinator(env.cardRepo, env.reactionRepo, env.sessionRepo, env.boardRepo, lock, logger)

	createHandler := commands.NewCreateCardHandler(env.cardRepo, env.boardRepo, quota, validators.NewCardValidator(), env.publisher, logger)
	deleteHandler := cmdhandlers.NewDeleteCardHandler(env.cardRepo, env.boardRepo, cascade, env.eventStore, env.publisher, logger)

	pipeline := bus.NewPipeline(bus.LoggingMiddleware(logger))
	commandBus := bus.NewCommandBus()

	err := commandBus.Register(commands.CreateCardCommand{}, pipeline.Execute(bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			_, err := createHandler.Handle(ctx, cmd.(commands.CreateCardCommand))
			return err
		})))
	require.NoError(t, err)

	err = commandBus.Register(commands.DeleteCardCommand{}, pipeline.Execute(bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return deleteHandler.Handle(ctx, cmd.(commands.DeleteCardCommand))
		})))
	require.NoError(t, err)

	env.bus = commandBus
	return env
}

func TestCardLifecycle_CreateThroughBus(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	board := fixtures.NewBoardBuilder().MustBuild()

	env.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	env.cardRepo.On("CountUserCards", mock.Anything, board.ID(), "user-1", mock.Anything).Return(0, nil)
	env.cardRepo.On("Save", mock.Anything, mock.AnythingOfType("*entities.Card")).Return(nil)
	env.publisher.On("CardCreated", mock.Anything, mock.AnythingOfType("events.CardCreated")).Return()

	err := env.bus.Send(ctx, commands.CreateCardCommand{
		BoardID:   board.ID().String(),
		ColumnID:  "to-improve",
		Text:      "Standups keep running long",
		CardType:  "feedback",
		UserHash:  "user-1",
		UserAlias: "Alice",
	})

	require.NoError(t, err)
	env.cardRepo.AssertExpectations(t)
	env.publisher.AssertExpectations(t)
}

func TestCardLifecycle_CreateRespectsQuota(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	board := fixtures.NewBoardBuilder().WithCardLimit(3).MustBuild()

	env.boardRepo.On("GetByID", mock.Anything, board.ID()).Return(board, nil)
	env.cardRepo.On("CountUserCards", mock.Anything, board.ID(), "user-1", mock.Anything).Return(3, nil)

	err := env.bus.Send(ctx, commands.CreateCardCommand{
		BoardID:  board.ID().String(),
		ColumnID: "went-well",
		Text:     "One card too many",
		CardType: "feedback",
		UserHash: "user-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrCardLimitReached)
	env.cardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCardLifecycle_DeleteCascadesThroughBus(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	board := fixtures.NewBoardBuilder().MustBuild()
	card := fixtures.NewCardBuilder().WithCreator("user-1", "Alice").MustBuild()

	env.cardRepo.On("GetByID", mock.Anything, card.ID()).Return(card, nil)
	env.boardRepo.On("GetByID", mock.Anything, card.BoardID()).Return(board, nil)
	env.cardRepo.On("OrphanChildren", mock.Anything, card.ID()).Return([]valueobjects.CardID{}, nil)
	env.cardRepo.On("ScrubLinkedFeedback", mock.Anything, card.BoardID(), card.ID()).Return(nil)
	env.reactionRepo.On("DeleteByCard", mock.Anything, card.ID()).Return(2, nil)
	env.cardRepo.On("Delete", mock.Anything, card.ID()).Return(nil)
	env.eventStore.On("DeleteEvents", mock.Anything, card.ID().String()).Return(nil)
	env.publisher.On("CardDeleted", mock.Anything, mock.AnythingOfType("events.CardDeleted")).Return()

	err := env.bus.Send(ctx, commands.DeleteCardCommand{
		CardID:   card.ID().String(),
		UserHash: "user-1",
	})

	require.NoError(t, err)
	env.cardRepo.AssertExpectations(t)
	env.reactionRepo.AssertExpectations(t)
	env.publisher.AssertExpectations(t)
}

func TestCardLifecycle_DeleteByNonCreatorWithoutAdminFails(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	card := fixtures.NewCardBuilder().WithCreator("user-1", "Alice").MustBuild()

	env.cardRepo.On("GetByID", mock.Anything, card.ID()).Return(card, nil)

	err := env.bus.Send(ctx, commands.DeleteCardCommand{
		CardID:   card.ID().String(),
		UserHash: "user-2",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNotCardCreator)
	env.cardRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
