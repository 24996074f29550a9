package bus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retroboard-backend/application/ports"
)

type fakeCommand struct {
	invalid bool
}

func (c fakeCommand) Validate() error {
	if c.invalid {
		return fmt.Errorf("bad command")
	}
	return nil
}

// recordingUnitOfWork tracks transaction lifecycle calls. Like the real
// implementation, Begin fails while a transaction is already open.
type recordingUnitOfWork struct {
	active    bool
	begins    int
	commits   int
	rollbacks int
}

func (u *recordingUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already active")
	}
	u.active = true
	u.begins++
	return nil
}

func (u *recordingUnitOfWork) Commit(ctx context.Context) error {
	u.active = false
	u.commits++
	return nil
}

func (u *recordingUnitOfWork) Rollback() error {
	u.active = false
	u.rollbacks++
	return nil
}

func (u *recordingUnitOfWork) CardRepository() ports.CardRepository         { return nil }
func (u *recordingUnitOfWork) ReactionRepository() ports.ReactionRepository { return nil }
func (u *recordingUnitOfWork) SessionRepository() ports.SessionRepository   { return nil }

func TestCommandBus_Send(t *testing.T) {
	// Arrange
	cmdBus := NewCommandBus()
	handled := 0
	err := cmdBus.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled++
		return nil
	}))
	require.NoError(t, err)

	// Act
	err = cmdBus.Send(context.Background(), fakeCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
}

func TestCommandBus_SendUnregisteredCommand(t *testing.T) {
	cmdBus := NewCommandBus()

	err := cmdBus.Send(context.Background(), fakeCommand{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestCommandBus_SendInvalidCommand(t *testing.T) {
	cmdBus := NewCommandBus()
	require.NoError(t, cmdBus.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		t.Fatal("handler must not run for an invalid command")
		return nil
	})))

	err := cmdBus.Send(context.Background(), fakeCommand{invalid: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestCommandBus_RegisterDuplicate(t *testing.T) {
	cmdBus := NewCommandBus()
	noop := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, cmdBus.Register(fakeCommand{}, noop))
	err := cmdBus.Register(fakeCommand{}, noop)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestTransactionMiddleware_CommitsOnSuccess(t *testing.T) {
	// Arrange: the factory hands out a fresh unit of work per dispatch
	var opened []*recordingUnitOfWork
	mw := TransactionMiddleware(func() ports.UnitOfWork {
		uow := &recordingUnitOfWork{}
		opened = append(opened, uow)
		return uow
	})
	handler := mw(CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil }))

	// Act: two dispatches through the same middleware
	require.NoError(t, handler.Handle(context.Background(), fakeCommand{}))
	require.NoError(t, handler.Handle(context.Background(), fakeCommand{}))

	// Assert
	require.Len(t, opened, 2)
	for _, uow := range opened {
		assert.Equal(t, 1, uow.begins)
		assert.Equal(t, 1, uow.commits)
		assert.Zero(t, uow.rollbacks)
	}
}

func TestTransactionMiddleware_RollsBackOnFailure(t *testing.T) {
	// Arrange
	uow := &recordingUnitOfWork{}
	mw := TransactionMiddleware(func() ports.UnitOfWork { return uow })
	handlerErr := fmt.Errorf("handler exploded")
	handler := mw(CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return handlerErr }))

	// Act
	err := handler.Handle(context.Background(), fakeCommand{})

	// Assert
	require.ErrorIs(t, err, handlerErr)
	assert.Equal(t, 1, uow.rollbacks)
	assert.Zero(t, uow.commits)
}
