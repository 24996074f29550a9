package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// BoardTeardownHandler handles board clear and reset. Both require the
// caller to carry explicit admin capability. Teardown order is fixed:
// reactions, then cards, then sessions.
type BoardTeardownHandler struct {
	boardRepo  ports.BoardRepository
	cascade    *services.CascadeCoordinator
	eventStore ports.EventStore
	publisher  ports.BoardEventPublisher
	logger     *zap.Logger
}

// NewBoardTeardownHandler creates a new board teardown handler
func NewBoardTeardownHandler(
	boardRepo ports.BoardRepository,
	cascade *services.CascadeCoordinator,
	eventStore ports.EventStore,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *BoardTeardownHandler {
	return &BoardTeardownHandler{
		boardRepo:  boardRepo,
		cascade:    cascade,
		eventStore: eventStore,
		publisher:  publisher,
		logger:     logger,
	}
}

// HandleClear executes the clear board command
func (h *BoardTeardownHandler) HandleClear(ctx context.Context, cmd commands.ClearBoardCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	board, err := h.loadBoardForAdmin(ctx, cmd.BoardID, cmd.UserHash, cmd.Admin)
	if err != nil {
		return err
	}

	result, err := h.cascade.ClearBoard(ctx, board)
	if err != nil {
		return err
	}

	h.cleanupEventHistory(ctx, board.ID())

	h.publisher.BoardCleared(ctx, events.NewBoardCleared(
		board.ID(),
		result.CardsDeleted,
		result.ReactionsDeleted,
		result.SessionsDeleted,
		time.Now(),
	))

	return nil
}

// HandleReset executes the reset board command: a clear followed by
// reopening the board if it was closed
func (h *BoardTeardownHandler) HandleReset(ctx context.Context, cmd commands.ResetBoardCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	board, err := h.loadBoardForAdmin(ctx, cmd.BoardID, cmd.UserHash, cmd.Admin)
	if err != nil {
		return err
	}

	result, err := h.cascade.ResetBoard(ctx, board)
	if err != nil {
		return err
	}

	h.cleanupEventHistory(ctx, board.ID())

	h.publisher.BoardReset(ctx, events.NewBoardReset(
		board.ID(),
		result.Reopened,
		time.Now(),
	))

	return nil
}

// loadBoardForAdmin fetches the board and enforces admin capability. The
// capability is an explicit command field; board membership in the admin
// list also qualifies.
func (h *BoardTeardownHandler) loadBoardForAdmin(ctx context.Context, boardID, userHash string, admin bool) (*entities.Board, error) {
	id, err := valueobjects.NewBoardIDFromString(boardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	board, err := h.boardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	if !admin && !board.IsAdmin(userHash) {
		return nil, pkgerrors.ErrNotBoardAdmin.WithDetail("board_id", boardID)
	}

	return board, nil
}

func (h *BoardTeardownHandler) cleanupEventHistory(ctx context.Context, boardID valueobjects.BoardID) {
	if err := h.eventStore.DeleteEvents(ctx, boardID.String()); err != nil {
		h.logger.Warn("Failed to delete board event history",
			zap.String("boardID", boardID.String()),
			zap.Error(err),
		)
	}
}
