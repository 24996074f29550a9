package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/validators"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	pkgerrors "retroboard-backend/pkg/errors"
)

// CreateCardCommand represents the command to create a new card
type CreateCardCommand struct {
	BoardID   string `json:"board_id" validate:"required"`
	ColumnID  string `json:"column_id" validate:"required"`
	Text      string `json:"text" validate:"required,min=1,max=1000"`
	CardType  string `json:"card_type" validate:"oneof=feedback action"`
	Anonymous bool   `json:"anonymous"`
	UserHash  string `json:"user_hash" validate:"required"`
	UserAlias string `json:"user_alias" validate:"max=60"`
}

// Validate validates the command
func (cmd CreateCardCommand) Validate() error {
	if cmd.BoardID == "" {
		return errors.New("board ID is required")
	}
	if cmd.ColumnID == "" {
		return errors.New("column ID is required")
	}
	if cmd.Text == "" {
		return errors.New("text is required")
	}
	if len(cmd.Text) > MaxCardTextLength {
		return errors.New("text exceeds maximum length")
	}
	if cmd.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

const MaxCardTextLength = 1000

// CreateCardHandler handles the CreateCardCommand
type CreateCardHandler struct {
	cardRepo  ports.CardRepository
	boardRepo ports.BoardRepository
	quota     *services.QuotaEnforcer
	validator *validators.CardValidator
	publisher ports.BoardEventPublisher
	logger    *zap.Logger
}

// NewCreateCardHandler creates a new handler instance
func NewCreateCardHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	quota *services.QuotaEnforcer,
	validator *validators.CardValidator,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *CreateCardHandler {
	return &CreateCardHandler{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		quota:     quota,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the create card command
func (h *CreateCardHandler) Handle(ctx context.Context, cmd CreateCardCommand) (*entities.Card, error) {
	boardID, err := valueobjects.NewBoardIDFromString(cmd.BoardID)
	if err != nil {
		return nil, err
	}

	board, err := h.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.IsClosed() {
		return nil, pkgerrors.ErrBoardClosed.WithDetail("board_id", cmd.BoardID)
	}

	cardType := entities.CardType(cmd.CardType)
	if err := h.validator.ValidateNewCard(cmd.Text, cmd.ColumnID, cardType, cmd.UserAlias); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateColumnOnBoard(board, cmd.ColumnID); err != nil {
		return nil, err
	}

	// Quota is charged only for genuinely new feedback cards
	quota, err := h.quota.CardQuotaForCreation(ctx, board, cmd.UserHash, cardType)
	if err != nil {
		return nil, err
	}
	if !quota.CanCreate {
		return nil, pkgerrors.ErrCardLimitReached.
			WithDetail("current", quota.CurrentCount).
			WithDetail("limit", quota.Limit)
	}

	text, err := valueobjects.NewCardText(cmd.Text)
	if err != nil {
		return nil, err
	}

	card, err := entities.NewCard(boardID, cmd.ColumnID, text, cardType, cmd.Anonymous, cmd.UserHash, cmd.UserAlias)
	if err != nil {
		return nil, err
	}

	if err := h.cardRepo.Save(ctx, card); err != nil {
		return nil, err
	}

	h.logger.Info("Card created",
		zap.String("cardID", card.ID().String()),
		zap.String("boardID", cmd.BoardID),
		zap.String("type", cmd.CardType),
	)

	// Fire-and-forget fan-out; failures never roll back the write
	for _, event := range card.GetUncommittedEvents() {
		if created, ok := event.(events.CardCreated); ok {
			h.publisher.CardCreated(ctx, created)
		}
	}
	card.MarkEventsAsCommitted()

	return card, nil
}
