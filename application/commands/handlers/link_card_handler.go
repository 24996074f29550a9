package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"
	domainservices "retroboard-backend/domain/services"
	pkgerrors "retroboard-backend/pkg/errors"
)

// LinkCardHandler handles every relationship mutation: grouping feedback
// cards under a parent and attaching feedback cards to action cards. All
// structural rules are delegated to the link validator before any entity
// is touched.
type LinkCardHandler struct {
	cardRepo      ports.CardRepository
	boardRepo     ports.BoardRepository
	linkValidator *domainservices.LinkValidator
	publisher     ports.BoardEventPublisher
	logger        *zap.Logger
}

// NewLinkCardHandler creates a new link card handler
func NewLinkCardHandler(
	cardRepo ports.CardRepository,
	boardRepo ports.BoardRepository,
	linkValidator *domainservices.LinkValidator,
	publisher ports.BoardEventPublisher,
	logger *zap.Logger,
) *LinkCardHandler {
	return &LinkCardHandler{
		cardRepo:      cardRepo,
		boardRepo:     boardRepo,
		linkValidator: linkValidator,
		publisher:     publisher,
		logger:        logger,
	}
}

// repoLookup adapts the card repository to the validator's lookup shape
func (h *LinkCardHandler) repoLookup(ctx context.Context) domainservices.CardLookup {
	return func(id valueobjects.CardID) (*entities.Card, bool) {
		card, err := h.cardRepo.GetByID(ctx, id)
		if err != nil {
			return nil, false
		}
		return card, true
	}
}

// HandleSetParent executes the set parent card command
func (h *LinkCardHandler) HandleSetParent(ctx context.Context, cmd commands.SetParentCardCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	childID, err := valueobjects.NewCardIDFromString(cmd.ChildID)
	if err != nil {
		return fmt.Errorf("invalid child card ID: %w", err)
	}
	parentID, err := valueobjects.NewCardIDFromString(cmd.ParentID)
	if err != nil {
		return fmt.Errorf("invalid parent card ID: %w", err)
	}

	child, err := h.cardRepo.GetByID(ctx, childID)
	if err != nil {
		return fmt.Errorf("failed to get child card: %w", err)
	}

	if err := h.ensureBoardOpen(ctx, child.BoardID()); err != nil {
		return err
	}

	// The parent may legitimately be missing; the validator reports that
	parent, _ := h.repoLookup(ctx)(parentID)

	if err := h.linkValidator.ValidateLink(domainservices.LinkTypeParentOf, parent, child, h.repoLookup(ctx)); err != nil {
		return err
	}

	if err := child.SetParent(parentID); err != nil {
		return err
	}

	if err := h.cardRepo.Save(ctx, child); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.logger.Info("Card grouped under parent",
		zap.String("childID", cmd.ChildID),
		zap.String("parentID", cmd.ParentID),
	)

	h.publishLinkEvents(ctx, child)
	return nil
}

// HandleClearParent executes the clear parent card command. Clearing a
// card with no parent is a no-op.
func (h *LinkCardHandler) HandleClearParent(ctx context.Context, cmd commands.ClearParentCardCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	childID, err := valueobjects.NewCardIDFromString(cmd.ChildID)
	if err != nil {
		return fmt.Errorf("invalid child card ID: %w", err)
	}

	child, err := h.cardRepo.GetByID(ctx, childID)
	if err != nil {
		return fmt.Errorf("failed to get card: %w", err)
	}

	if err := h.ensureBoardOpen(ctx, child.BoardID()); err != nil {
		return err
	}

	if !child.HasParent() {
		return nil
	}

	child.ClearParent()

	if err := h.cardRepo.Save(ctx, child); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.publishLinkEvents(ctx, child)
	return nil
}

// HandleAddLinkedFeedback executes the add linked feedback command
func (h *LinkCardHandler) HandleAddLinkedFeedback(ctx context.Context, cmd commands.AddLinkedFeedbackCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	actionID, err := valueobjects.NewCardIDFromString(cmd.ActionID)
	if err != nil {
		return fmt.Errorf("invalid action card ID: %w", err)
	}
	feedbackID, err := valueobjects.NewCardIDFromString(cmd.FeedbackID)
	if err != nil {
		return fmt.Errorf("invalid feedback card ID: %w", err)
	}

	action, err := h.cardRepo.GetByID(ctx, actionID)
	if err != nil {
		return fmt.Errorf("failed to get action card: %w", err)
	}

	if err := h.ensureBoardOpen(ctx, action.BoardID()); err != nil {
		return err
	}

	feedback, _ := h.repoLookup(ctx)(feedbackID)

	if err := h.linkValidator.ValidateLink(domainservices.LinkTypeLinkedTo, action, feedback, h.repoLookup(ctx)); err != nil {
		return err
	}

	// Idempotent: re-adding an existing link changes nothing
	if action.HasLinkedFeedback(feedbackID) {
		return nil
	}

	if err := action.AddLinkedFeedback(feedbackID); err != nil {
		return err
	}

	if err := h.cardRepo.Save(ctx, action); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.publishLinkEvents(ctx, action)
	return nil
}

// HandleRemoveLinkedFeedback executes the remove linked feedback command.
// Removing an absent link is a no-op.
func (h *LinkCardHandler) HandleRemoveLinkedFeedback(ctx context.Context, cmd commands.RemoveLinkedFeedbackCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	actionID, err := valueobjects.NewCardIDFromString(cmd.ActionID)
	if err != nil {
		return fmt.Errorf("invalid action card ID: %w", err)
	}
	feedbackID, err := valueobjects.NewCardIDFromString(cmd.FeedbackID)
	if err != nil {
		return fmt.Errorf("invalid feedback card ID: %w", err)
	}

	action, err := h.cardRepo.GetByID(ctx, actionID)
	if err != nil {
		return fmt.Errorf("failed to get action card: %w", err)
	}

	if err := h.ensureBoardOpen(ctx, action.BoardID()); err != nil {
		return err
	}

	if !action.RemoveLinkedFeedback(feedbackID) {
		return nil
	}

	if err := h.cardRepo.Save(ctx, action); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	h.publishLinkEvents(ctx, action)
	return nil
}

func (h *LinkCardHandler) ensureBoardOpen(ctx context.Context, boardID valueobjects.BoardID) error {
	board, err := h.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}
	if board.IsClosed() {
		return pkgerrors.ErrBoardClosed.WithDetail("board_id", boardID.String())
	}
	return nil
}

func (h *LinkCardHandler) publishLinkEvents(ctx context.Context, card *entities.Card) {
	for _, event := range card.GetUncommittedEvents() {
		switch e := event.(type) {
		case events.CardsLinked:
			h.publisher.CardsLinked(ctx, e)
		case events.CardsUnlinked:
			h.publisher.CardsUnlinked(ctx, e)
		}
	}
	card.MarkEventsAsCommitted()
}
