package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"retroboard-backend/application/ports"
	"retroboard-backend/application/queries"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/valueobjects"
)

// GetQuotaHandler handles quota status queries
type GetQuotaHandler struct {
	boardRepo ports.BoardRepository
	quota     *services.QuotaEnforcer
	logger    *zap.Logger
}

// NewGetQuotaHandler creates a new quota status handler
func NewGetQuotaHandler(
	boardRepo ports.BoardRepository,
	quota *services.QuotaEnforcer,
	logger *zap.Logger,
) *GetQuotaHandler {
	return &GetQuotaHandler{
		boardRepo: boardRepo,
		quota:     quota,
		logger:    logger,
	}
}

// Handle executes the quota status query
func (h *GetQuotaHandler) Handle(ctx context.Context, query queries.GetQuotaStatusQuery) (*queries.QuotaStatusResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	boardID, err := valueobjects.NewBoardIDFromString(query.BoardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID: %w", err)
	}

	board, err := h.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	cardQuota, err := h.quota.CheckCardQuota(ctx, board, query.UserHash)
	if err != nil {
		return nil, err
	}

	reactionQuota, err := h.quota.CheckReactionQuota(ctx, board, query.UserHash)
	if err != nil {
		return nil, err
	}

	return &queries.QuotaStatusResult{
		BoardID:   query.BoardID,
		Cards:     toQuotaView(cardQuota),
		Reactions: toQuotaView(reactionQuota),
	}, nil
}

func toQuotaView(status services.QuotaStatus) queries.QuotaStatusView {
	return queries.QuotaStatusView{
		CurrentCount: status.CurrentCount,
		Limit:        status.Limit,
		LimitEnabled: status.LimitEnabled,
		CanCreate:    status.CanCreate,
	}
}
