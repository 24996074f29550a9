package queries

import "errors"

// GetQuotaStatusQuery represents a query for a user's remaining card and
// reaction quota on a board
type GetQuotaStatusQuery struct {
	BoardID  string
	UserHash string
}

// Validate validates the GetQuotaStatusQuery
func (q GetQuotaStatusQuery) Validate() error {
	if q.BoardID == "" {
		return errors.New("board ID is required")
	}
	if q.UserHash == "" {
		return errors.New("user identity is required")
	}
	return nil
}

// QuotaStatusView reports one limit's consumption
type QuotaStatusView struct {
	CurrentCount int  `json:"current_count"`
	Limit        int  `json:"limit"`
	LimitEnabled bool `json:"limit_enabled"`
	CanCreate    bool `json:"can_create"`
}

// QuotaStatusResult combines card and reaction quota for a user on a board
type QuotaStatusResult struct {
	BoardID   string          `json:"board_id"`
	Cards     QuotaStatusView `json:"cards"`
	Reactions QuotaStatusView `json:"reactions"`
}
