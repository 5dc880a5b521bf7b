package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

const (
	MAX_PAGE_SIZE     = 100
	DEFAULT_PAGE_SIZE = 20
)

var (
	exchangeStates = []domain.ExchangeState{
		domain.ExchangeStateIdle,
		domain.ExchangeStateValidating,
		domain.ExchangeStateAwaitingWalletAuthorization,
		domain.ExchangeStateSubmitting,
		domain.ExchangeStateConfirmed,
		domain.ExchangeStateLedgerUpdated,
		domain.ExchangeStateFailed,
	}
	failureReasons = []domain.FailureReason{
		domain.FailureReasonNotAuthenticated,
		domain.FailureReasonInsufficientBalance,
		domain.FailureReasonInvalidQuote,
		domain.FailureReasonWalletUnavailable,
		domain.FailureReasonTransferRejected,
		domain.FailureReasonLedgerWriteError,
		domain.FailureReasonTimeout,
		domain.FailureReasonExchangeInFlight,
		domain.FailureReasonBalanceUnavailable,
		domain.FailureReasonStoreUnavailable,
	}
)

// ListExchangesQueryParams holds query parameters for GET /exchanges
type ListExchangesQueryParams struct {
	// Filters
	UserID string `form:"user_id"`
	State  string `form:"state"`
	Reason string `form:"reason"`
	// ReconciliationRequired narrows to attempts that need manual follow-up
	ReconciliationRequired *bool `form:"reconciliation_required"`

	// Pagination
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ParseListExchangesQuery parses query parameters for GET /exchanges
func ParseListExchangesQuery(c *gin.Context) (*ListExchangesQueryParams, error) {
	var params ListExchangesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limit
	if params.Limit <= 0 {
		params.Limit = DEFAULT_PAGE_SIZE
	}
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// Validate checks that the filters name known values
func (p *ListExchangesQueryParams) Validate() error {
	if p.UserID != "" {
		if _, err := uuid.Parse(p.UserID); err != nil {
			return fmt.Errorf("invalid user_id: %s", p.UserID)
		}
	}
	if p.State != "" && !lo.Contains(exchangeStates, domain.ExchangeState(p.State)) {
		return fmt.Errorf("invalid state: %s", p.State)
	}
	if p.Reason != "" && !lo.Contains(failureReasons, domain.FailureReason(p.Reason)) {
		return fmt.Errorf("invalid reason: %s", p.Reason)
	}
	return nil
}
