package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/store/schema"
)

// AccumulateLedgerEntryInput credits Delta tokens of a token type to a user
type AccumulateLedgerEntryInput struct {
	UserID      string
	TokenTypeID string
	Delta       decimal.Decimal
}

// CreateExchangeInput records the start of an exchange attempt
type CreateExchangeInput struct {
	ID            string
	UserID        string
	WalletAddress string
	TokenTypeID   string
	State         domain.ExchangeState
}

// UpdateExchangeInput moves an exchange record to a new state. Nil fields are left unchanged.
type UpdateExchangeInput struct {
	ID                     string
	State                  domain.ExchangeState
	FailureReason          domain.FailureReason
	SourceAmount           *string
	DestinationAmount      *string
	TxHash                 *string
	FundsMoved             bool
	ReconciliationRequired bool
	Quote                  datatypes.JSON
}

// ExchangeQueryFilter filters exchange records. Empty fields match everything.
type ExchangeQueryFilter struct {
	UserID                 string
	State                  domain.ExchangeState
	FailureReason          *domain.FailureReason
	ReconciliationRequired *bool
	Limit                  int
	Offset                 uint64
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ListTokenTypes returns every token type ordered by name
	ListTokenTypes(ctx context.Context) ([]schema.TokenType, error)
	// GetTokenType retrieves a token type by id, nil if it does not exist
	GetTokenType(ctx context.Context, id string) (*schema.TokenType, error)

	// GetProfile retrieves the profile of a user, nil if it does not exist
	GetProfile(ctx context.Context, userID string) (*schema.Profile, error)

	// GetLedgerEntry retrieves the ledger row of a user and token type, nil if nothing was credited yet
	GetLedgerEntry(ctx context.Context, userID, tokenTypeID string) (*schema.UserWallet, error)
	// ListLedgerEntries returns every ledger row of a user
	ListLedgerEntries(ctx context.Context, userID string) ([]schema.UserWallet, error)
	// AccumulateLedgerEntry atomically adds the delta to the user's ledger row, creating it on first credit
	AccumulateLedgerEntry(ctx context.Context, input AccumulateLedgerEntryInput) (*schema.UserWallet, error)

	// CreateExchange inserts a new exchange record
	CreateExchange(ctx context.Context, input CreateExchangeInput) error
	// UpdateExchange updates the state of an exchange record
	UpdateExchange(ctx context.Context, input UpdateExchangeInput) error
	// GetExchange retrieves an exchange record by id, nil if it does not exist
	GetExchange(ctx context.Context, id string) (*schema.Exchange, error)
	// ListExchanges returns exchange records matching the filter, newest first, with the total count
	ListExchanges(ctx context.Context, filter ExchangeQueryFilter) ([]schema.Exchange, uint64, error)
}
