package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/store/schema"
)

const DEFAULT_EXCHANGE_LIST_LIMIT = 50

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool of the underlying *sql.DB.
// Zero settings fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 1 hour
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 20
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = time.Hour
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// idle connections can never exceed open ones
	maxIdleConns = min(maxIdleConns, maxOpenConns)

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// isUUID reports whether id can be compared against a uuid column without a cast error
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ListTokenTypes returns every token type ordered by name
func (s *pgStore) ListTokenTypes(ctx context.Context) ([]schema.TokenType, error) {
	var tokenTypes []schema.TokenType
	err := s.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&tokenTypes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list token types: %w", err)
	}

	return tokenTypes, nil
}

// GetTokenType retrieves a token type by id
func (s *pgStore) GetTokenType(ctx context.Context, id string) (*schema.TokenType, error) {
	if !isUUID(id) {
		return nil, nil
	}

	var tokenType schema.TokenType
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tokenType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token type: %w", err)
	}

	return &tokenType, nil
}

// GetProfile retrieves the profile of a user
func (s *pgStore) GetProfile(ctx context.Context, userID string) (*schema.Profile, error) {
	if !isUUID(userID) {
		return nil, nil
	}

	var profile schema.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// GetLedgerEntry retrieves the ledger row of a user and token type
func (s *pgStore) GetLedgerEntry(ctx context.Context, userID, tokenTypeID string) (*schema.UserWallet, error) {
	if !isUUID(userID) || !isUUID(tokenTypeID) {
		return nil, nil
	}

	var wallet schema.UserWallet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token_type_id = ?", userID, tokenTypeID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &wallet, nil
}

// ListLedgerEntries returns every ledger row of a user
func (s *pgStore) ListLedgerEntries(ctx context.Context, userID string) ([]schema.UserWallet, error) {
	if !isUUID(userID) {
		return []schema.UserWallet{}, nil
	}

	var wallets []schema.UserWallet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("token_type_id ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return wallets, nil
}

// AccumulateLedgerEntry adds the delta to the ledger row in a single upsert so concurrent
// credits of the same (user, token type) never lose an update or create a duplicate row
func (s *pgStore) AccumulateLedgerEntry(ctx context.Context, input AccumulateLedgerEntryInput) (*schema.UserWallet, error) {
	if !isUUID(input.UserID) {
		return nil, fmt.Errorf("invalid user id %q", input.UserID)
	}
	if !isUUID(input.TokenTypeID) {
		return nil, fmt.Errorf("invalid token type id %q", input.TokenTypeID)
	}
	if !input.Delta.IsPositive() {
		return nil, fmt.Errorf("ledger delta must be positive, got %s", input.Delta.String())
	}

	wallet := schema.UserWallet{
		UserID:      input.UserID,
		TokenTypeID: input.TokenTypeID,
		Tokens:      input.Delta,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "token_type_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"tokens":     gorm.Expr("user_wallets.tokens + EXCLUDED.tokens"),
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to accumulate ledger entry: %w", err)
	}

	return &wallet, nil
}

// CreateExchange inserts a new exchange record
func (s *pgStore) CreateExchange(ctx context.Context, input CreateExchangeInput) error {
	exchange := schema.Exchange{
		ID:            input.ID,
		UserID:        input.UserID,
		WalletAddress: input.WalletAddress,
		TokenTypeID:   input.TokenTypeID,
		State:         input.State,
		FailureReason: domain.FailureReasonNone,
	}

	if err := s.db.WithContext(ctx).Create(&exchange).Error; err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}

	return nil
}

// UpdateExchange updates the state of an exchange record
func (s *pgStore) UpdateExchange(ctx context.Context, input UpdateExchangeInput) error {
	updates := map[string]interface{}{
		"state":                   input.State,
		"failure_reason":          input.FailureReason,
		"funds_moved":             input.FundsMoved,
		"reconciliation_required": input.ReconciliationRequired,
		"updated_at":              gorm.Expr("now()"),
	}
	if input.SourceAmount != nil {
		updates["source_amount"] = *input.SourceAmount
	}
	if input.DestinationAmount != nil {
		updates["destination_amount"] = *input.DestinationAmount
	}
	if input.TxHash != nil {
		updates["tx_hash"] = *input.TxHash
	}
	if input.Quote != nil {
		updates["quote"] = input.Quote
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Exchange{}).
		Where("id = ?", input.ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update exchange: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("exchange %s not found", input.ID)
	}

	return nil
}

// GetExchange retrieves an exchange record by id
func (s *pgStore) GetExchange(ctx context.Context, id string) (*schema.Exchange, error) {
	var exchange schema.Exchange
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&exchange).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return &exchange, nil
}

// ListExchanges returns exchange records matching the filter, newest first
func (s *pgStore) ListExchanges(ctx context.Context, filter ExchangeQueryFilter) ([]schema.Exchange, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Exchange{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.FailureReason != nil {
		query = query.Where("failure_reason = ?", *filter.FailureReason)
	}
	if filter.ReconciliationRequired != nil {
		query = query.Where("reconciliation_required = ?", *filter.ReconciliationRequired)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exchanges: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DEFAULT_EXCHANGE_LIST_LIMIT
	}

	var exchanges []schema.Exchange
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(int(filter.Offset)). //nolint:gosec,G115
		Find(&exchanges).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exchanges: %w", err)
	}

	return exchanges, uint64(total), nil //nolint:gosec,G115
}
