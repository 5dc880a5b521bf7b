package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

// UserWallet represents the user_wallets table - the off-chain ledger, one row per (user, token type)
type UserWallet struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID references the profile owning the tokens
	UserID string `gorm:"column:user_id;not null;type:uuid;uniqueIndex:idx_user_wallets_user_token_type,priority:1"`
	// TokenTypeID references the token type being held
	TokenTypeID string `gorm:"column:token_type_id;not null;type:uuid;uniqueIndex:idx_user_wallets_user_token_type,priority:2"`
	// Tokens is the accumulated token amount
	Tokens decimal.Decimal `gorm:"column:tokens;not null;type:numeric;default:0"`
	// CreatedAt is the timestamp when the first credit was recorded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the latest credit
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the UserWallet model
func (UserWallet) TableName() string {
	return "user_wallets"
}

// ToDomain converts the row into a ledger entry
func (w UserWallet) ToDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		UserID:      w.UserID,
		TokenTypeID: w.TokenTypeID,
		Tokens:      w.Tokens,
	}
}
