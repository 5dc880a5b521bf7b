package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

// Exchange represents the exchanges table - one row per exchange attempt, kept for reconciliation
type Exchange struct {
	// ID is the exchange identifier (ULID for time-sortable uniqueness)
	ID string `gorm:"column:id;primaryKey;type:varchar(26)"`
	// UserID is the signed-in user that started the exchange
	UserID string `gorm:"column:user_id;not null;type:text;index:idx_exchanges_user_id"`
	// WalletAddress is the checksummed wallet the transfer is sent from
	WalletAddress string `gorm:"column:wallet_address;not null;type:text"`
	// TokenTypeID is the requested destination token type
	TokenTypeID string `gorm:"column:token_type_id;not null;type:text"`
	// SourceAmount is the quoted amount of whole source tokens (up to 78 digits)
	SourceAmount *string `gorm:"column:source_amount;type:numeric(78,0)"`
	// DestinationAmount is the quoted amount of destination tokens (up to 78 digits)
	DestinationAmount *string `gorm:"column:destination_amount;type:numeric(78,0)"`
	// TxHash is the transfer transaction hash once submitted
	TxHash *string `gorm:"column:tx_hash;type:text"`
	// State is the latest state of the exchange flow
	State domain.ExchangeState `gorm:"column:state;not null;type:text;index:idx_exchanges_state_reason,priority:1"`
	// FailureReason is set when State is failed
	FailureReason domain.FailureReason `gorm:"column:failure_reason;not null;type:text;default:'';index:idx_exchanges_state_reason,priority:2"`
	// FundsMoved marks attempts whose on-chain transfer succeeded
	FundsMoved bool `gorm:"column:funds_moved;not null;default:false"`
	// ReconciliationRequired marks failed attempts whose funds moved or may have moved
	ReconciliationRequired bool `gorm:"column:reconciliation_required;not null;default:false"`
	// Quote is a snapshot of the quote the exchange was validated against
	Quote datatypes.JSON `gorm:"column:quote;type:jsonb"`
	// CreatedAt is the timestamp when the attempt started
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the latest state change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Exchange model
func (Exchange) TableName() string {
	return "exchanges"
}
