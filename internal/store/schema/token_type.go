package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

// TokenType represents the token_types table - the off-chain tokens a source token can be exchanged into
type TokenType struct {
	// ID is the token type identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	// Name is the display name of the token type
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the ticker of the token type (e.g., "FF")
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// ConversionRate is the number of destination tokens per whole source token
	ConversionRate decimal.Decimal `gorm:"column:conversion_rate;not null;type:numeric"`
	// CreatedAt is the timestamp when this token type was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this token type was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TokenType model
func (TokenType) TableName() string {
	return "token_types"
}

// ToDomain converts the row into the domain token type
func (t TokenType) ToDomain() domain.ExchangeTokenType {
	return domain.ExchangeTokenType{
		ID:             t.ID,
		Name:           t.Name,
		Symbol:         t.Symbol,
		ConversionRate: t.ConversionRate,
	}
}
