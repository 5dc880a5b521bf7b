package dto

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/exchange"
	"github.com/feral-file/ff-token-exchange/internal/quote"
	"github.com/feral-file/ff-token-exchange/internal/store/schema"
)

// TokenTypeResponse represents an exchange target
type TokenTypeResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	ConversionRate string `json:"conversion_rate"`
	EffectiveRate  string `json:"effective_rate"`
}

// QuoteRequest is the body of POST /quotes. Without a token type the quote only
// carries the source amount.
type QuoteRequest struct {
	SourceAmount string `json:"source_amount" binding:"required"`
	TokenTypeID  string `json:"token_type_id" binding:"omitempty,uuid"`
}

// ExchangeRequest is the body of POST /exchanges
type ExchangeRequest struct {
	SourceAmount string `json:"source_amount" binding:"required"`
	TokenTypeID  string `json:"token_type_id" binding:"required,uuid"`
}

// QuoteResponse represents a derived quote. Amounts are decimal strings.
type QuoteResponse struct {
	SourceAmount      string             `json:"source_amount"`
	DestinationAmount string             `json:"destination_amount,omitempty"`
	EffectiveRate     string             `json:"effective_rate,omitempty"`
	TokenType         *TokenTypeResponse `json:"token_type,omitempty"`
}

// LedgerEntryResponse represents the tokens credited to a user for a token type
type LedgerEntryResponse struct {
	TokenTypeID string `json:"token_type_id"`
	Tokens      string `json:"tokens"`
}

// NotificationResponse is the message shown after an exchange
type NotificationResponse struct {
	Type      domain.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// ExchangeResponse is the terminal outcome of POST /exchanges
type ExchangeResponse struct {
	ID                     string                 `json:"id"`
	State                  domain.ExchangeState   `json:"state"`
	Reason                 domain.FailureReason   `json:"reason,omitempty"`
	Error                  string                 `json:"error,omitempty"`
	TxHash                 string                 `json:"tx_hash,omitempty"`
	FundsMoved             bool                   `json:"funds_moved"`
	ReconciliationRequired bool                   `json:"reconciliation_required"`
	Quote                  *QuoteResponse         `json:"quote,omitempty"`
	Ledger                 *LedgerEntryResponse   `json:"ledger,omitempty"`
	Balances               []TokenBalanceResponse `json:"balances,omitempty"`
	Notification           *NotificationResponse  `json:"notification,omitempty"`
	Transitions            []domain.ExchangeState `json:"transitions"`
}

// ExchangeRecordResponse represents a stored exchange attempt
type ExchangeRecordResponse struct {
	ID                     string               `json:"id"`
	UserID                 string               `json:"user_id"`
	WalletAddress          string               `json:"wallet_address"`
	TokenTypeID            string               `json:"token_type_id"`
	SourceAmount           *string              `json:"source_amount,omitempty"`
	DestinationAmount      *string              `json:"destination_amount,omitempty"`
	TxHash                 *string              `json:"tx_hash,omitempty"`
	State                  domain.ExchangeState `json:"state"`
	FailureReason          domain.FailureReason `json:"failure_reason,omitempty"`
	FundsMoved             bool                 `json:"funds_moved"`
	ReconciliationRequired bool                 `json:"reconciliation_required"`
	Quote                  json.RawMessage      `json:"quote,omitempty"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

// ExchangeListResponse is a page of stored exchange attempts
type ExchangeListResponse struct {
	Exchanges []ExchangeRecordResponse `json:"exchanges"`
	Total     uint64                   `json:"total"`
	Offset    uint64                   `json:"offset"`
}

// MapTokenTypeToDTO maps an exchange token type
func MapTokenTypeToDTO(tokenType *domain.ExchangeTokenType) *TokenTypeResponse {
	if tokenType == nil {
		return nil
	}

	resp := &TokenTypeResponse{
		ID:             tokenType.ID,
		Name:           tokenType.Name,
		Symbol:         tokenType.Symbol,
		ConversionRate: tokenType.ConversionRate.String(),
	}
	if rate := quote.EffectiveRate(tokenType); rate != nil {
		resp.EffectiveRate = rate.String()
	}
	return resp
}

// MapTokenTypesToDTO maps a list of exchange token types
func MapTokenTypesToDTO(tokenTypes []domain.ExchangeTokenType) []TokenTypeResponse {
	return lo.Map(tokenTypes, func(t domain.ExchangeTokenType, _ int) TokenTypeResponse {
		return *MapTokenTypeToDTO(&t)
	})
}

// MapQuoteToDTO maps a quote; nil when the quote has no source amount
func MapQuoteToDTO(q domain.ExchangeQuote) *QuoteResponse {
	if q.SourceAmount == nil {
		return nil
	}

	resp := &QuoteResponse{
		SourceAmount: q.SourceAmount.String(),
		TokenType:    MapTokenTypeToDTO(q.TokenType),
	}
	if q.DestinationAmount != nil {
		resp.DestinationAmount = q.DestinationAmount.String()
	}
	if q.EffectiveRate != nil {
		resp.EffectiveRate = q.EffectiveRate.String()
	}
	return resp
}

// MapExchangeRecordToDTO maps a stored exchange attempt
func MapExchangeRecordToDTO(e *schema.Exchange) ExchangeRecordResponse {
	resp := ExchangeRecordResponse{
		ID:                     e.ID,
		UserID:                 e.UserID,
		WalletAddress:          e.WalletAddress,
		TokenTypeID:            e.TokenTypeID,
		SourceAmount:           e.SourceAmount,
		DestinationAmount:      e.DestinationAmount,
		TxHash:                 e.TxHash,
		State:                  e.State,
		FailureReason:          e.FailureReason,
		FundsMoved:             e.FundsMoved,
		ReconciliationRequired: e.ReconciliationRequired,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
	if len(e.Quote) > 0 {
		resp.Quote = json.RawMessage(e.Quote)
	}
	return resp
}

// MapExchangeResultToDTO maps the outcome of an exchange attempt. Balances come from
// the wallet refresh that follows a successful exchange.
func MapExchangeResultToDTO(r *exchange.Result) ExchangeResponse {
	resp := ExchangeResponse{
		ID:                     r.ID,
		State:                  r.State,
		Reason:                 r.Reason,
		Error:                  r.Error,
		TxHash:                 r.TxHash,
		FundsMoved:             r.FundsMoved,
		ReconciliationRequired: r.ReconciliationRequired,
		Quote:                  MapQuoteToDTO(r.Quote),
		Transitions:            r.Transitions,
	}
	if r.Ledger != nil {
		resp.Ledger = &LedgerEntryResponse{
			TokenTypeID: r.Ledger.TokenTypeID,
			Tokens:      r.Ledger.Tokens.String(),
		}
	}
	if r.Snapshot != nil {
		resp.Balances = MapTokenBalancesToDTO(r.Snapshot.Balances)
	}
	if r.Notification != nil {
		resp.Notification = &NotificationResponse{
			Type:      r.Notification.Type,
			Message:   r.Notification.Message,
			ExpiresAt: r.Notification.ExpiresAt,
		}
	}
	return resp
}
