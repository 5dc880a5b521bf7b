package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// NormalizeAddress parses a hex wallet or contract address into its canonical form.
// Mixed-case input is accepted without checksum validation; callers compare and pad
// the returned value, never the raw string.
func NormalizeAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return common.HexToAddress(address), nil
}

// ChecksumAddress returns the EIP-55 form of a hex address, or an error if malformed
func ChecksumAddress(address string) (string, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

// SameAddress reports whether two addresses are equal after normalization
func SameAddress(a, b string) bool {
	x, err := NormalizeAddress(a)
	if err != nil {
		return false
	}
	y, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return x == y
}

// TokenContract is a configured ERC-20 or ERC-721 contract
type TokenContract struct {
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol,omitempty"`
	Address common.Address `json:"address"`
}

// TokenBalance is a per-contract balance outcome. Err is set when resolution failed,
// in which case Raw is nil.
type TokenBalance struct {
	Contract TokenContract
	Raw      *big.Int
	Decimals uint8
	Err      error
}

// OK reports whether the balance was resolved
func (b TokenBalance) OK() bool {
	return b.Err == nil && b.Raw != nil
}

// NftAsset is an ERC-721 token identified by (contract address, token id)
type NftAsset struct {
	Contract    TokenContract `json:"contract"`
	TokenID     *big.Int      `json:"token_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// Key returns the identity of the asset
func (n NftAsset) Key() string {
	return fmt.Sprintf("%s:%s", strings.ToLower(n.Contract.Address.Hex()), n.TokenID.String())
}

// NewNftAsset builds an asset with its derived title and description
func NewNftAsset(contract TokenContract, tokenID *big.Int) NftAsset {
	name := contract.Name
	if name == "" {
		name = contract.Address.Hex()
	}
	return NftAsset{
		Contract:    contract,
		TokenID:     tokenID,
		Title:       fmt.Sprintf("%s #%s", name, tokenID.String()),
		Description: fmt.Sprintf("Token #%s of %s (%s)", tokenID.String(), name, contract.Address.Hex()),
	}
}

// NftResult is a per-contract ownership outcome
type NftResult struct {
	Contract TokenContract
	Assets   []NftAsset
	Err      error
}

// ExchangeTokenType is an off-chain token the source token can be exchanged into
type ExchangeTokenType struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// ExchangeQuote is the derived conversion for a single interaction. A quote without
// DestinationAmount is empty and cannot be executed.
type ExchangeQuote struct {
	SourceAmount      *big.Int           `json:"source_amount,omitempty"`
	TokenType         *ExchangeTokenType `json:"token_type,omitempty"`
	EffectiveRate     *big.Int           `json:"effective_rate,omitempty"`
	DestinationAmount *big.Int           `json:"destination_amount,omitempty"`
}

// Empty reports whether the quote has no destination amount
func (q ExchangeQuote) Empty() bool {
	return q.DestinationAmount == nil || q.SourceAmount == nil || q.TokenType == nil
}

// LedgerEntry is the off-chain record of tokens credited to a user for a token type
type LedgerEntry struct {
	UserID      string          `json:"user_id"`
	TokenTypeID string          `json:"token_type_id"`
	Tokens      decimal.Decimal `json:"tokens"`
}

// Session is the signed-in identity the core consumes
type Session struct {
	UserID        string
	WalletAddress string
}

// Valid reports whether the session carries a user
func (s *Session) Valid() bool {
	return s != nil && s.UserID != ""
}

// ExchangeState is a state of the exchange flow
type ExchangeState string

const (
	ExchangeStateIdle                        ExchangeState = "idle"
	ExchangeStateValidating                  ExchangeState = "validating"
	ExchangeStateAwaitingWalletAuthorization ExchangeState = "awaiting_wallet_authorization"
	ExchangeStateSubmitting                  ExchangeState = "submitting"
	ExchangeStateConfirmed                   ExchangeState = "confirmed"
	ExchangeStateLedgerUpdated               ExchangeState = "ledger_updated"
	ExchangeStateFailed                      ExchangeState = "failed"
)

// Terminal reports whether no further transition is possible
func (s ExchangeState) Terminal() bool {
	return s == ExchangeStateLedgerUpdated || s == ExchangeStateFailed
}

// FailureReason explains a failed exchange
type FailureReason string

const (
	FailureReasonNone                FailureReason = ""
	FailureReasonNotAuthenticated    FailureReason = "not_authenticated"
	FailureReasonInsufficientBalance FailureReason = "insufficient_balance"
	FailureReasonInvalidQuote        FailureReason = "invalid_quote"
	FailureReasonWalletUnavailable   FailureReason = "wallet_unavailable"
	FailureReasonTransferRejected    FailureReason = "transfer_rejected"
	FailureReasonLedgerWriteError    FailureReason = "ledger_write_error"
	FailureReasonTimeout             FailureReason = "timeout"
	FailureReasonExchangeInFlight    FailureReason = "exchange_in_flight"
	FailureReasonBalanceUnavailable  FailureReason = "balance_unavailable"
	FailureReasonStoreUnavailable    FailureReason = "store_unavailable"
)

// FailureReasonFromError maps a domain error to its failure reason
func FailureReasonFromError(err error) FailureReason {
	switch {
	case err == nil:
		return FailureReasonNone
	case errors.Is(err, ErrNotAuthenticated):
		return FailureReasonNotAuthenticated
	case errors.Is(err, ErrInsufficientBalance):
		return FailureReasonInsufficientBalance
	case errors.Is(err, ErrInvalidQuote), errors.Is(err, ErrTokenTypeNotFound):
		return FailureReasonInvalidQuote
	case errors.Is(err, ErrWalletUnavailable):
		return FailureReasonWalletUnavailable
	case errors.Is(err, ErrLedgerWrite):
		return FailureReasonLedgerWriteError
	case errors.Is(err, ErrTimeout):
		return FailureReasonTimeout
	case errors.Is(err, ErrExchangeInFlight):
		return FailureReasonExchangeInFlight
	case errors.Is(err, ErrBalanceUnavailable):
		return FailureReasonBalanceUnavailable
	case errors.Is(err, ErrStoreUnavailable):
		return FailureReasonStoreUnavailable
	case errors.Is(err, ErrTransferRejected):
		return FailureReasonTransferRejected
	default:
		return FailureReasonTransferRejected
	}
}

// NotificationType is the severity of a user notification
type NotificationType string

const (
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeError   NotificationType = "error"
)

// Notification is a dismissible message that expires after a fixed duration
type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// NewNotification creates a notification expiring NOTIFICATION_DISPLAY_DURATION after now
func NewNotification(now time.Time, notificationType NotificationType, message string) *Notification {
	return &Notification{
		Type:      notificationType,
		Message:   message,
		ExpiresAt: now.Add(NOTIFICATION_DISPLAY_DURATION),
	}
}

// Expired reports whether the notification should no longer be shown
func (n *Notification) Expired(now time.Time) bool {
	return n == nil || !now.Before(n.ExpiresAt)
}

// TruncateHash shortens a transaction hash for display (0x1234...abcd)
func TruncateHash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-4:]
}

// WalletSnapshot is a point-in-time view of a wallet's balances and NFTs
type WalletSnapshot struct {
	Wallet      common.Address
	Balances    []TokenBalance
	Nfts        []NftResult
	RefreshedAt time.Time
}

// ExchangeEventType identifies a published exchange event
type ExchangeEventType string

const (
	ExchangeEventCompleted         ExchangeEventType = "completed"
	ExchangeEventLedgerWriteFailed ExchangeEventType = "ledger_write_failed"
)

// ExchangeEvent is published when an exchange reaches a terminal state that
// downstream consumers care about
type ExchangeEvent struct {
	Type              ExchangeEventType `json:"type"`
	ExchangeID        string            `json:"exchange_id"`
	UserID            string            `json:"user_id"`
	WalletAddress     string            `json:"wallet_address"`
	TokenTypeID       string            `json:"token_type_id"`
	SourceAmount      string            `json:"source_amount"`
	DestinationAmount string            `json:"destination_amount"`
	TxHash            string            `json:"tx_hash,omitempty"`
	Reason            FailureReason     `json:"reason,omitempty"`
	OccurredAt        time.Time         `json:"occurred_at"`
}
