package domain

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "lowercase",
			input:    "0x1c85f5520ca012d9394e5349db223fbeab6d6d30",
			expected: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30",
		},
		{
			name:     "already checksummed",
			input:    "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30",
			expected: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30",
		},
		{
			name:     "surrounding whitespace",
			input:    "  0x1c85f5520ca012d9394e5349db223fbeab6d6d30 ",
			expected: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30",
		},
		{
			name:    "too short",
			input:   "0x1234",
			wantErr: true,
		},
		{
			name:    "non hex",
			input:   "0xZZ85f5520ca012d9394e5349db223fbeab6d6d30",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NormalizeAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, addr.Hex())
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	const want = "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"

	for _, input := range []string{
		"0x1c85f5520ca012d9394e5349db223fbeab6d6d30",
		"0x1C85F5520CA012D9394E5349DB223FBEAB6D6D30",
		// wrong case on one letter is normalized, not rejected
		"0x1C85f5520Ca012d9394e5349Db223fBeab6d6d30",
	} {
		got, err := ChecksumAddress(input)
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
		assert.Equal(t, common.HexToAddress(input).Hex(), got, input)
	}

	_, err := ChecksumAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0x1c85f5520ca012d9394e5349db223fbeab6d6d30", "0x1C85F5520CA012D9394E5349DB223FBEAB6D6D30"))
	assert.False(t, SameAddress("0x1c85f5520ca012d9394e5349db223fbeab6d6d30", "0x975ae55f09d4c9c485d1d97c49c549bef7a24504"))
	assert.False(t, SameAddress("invalid", "invalid"))
}

func TestNewNftAsset(t *testing.T) {
	contract := TokenContract{
		Name:    "Cleen Badges",
		Address: common.HexToAddress("0x975aE55f09d4C9c485d1D97C49C549BEF7a24504"),
	}

	asset := NewNftAsset(contract, big.NewInt(42))
	assert.Equal(t, "Cleen Badges #42", asset.Title)
	assert.Equal(t, "Token #42 of Cleen Badges (0x975aE55f09d4C9c485d1D97C49C549BEF7a24504)", asset.Description)
	assert.Equal(t, "0x975ae55f09d4c9c485d1d97c49c549bef7a24504:42", asset.Key())

	unnamed := NewNftAsset(TokenContract{Address: contract.Address}, big.NewInt(7))
	assert.Equal(t, "0x975aE55f09d4C9c485d1D97C49C549BEF7a24504 #7", unnamed.Title)
}

func TestExchangeQuoteEmpty(t *testing.T) {
	tokenType := &ExchangeTokenType{ID: "t1"}
	assert.True(t, ExchangeQuote{}.Empty())
	assert.True(t, ExchangeQuote{SourceAmount: big.NewInt(1), TokenType: tokenType}.Empty())
	assert.False(t, ExchangeQuote{
		SourceAmount:      big.NewInt(1),
		TokenType:         tokenType,
		DestinationAmount: big.NewInt(2),
	}.Empty())
}

func TestFailureReasonFromError(t *testing.T) {
	tests := []struct {
		err      error
		expected FailureReason
	}{
		{nil, FailureReasonNone},
		{ErrNotAuthenticated, FailureReasonNotAuthenticated},
		{fmt.Errorf("validate: %w", ErrInsufficientBalance), FailureReasonInsufficientBalance},
		{ErrTokenTypeNotFound, FailureReasonInvalidQuote},
		{ErrInvalidQuote, FailureReasonInvalidQuote},
		{ErrWalletUnavailable, FailureReasonWalletUnavailable},
		{fmt.Errorf("accumulate: %w", ErrLedgerWrite), FailureReasonLedgerWriteError},
		{ErrTimeout, FailureReasonTimeout},
		{ErrExchangeInFlight, FailureReasonExchangeInFlight},
		{ErrBalanceUnavailable, FailureReasonBalanceUnavailable},
		{fmt.Errorf("%w: connection refused", ErrStoreUnavailable), FailureReasonStoreUnavailable},
		{ErrTransferRejected, FailureReasonTransferRejected},
		{errors.New("user denied transaction signature"), FailureReasonTransferRejected},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FailureReasonFromError(tt.err), "error: %v", tt.err)
	}
}

func TestExchangeStateTerminal(t *testing.T) {
	assert.True(t, ExchangeStateLedgerUpdated.Terminal())
	assert.True(t, ExchangeStateFailed.Terminal())
	assert.False(t, ExchangeStateIdle.Terminal())
	assert.False(t, ExchangeStateConfirmed.Terminal())
}

func TestNotification(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := NewNotification(now, NotificationTypeSuccess, "done")

	assert.Equal(t, now.Add(5*time.Second), n.ExpiresAt)
	assert.False(t, n.Expired(now.Add(4*time.Second)))
	assert.True(t, n.Expired(now.Add(5*time.Second)))

	var missing *Notification
	assert.True(t, missing.Expired(now))
}

func TestTruncateHash(t *testing.T) {
	assert.Equal(t, "0xabcd...7890", TruncateHash("0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"))
	assert.Equal(t, "0x1234", TruncateHash("0x1234"))
}

func TestErrorTypes(t *testing.T) {
	transport := &RPCTransportError{Method: "eth_call", StatusCode: 502, Message: "bad gateway"}
	assert.Equal(t, "rpc transport error (eth_call): status 502: bad gateway", transport.Error())
	assert.True(t, IsTransportError(fmt.Errorf("wrapped: %w", transport)))
	assert.False(t, IsProtocolError(transport))

	protocol := &RPCProtocolError{Method: "eth_getLogs", Code: -32005, Message: "query returned more than 10000 results"}
	assert.Equal(t, "rpc error (eth_getLogs): code -32005: query returned more than 10000 results", protocol.Error())
	assert.True(t, IsProtocolError(protocol))

	decoding := NewDecodingError("0xzz", "invalid hex")
	assert.Equal(t, `decoding error: invalid hex (input "0xzz")`, decoding.Error())
	assert.True(t, IsDecodingError(fmt.Errorf("wrapped: %w", decoding)))
}
