package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/store/schema"
)

// Seeded by db/pg_test_data.sql
const (
	ffTokenID       = "11111111-1111-1111-1111-111111111111"
	artistTokenID   = "22222222-2222-2222-2222-222222222222"
	creditTokenID   = "33333333-3333-3333-3333-333333333333"
	aliceID         = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	bobID           = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	aliceWallet     = "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"
	unknownUUID     = "99999999-9999-9999-9999-999999999999"
	testTransferTx  = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	testStoreSymbol = "ART"
)

// StoreTestSuite provides the interface for running store tests against different implementations
type StoreTestSuite struct {
	// InitDB should be called before each test to initialize the database
	InitDB func(t *testing.T) Store
	// CleanupDB should be called after each test to clean up the database
	CleanupDB func(t *testing.T)
}

// RunStoreTests runs the store behaviour tests against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	suite := StoreTestSuite{InitDB: initDB, CleanupDB: cleanupDB}

	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"TokenTypes", testTokenTypes},
		{"GetProfile", testGetProfile},
		{"AccumulateLedgerEntry", testAccumulateLedgerEntry},
		{"AccumulateLedgerEntry_Validation", testAccumulateLedgerEntryValidation},
		{"ExchangeLifecycle", testExchangeLifecycle},
		{"ListExchanges", testListExchanges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := suite.InitDB(t)
			defer suite.CleanupDB(t)
			tt.fn(t, store)
		})
	}
}

func newExchangeID() string {
	return ulid.Make().String()
}

// =============================================================================
// Test: Token types and profiles
// =============================================================================

func testTokenTypes(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("list is ordered by name", func(t *testing.T) {
		tokenTypes, err := store.ListTokenTypes(ctx)
		require.NoError(t, err)
		require.Len(t, tokenTypes, 3)

		assert.Equal(t, "Artist Token", tokenTypes[0].Name)
		assert.Equal(t, "Collector Credit", tokenTypes[1].Name)
		assert.Equal(t, "Feral File Token", tokenTypes[2].Name)
		assert.True(t, tokenTypes[0].ConversionRate.Equal(decimal.RequireFromString("2.5")))
	})

	t.Run("get existing", func(t *testing.T) {
		tokenType, err := store.GetTokenType(ctx, artistTokenID)
		require.NoError(t, err)
		require.NotNil(t, tokenType)

		d := tokenType.ToDomain()
		assert.Equal(t, artistTokenID, d.ID)
		assert.Equal(t, testStoreSymbol, d.Symbol)
		assert.Equal(t, "2.5", d.ConversionRate.String())
	})

	t.Run("missing and malformed ids return nil", func(t *testing.T) {
		for _, id := range []string{unknownUUID, "not-a-uuid", ""} {
			tokenType, err := store.GetTokenType(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, tokenType, id)
		}
	})
}

func testGetProfile(t *testing.T, store Store) {
	ctx := context.Background()

	profile, err := store.GetProfile(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, aliceWallet, profile.WalletAddress)

	profile, err = store.GetProfile(ctx, bobID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Empty(t, profile.WalletAddress)

	profile, err = store.GetProfile(ctx, unknownUUID)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

// =============================================================================
// Test: Ledger
// =============================================================================

func testAccumulateLedgerEntry(t *testing.T, store Store) {
	ctx := context.Background()

	entry, err := store.GetLedgerEntry(ctx, aliceID, artistTokenID)
	require.NoError(t, err)
	assert.Nil(t, entry, "nothing credited yet")

	t.Run("first credit creates the row", func(t *testing.T) {
		wallet, err := store.AccumulateLedgerEntry(ctx, AccumulateLedgerEntryInput{
			UserID:      aliceID,
			TokenTypeID: artistTokenID,
			Delta:       decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.NotZero(t, wallet.ID)
		assert.True(t, wallet.Tokens.Equal(decimal.NewFromInt(500)))
	})

	t.Run("second credit adds to the same row", func(t *testing.T) {
		wallet, err := store.AccumulateLedgerEntry(ctx, AccumulateLedgerEntryInput{
			UserID:      aliceID,
			TokenTypeID: artistTokenID,
			Delta:       decimal.NewFromInt(200),
		})
		require.NoError(t, err)
		assert.True(t, wallet.Tokens.Equal(decimal.NewFromInt(700)), "got %s", wallet.Tokens)

		entry, err := store.GetLedgerEntry(ctx, aliceID, artistTokenID)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, wallet.ID, entry.ID)
		assert.Equal(t, domain.LedgerEntry{
			UserID:      aliceID,
			TokenTypeID: artistTokenID,
			Tokens:      entry.Tokens,
		}, entry.ToDomain())
		assert.True(t, entry.Tokens.Equal(decimal.NewFromInt(700)))
	})

	t.Run("other token types get their own row", func(t *testing.T) {
		_, err := store.AccumulateLedgerEntry(ctx, AccumulateLedgerEntryInput{
			UserID:      aliceID,
			TokenTypeID: creditTokenID,
			Delta:       decimal.NewFromInt(10000),
		})
		require.NoError(t, err)

		entries, err := store.ListLedgerEntries(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, artistTokenID, entries[0].TokenTypeID)
		assert.Equal(t, creditTokenID, entries[1].TokenTypeID)
	})

	t.Run("other users are untouched", func(t *testing.T) {
		entries, err := store.ListLedgerEntries(ctx, bobID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func testAccumulateLedgerEntryValidation(t *testing.T, store Store) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input AccumulateLedgerEntryInput
	}{
		{
			name:  "malformed user id",
			input: AccumulateLedgerEntryInput{UserID: "alice", TokenTypeID: artistTokenID, Delta: decimal.NewFromInt(1)},
		},
		{
			name:  "malformed token type id",
			input: AccumulateLedgerEntryInput{UserID: aliceID, TokenTypeID: "art", Delta: decimal.NewFromInt(1)},
		},
		{
			name:  "zero delta",
			input: AccumulateLedgerEntryInput{UserID: aliceID, TokenTypeID: artistTokenID, Delta: decimal.Zero},
		},
		{
			name:  "negative delta",
			input: AccumulateLedgerEntryInput{UserID: aliceID, TokenTypeID: artistTokenID, Delta: decimal.NewFromInt(-3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wallet, err := store.AccumulateLedgerEntry(ctx, tt.input)
			assert.Error(t, err)
			assert.Nil(t, wallet)
		})
	}
}

// =============================================================================
// Test: Exchange records
// =============================================================================

func testExchangeLifecycle(t *testing.T, store Store) {
	ctx := context.Background()
	id := newExchangeID()

	err := store.CreateExchange(ctx, CreateExchangeInput{
		ID:            id,
		UserID:        aliceID,
		WalletAddress: aliceWallet,
		TokenTypeID:   artistTokenID,
		State:         domain.ExchangeStateValidating,
	})
	require.NoError(t, err)

	exchange, err := store.GetExchange(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, exchange)
	assert.Equal(t, domain.ExchangeStateValidating, exchange.State)
	assert.Equal(t, domain.FailureReasonNone, exchange.FailureReason)
	assert.False(t, exchange.FundsMoved)
	assert.False(t, exchange.ReconciliationRequired)
	assert.Nil(t, exchange.TxHash)

	source, destination, txHash := "250", "500", testTransferTx
	quote, err := json.Marshal(map[string]string{"source_amount": source, "destination_amount": destination})
	require.NoError(t, err)

	err = store.UpdateExchange(ctx, UpdateExchangeInput{
		ID:                     id,
		State:                  domain.ExchangeStateFailed,
		FailureReason:          domain.FailureReasonLedgerWriteError,
		SourceAmount:           &source,
		DestinationAmount:      &destination,
		TxHash:                 &txHash,
		FundsMoved:             true,
		ReconciliationRequired: true,
		Quote:                  datatypes.JSON(quote),
	})
	require.NoError(t, err)

	exchange, err = store.GetExchange(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, exchange)
	assert.Equal(t, domain.ExchangeStateFailed, exchange.State)
	assert.Equal(t, domain.FailureReasonLedgerWriteError, exchange.FailureReason)
	assert.True(t, exchange.FundsMoved)
	assert.True(t, exchange.ReconciliationRequired)
	require.NotNil(t, exchange.TxHash)
	assert.Equal(t, testTransferTx, *exchange.TxHash)
	require.NotNil(t, exchange.DestinationAmount)
	assert.Equal(t, "500", *exchange.DestinationAmount)
	assert.JSONEq(t, string(quote), string(exchange.Quote))

	t.Run("unknown id", func(t *testing.T) {
		missing, err := store.GetExchange(ctx, newExchangeID())
		require.NoError(t, err)
		assert.Nil(t, missing)

		err = store.UpdateExchange(ctx, UpdateExchangeInput{ID: newExchangeID(), State: domain.ExchangeStateFailed})
		assert.Error(t, err)
	})
}

func testListExchanges(t *testing.T, store Store) {
	ctx := context.Background()

	seed := []struct {
		state     domain.ExchangeState
		reason    domain.FailureReason
		reconcile bool
	}{
		{domain.ExchangeStateLedgerUpdated, domain.FailureReasonNone, false},
		{domain.ExchangeStateFailed, domain.FailureReasonLedgerWriteError, true},
		{domain.ExchangeStateFailed, domain.FailureReasonTransferRejected, false},
		{domain.ExchangeStateFailed, domain.FailureReasonLedgerWriteError, true},
		{domain.ExchangeStateFailed, domain.FailureReasonTimeout, true},
	}
	for _, s := range seed {
		id := newExchangeID()
		require.NoError(t, store.CreateExchange(ctx, CreateExchangeInput{
			ID:            id,
			UserID:        aliceID,
			WalletAddress: aliceWallet,
			TokenTypeID:   artistTokenID,
			State:         domain.ExchangeStateValidating,
		}))
		require.NoError(t, store.UpdateExchange(ctx, UpdateExchangeInput{
			ID:                     id,
			State:                  s.state,
			FailureReason:          s.reason,
			FundsMoved:             s.reason == domain.FailureReasonLedgerWriteError,
			ReconciliationRequired: s.reconcile,
		}))
	}

	t.Run("all", func(t *testing.T) {
		exchanges, total, err := store.ListExchanges(ctx, ExchangeQueryFilter{})
		require.NoError(t, err)
		assert.Equal(t, uint64(5), total)
		assert.Len(t, exchanges, 5)
	})

	t.Run("reconciliation filter", func(t *testing.T) {
		reason := domain.FailureReasonLedgerWriteError
		exchanges, total, err := store.ListExchanges(ctx, ExchangeQueryFilter{
			State:         domain.ExchangeStateFailed,
			FailureReason: &reason,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		for _, e := range exchanges {
			assert.True(t, e.FundsMoved)
			assert.Equal(t, reason, e.FailureReason)
		}
	})

	t.Run("reconciliation required", func(t *testing.T) {
		exchanges, total, err := store.ListExchanges(ctx, ExchangeQueryFilter{ReconciliationRequired: lo.ToPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		reasons := lo.Map(exchanges, func(e schema.Exchange, _ int) domain.FailureReason { return e.FailureReason })
		assert.ElementsMatch(t, []domain.FailureReason{
			domain.FailureReasonLedgerWriteError,
			domain.FailureReasonLedgerWriteError,
			domain.FailureReasonTimeout,
		}, reasons)
	})

	t.Run("pagination keeps the total", func(t *testing.T) {
		exchanges, total, err := store.ListExchanges(ctx, ExchangeQueryFilter{UserID: aliceID, Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, uint64(5), total)
		assert.Len(t, exchanges, 1)
	})

	t.Run("other user", func(t *testing.T) {
		exchanges, total, err := store.ListExchanges(ctx, ExchangeQueryFilter{UserID: bobID})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, exchanges)
	})
}
