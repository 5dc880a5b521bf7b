package exchange

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/abi"
	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/messaging"
	"github.com/feral-file/ff-token-exchange/internal/metrics"
	"github.com/feral-file/ff-token-exchange/internal/quote"
	"github.com/feral-file/ff-token-exchange/internal/resolver"
	"github.com/feral-file/ff-token-exchange/internal/store"
	"github.com/feral-file/ff-token-exchange/internal/store/schema"
)

// Orchestrator drives exchanges of the on-chain source token into off-chain token types
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/orchestrator.go -package=mocks -mock_names=Orchestrator=MockOrchestrator
type Orchestrator interface {
	// Execute runs one exchange attempt to a terminal state. It never returns nil.
	Execute(ctx context.Context, req Request) *Result

	// Quote prices sourceAmount of the user's live source balance in the given token type
	Quote(ctx context.Context, session *domain.Session, sourceAmount string, tokenTypeID string) (domain.ExchangeQuote, error)

	// TokenTypes lists the token types the source token can be exchanged into
	TokenTypes(ctx context.Context) ([]domain.ExchangeTokenType, error)
}

// Config configures the orchestrator
type Config struct {
	// SourceToken is the ERC-20 contract users exchange from
	SourceToken domain.TokenContract
	// AdminWallet receives the transferred source tokens
	AdminWallet common.Address
	// Timeout bounds wallet authorization and submission; zero means no limit
	Timeout time.Duration
}

// Request is a single exchange attempt
type Request struct {
	Session      *domain.Session
	SourceAmount string
	TokenTypeID  string
}

// Result is the terminal outcome of an exchange attempt
type Result struct {
	ID           string                 `json:"id"`
	State        domain.ExchangeState   `json:"state"`
	Reason       domain.FailureReason   `json:"reason,omitempty"`
	Error        string                 `json:"error,omitempty"`
	TxHash       string                 `json:"tx_hash,omitempty"`
	Quote        domain.ExchangeQuote   `json:"quote"`
	FundsMoved   bool                   `json:"funds_moved"`
	// ReconciliationRequired is set when funds moved, or may have moved, without a ledger credit
	ReconciliationRequired bool                   `json:"reconciliation_required"`
	Ledger                 *domain.LedgerEntry    `json:"ledger,omitempty"`
	Snapshot               *domain.WalletSnapshot `json:"-"`
	Notification           *domain.Notification   `json:"notification,omitempty"`
	Transitions            []domain.ExchangeState `json:"transitions"`
}

// Succeeded reports whether the ledger was credited
func (r *Result) Succeeded() bool {
	return r.State == domain.ExchangeStateLedgerUpdated
}

var failureMessages = map[domain.FailureReason]string{
	domain.FailureReasonNotAuthenticated:    "Please sign in to exchange tokens",
	domain.FailureReasonInsufficientBalance: "Insufficient balance",
	domain.FailureReasonInvalidQuote:        "Please enter a valid amount and select a token",
	domain.FailureReasonWalletUnavailable:   "Wallet is not available",
	domain.FailureReasonTransferRejected:    "Transfer was rejected",
	domain.FailureReasonLedgerWriteError:    "Transfer succeeded but crediting your tokens failed. Support has been notified",
	domain.FailureReasonTimeout:             "Exchange timed out",
	domain.FailureReasonExchangeInFlight:    "An exchange is already in progress",
	domain.FailureReasonBalanceUnavailable:  "Could not read your balance, please try again",
	domain.FailureReasonStoreUnavailable:    "Service is temporarily unavailable, please try again",
}

type orchestrator struct {
	cfg       Config
	store     store.Store
	resolver  resolver.Resolver
	wallet    WalletProvider
	guard     Guard
	publisher messaging.Publisher
	telemetry metrics.Recorder
	clock     adapter.Clock
	json      adapter.JSON
}

// NewOrchestrator creates an orchestrator. A nil wallet makes every exchange fail
// with wallet_unavailable; nil guard, publisher and telemetry get local defaults.
func NewOrchestrator(
	cfg Config,
	store store.Store,
	resolver resolver.Resolver,
	wallet WalletProvider,
	guard Guard,
	publisher messaging.Publisher,
	telemetry metrics.Recorder,
	clock adapter.Clock,
	json adapter.JSON,
) Orchestrator {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	if telemetry == nil {
		telemetry = metrics.NewNoopRecorder()
	}

	return &orchestrator{
		cfg:       cfg,
		store:     store,
		resolver:  resolver,
		wallet:    wallet,
		guard:     guard,
		publisher: publisher,
		telemetry: telemetry,
		clock:     clock,
		json:      json,
	}
}

func (o *orchestrator) TokenTypes(ctx context.Context) ([]domain.ExchangeTokenType, error) {
	rows, err := o.store.ListTokenTypes(ctx)
	if err != nil {
		return nil, err
	}

	tokenTypes := lo.Map(rows, func(row schema.TokenType, _ int) domain.ExchangeTokenType {
		return row.ToDomain()
	})
	return lo.Filter(tokenTypes, func(t domain.ExchangeTokenType, _ int) bool {
		return !o.isSourceSymbol(t.Symbol)
	}), nil
}

func (o *orchestrator) Quote(ctx context.Context, session *domain.Session, sourceAmount string, tokenTypeID string) (domain.ExchangeQuote, error) {
	wallet, err := sessionWallet(session)
	if err != nil {
		return domain.ExchangeQuote{}, err
	}

	// without a token type the quote carries the source amount only
	var tokenType *domain.ExchangeTokenType
	if tokenTypeID != "" {
		tokenType, err = o.tokenType(ctx, tokenTypeID)
		if err != nil {
			return domain.ExchangeQuote{}, err
		}
	}

	available, _, err := o.availableBalance(ctx, wallet)
	if err != nil {
		return domain.ExchangeQuote{}, err
	}

	return quote.Quote(sourceAmount, available, tokenType), nil
}

func (o *orchestrator) Execute(ctx context.Context, req Request) *Result {
	a := o.newAttempt(ctx, req)

	wallet, err := sessionWallet(req.Session)
	if err != nil {
		return a.fail(err)
	}
	a.wallet = wallet
	a.info.UserID = req.Session.UserID
	a.info.WalletAddress = wallet.Hex()
	a.annotate()
	a.transition(domain.ExchangeStateValidating)

	release, ok := o.guard.TryAcquire(ctx, guardKey(req.Session.UserID))
	if !ok {
		return a.fail(domain.ErrExchangeInFlight)
	}
	defer release()

	if err := a.validate(); err != nil {
		return a.fail(err)
	}
	if err := a.transfer(); err != nil {
		return a.fail(err)
	}
	if err := a.credit(); err != nil {
		return a.fail(err)
	}

	return a.succeed()
}

func guardKey(userID string) string {
	return "exchange:" + userID
}

// sessionWallet returns the normalized wallet of a signed-in session
func sessionWallet(session *domain.Session) (common.Address, error) {
	if !session.Valid() {
		return common.Address{}, domain.ErrNotAuthenticated
	}
	wallet, err := domain.NormalizeAddress(session.WalletAddress)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: no wallet associated: %w", domain.ErrNotAuthenticated, err)
	}
	return wallet, nil
}

func (o *orchestrator) isSourceSymbol(symbol string) bool {
	return o.cfg.SourceToken.Symbol != "" && strings.EqualFold(symbol, o.cfg.SourceToken.Symbol)
}

// tokenType looks up an exchange target
func (o *orchestrator) tokenType(ctx context.Context, id string) (*domain.ExchangeTokenType, error) {
	row, err := o.store.GetTokenType(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTokenTypeNotFound, id)
	}

	tokenType := row.ToDomain()
	if o.isSourceSymbol(tokenType.Symbol) {
		return nil, fmt.Errorf("%w: cannot exchange %s into itself", domain.ErrInvalidQuote, tokenType.Symbol)
	}
	return &tokenType, nil
}

// availableBalance returns the live source balance of wallet in whole units
func (o *orchestrator) availableBalance(ctx context.Context, wallet common.Address) (*big.Int, uint8, error) {
	balance, err := o.resolver.GetTokenBalance(ctx, o.cfg.SourceToken, wallet)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrBalanceUnavailable, err)
	}
	return quote.WholeUnits(balance.Raw, balance.Decimals), balance.Decimals, nil
}

// attempt carries the state of one Execute call
type attempt struct {
	o        *orchestrator
	ctx      context.Context
	req      Request
	result   *Result
	info     logger.ExchangeInfo
	wallet   common.Address
	decimals uint8
	started  time.Time
	recorded bool
}

func (o *orchestrator) newAttempt(ctx context.Context, req Request) *attempt {
	id := ulid.Make().String()
	a := &attempt{
		o:   o,
		ctx: ctx,
		req: req,
		result: &Result{
			ID:          id,
			State:       domain.ExchangeStateIdle,
			Transitions: []domain.ExchangeState{domain.ExchangeStateIdle},
		},
		info: logger.ExchangeInfo{
			ExchangeID:  id,
			TokenTypeID: req.TokenTypeID,
		},
		started: o.clock.Now(),
	}
	a.annotate()
	return a
}

// annotate scopes the attempt context to the current exchange identity
func (a *attempt) annotate() {
	a.ctx = logger.ContextWithExchange(a.ctx, a.info)
}

func (a *attempt) log() *zap.Logger {
	return logger.FromContext(a.ctx)
}

func (a *attempt) transition(state domain.ExchangeState) {
	a.result.State = state
	a.result.Transitions = append(a.result.Transitions, state)
	a.log().Debug("Exchange state changed", zap.String("state", string(state)))

	if state == domain.ExchangeStateValidating {
		a.record()
	}
}

// record creates the exchange row. Failures are logged and never change the outcome.
func (a *attempt) record() {
	err := a.o.store.CreateExchange(a.ctx, store.CreateExchangeInput{
		ID:            a.result.ID,
		UserID:        a.info.UserID,
		WalletAddress: a.info.WalletAddress,
		TokenTypeID:   a.req.TokenTypeID,
		State:         a.result.State,
	})
	if err != nil {
		a.log().Warn("Failed to record exchange", zap.Error(err))
		return
	}
	a.recorded = true
}

// validate resolves the token type and live balance and builds the quote
func (a *attempt) validate() error {
	tokenType, err := a.o.tokenType(a.ctx, a.req.TokenTypeID)
	if err != nil {
		return err
	}

	available, decimals, err := a.o.availableBalance(a.ctx, a.wallet)
	if err != nil {
		return err
	}
	a.decimals = decimals

	requested := quote.ParseAmount(a.req.SourceAmount)
	if requested == nil || requested.Sign() == 0 {
		return fmt.Errorf("%w: amount %q", domain.ErrInvalidQuote, a.req.SourceAmount)
	}
	if requested.Cmp(available) > 0 {
		return fmt.Errorf("%w: requested %s, available %s", domain.ErrInsufficientBalance, requested, available)
	}

	q := quote.Quote(a.req.SourceAmount, available, tokenType)
	if q.Empty() || q.DestinationAmount.Sign() == 0 {
		return fmt.Errorf("%w: %s at rate %s yields nothing", domain.ErrInvalidQuote, requested, tokenType.ConversionRate)
	}
	a.result.Quote = q

	return nil
}

// transfer asks the wallet provider to move the quoted amount to the admin wallet
func (a *attempt) transfer() error {
	a.transition(domain.ExchangeStateAwaitingWalletAuthorization)

	if a.o.wallet == nil {
		return domain.ErrWalletUnavailable
	}

	ctx := a.ctx
	if a.o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.o.cfg.Timeout)
		defer cancel()
	}

	accounts, err := a.o.wallet.RequestAccounts(ctx)
	if err != nil {
		return walletError(ctx, "request accounts", err)
	}
	if !lo.Contains(accounts, a.wallet) {
		return fmt.Errorf("%w: wallet %s is not authorized by the provider", domain.ErrTransferRejected, a.wallet.Hex())
	}

	amount := quote.ToSmallestUnit(a.result.Quote.SourceAmount, a.decimals)
	data, err := abi.EncodeTransfer(a.o.cfg.AdminWallet, amount)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuote, err)
	}

	a.transition(domain.ExchangeStateSubmitting)
	hash, err := a.o.wallet.SendContractTransaction(ctx, a.wallet, a.o.cfg.SourceToken.Address, data)
	if err != nil {
		sendErr := walletError(ctx, "send transaction", err)
		if mayHaveBroadcast(err) {
			a.requireReconciliation(sendErr)
		}
		return sendErr
	}

	a.result.TxHash = hash.Hex()
	a.result.FundsMoved = true
	a.transition(domain.ExchangeStateConfirmed)
	a.log().Info("Exchange transfer submitted", zap.String("tx_hash", a.result.TxHash))

	return nil
}

// walletError classifies a wallet provider failure
func walletError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, domain.ErrTimeout):
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, op, err)
	case errors.Is(err, domain.ErrWalletUnavailable), domain.IsTransportError(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrWalletUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrTransferRejected, op, err)
	}
}

// mayHaveBroadcast reports whether a failed submission could still have reached the
// network. Only an explicit refusal from the provider proves nothing was sent.
func mayHaveBroadcast(err error) bool {
	var protocolErr *domain.RPCProtocolError
	if errors.As(err, &protocolErr) {
		return false
	}
	return !errors.Is(err, domain.ErrTransferRejected)
}

// requireReconciliation flags the attempt for manual reconciliation
func (a *attempt) requireReconciliation(err error) {
	q := a.result.Quote
	reason := domain.FailureReasonFromError(err)
	a.result.ReconciliationRequired = true

	logger.ErrorCtx(context.WithoutCancel(a.ctx), err,
		zap.Bool("reconciliation_required", true),
		zap.Bool("funds_moved", a.result.FundsMoved),
		zap.String("state", string(a.result.State)),
		zap.String("reason", string(reason)),
		zap.String("tx_hash", a.result.TxHash),
		zap.String("source_amount", q.SourceAmount.String()),
		zap.String("destination_amount", q.DestinationAmount.String()))
	a.o.telemetry.IncReconciliationRequired(reason)
}

// credit accumulates the destination amount in the ledger. The transfer has already
// happened, so the write ignores cancellation of the request context.
func (a *attempt) credit() error {
	q := a.result.Quote
	ctx := context.WithoutCancel(a.ctx)

	row, err := a.o.store.AccumulateLedgerEntry(ctx, store.AccumulateLedgerEntryInput{
		UserID:      a.info.UserID,
		TokenTypeID: q.TokenType.ID,
		Delta:       decimal.NewFromBigInt(q.DestinationAmount, 0),
	})
	if err != nil {
		ledgerErr := fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
		a.requireReconciliation(ledgerErr)
		a.o.telemetry.IncLedgerWriteFailure()
		a.publish(domain.ExchangeEventLedgerWriteFailed, domain.FailureReasonLedgerWriteError)
		return ledgerErr
	}

	entry := row.ToDomain()
	a.result.Ledger = &entry
	a.transition(domain.ExchangeStateLedgerUpdated)

	return nil
}

func (a *attempt) succeed() *Result {
	a.result.Snapshot = a.o.resolver.Refresh(a.ctx, a.wallet)
	a.publish(domain.ExchangeEventCompleted, domain.FailureReasonNone)

	q := a.result.Quote
	message := fmt.Sprintf("Successfully exchanged %s %s for %s %s! Tx: %s",
		q.SourceAmount, a.o.cfg.SourceToken.Symbol,
		q.DestinationAmount, q.TokenType.Name,
		domain.TruncateHash(a.result.TxHash))
	a.result.Notification = domain.NewNotification(a.o.clock.Now(), domain.NotificationTypeSuccess, message)

	a.log().Info("Exchange completed",
		zap.String("tx_hash", a.result.TxHash),
		zap.String("destination_amount", q.DestinationAmount.String()))

	return a.finish()
}

func (a *attempt) fail(err error) *Result {
	reason := domain.FailureReasonFromError(err)

	a.result.State = domain.ExchangeStateFailed
	a.result.Transitions = append(a.result.Transitions, domain.ExchangeStateFailed)
	a.result.Reason = reason
	a.result.Error = err.Error()
	a.result.Notification = domain.NewNotification(a.o.clock.Now(), domain.NotificationTypeError, failureMessages[reason])

	// reconciliation failures were already logged at error level
	if !a.result.ReconciliationRequired {
		a.log().Warn("Exchange failed", zap.String("reason", string(reason)), zap.Error(err))
	}

	return a.finish()
}

// finish persists the terminal state and observes the attempt
func (a *attempt) finish() *Result {
	if a.recorded {
		a.updateRecord()
	}
	a.o.telemetry.ObserveExchange(a.result.State, a.result.Reason, a.o.clock.Since(a.started))
	return a.result
}

func (a *attempt) updateRecord() {
	input := store.UpdateExchangeInput{
		ID:                     a.result.ID,
		State:                  a.result.State,
		FailureReason:          a.result.Reason,
		FundsMoved:             a.result.FundsMoved,
		ReconciliationRequired: a.result.ReconciliationRequired,
	}

	q := a.result.Quote
	if q.SourceAmount != nil {
		input.SourceAmount = lo.ToPtr(q.SourceAmount.String())
	}
	if q.DestinationAmount != nil {
		input.DestinationAmount = lo.ToPtr(q.DestinationAmount.String())
	}
	if a.result.TxHash != "" {
		input.TxHash = lo.ToPtr(a.result.TxHash)
	}
	if !q.Empty() {
		data, err := a.o.json.Marshal(q)
		if err != nil {
			a.log().Warn("Failed to marshal exchange quote", zap.Error(err))
		} else {
			input.Quote = data
		}
	}

	if err := a.o.store.UpdateExchange(context.WithoutCancel(a.ctx), input); err != nil {
		a.log().Warn("Failed to update exchange record", zap.Error(err))
	}
}

func (a *attempt) publish(eventType domain.ExchangeEventType, reason domain.FailureReason) {
	q := a.result.Quote
	event := &domain.ExchangeEvent{
		Type:              eventType,
		ExchangeID:        a.result.ID,
		UserID:            a.info.UserID,
		WalletAddress:     a.info.WalletAddress,
		TokenTypeID:       q.TokenType.ID,
		SourceAmount:      q.SourceAmount.String(),
		DestinationAmount: q.DestinationAmount.String(),
		TxHash:            a.result.TxHash,
		Reason:            reason,
		OccurredAt:        a.o.clock.Now(),
	}

	if err := a.o.publisher.PublishExchangeEvent(context.WithoutCancel(a.ctx), event); err != nil {
		a.log().Warn("Failed to publish exchange event",
			zap.String("type", string(eventType)),
			zap.Error(err))
	}
}
