package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/api/middleware"
	"github.com/feral-file/ff-token-exchange/internal/api/rest/dto"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/exchange"
	"github.com/feral-file/ff-token-exchange/internal/resolver"
	"github.com/feral-file/ff-token-exchange/internal/store"
)

// Handler defines the REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// ListTokenTypes lists the token types the source token can be exchanged into
	// GET /api/v1/token-types
	ListTokenTypes(c *gin.Context)

	// GetWalletBalances resolves the configured ERC-20 balances of a wallet
	// GET /api/v1/wallets/:address/balances
	GetWalletBalances(c *gin.Context)

	// GetWalletNfts resolves the configured ERC-721 tokens owned by a wallet
	// GET /api/v1/wallets/:address/nfts
	GetWalletNfts(c *gin.Context)

	// CreateQuote prices an amount against the signed-in user's live balance (JWT)
	// POST /api/v1/quotes
	CreateQuote(c *gin.Context)

	// CreateExchange runs an exchange for the signed-in user (JWT)
	// POST /api/v1/exchanges
	CreateExchange(c *gin.Context)

	// ListExchanges lists stored exchange attempts for reconciliation (API key)
	// GET /api/v1/exchanges?user_id=<uuid>&state=<state>&reason=<reason>&limit=<limit>&offset=<offset>
	ListExchanges(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// Config lists the contracts the wallet endpoints resolve
type Config struct {
	BalanceContracts []domain.TokenContract
	NftContracts     []domain.TokenContract
}

type handler struct {
	cfg          Config
	store        store.Store
	resolver     resolver.Resolver
	orchestrator exchange.Orchestrator
}

// NewHandler creates a new REST API handler
func NewHandler(cfg Config, store store.Store, resolver resolver.Resolver, orchestrator exchange.Orchestrator) Handler {
	return &handler{
		cfg:          cfg,
		store:        store,
		resolver:     resolver,
		orchestrator: orchestrator,
	}
}

// ListTokenTypes lists the exchange targets
func (h *handler) ListTokenTypes(c *gin.Context) {
	tokenTypes, err := h.orchestrator.TokenTypes(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to list token types")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token_types": dto.MapTokenTypesToDTO(tokenTypes)})
}

// GetWalletBalances resolves every configured balance contract for the wallet
func (h *handler) GetWalletBalances(c *gin.Context) {
	wallet, err := domain.NormalizeAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid wallet address", err.Error())
		return
	}

	balances := h.resolver.GetTokenBalances(c.Request.Context(), h.cfg.BalanceContracts, wallet)

	c.JSON(http.StatusOK, dto.WalletBalancesResponse{
		Address:  wallet.Hex(),
		Balances: dto.MapTokenBalancesToDTO(balances),
	})
}

// GetWalletNfts resolves every configured NFT contract for the wallet
func (h *handler) GetWalletNfts(c *gin.Context) {
	wallet, err := domain.NormalizeAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid wallet address", err.Error())
		return
	}

	results := h.resolver.GetOwnedNftsAll(c.Request.Context(), h.cfg.NftContracts, wallet)

	c.JSON(http.StatusOK, dto.WalletNftsResponse{
		Address: wallet.Hex(),
		Nfts:    dto.MapNftResultsToDTO(results),
	})
}

// CreateQuote prices the requested amount for the signed-in user
func (h *handler) CreateQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	q, err := h.orchestrator.Quote(c.Request.Context(), session, req.SourceAmount, req.TokenTypeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAuthenticated):
			respondUnauthorized(c, "No wallet is associated with this account")
		case errors.Is(err, domain.ErrTokenTypeNotFound):
			respondNotFound(c, "Token type not found")
		case errors.Is(err, domain.ErrInvalidQuote):
			respondBadRequest(c, "Invalid token type", err.Error())
		case errors.Is(err, domain.ErrBalanceUnavailable):
			respondServiceUnavailable(c, "Could not read the wallet balance", err.Error())
		case errors.Is(err, domain.ErrStoreUnavailable):
			respondServiceUnavailable(c, "Could not load the token type")
		default:
			respondInternalError(c, err, "Failed to create quote")
		}
		return
	}

	resp := dto.MapQuoteToDTO(q)
	if resp == nil {
		respondValidationError(c, "source_amount must contain digits")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateExchange runs one exchange attempt to a terminal state. Failed attempts are
// returned with the exchange body and a status derived from the failure reason.
func (h *handler) CreateExchange(c *gin.Context) {
	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	result := h.orchestrator.Execute(c.Request.Context(), exchange.Request{
		Session:      session,
		SourceAmount: req.SourceAmount,
		TokenTypeID:  req.TokenTypeID,
	})

	c.JSON(exchangeStatus(result.State, result.Reason), dto.MapExchangeResultToDTO(result))
}

// ListExchanges lists stored exchange attempts
func (h *handler) ListExchanges(c *gin.Context) {
	queryParams, err := ParseListExchangesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	filter := store.ExchangeQueryFilter{
		UserID: queryParams.UserID,
		State:  domain.ExchangeState(queryParams.State),
		Limit:  queryParams.Limit,
		Offset: queryParams.Offset,
	}
	if queryParams.Reason != "" {
		filter.FailureReason = lo.ToPtr(domain.FailureReason(queryParams.Reason))
	}
	filter.ReconciliationRequired = queryParams.ReconciliationRequired

	exchanges, total, err := h.store.ListExchanges(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "Failed to list exchanges")
		return
	}

	records := make([]dto.ExchangeRecordResponse, 0, len(exchanges))
	for i := range exchanges {
		records = append(records, dto.MapExchangeRecordToDTO(&exchanges[i]))
	}

	c.JSON(http.StatusOK, dto.ExchangeListResponse{
		Exchanges: records,
		Total:     total,
		Offset:    queryParams.Offset,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-token-exchange-api",
	})
}

// session builds the signed-in session from the JWT subject and the user's profile.
// It responds and returns false when the request cannot continue.
func (h *handler) session(c *gin.Context) (*domain.Session, bool) {
	userID := middleware.Subject(c)
	if userID == "" {
		respondUnauthorized(c, "A signed-in user is required")
		return nil, false
	}

	profile, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "Failed to load profile", zap.String("user_id", userID))
		return nil, false
	}

	session := &domain.Session{UserID: userID}
	if profile != nil {
		session.WalletAddress = profile.WalletAddress
	}
	return session, true
}
