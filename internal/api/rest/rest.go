package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-token-exchange/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Reference data and chain reads (public)
		v1.GET("/token-types", handler.ListTokenTypes)
		v1.GET("/wallets/:address/balances", handler.GetWalletBalances)
		v1.GET("/wallets/:address/nfts", handler.GetWalletNfts)

		// Signed-in user endpoints
		v1.POST("/quotes", middleware.JWTAuth(authCfg), handler.CreateQuote)
		v1.POST("/exchanges", middleware.JWTAuth(authCfg), handler.CreateExchange)

		// Operator reconciliation
		v1.GET("/exchanges", middleware.APIKeyAuth(authCfg), handler.ListExchanges)
	}
}
