package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-token-exchange/internal/api/shared/errors"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/logger"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code apierrors.ErrorCode, message string, details ...string) {
	c.JSON(statusCode, gin.H{"error": apierrors.New(code, message, details...)})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, apierrors.ErrCodeBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, apierrors.ErrCodeNotFound, message, details...)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, apierrors.ErrCodeValidationFailed, "Validation failed", details)
}

// respondUnauthorized sends a 401 Unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	respondWithError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, message)
}

// respondServiceUnavailable sends a 503 Service Unavailable response
func respondServiceUnavailable(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusServiceUnavailable, apierrors.ErrCodeServiceUnavailable, message, details...)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, apierrors.ErrCodeInternalError, message)
}

// exchangeStatus maps the terminal state of an exchange to its HTTP status
func exchangeStatus(state domain.ExchangeState, reason domain.FailureReason) int {
	if state == domain.ExchangeStateLedgerUpdated {
		return http.StatusOK
	}

	switch reason {
	case domain.FailureReasonNotAuthenticated:
		return http.StatusUnauthorized
	case domain.FailureReasonInvalidQuote:
		return http.StatusBadRequest
	case domain.FailureReasonInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.FailureReasonTransferRejected:
		return http.StatusForbidden
	case domain.FailureReasonExchangeInFlight:
		return http.StatusConflict
	case domain.FailureReasonWalletUnavailable, domain.FailureReasonBalanceUnavailable, domain.FailureReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	case domain.FailureReasonTimeout:
		return http.StatusGatewayTimeout
	case domain.FailureReasonLedgerWriteError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
