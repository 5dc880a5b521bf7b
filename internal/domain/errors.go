package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when an operation requires a signed-in session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrWalletUnavailable is returned when no wallet provider is configured
	ErrWalletUnavailable = errors.New("wallet provider unavailable")

	// ErrTransferRejected is returned when the wallet provider refuses or fails the transfer
	ErrTransferRejected = errors.New("transfer rejected")

	// ErrInsufficientBalance is returned when the requested amount exceeds the wallet balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrLedgerWrite is returned when the off-chain ledger could not be credited
	ErrLedgerWrite = errors.New("ledger write failed")

	// ErrTimeout is returned when a caller-imposed deadline expires
	ErrTimeout = errors.New("timeout")

	// ErrExchangeInFlight is returned when the session already has an exchange in progress
	ErrExchangeInFlight = errors.New("exchange already in flight")

	// ErrInvalidQuote is returned when an exchange request does not yield a usable quote
	ErrInvalidQuote = errors.New("invalid quote")

	// ErrTokenTypeNotFound is returned when an exchange token type does not exist
	ErrTokenTypeNotFound = errors.New("token type not found")

	// ErrProfileNotFound is returned when a user has no profile
	ErrProfileNotFound = errors.New("profile not found")

	// ErrBalanceUnavailable is returned when the source balance could not be resolved
	ErrBalanceUnavailable = errors.New("balance unavailable")

	// ErrStoreUnavailable is returned when the exchange store could not be read
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidAddress is returned when a wallet or contract address is malformed
	ErrInvalidAddress = errors.New("invalid address")
)

// RPCTransportError is returned when the JSON-RPC request could not be delivered
// or the response body is not a JSON-RPC document.
type RPCTransportError struct {
	Method     string
	StatusCode int
	Message    string
	Err        error
}

func (e *RPCTransportError) Error() string {
	msg := fmt.Sprintf("rpc transport error (%s)", e.Method)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RPCTransportError) Unwrap() error {
	return e.Err
}

// RPCProtocolError is returned when the node answers with a JSON-RPC error object
type RPCProtocolError struct {
	Method  string
	Code    int
	Message string
	Data    string
}

func (e *RPCProtocolError) Error() string {
	return fmt.Sprintf("rpc error (%s): code %d: %s", e.Method, e.Code, e.Message)
}

// DecodingError is returned when ABI-encoded or hex data is malformed
type DecodingError struct {
	Input  string
	Reason string
}

func (e *DecodingError) Error() string {
	if e.Input == "" {
		return "decoding error: " + e.Reason
	}
	return fmt.Sprintf("decoding error: %s (input %q)", e.Reason, e.Input)
}

// NewDecodingError creates a decoding error, truncating long inputs
func NewDecodingError(input string, format string, args ...interface{}) *DecodingError {
	if len(input) > 80 {
		input = input[:80] + "..."
	}
	return &DecodingError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

// IsTransportError reports whether err is (or wraps) an RPCTransportError
func IsTransportError(err error) bool {
	var te *RPCTransportError
	return errors.As(err, &te)
}

// IsProtocolError reports whether err is (or wraps) an RPCProtocolError
func IsProtocolError(err error) bool {
	var pe *RPCProtocolError
	return errors.As(err, &pe)
}

// IsDecodingError reports whether err is (or wraps) a DecodingError
func IsDecodingError(err error) bool {
	var de *DecodingError
	return errors.As(err, &de)
}
