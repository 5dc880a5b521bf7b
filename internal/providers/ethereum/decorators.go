package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/ratelimit"
)

// RPC call outcomes reported to an RPCObserver
const (
	RPCOutcomeOK             = "ok"
	RPCOutcomeTransportError = "transport_error"
	RPCOutcomeProtocolError  = "protocol_error"
	RPCOutcomeTimeout        = "timeout"
	RPCOutcomeCanceled       = "canceled"
	RPCOutcomeError          = "error"
)

// RPCObserver records the latency and outcome of RPC calls
type RPCObserver interface {
	ObserveRPCCall(method string, outcome string, duration time.Duration)
}

// WithTimeout bounds every call with a deadline. On expiry the call fails with
// domain.ErrTimeout; the request may still have been executed by the node.
// A non-positive timeout returns next unchanged.
func WithTimeout(next RPCClient, timeout time.Duration) RPCClient {
	if timeout <= 0 {
		return next
	}
	return &timeoutClient{next: next, timeout: timeout}
}

type timeoutClient struct {
	next    RPCClient
	timeout time.Duration
}

func (c *timeoutClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.next.Call(ctx, method, params...)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s did not complete within %s: %w", method, c.timeout, domain.ErrTimeout)
	}
	return result, err
}

// RetryConfig configures WithRetry
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// WithRetry retries transport errors with exponential backoff and jitter.
// Protocol and decoding errors are returned immediately. Zero MaxRetries disables
// retries; zero MaxElapsedTime falls back to a one minute budget.
func WithRetry(next RPCClient, cfg RetryConfig) RPCClient {
	if cfg.MaxRetries == 0 {
		return next
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Second
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = time.Minute
	}
	return &retryClient{next: next, cfg: cfg}
}

type retryClient struct {
	next RPCClient
	cfg  RetryConfig
}

func (c *retryClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	var result json.RawMessage

	operation := func() error {
		var err error
		result, err = c.next.Call(ctx, method, params...)
		if err == nil {
			return nil
		}
		if domain.IsTransportError(err) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialInterval
	b.MaxInterval = c.cfg.MaxInterval
	b.MaxElapsedTime = c.cfg.MaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	policy := backoff.WithMaxRetries(b, c.cfg.MaxRetries)

	notify := func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "RPC call failed, retrying",
			zap.String("method", method),
			zap.Duration("retry_in", next),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, err
	}
	return result, nil
}

// WithRateLimit routes every call through the rate limit proxy under providerName.
// A nil proxy returns next unchanged.
func WithRateLimit(next RPCClient, proxy ratelimit.Proxy, providerName string) RPCClient {
	if proxy == nil {
		return next
	}
	return &rateLimitedClient{next: next, proxy: proxy, provider: providerName}
}

type rateLimitedClient struct {
	next     RPCClient
	proxy    ratelimit.Proxy
	provider string
}

func (c *rateLimitedClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	return ratelimit.Request(ctx, c.proxy, c.provider, func(ctx context.Context) (json.RawMessage, error) {
		return c.next.Call(ctx, method, params...)
	})
}

// WithMetrics reports latency and outcome of every call to observer
func WithMetrics(next RPCClient, observer RPCObserver, clock adapter.Clock) RPCClient {
	if observer == nil {
		return next
	}
	return &observedClient{next: next, observer: observer, clock: clock}
}

type observedClient struct {
	next     RPCClient
	observer RPCObserver
	clock    adapter.Clock
}

func (c *observedClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	start := c.clock.Now()
	result, err := c.next.Call(ctx, method, params...)
	c.observer.ObserveRPCCall(method, rpcOutcome(err), c.clock.Since(start))
	return result, err
}

func rpcOutcome(err error) string {
	switch {
	case err == nil:
		return RPCOutcomeOK
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return RPCOutcomeTimeout
	case errors.Is(err, context.Canceled):
		return RPCOutcomeCanceled
	case domain.IsProtocolError(err):
		return RPCOutcomeProtocolError
	case domain.IsTransportError(err):
		return RPCOutcomeTransportError
	default:
		return RPCOutcomeError
	}
}
