package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/config"
	"github.com/feral-file/ff-token-exchange/internal/logger"
)

const (
	DEFAULT_REDIS_KEY_PREFIX = "ff:exchange:limiter:"
	HEALTH_CHECK_INTERVAL    = 10 * time.Second
)

// RequestFunc performs the rate-limited request
type RequestFunc func(ctx context.Context) (interface{}, error)

type requestResult struct {
	value interface{}
	err   error
}

// Proxy throttles requests per upstream provider. Tokens come from a Redis-backed
// limiter shared by every replica, with a local limiter used when Redis is not
// configured or unreachable.
//
//go:generate mockgen -source=proxy.go -destination=../mocks/ratelimit_proxy.go -package=mocks -mock_names=Proxy=MockRateLimitProxy
type Proxy interface {
	// Request blocks until a token for providerName is acquired, then runs fn
	Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error)

	// Close waits for in-flight requests
	Close() error
}

type proxy struct {
	config         config.RateLimiterConfig
	pool           pond.ResultPool[*requestResult]
	limiters       map[string]*providerLimiter
	redis          adapter.RedisClient
	clock          adapter.Clock
	closed         atomic.Bool
	closeOnce      sync.Once
	stopHealth     chan struct{}
	redisAvailable atomic.Bool
}

type providerLimiter struct {
	name               string
	config             config.RateLimitConfig
	distributedLimiter adapter.RedisRateLimiter
	localLimiter       *rate.Limiter
	preFilterLimiter   *rate.Limiter
}

// NewProxy creates a rate limit proxy. rc may be nil, in which case only the local
// limiter is used.
func NewProxy(cfg config.RateLimiterConfig, rc adapter.RedisClient, clock adapter.Clock) (Proxy, error) {
	if err := normalizeConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	redisAvailable := false
	var distributedLimiter adapter.RedisRateLimiter
	if rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Ping(ctx).Err()
		cancel()

		if err != nil && !cfg.EnableLocalFallback {
			return nil, fmt.Errorf("redis unavailable and fallback disabled: %w", err)
		}
		if err != nil {
			logger.Warn("Redis unavailable, using local rate limiter", zap.Error(err))
		}
		redisAvailable = err == nil
		distributedLimiter = rc.NewRateLimiter()
	} else if !cfg.EnableLocalFallback {
		return nil, fmt.Errorf("redis is not configured and fallback disabled")
	}

	limiters := make(map[string]*providerLimiter, len(cfg.Providers))
	for name, providerConfig := range cfg.Providers {
		// Local fallback runs at a fraction of the shared rate since other replicas
		// may be falling back at the same time
		localRate := max(float64(providerConfig.RequestsPerSecond)*cfg.LocalFallbackMultiplier, 1.0)

		limiters[name] = &providerLimiter{
			name:               name,
			config:             providerConfig,
			distributedLimiter: distributedLimiter,
			localLimiter:       rate.NewLimiter(rate.Limit(localRate), providerConfig.Burst),
			preFilterLimiter:   rate.NewLimiter(rate.Limit(providerConfig.RequestsPerSecond), providerConfig.Burst),
		}
	}

	p := &proxy{
		config:     cfg,
		pool:       pond.NewResultPool[*requestResult](cfg.MaxWorkers, pond.WithQueueSize(cfg.MaxQueueSize)),
		limiters:   limiters,
		redis:      rc,
		clock:      clock,
		stopHealth: make(chan struct{}),
	}
	p.redisAvailable.Store(redisAvailable)

	if rc != nil {
		go p.monitorRedisHealth(clock.NewTicker(HEALTH_CHECK_INTERVAL))
	}

	logger.Info("Rate limit proxy initialized",
		zap.Int("max_workers", cfg.MaxWorkers),
		zap.Int("max_queue_size", cfg.MaxQueueSize),
		zap.Int("providers", len(cfg.Providers)),
		zap.Bool("redis", rc != nil),
		zap.Bool("local_fallback", cfg.EnableLocalFallback),
	)

	return p, nil
}

// Request runs fn through the proxy and returns its typed result. A nil proxy
// runs fn directly.
func Request[T any](ctx context.Context, p Proxy, providerName string, fn func(ctx context.Context) (T, error)) (T, error) {
	if p == nil {
		return fn(ctx)
	}

	var zero T
	result, err := p.Request(ctx, providerName, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

// Request blocks until a token is acquired and fn completes, the context is canceled,
// or the provider's MaxQueueTime is exceeded while waiting for a token.
func (p *proxy) Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("proxy is closed")
	}

	limiter, ok := p.limiters[providerName]
	if !ok {
		return nil, fmt.Errorf("provider '%s' not configured", providerName)
	}

	task := p.pool.Submit(func() *requestResult {
		queueCtx, cancel := context.WithTimeout(ctx, limiter.config.MaxQueueTime)
		defer cancel()

		if err := p.acquireToken(queueCtx, limiter); err != nil {
			return &requestResult{err: fmt.Errorf("failed to acquire rate limit token for %s: %w", providerName, err)}
		}

		value, err := fn(ctx)
		return &requestResult{value: value, err: err}
	})

	result, err := task.Wait()
	if err != nil {
		return nil, err
	}
	return result.value, result.err
}

// acquireToken blocks until a token is available
func (p *proxy) acquireToken(ctx context.Context, limiter *providerLimiter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.redisAvailable.Load() {
			allowed, retryAfter, err := p.tryDistributedLimit(ctx, limiter)
			switch {
			case err != nil && ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				p.redisAvailable.Store(false)
				if !p.config.EnableLocalFallback {
					return fmt.Errorf("redis rate limiter unavailable: %w", err)
				}
				logger.Warn("Redis rate limiter error, falling back to local",
					zap.String("provider", limiter.name),
					zap.Error(err),
				)
			case allowed:
				return nil
			default:
				// Spread retries over 50-150% of retryAfter
				jitter := time.Duration(float64(retryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-p.clock.After(jitter):
				}
				continue
			}
		}

		if p.config.EnableLocalFallback {
			return limiter.localLimiter.Wait(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(100 * time.Millisecond):
		}
	}
}

// tryDistributedLimit returns whether a token was granted and, if not, how long to wait
func (p *proxy) tryDistributedLimit(ctx context.Context, limiter *providerLimiter) (bool, time.Duration, error) {
	if limiter.distributedLimiter == nil {
		return false, 0, fmt.Errorf("distributed limiter not available")
	}

	// The local pre-filter keeps this replica from hammering Redis
	if err := limiter.preFilterLimiter.Wait(ctx); err != nil {
		return false, 0, err
	}

	key := p.config.RedisKeyPrefix + limiter.name
	res, err := limiter.distributedLimiter.Allow(ctx, key, redis_rate.PerSecond(limiter.config.RequestsPerSecond))
	if err != nil {
		return false, 0, err
	}

	if res.Allowed == 0 {
		logger.Debug("Rate limit token unavailable, waiting",
			zap.String("provider", limiter.name),
			zap.Duration("retry_after", res.RetryAfter),
		)
		retryAfter := res.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 10 * time.Millisecond
		}
		return false, retryAfter, nil
	}

	return true, 0, nil
}

func (p *proxy) monitorRedisHealth(ticker *time.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-p.stopHealth:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := p.redis.Ping(ctx).Err()
		cancel()

		wasAvailable := p.redisAvailable.Swap(err == nil)
		if !wasAvailable && err == nil {
			logger.Info("Redis connection restored")
		}
	}
}

// Close stops accepting requests and waits for in-flight ones. The Redis client is
// owned by the caller and left open.
func (p *proxy) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.stopHealth)

		logger.Info("Shutting down rate limit proxy")

		p.pool.StopAndWait()
	})
	return nil
}

func normalizeConfig(cfg *config.RateLimiterConfig) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}

	providers := make(map[string]config.RateLimitConfig, len(cfg.Providers))
	for name, provider := range cfg.Providers {
		if provider.RequestsPerSecond <= 0 {
			return fmt.Errorf("provider %s: requests_per_second must be positive", name)
		}
		if provider.Burst <= 0 {
			provider.Burst = provider.RequestsPerSecond
		}
		if provider.MaxQueueTime <= 0 {
			provider.MaxQueueTime = time.Minute
		}
		providers[name] = provider
	}
	cfg.Providers = providers

	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = DEFAULT_REDIS_KEY_PREFIX
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU() * 10
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 10000
	}
	if cfg.LocalFallbackMultiplier <= 0 {
		cfg.LocalFallbackMultiplier = 0.5
	}

	return nil
}
