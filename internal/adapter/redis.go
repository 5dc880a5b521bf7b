package adapter

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the Redis surface shared by the exchange guard and the RPC rate limiter
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisClient=MockRedisClient
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd

	// SetNX sets key only when it is absent. The guard uses it to take a lock.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd

	// Eval runs a Lua script. The guard releases its lock with a compare-and-delete script.
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd

	// NewRateLimiter returns a GCRA limiter sharing this connection pool
	NewRateLimiter() RedisRateLimiter

	Close() error
}

type goRedisClient struct {
	*redis.Client
}

// NewRedisClient opens a connection pool to addr. No command is sent until first use.
func NewRedisClient(addr, password string, db int) RedisClient {
	return goRedisClient{redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c goRedisClient) NewRateLimiter() RedisRateLimiter {
	return NewRateLimiter(redis_rate.NewLimiter(c.Client))
}

// RedisRateLimiter is a distributed limiter keyed per upstream provider
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisRateLimiter=MockRedisRateLimiter
type RedisRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// NewRateLimiter adapts a redis_rate.Limiter
func NewRateLimiter(limiter *redis_rate.Limiter) RedisRateLimiter {
	return limiter
}
