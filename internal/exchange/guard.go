package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/logger"
)

const (
	DEFAULT_GUARD_TTL        = 5 * time.Minute
	DEFAULT_GUARD_KEY_PREFIX = "ff:exchange:guard:"
)

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another attempt is never released by the old one
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type memoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryGuard creates a process-local guard
func NewMemoryGuard() Guard {
	return &memoryGuard{held: make(map[string]struct{})}
}

func (g *memoryGuard) TryAcquire(_ context.Context, key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		return nil, false
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true
}

type redisGuard struct {
	client   adapter.RedisClient
	prefix   string
	ttl      time.Duration
	fallback Guard
}

// NewRedisGuard creates a guard shared by every instance using the same Redis. The
// lock expires after ttl so a crashed holder cannot block a user forever. When Redis
// is unreachable the guard degrades to a process-local one.
func NewRedisGuard(client adapter.RedisClient, prefix string, ttl time.Duration) Guard {
	if prefix == "" {
		prefix = DEFAULT_GUARD_KEY_PREFIX
	}
	if ttl <= 0 {
		ttl = DEFAULT_GUARD_TTL
	}
	return &redisGuard{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		fallback: NewMemoryGuard(),
	}
}

func (g *redisGuard) TryAcquire(ctx context.Context, key string) (func(), bool) {
	redisKey := g.prefix + key
	token := ulid.Make().String()

	acquired, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		logger.WarnCtx(ctx, "Redis guard unavailable, using local guard",
			zap.String("key", redisKey),
			zap.Error(err))
		return g.fallback.TryAcquire(ctx, key)
	}
	if !acquired {
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx := context.WithoutCancel(ctx)
			if err := g.client.Eval(releaseCtx, releaseScript, []string{redisKey}, token).Err(); err != nil {
				logger.WarnCtx(releaseCtx, "Failed to release exchange guard, it will expire",
					zap.String("key", redisKey),
					zap.Duration("ttl", g.ttl),
					zap.Error(err))
			}
		})
	}, true
}
