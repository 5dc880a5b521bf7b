package exchange_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-exchange/internal/exchange"
	"github.com/feral-file/ff-token-exchange/internal/mocks"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	guard := exchange.NewMemoryGuard()

	release, ok := guard.TryAcquire(ctx, "exchange:alice")
	require.True(t, ok)

	_, ok = guard.TryAcquire(ctx, "exchange:alice")
	assert.False(t, ok, "held key must be rejected")

	releaseBob, ok := guard.TryAcquire(ctx, "exchange:bob")
	assert.True(t, ok, "other keys are independent")
	releaseBob()

	release()
	release() // idempotent

	again, ok := guard.TryAcquire(ctx, "exchange:alice")
	require.True(t, ok, "key is free after release")
	again()
}

func TestMemoryGuard_Concurrent(t *testing.T) {
	ctx := context.Background()
	guard := exchange.NewMemoryGuard()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := guard.TryAcquire(ctx, "exchange:alice"); ok {
				acquired.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}

func TestRedisGuard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRedisClient(ctrl)
	guard := exchange.NewRedisGuard(client, "test:", time.Minute)
	ctx := context.Background()

	var token interface{}
	client.EXPECT().
		SetNX(gomock.Any(), "test:exchange:alice", gomock.Any(), time.Minute).
		DoAndReturn(func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
			token = value
			return redis.NewBoolResult(true, nil)
		})

	release, ok := guard.TryAcquire(ctx, "exchange:alice")
	require.True(t, ok)
	require.NotNil(t, token)

	client.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"test:exchange:alice"}, gomock.Any()).
		DoAndReturn(func(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
			require.Len(t, args, 1)
			assert.Equal(t, token, args[0], "release must present the acquiring token")
			return redis.NewCmdResult(int64(1), nil)
		}).
		Times(1)

	release()
	release()
}

func TestRedisGuard_Held(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRedisClient(ctrl)
	guard := exchange.NewRedisGuard(client, "", 0)

	client.EXPECT().
		SetNX(gomock.Any(), exchange.DEFAULT_GUARD_KEY_PREFIX+"exchange:alice", gomock.Any(), exchange.DEFAULT_GUARD_TTL).
		Return(redis.NewBoolResult(false, nil))

	release, ok := guard.TryAcquire(context.Background(), "exchange:alice")
	assert.False(t, ok)
	assert.Nil(t, release)
}

func TestRedisGuard_FallsBackWhenRedisIsDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRedisClient(ctrl)
	guard := exchange.NewRedisGuard(client, "test:", time.Minute)
	ctx := context.Background()

	client.EXPECT().
		SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(redis.NewBoolResult(false, errors.New("dial tcp: connection refused"))).
		Times(3)

	release, ok := guard.TryAcquire(ctx, "exchange:alice")
	require.True(t, ok)

	_, ok = guard.TryAcquire(ctx, "exchange:alice")
	assert.False(t, ok, "local fallback still serializes the key")

	release()
	_, ok = guard.TryAcquire(ctx, "exchange:alice")
	assert.True(t, ok)
}

func TestRedisGuard_ReleaseFailureIsTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRedisClient(ctrl)
	guard := exchange.NewRedisGuard(client, "test:", time.Minute)

	client.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(redis.NewBoolResult(true, nil))
	client.EXPECT().Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(redis.NewCmdResult(nil, errors.New("i/o timeout")))

	release, ok := guard.TryAcquire(context.Background(), "exchange:alice")
	require.True(t, ok)
	assert.NotPanics(t, release)
}
