package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nse-screener/pkg/redis"
)

func TestPause_EnforcesGap(t *testing.T) {
	p := NewPause(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	assert.Less(t, time.Since(start), 20*time.Millisecond, "first request should not wait")

	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestPause_ZeroIntervalDoesNotBlock(t *testing.T) {
	p := NewPause(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPause_CancelledContext(t *testing.T) {
	p := NewPause(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestNoLimit(t *testing.T) {
	assert.NoError(t, NoLimit{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NoLimit{}.Wait(ctx), context.Canceled)
}

func TestShared_DisabledRedisAllows(t *testing.T) {
	s := NewShared(redis.NewRateLimiter(redis.Disabled(), "test"), redis.YahooRateLimit)
	assert.NoError(t, s.Wait(context.Background()))
}

func TestChain_SkipsNil(t *testing.T) {
	c := Chain{nil, NoLimit{}, NewPause(0)}
	assert.NoError(t, c.Wait(context.Background()))
}
