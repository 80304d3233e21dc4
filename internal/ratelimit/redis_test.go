package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, limit int, window time.Duration) (*Redis, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRedis(rdb, Config{Limit: limit, Window: window})
	l.now = clk.Now
	return l, clk, mr
}

func TestRedis_SixthAttemptRejected(t *testing.T) {
	l, clk, _ := newTestRedis(t, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, 5-i, d.Remaining)
		clk.Advance(time.Minute)
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 10*time.Minute, d.RetryAfter)
}

func TestRedis_WindowSlides(t *testing.T) {
	l, clk, _ := newTestRedis(t, 2, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	clk.Advance(30 * time.Second)
	_, _ = l.Allow(ctx, "k")

	d, _ := l.Allow(ctx, "k")
	require.False(t, d.Allowed)

	// первая отметка выходит из окна
	clk.Advance(31 * time.Second)
	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestRedis_SetsKeyTTL(t *testing.T) {
	l, _, mr := newTestRedis(t, 5, time.Minute)

	_, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)

	assert.True(t, mr.Exists("rl:login:k"))
	assert.Equal(t, time.Minute, mr.TTL("rl:login:k"))
}

func TestRedis_ServerDownReturnsError(t *testing.T) {
	l, _, mr := newTestRedis(t, 5, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
