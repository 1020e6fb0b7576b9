package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), mr
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, time.Minute, mr.TTL("inv:rate_limit:login:ip:1.2.3.4"))

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 2, count)

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window should reset after expiry")
	assert.EqualValues(t, 1, count)
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.IdempotencyKey("transactions", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("k", "v1"))

	ok, err := client.CompareAndDelete(ctx, "k", "v0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("k"))

	ok, err = client.CompareAndDelete(ctx, "k", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = client.CompareAndDelete(ctx, "k", "v1")
	require.NoError(t, err)
	assert.False(t, ok, "second delete loses")
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "inv:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "inv:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "inv:session:access:abc", client.AccessSessionKey("abc"))
	assert.Equal(t, "inv:rate_limit:a", client.buildKey("rate_limit", "", " a "))
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.Error(t, client.Ping(ctx))
	assert.ErrorIs(t, client.Set(ctx, "k", "v", 0), ErrNotInitialized)
	_, _, err := client.FixedWindowAllow(ctx, "scope", 1, time.Second)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@localhost:6380/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
}
